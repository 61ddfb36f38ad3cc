package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/joho/godotenv"
	"github.com/questbycycle/backend/config"
	"github.com/questbycycle/backend/internal/domain"
	"github.com/questbycycle/backend/internal/domain/badge"
	"github.com/questbycycle/backend/internal/domain/notification"
	"github.com/questbycycle/backend/internal/domain/questclaim"
	"github.com/questbycycle/backend/internal/domain/social"
	"github.com/questbycycle/backend/internal/domain/statistic"
	"github.com/questbycycle/backend/internal/repository"
	"github.com/questbycycle/backend/pkg/api/facebook"
	"github.com/questbycycle/backend/pkg/api/instagram"
	"github.com/questbycycle/backend/pkg/api/twitter"
	"github.com/questbycycle/backend/pkg/kafka"
	"github.com/questbycycle/backend/pkg/logger"
	"github.com/questbycycle/backend/pkg/pubsub"
	"github.com/questbycycle/backend/pkg/router"
	"github.com/questbycycle/backend/pkg/storage"
	"github.com/questbycycle/backend/pkg/xcontext"
	"github.com/questbycycle/backend/pkg/xredis"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type srv struct {
	app *cli.App
	ctx context.Context

	configs *config.Configs
	logger  logger.Logger
	db      *gorm.DB

	redisClient xredis.Client
	publisher   pubsub.Publisher
	storage     storage.Storage
	idGenerator *snowflake.Node

	twitterEndpoint   twitter.IEndpoint
	facebookEndpoint  facebook.IEndpoint
	instagramEndpoint instagram.IEndpoint

	userRepo       repository.UserRepository
	gameRepo       repository.GameRepository
	questRepo      repository.QuestRepository
	badgeRepo      repository.BadgeRepository
	userBadgeRepo  repository.UserBadgeRepository
	userQuestRepo  repository.UserQuestRepository
	submissionRepo repository.QuestSubmissionRepository
	shoutBoardRepo repository.ShoutBoardRepository

	checker         questclaim.Checker
	notifier        notification.Notifier
	badgeManager    *badge.Manager
	scoreAggregator statistic.ScoreAggregator
	leaderboard     statistic.Leaderboard
	poster          social.Poster

	userDomain       domain.UserDomain
	gameDomain       domain.GameDomain
	questDomain      domain.QuestDomain
	badgeDomain      domain.BadgeDomain
	submissionDomain domain.SubmissionDomain
	shoutBoardDomain domain.ShoutBoardDomain
	fileDomain       domain.FileDomain

	router *router.Router
	server *http.Server
}

func (s *srv) loadConfig(cctx *cli.Context) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("cannot load .env: %w", err)
	}

	cfg, err := config.Load(cctx.String(configFlag.Name))
	if err != nil {
		return err
	}

	overrideFromEnv(&cfg)
	s.configs = &cfg
	s.loadLogger()

	s.ctx = context.Background()
	s.ctx = xcontext.WithConfigs(s.ctx, *s.configs)
	s.ctx = xcontext.WithLogger(s.ctx, s.logger)
	return nil
}

// overrideFromEnv lets the deployment keep secrets out of the config file.
func overrideFromEnv(cfg *config.Configs) {
	overrides := map[string]*string{
		"ENV":               &cfg.Env,
		"LOG_LEVEL":         &cfg.LogLevel,
		"DATABASE_DRIVER":   &cfg.Database.Driver,
		"DATABASE_HOST":     &cfg.Database.Host,
		"DATABASE_PORT":     &cfg.Database.Port,
		"DATABASE_NAME":     &cfg.Database.Database,
		"DATABASE_USER":     &cfg.Database.User,
		"DATABASE_PASSWORD": &cfg.Database.Password,
		"TOKEN_SECRET":      &cfg.Auth.TokenSecret,
		"REDIS_ADDR":        &cfg.Redis.Addr,
		"KAFKA_ADDR":        &cfg.Kafka.Addr,
		"S3_ACCESS_KEY":     &cfg.Storage.AccessKey,
		"S3_SECRET_KEY":     &cfg.Storage.SecretKey,
	}

	for key, value := range overrides {
		if v, ok := os.LookupEnv(key); ok {
			*value = v
		}
	}
}

func (s *srv) loadLogger() {
	s.logger = logger.NewLogger(logger.ParseLevel(s.configs.LogLevel))
}

func (s *srv) loadDatabase() error {
	var dialector gorm.Dialector
	dsn := s.configs.Database.ConnectionString()
	switch s.configs.Database.Driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return fmt.Errorf("unsupported database driver %q", s.configs.Database.Driver)
	}

	logLevel := gormlogger.Warn
	switch s.configs.Database.LogLevel {
	case "silent":
		logLevel = gormlogger.Silent
	case "error":
		logLevel = gormlogger.Error
	case "info":
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  gormlogger.Default.LogMode(logLevel),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return err
	}

	// sqlite doesn't support concurrent writers.
	if s.configs.Database.Driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	s.db = db
	s.ctx = xcontext.WithDB(s.ctx, db)
	return nil
}

// loadRedis connects to the leaderboard cache. The service still works
// without redis, so failures are only logged.
func (s *srv) loadRedis() {
	if s.configs.Redis.Addr == "" {
		s.logger.Infof("Redis is not configured, leaderboard is served from database")
		return
	}

	client, err := xredis.NewClient(s.ctx, s.configs.Redis.Addr)
	if err != nil {
		s.logger.Warnf("Cannot connect to redis at %s: %v", s.configs.Redis.Addr, err)
		return
	}

	s.redisClient = client
}

func (s *srv) loadPublisher() error {
	if s.configs.Kafka.Addr == "" {
		s.logger.Infof("Kafka is not configured, notifications are not published")
		s.publisher = pubsub.NewNoopPublisher()
		return nil
	}

	publisher, err := kafka.NewPublisher(s.app.Name, []string{s.configs.Kafka.Addr})
	if err != nil {
		return fmt.Errorf("cannot create kafka publisher: %w", err)
	}

	s.publisher = publisher
	return nil
}

func (s *srv) stopPublisher() {
	if p, ok := s.publisher.(interface{ Stop(context.Context) error }); ok {
		if err := p.Stop(s.ctx); err != nil {
			s.logger.Errorf("Cannot stop publisher: %v", err)
		}
	}
}

func (s *srv) loadStorage() error {
	var err error
	s.storage, err = storage.NewS3Storage(s.configs.Storage)
	return err
}

func (s *srv) loadIDGenerator() error {
	var err error
	s.idGenerator, err = snowflake.NewNode(s.configs.Snowflake.NodeID)
	return err
}

func (s *srv) loadEndpoint() {
	s.twitterEndpoint = twitter.New(s.configs.Social.Twitter)
	s.facebookEndpoint = facebook.New(s.configs.Social.Facebook)
	s.instagramEndpoint = instagram.New(s.configs.Social.Instagram)
}

func (s *srv) loadRepos() {
	s.userRepo = repository.NewUserRepository()
	s.gameRepo = repository.NewGameRepository()
	s.questRepo = repository.NewQuestRepository()
	s.badgeRepo = repository.NewBadgeRepository()
	s.userBadgeRepo = repository.NewUserBadgeRepository()
	s.userQuestRepo = repository.NewUserQuestRepository()
	s.submissionRepo = repository.NewQuestSubmissionRepository()
	s.shoutBoardRepo = repository.NewShoutBoardRepository()
}

func (s *srv) loadServices() {
	s.checker = questclaim.NewEligibilityChecker(s.questRepo, s.submissionRepo)
	s.notifier = notification.NewNotifier(s.shoutBoardRepo, s.publisher, s.idGenerator)
	s.badgeManager = badge.NewManager(s.questRepo, s.badgeRepo, s.userBadgeRepo, s.userQuestRepo, s.notifier)
	s.scoreAggregator = statistic.NewScoreAggregator(s.userRepo, s.userQuestRepo, s.redisClient)
	s.leaderboard = statistic.NewLeaderboard(s.userRepo, s.redisClient)
	s.poster = social.NewPoster(s.twitterEndpoint, s.facebookEndpoint, s.instagramEndpoint)
}

func (s *srv) loadDomains() {
	s.userDomain = domain.NewUserDomain(s.userRepo, s.badgeRepo, s.userBadgeRepo, s.userQuestRepo, s.leaderboard)
	s.gameDomain = domain.NewGameDomain(s.gameRepo, s.userRepo)
	s.questDomain = domain.NewQuestDomain(s.questRepo, s.gameRepo, s.badgeRepo, s.userRepo, s.checker)
	s.badgeDomain = domain.NewBadgeDomain(s.badgeRepo, s.userBadgeRepo, s.questRepo, s.userRepo)
	s.submissionDomain = domain.NewSubmissionDomain(
		s.userRepo, s.gameRepo, s.questRepo, s.submissionRepo, s.userQuestRepo,
		s.checker, s.badgeManager, s.scoreAggregator, s.poster,
	)
	s.shoutBoardDomain = domain.NewShoutBoardDomain(s.gameRepo, s.shoutBoardRepo, s.notifier)
	s.fileDomain = domain.NewFileDomain(s.storage)
}
