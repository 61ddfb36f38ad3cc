package statistic

import (
	"context"

	"github.com/questbycycle/backend/internal/entity"
	"github.com/questbycycle/backend/internal/model"
	"github.com/questbycycle/backend/internal/repository"
	"github.com/questbycycle/backend/pkg/errorx"
	"github.com/questbycycle/backend/pkg/xcontext"
	"github.com/questbycycle/backend/pkg/xredis"
	"github.com/redis/go-redis/v9"
)

type Leaderboard interface {
	// Always return errorx in this method.
	GetLeaderboard(ctx context.Context, offset, limit int) ([]model.UserStatistic, error)

	// GetRank returns the 1-based rank of the user.
	GetRank(ctx context.Context, userID string) (uint64, error)
}

type leaderboard struct {
	userRepo    repository.UserRepository
	redisClient xredis.Client
}

func NewLeaderboard(userRepo repository.UserRepository, redisClient xredis.Client) *leaderboard {
	return &leaderboard{userRepo: userRepo, redisClient: redisClient}
}

func (l *leaderboard) GetLeaderboard(
	ctx context.Context, offset, limit int,
) ([]model.UserStatistic, error) {
	if l.redisClient == nil {
		return l.getLeaderboardFromDB(ctx, offset, limit)
	}

	if err := l.ensureLoaded(ctx); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot load leaderboard into redis, use database: %v", err)
		return l.getLeaderboardFromDB(ctx, offset, limit)
	}

	results, err := l.redisClient.ZRevRangeWithScores(ctx, redisKeyScoreLeaderboard, offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot get revrange redis, use database: %v", err)
		return l.getLeaderboardFromDB(ctx, offset, limit)
	}

	userIDs := []string{}
	for _, z := range results {
		if id, ok := z.Member.(string); ok {
			userIDs = append(userIDs, id)
		}
	}

	users, err := l.userRepo.GetByIDs(ctx, userIDs)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get users: %v", err)
		return nil, errorx.Unknown
	}

	userSet := map[string]entity.User{}
	for _, u := range users {
		userSet[u.ID] = u
	}

	result := []model.UserStatistic{}
	for i, z := range results {
		id, _ := z.Member.(string)
		u, ok := userSet[id]
		if !ok {
			continue
		}

		result = append(result, model.UserStatistic{
			User:  convertUser(&u),
			Score: int64(z.Score),
			Rank:  offset + i + 1,
		})
	}

	return result, nil
}

func (l *leaderboard) GetRank(ctx context.Context, userID string) (uint64, error) {
	if l.redisClient != nil {
		if err := l.ensureLoaded(ctx); err == nil {
			rank, err := l.redisClient.ZRevRank(ctx, redisKeyScoreLeaderboard, userID)
			if err == nil {
				return rank + 1, nil
			}

			xcontext.Logger(ctx).Debugf("Cannot get rev rank redis: %v", err)
		}
	}

	user, err := l.userRepo.GetByID(ctx, userID)
	if err != nil {
		return 0, errorx.New(errorx.NotFound, "Not found user")
	}

	higher, err := l.userRepo.CountByScoreGreaterThan(ctx, user.Score)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count users: %v", err)
		return 0, errorx.Unknown
	}

	return uint64(higher) + 1, nil
}

// ensureLoaded loads every user score into redis if the key didn't exist.
func (l *leaderboard) ensureLoaded(ctx context.Context) error {
	ok, err := l.redisClient.Exist(ctx, redisKeyScoreLeaderboard)
	if err != nil {
		return err
	}

	if ok {
		return nil
	}

	users, err := l.userRepo.GetTopByScore(ctx, 0, -1)
	if err != nil {
		return err
	}

	for _, u := range users {
		err := l.redisClient.ZAdd(ctx, redisKeyScoreLeaderboard, redis.Z{
			Score:  float64(u.Score),
			Member: u.ID,
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func (l *leaderboard) getLeaderboardFromDB(
	ctx context.Context, offset, limit int,
) ([]model.UserStatistic, error) {
	users, err := l.userRepo.GetTopByScore(ctx, offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get top users: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.UserStatistic{}
	for i := range users {
		result = append(result, model.UserStatistic{
			User:  convertUser(&users[i]),
			Score: users[i].Score,
			Rank:  offset + i + 1,
		})
	}

	return result, nil
}

func convertUser(u *entity.User) model.User {
	return model.User{ID: u.ID, Name: u.Name, Score: u.Score}
}
