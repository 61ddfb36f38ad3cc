package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/questbycycle/backend/internal/common"
	"github.com/questbycycle/backend/internal/middleware"
	"github.com/questbycycle/backend/internal/model"
	"github.com/questbycycle/backend/pkg/authenticator"
	"github.com/questbycycle/backend/pkg/router"
	"github.com/rs/cors"
	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(*cli.Context) error {
	if err := s.loadDatabase(); err != nil {
		return err
	}
	s.loadRedis()
	if err := s.loadPublisher(); err != nil {
		return err
	}
	defer s.stopPublisher()
	if err := s.loadStorage(); err != nil {
		return err
	}
	if err := s.loadIDGenerator(); err != nil {
		return err
	}
	s.loadEndpoint()
	s.loadRepos()
	s.loadServices()
	s.loadDomains()

	ctx, stop := signal.NotifyContext(s.ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rateLimiter := middleware.NewRateLimiter(
		s.configs.ApiServer.RequestsPerSecond, s.configs.ApiServer.Burst,
	).TrustForwardedFor(s.configs.ApiServer.BehindProxy)
	go rateLimiter.Cleanup(ctx)

	if err := s.loadRouter(rateLimiter); err != nil {
		return err
	}

	handler := cors.New(cors.Options{
		AllowedOrigins:   s.configs.ApiServer.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(s.router.Handler())

	s.server = &http.Server{
		Addr:              s.configs.ApiServer.Address(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Errorf("Cannot shutdown server: %v", err)
		}
	}()

	s.logger.Infof("Starting server on %s", s.server.Addr)
	var err error
	if s.configs.ApiServer.Cert != "" && s.configs.ApiServer.Key != "" {
		err = s.server.ListenAndServeTLS(s.configs.ApiServer.Cert, s.configs.ApiServer.Key)
	} else {
		err = s.server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	s.logger.Infof("Server stopped")
	return nil
}

func (s *srv) loadRouter(rateLimiter *middleware.RateLimiter) error {
	if err := common.RegisterMetrics(prometheus.DefaultRegisterer); err != nil {
		return err
	}

	tokenEngine := authenticator.NewTokenEngine[model.AccessToken](
		s.configs.Auth.TokenSecret, s.configs.Auth.AccessToken.Expiration)

	s.router = router.New(s.db, *s.configs, s.logger)
	s.router.Before(middleware.WithStartTime())
	s.router.Before(middleware.NewAuthVerifier(tokenEngine).Middleware())
	s.router.AddCloser(middleware.Logger())
	s.router.AddCloser(middleware.Prometheus())
	s.router.Handle("/metrics", promhttp.Handler())

	// These following APIs are public, the requester is optional.
	publicRouter := s.router.Branch()
	{
		router.GET(publicRouter, "/getGame", s.gameDomain.Get)
		router.GET(publicRouter, "/getListGame", s.gameDomain.GetList)
		router.GET(publicRouter, "/getQuest", s.questDomain.Get)
		router.GET(publicRouter, "/getListQuest", s.questDomain.GetList)
		router.GET(publicRouter, "/getSubmission", s.submissionDomain.Get)
		router.GET(publicRouter, "/getListSubmission", s.submissionDomain.GetList)
		router.GET(publicRouter, "/getAllBadges", s.badgeDomain.GetAll)
		router.GET(publicRouter, "/getUser", s.userDomain.GetUser)
		router.GET(publicRouter, "/getUserBadges", s.badgeDomain.GetUserBadges)
		router.GET(publicRouter, "/getLeaderboard", s.userDomain.GetLeaderboard)
		router.GET(publicRouter, "/getShoutBoard", s.shoutBoardDomain.GetShoutBoard)
	}

	// These following APIs need authentication.
	authRouter := s.router.Branch()
	authRouter.Before(middleware.Authenticate())
	authRouter.Before(rateLimiter.Middleware())
	{
		router.GET(authRouter, "/getMe", s.userDomain.GetMe)
		router.GET(authRouter, "/getQuestEligibility", s.questDomain.GetEligibility)
		router.POST(authRouter, "/submitQuest", s.submissionDomain.Submit)
		router.POST(authRouter, "/deleteSubmission", s.submissionDomain.Delete)
		router.POST(authRouter, "/shout", s.shoutBoardDomain.Shout)
		router.POST(authRouter, "/uploadEvidence", s.fileDomain.UploadEvidence)
	}

	// These following APIs are only for global admins.
	adminRouter := authRouter.Branch()
	adminRouter.Before(middleware.NewOnlyAdmin(s.userRepo).Middleware())
	{
		router.POST(adminRouter, "/createGame", s.gameDomain.Create)
		router.POST(adminRouter, "/updateGame", s.gameDomain.Update)
		router.POST(adminRouter, "/deleteGame", s.gameDomain.Delete)
		router.POST(adminRouter, "/createQuest", s.questDomain.Create)
		router.POST(adminRouter, "/updateQuest", s.questDomain.Update)
		router.POST(adminRouter, "/deleteQuest", s.questDomain.Delete)
		router.POST(adminRouter, "/createBadge", s.badgeDomain.Create)
		router.POST(adminRouter, "/updateBadge", s.badgeDomain.Update)
		router.POST(adminRouter, "/deleteBadge", s.badgeDomain.Delete)
	}

	return nil
}
