package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/questbycycle/backend/internal/entity"
	"github.com/questbycycle/backend/internal/model"
	"github.com/questbycycle/backend/internal/repository"
	"github.com/questbycycle/backend/pkg/authenticator"
	"github.com/urfave/cli/v2"
)

func (s *srv) createUser(cctx *cli.Context) error {
	if err := s.loadDatabase(); err != nil {
		return err
	}

	user := &entity.User{
		Base:  entity.Base{ID: uuid.NewString()},
		Name:  cctx.String("name"),
		Email: cctx.String("email"),
		Role:  entity.RoleUser,
	}
	if cctx.Bool("admin") {
		user.Role = entity.RoleAdmin
	}

	if err := repository.NewUserRepository().Create(s.ctx, user); err != nil {
		return fmt.Errorf("cannot create user: %w", err)
	}

	return s.printAccessToken(cctx, user)
}

func (s *srv) generateToken(cctx *cli.Context) error {
	if err := s.loadDatabase(); err != nil {
		return err
	}

	user, err := repository.NewUserRepository().GetByName(s.ctx, cctx.String("name"))
	if err != nil {
		return fmt.Errorf("cannot get user: %w", err)
	}

	return s.printAccessToken(cctx, user)
}

func (s *srv) printAccessToken(cctx *cli.Context, user *entity.User) error {
	if s.configs.Auth.TokenSecret == "" {
		return fmt.Errorf("token secret is not configured")
	}

	tokenEngine := authenticator.NewTokenEngine[model.AccessToken](
		s.configs.Auth.TokenSecret, s.configs.Auth.AccessToken.Expiration)

	token, err := tokenEngine.Generate(user.ID, model.AccessToken{ID: user.ID, Name: user.Name})
	if err != nil {
		return err
	}

	fmt.Fprintf(cctx.App.Writer, "user_id: %s\naccess_token: %s\n", user.ID, token)
	return nil
}
