package testutil

import (
	"context"
	"time"

	"github.com/questbycycle/backend/internal/entity"
	"github.com/questbycycle/backend/internal/repository"
)

var (
	User1 = &entity.User{
		Base: entity.Base{ID: "user1"},
		Name: "user1",
		Role: entity.RoleUser,
	}

	User2 = &entity.User{
		Base: entity.Base{ID: "user2"},
		Name: "user2",
		Role: entity.RoleUser,
	}

	Admin = &entity.User{
		Base: entity.Base{ID: "admin"},
		Name: "admin",
		Role: entity.RoleAdmin,
	}

	Users = []*entity.User{User1, User2, Admin}

	// ActiveGame runs from one month ago to one month later.
	ActiveGame = &entity.Game{
		Base:        entity.Base{ID: "game1"},
		Title:       "Bike to work",
		Description: "Leave the car at home",
		CreatedBy:   Admin.ID,
	}

	EndedGame = &entity.Game{
		Base:      entity.Base{ID: "game_ended"},
		Title:     "Winter challenge",
		CreatedBy: Admin.ID,
	}

	Games = []*entity.Game{ActiveGame, EndedGame}
)

// CreateFixtureDb inserts the sample users and games into the database of ctx.
func CreateFixtureDb(ctx context.Context) {
	now := time.Now().UTC()
	ActiveGame.StartDate = now.AddDate(0, -1, 0)
	ActiveGame.EndDate = now.AddDate(0, 1, 0)
	EndedGame.StartDate = now.AddDate(0, -3, 0)
	EndedGame.EndDate = now.AddDate(0, -2, 0)

	InsertUsers(ctx)
	InsertGames(ctx)
}

func InsertUsers(ctx context.Context) {
	userRepo := repository.NewUserRepository()
	for _, u := range Users {
		user := *u
		if err := userRepo.Create(ctx, &user); err != nil {
			panic(err)
		}
	}
}

func InsertGames(ctx context.Context) {
	gameRepo := repository.NewGameRepository()
	for _, g := range Games {
		game := *g
		if err := gameRepo.Create(ctx, &game); err != nil {
			panic(err)
		}
	}
}
