package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/questbycycle/backend/internal/common"
	"github.com/questbycycle/backend/internal/entity"
	"github.com/questbycycle/backend/internal/model"
	"github.com/questbycycle/backend/internal/repository"
	"github.com/questbycycle/backend/pkg/errorx"
	"github.com/questbycycle/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type GameDomain interface {
	Create(context.Context, *model.CreateGameRequest) (*model.CreateGameResponse, error)
	Update(context.Context, *model.UpdateGameRequest) (*model.UpdateGameResponse, error)
	Delete(context.Context, *model.DeleteGameRequest) (*model.DeleteGameResponse, error)
	Get(context.Context, *model.GetGameRequest) (*model.GetGameResponse, error)
	GetList(context.Context, *model.GetListGameRequest) (*model.GetListGameResponse, error)
}

type gameDomain struct {
	gameRepo     repository.GameRepository
	roleVerifier *common.GlobalRoleVerifier
}

func NewGameDomain(gameRepo repository.GameRepository, userRepo repository.UserRepository) *gameDomain {
	return &gameDomain{
		gameRepo:     gameRepo,
		roleVerifier: common.NewGlobalRoleVerifier(userRepo),
	}
}

func (d *gameDomain) Create(
	ctx context.Context, req *model.CreateGameRequest,
) (*model.CreateGameResponse, error) {
	if err := d.roleVerifier.Verify(ctx, entity.GlobalAdminRoles...); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied to create game: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty title")
	}

	startDate, endDate, err := parseGameWindow(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	game := &entity.Game{
		Base:                 entity.Base{ID: uuid.NewString()},
		Title:                title,
		Description:          req.Description,
		GameCode:             req.GameCode,
		StartDate:            startDate,
		EndDate:              endDate,
		CreatedBy:            xcontext.RequestUserID(ctx),
		TwitterToken:         req.TwitterToken,
		FacebookPageID:       req.FacebookPageID,
		FacebookAccessToken:  req.FacebookAccessToken,
		InstagramUserID:      req.InstagramUserID,
		InstagramAccessToken: req.InstagramAccessToken,
	}

	if err := d.gameRepo.Create(ctx, game); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create game: %v", err)
		return nil, errorx.Unknown
	}

	return &model.CreateGameResponse{ID: game.ID}, nil
}

// Update only changes the non-empty fields of the request.
func (d *gameDomain) Update(
	ctx context.Context, req *model.UpdateGameRequest,
) (*model.UpdateGameResponse, error) {
	if err := d.roleVerifier.Verify(ctx, entity.GlobalAdminRoles...); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied to update game: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	game, err := d.gameRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found game")
		}

		xcontext.Logger(ctx).Errorf("Cannot get game: %v", err)
		return nil, errorx.Unknown
	}

	startDate, endDate := game.StartDate, game.EndDate
	if req.StartDate != "" {
		if startDate, err = time.Parse(time.RFC3339, req.StartDate); err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid start date")
		}
	}

	if req.EndDate != "" {
		if endDate, err = time.Parse(time.RFC3339, req.EndDate); err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid end date")
		}
	}

	if endDate.Before(startDate) {
		return nil, errorx.New(errorx.BadRequest, "End date must not be before start date")
	}

	err = d.gameRepo.UpdateByID(ctx, game.ID, &entity.Game{
		Title:                strings.TrimSpace(req.Title),
		Description:          req.Description,
		GameCode:             req.GameCode,
		StartDate:            startDate.UTC(),
		EndDate:              endDate.UTC(),
		TwitterToken:         req.TwitterToken,
		FacebookPageID:       req.FacebookPageID,
		FacebookAccessToken:  req.FacebookAccessToken,
		InstagramUserID:      req.InstagramUserID,
		InstagramAccessToken: req.InstagramAccessToken,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update game: %v", err)
		return nil, errorx.Unknown
	}

	return &model.UpdateGameResponse{}, nil
}

// Delete hides the game. Its quests can no longer be submitted, while the
// ledger, badges and scores earned in it are kept.
func (d *gameDomain) Delete(
	ctx context.Context, req *model.DeleteGameRequest,
) (*model.DeleteGameResponse, error) {
	if err := d.roleVerifier.Verify(ctx, entity.GlobalAdminRoles...); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied to delete game: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	if _, err := d.gameRepo.GetByID(ctx, req.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found game")
		}

		xcontext.Logger(ctx).Errorf("Cannot get game: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.gameRepo.Delete(ctx, req.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete game: %v", err)
		return nil, errorx.Unknown
	}

	return &model.DeleteGameResponse{}, nil
}

func (d *gameDomain) Get(ctx context.Context, req *model.GetGameRequest) (*model.GetGameResponse, error) {
	game, err := d.gameRepo.GetByID(ctx, req.GameID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found game")
		}

		xcontext.Logger(ctx).Errorf("Cannot get game: %v", err)
		return nil, errorx.Unknown
	}

	resp := model.GetGameResponse(convertGame(game, time.Now()))
	return &resp, nil
}

func (d *gameDomain) GetList(
	ctx context.Context, req *model.GetListGameRequest,
) (*model.GetListGameResponse, error) {
	offset, limit, err := common.NormalizePagination(ctx, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	games, err := d.gameRepo.GetList(ctx, offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get list of games: %v", err)
		return nil, errorx.Unknown
	}

	now := time.Now()
	result := []model.Game{}
	for i := range games {
		result = append(result, convertGame(&games[i], now))
	}

	return &model.GetListGameResponse{Games: result}, nil
}

func parseGameWindow(start, end string) (time.Time, time.Time, error) {
	startDate, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return time.Time{}, time.Time{}, errorx.New(errorx.BadRequest, "Invalid start date")
	}

	endDate, err := time.Parse(time.RFC3339, end)
	if err != nil {
		return time.Time{}, time.Time{}, errorx.New(errorx.BadRequest, "Invalid end date")
	}

	if endDate.Before(startDate) {
		return time.Time{}, time.Time{}, errorx.New(errorx.BadRequest, "End date must not be before start date")
	}

	return startDate.UTC(), endDate.UTC(), nil
}
