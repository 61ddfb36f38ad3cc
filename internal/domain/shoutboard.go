package domain

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"github.com/questbycycle/backend/internal/common"
	"github.com/questbycycle/backend/internal/domain/notification"
	"github.com/questbycycle/backend/internal/model"
	"github.com/questbycycle/backend/internal/repository"
	"github.com/questbycycle/backend/pkg/errorx"
	"github.com/questbycycle/backend/pkg/xcontext"
	"gorm.io/gorm"
)

const maxShoutLength = 500

type ShoutBoardDomain interface {
	Shout(context.Context, *model.ShoutRequest) (*model.ShoutResponse, error)
	GetShoutBoard(context.Context, *model.GetShoutBoardRequest) (*model.GetShoutBoardResponse, error)
}

type shoutBoardDomain struct {
	gameRepo       repository.GameRepository
	shoutBoardRepo repository.ShoutBoardRepository
	notifier       notification.Notifier
}

func NewShoutBoardDomain(
	gameRepo repository.GameRepository,
	shoutBoardRepo repository.ShoutBoardRepository,
	notifier notification.Notifier,
) *shoutBoardDomain {
	return &shoutBoardDomain{
		gameRepo:       gameRepo,
		shoutBoardRepo: shoutBoardRepo,
		notifier:       notifier,
	}
}

func (d *shoutBoardDomain) Shout(ctx context.Context, req *model.ShoutRequest) (*model.ShoutResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty message")
	}

	if utf8.RuneCountInString(message) > maxShoutLength {
		return nil, errorx.New(errorx.BadRequest, "Message must not exceed %d characters", maxShoutLength)
	}

	if err := d.checkGame(ctx, req.GameID); err != nil {
		return nil, err
	}

	msg, err := d.notifier.Shout(ctx, req.GameID, xcontext.RequestUserID(ctx), message)
	if err != nil {
		return nil, err
	}

	resp := model.ShoutResponse(convertShoutBoardMessage(msg))
	return &resp, nil
}

// GetShoutBoard returns the messages of the game from the newest one. Older
// pages are requested with the id of the last received message.
func (d *shoutBoardDomain) GetShoutBoard(
	ctx context.Context, req *model.GetShoutBoardRequest,
) (*model.GetShoutBoardResponse, error) {
	_, limit, err := common.NormalizePagination(ctx, 0, req.Limit)
	if err != nil {
		return nil, err
	}

	var beforeID int64
	if req.BeforeID != "" {
		id, err := snowflake.ParseString(req.BeforeID)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid before id")
		}
		beforeID = id.Int64()
	}

	if err := d.checkGame(ctx, req.GameID); err != nil {
		return nil, err
	}

	messages, err := d.shoutBoardRepo.GetByGameID(ctx, req.GameID, beforeID, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get shout board: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.ShoutBoardMessage{}
	for i := range messages {
		result = append(result, convertShoutBoardMessage(&messages[i]))
	}

	return &model.GetShoutBoardResponse{Messages: result}, nil
}

func (d *shoutBoardDomain) checkGame(ctx context.Context, gameID string) error {
	if _, err := d.gameRepo.GetByID(ctx, gameID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.NotFound, "Not found game")
		}

		xcontext.Logger(ctx).Errorf("Cannot get game: %v", err)
		return errorx.Unknown
	}

	return nil
}
