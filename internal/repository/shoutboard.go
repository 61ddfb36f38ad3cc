package repository

import (
	"context"

	"github.com/questbycycle/backend/internal/entity"
	"github.com/questbycycle/backend/pkg/xcontext"
)

type ShoutBoardRepository interface {
	Create(ctx context.Context, data *entity.ShoutBoardMessage) error
	GetByGameID(ctx context.Context, gameID string, beforeID int64, limit int) ([]entity.ShoutBoardMessage, error)
}

type shoutBoardRepository struct{}

func NewShoutBoardRepository() *shoutBoardRepository {
	return &shoutBoardRepository{}
}

func (r *shoutBoardRepository) Create(ctx context.Context, data *entity.ShoutBoardMessage) error {
	return xcontext.DB(ctx).Create(data).Error
}

// GetByGameID returns the newest messages first. Snowflake ids are time
// ordered, a zero beforeID starts from the latest message.
func (r *shoutBoardRepository) GetByGameID(
	ctx context.Context, gameID string, beforeID int64, limit int,
) ([]entity.ShoutBoardMessage, error) {
	var result []entity.ShoutBoardMessage
	tx := xcontext.DB(ctx).
		Where("game_id=?", gameID).
		Order("id DESC").
		Limit(limit)

	if beforeID != 0 {
		tx = tx.Where("id<?", beforeID)
	}

	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}
