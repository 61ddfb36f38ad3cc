package repository

import (
	"context"

	"github.com/questbycycle/backend/internal/entity"
	"github.com/questbycycle/backend/pkg/xcontext"
)

type GameRepository interface {
	Create(ctx context.Context, data *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	GetList(ctx context.Context, offset, limit int) ([]entity.Game, error)
	UpdateByID(ctx context.Context, id string, data *entity.Game) error
	Delete(ctx context.Context, id string) error
}

type gameRepository struct{}

func NewGameRepository() *gameRepository {
	return &gameRepository{}
}

func (r *gameRepository) Create(ctx context.Context, data *entity.Game) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *gameRepository) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	var result entity.Game
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *gameRepository) GetList(ctx context.Context, offset, limit int) ([]entity.Game, error) {
	var result []entity.Game
	err := xcontext.DB(ctx).
		Order("start_date DESC").
		Offset(offset).
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// UpdateByID only writes the non-zero fields of data.
func (r *gameRepository) UpdateByID(ctx context.Context, id string, data *entity.Game) error {
	return xcontext.DB(ctx).Model(&entity.Game{}).Where("id=?", id).Updates(data).Error
}

func (r *gameRepository) Delete(ctx context.Context, id string) error {
	return xcontext.DB(ctx).Delete(&entity.Game{}, "id=?", id).Error
}
