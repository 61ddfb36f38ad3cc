package repository

import (
	"context"

	"github.com/questbycycle/backend/internal/entity"
	"github.com/questbycycle/backend/pkg/xcontext"
)

type BadgeRepository interface {
	Create(ctx context.Context, badge *entity.Badge) error
	GetByID(ctx context.Context, id string) (*entity.Badge, error)
	GetByName(ctx context.Context, name string) (*entity.Badge, error)
	GetByIDs(ctx context.Context, ids []string) ([]entity.Badge, error)
	GetByCategory(ctx context.Context, category string) ([]entity.Badge, error)
	GetAll(ctx context.Context) ([]entity.Badge, error)
	UpdateByID(ctx context.Context, id string, updates map[string]any) error
	Delete(ctx context.Context, id string) error
}

type badgeRepository struct{}

func NewBadgeRepository() *badgeRepository {
	return &badgeRepository{}
}

func (r *badgeRepository) Create(ctx context.Context, badge *entity.Badge) error {
	return xcontext.DB(ctx).Create(badge).Error
}

func (r *badgeRepository) GetByName(ctx context.Context, name string) (*entity.Badge, error) {
	result := &entity.Badge{}
	if err := xcontext.DB(ctx).Take(result, "name=?", name).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *badgeRepository) GetByID(ctx context.Context, id string) (*entity.Badge, error) {
	result := &entity.Badge{}
	if err := xcontext.DB(ctx).Take(result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *badgeRepository) GetByIDs(ctx context.Context, ids []string) ([]entity.Badge, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	result := []entity.Badge{}
	if err := xcontext.DB(ctx).Find(&result, "id IN (?)", ids).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *badgeRepository) GetByCategory(ctx context.Context, category string) ([]entity.Badge, error) {
	result := []entity.Badge{}
	if err := xcontext.DB(ctx).Find(&result, "category=?", category).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *badgeRepository) GetAll(ctx context.Context) ([]entity.Badge, error) {
	result := []entity.Badge{}
	if err := xcontext.DB(ctx).Order("name ASC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *badgeRepository) UpdateByID(ctx context.Context, id string, updates map[string]any) error {
	return xcontext.DB(ctx).Model(&entity.Badge{}).Where("id=?", id).Updates(updates).Error
}

// Delete removes the row permanently so that its name can be reused.
func (r *badgeRepository) Delete(ctx context.Context, id string) error {
	return xcontext.DB(ctx).Unscoped().Delete(&entity.Badge{}, "id=?", id).Error
}
