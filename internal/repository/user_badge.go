package repository

import (
	"context"

	"github.com/questbycycle/backend/internal/entity"
	"github.com/questbycycle/backend/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type UserBadgeRepository interface {
	// Create returns true if the badge was newly granted.
	Create(ctx context.Context, data *entity.UserBadge) (bool, error)
	Exists(ctx context.Context, userID, badgeID string) (bool, error)
	GetByUserID(ctx context.Context, userID string) ([]entity.UserBadge, error)
	Delete(ctx context.Context, userID, badgeID string) error
	DeleteByBadgeID(ctx context.Context, badgeID string) error
}

type userBadgeRepository struct{}

func NewUserBadgeRepository() *userBadgeRepository {
	return &userBadgeRepository{}
}

func (r *userBadgeRepository) Create(ctx context.Context, data *entity.UserBadge) (bool, error) {
	tx := xcontext.DB(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(data)
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected > 0, nil
}

func (r *userBadgeRepository) Exists(ctx context.Context, userID, badgeID string) (bool, error) {
	var count int64
	err := xcontext.DB(ctx).
		Model(&entity.UserBadge{}).
		Where("user_id=? AND badge_id=?", userID, badgeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *userBadgeRepository) GetByUserID(ctx context.Context, userID string) ([]entity.UserBadge, error) {
	var result []entity.UserBadge
	err := xcontext.DB(ctx).
		Where("user_id=?", userID).
		Order("created_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *userBadgeRepository) Delete(ctx context.Context, userID, badgeID string) error {
	return xcontext.DB(ctx).
		Delete(&entity.UserBadge{}, "user_id=? AND badge_id=?", userID, badgeID).Error
}

func (r *userBadgeRepository) DeleteByBadgeID(ctx context.Context, badgeID string) error {
	return xcontext.DB(ctx).Delete(&entity.UserBadge{}, "badge_id=?", badgeID).Error
}
