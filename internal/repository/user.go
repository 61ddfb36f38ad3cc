package repository

import (
	"context"

	"github.com/questbycycle/backend/internal/entity"
	"github.com/questbycycle/backend/pkg/xcontext"
)

type UserRepository interface {
	Create(ctx context.Context, data *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]entity.User, error)
	GetByName(ctx context.Context, name string) (*entity.User, error)
	GetTopByScore(ctx context.Context, offset, limit int) ([]entity.User, error)
	CountByScoreGreaterThan(ctx context.Context, score int64) (int64, error)
	UpdateScore(ctx context.Context, id string, score int64) error
	LockByID(ctx context.Context, id string) error
}

type userRepository struct{}

func NewUserRepository() *userRepository {
	return &userRepository{}
}

func (r *userRepository) Create(ctx context.Context, data *entity.User) error {
	if data.Role == "" {
		data.Role = entity.RoleUser
	}

	return xcontext.DB(ctx).Create(data).Error
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var record entity.User
	if err := xcontext.DB(ctx).Take(&record, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []string) ([]entity.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var result []entity.User
	if err := xcontext.DB(ctx).Find(&result, "id IN (?)", ids).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *userRepository) GetByName(ctx context.Context, name string) (*entity.User, error) {
	var record entity.User
	if err := xcontext.DB(ctx).Take(&record, "name=?", name).Error; err != nil {
		return nil, err
	}

	return &record, nil
}

// GetTopByScore orders users by score. A negative limit returns every user.
func (r *userRepository) GetTopByScore(ctx context.Context, offset, limit int) ([]entity.User, error) {
	var result []entity.User
	err := xcontext.DB(ctx).
		Order("score DESC").
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *userRepository) CountByScoreGreaterThan(ctx context.Context, score int64) (int64, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.User{}).Where("score>?", score).Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// UpdateScore overwrites the stored score.
func (r *userRepository) UpdateScore(ctx context.Context, id string, score int64) error {
	return xcontext.DB(ctx).
		Model(&entity.User{}).
		Where("id=?", id).
		Update("score", score).Error
}

// LockByID takes a row lock on the user for the lifetime of the current
// transaction. Submissions of the same user are serialized by this lock.
func (r *userRepository) LockByID(ctx context.Context, id string) error {
	var record entity.User
	return withRowLock(xcontext.DB(ctx)).Select("id").Take(&record, "id=?", id).Error
}
