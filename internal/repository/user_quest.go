package repository

import (
	"context"

	"github.com/questbycycle/backend/internal/entity"
	"github.com/questbycycle/backend/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type UserQuestRepository interface {
	Get(ctx context.Context, userID, questID string) (*entity.UserQuest, error)
	GetByUserID(ctx context.Context, userID string) ([]entity.UserQuest, error)
	GetByQuestIDs(ctx context.Context, userID string, questIDs []string) ([]entity.UserQuest, error)
	GetPointsByUserID(ctx context.Context, userID string) ([]int64, error)
	Upsert(ctx context.Context, data *entity.UserQuest) error
}

type userQuestRepository struct{}

func NewUserQuestRepository() *userQuestRepository {
	return &userQuestRepository{}
}

func (r *userQuestRepository) Get(ctx context.Context, userID, questID string) (*entity.UserQuest, error) {
	var result entity.UserQuest
	err := xcontext.DB(ctx).
		Take(&result, "user_id=? AND quest_id=?", userID, questID).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *userQuestRepository) GetByUserID(ctx context.Context, userID string) ([]entity.UserQuest, error) {
	var result []entity.UserQuest
	if err := xcontext.DB(ctx).Find(&result, "user_id=?", userID).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *userQuestRepository) GetByQuestIDs(
	ctx context.Context, userID string, questIDs []string,
) ([]entity.UserQuest, error) {
	if len(questIDs) == 0 {
		return nil, nil
	}

	var result []entity.UserQuest
	err := xcontext.DB(ctx).
		Find(&result, "user_id=? AND quest_id IN (?)", userID, questIDs).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// GetPointsByUserID returns the points of every ledger row of the user. The
// values are summed by the caller so the total can saturate instead of
// overflowing inside the database.
func (r *userQuestRepository) GetPointsByUserID(ctx context.Context, userID string) ([]int64, error) {
	var result []int64
	err := xcontext.DB(ctx).
		Model(&entity.UserQuest{}).
		Where("user_id=?", userID).
		Pluck("points_awarded", &result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *userQuestRepository) Upsert(ctx context.Context, data *entity.UserQuest) error {
	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"},
				{Name: "quest_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"completions",
				"points_awarded",
				"completed_at",
			}),
		}).Create(data).Error
}
