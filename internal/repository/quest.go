package repository

import (
	"context"
	"database/sql"

	"github.com/questbycycle/backend/internal/entity"
	"github.com/questbycycle/backend/pkg/xcontext"
)

type QuestFilter struct {
	GameID          string
	Category        string
	IncludeDisabled bool
}

type QuestRepository interface {
	Create(ctx context.Context, data *entity.Quest) error
	GetByID(ctx context.Context, id string) (*entity.Quest, error)
	GetByIDs(ctx context.Context, ids []string) ([]entity.Quest, error)
	GetList(ctx context.Context, filter QuestFilter, offset, limit int) ([]entity.Quest, error)
	GetByBadgeID(ctx context.Context, badgeID string) ([]entity.Quest, error)
	GetByCategory(ctx context.Context, category string) ([]entity.Quest, error)
	UpdateByID(ctx context.Context, id string, updates map[string]any) error
	UnlinkBadge(ctx context.Context, badgeID string) error
	Delete(ctx context.Context, id string) error
}

type questRepository struct{}

func NewQuestRepository() *questRepository {
	return &questRepository{}
}

func (r *questRepository) Create(ctx context.Context, data *entity.Quest) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *questRepository) GetByID(ctx context.Context, id string) (*entity.Quest, error) {
	var result entity.Quest
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *questRepository) GetByIDs(ctx context.Context, ids []string) ([]entity.Quest, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var result []entity.Quest
	if err := xcontext.DB(ctx).Find(&result, "id IN (?)", ids).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *questRepository) GetList(
	ctx context.Context, filter QuestFilter, offset, limit int,
) ([]entity.Quest, error) {
	var result []entity.Quest
	tx := xcontext.DB(ctx).
		Order("created_at ASC").
		Offset(offset).
		Limit(limit)

	if filter.GameID != "" {
		tx = tx.Where("game_id=?", filter.GameID)
	}

	if filter.Category != "" {
		tx = tx.Where("category=?", filter.Category)
	}

	if !filter.IncludeDisabled {
		tx = tx.Where("disabled=?", false)
	}

	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

// GetByBadgeID includes deleted quests, completions of a deleted quest still
// justify its badge.
func (r *questRepository) GetByBadgeID(ctx context.Context, badgeID string) ([]entity.Quest, error) {
	var result []entity.Quest
	if err := xcontext.DB(ctx).Unscoped().Find(&result, "badge_id=?", badgeID).Error; err != nil {
		return nil, err
	}

	return result, nil
}

// GetByCategory returns the quests of every game tagged with the category.
func (r *questRepository) GetByCategory(ctx context.Context, category string) ([]entity.Quest, error) {
	var result []entity.Quest
	if err := xcontext.DB(ctx).Find(&result, "category=?", category).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *questRepository) UpdateByID(ctx context.Context, id string, updates map[string]any) error {
	return xcontext.DB(ctx).Model(&entity.Quest{}).Where("id=?", id).Updates(updates).Error
}

// UnlinkBadge removes the badge from every quest, deleted ones included.
func (r *questRepository) UnlinkBadge(ctx context.Context, badgeID string) error {
	return xcontext.DB(ctx).Unscoped().
		Model(&entity.Quest{}).
		Where("badge_id=?", badgeID).
		Update("badge_id", sql.NullString{}).Error
}

func (r *questRepository) Delete(ctx context.Context, id string) error {
	return xcontext.DB(ctx).Delete(&entity.Quest{}, "id=?", id).Error
}
