package repository

import (
	"context"
	"time"

	"github.com/questbycycle/backend/internal/entity"
	"github.com/questbycycle/backend/pkg/xcontext"
)

type QuestSubmissionFilter struct {
	UserID  string
	QuestID string
	GameID  string
}

type QuestSubmissionRepository interface {
	Create(ctx context.Context, data *entity.QuestSubmission) error
	GetByID(ctx context.Context, id string) (*entity.QuestSubmission, error)
	GetList(ctx context.Context, filter QuestSubmissionFilter, offset, limit int) ([]entity.QuestSubmission, error)
	CountSince(ctx context.Context, userID, questID string, since time.Time) (int64, error)
	GetEarliestSince(ctx context.Context, userID, questID string, since time.Time) (*entity.QuestSubmission, error)
	UpdateSocialURLs(ctx context.Context, id, twitterURL, facebookURL, instagramURL string) error
	Delete(ctx context.Context, id string) error
}

type questSubmissionRepository struct{}

func NewQuestSubmissionRepository() *questSubmissionRepository {
	return &questSubmissionRepository{}
}

func (r *questSubmissionRepository) Create(ctx context.Context, data *entity.QuestSubmission) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *questSubmissionRepository) GetByID(ctx context.Context, id string) (*entity.QuestSubmission, error) {
	var result entity.QuestSubmission
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *questSubmissionRepository) GetList(
	ctx context.Context, filter QuestSubmissionFilter, offset, limit int,
) ([]entity.QuestSubmission, error) {
	var result []entity.QuestSubmission
	tx := xcontext.DB(ctx).
		Order("quest_submissions.created_at DESC").
		Offset(offset).
		Limit(limit)

	if filter.GameID != "" {
		tx = tx.Joins("join quests on quests.id = quest_submissions.quest_id").
			Where("quests.game_id=?", filter.GameID)
	}

	if filter.UserID != "" {
		tx = tx.Where("quest_submissions.user_id=?", filter.UserID)
	}

	if filter.QuestID != "" {
		tx = tx.Where("quest_submissions.quest_id=?", filter.QuestID)
	}

	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

// CountSince counts the submissions of the user for the quest created strictly
// after since. A submission made exactly one window ago has left the window.
func (r *questSubmissionRepository) CountSince(
	ctx context.Context, userID, questID string, since time.Time,
) (int64, error) {
	var count int64
	err := xcontext.DB(ctx).
		Model(&entity.QuestSubmission{}).
		Where("user_id=? AND quest_id=? AND created_at>?", userID, questID, since).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *questSubmissionRepository) GetEarliestSince(
	ctx context.Context, userID, questID string, since time.Time,
) (*entity.QuestSubmission, error) {
	var result entity.QuestSubmission
	err := xcontext.DB(ctx).
		Where("user_id=? AND quest_id=? AND created_at>?", userID, questID, since).
		Order("created_at ASC").
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *questSubmissionRepository) UpdateSocialURLs(
	ctx context.Context, id, twitterURL, facebookURL, instagramURL string,
) error {
	return xcontext.DB(ctx).
		Model(&entity.QuestSubmission{}).
		Where("id=?", id).
		Updates(map[string]any{
			"twitter_url":   twitterURL,
			"facebook_url":  facebookURL,
			"instagram_url": instagramURL,
		}).Error
}

// Delete removes the row permanently so that it no longer counts against the
// eligibility window.
func (r *questSubmissionRepository) Delete(ctx context.Context, id string) error {
	return xcontext.DB(ctx).Unscoped().Delete(&entity.QuestSubmission{}, "id=?", id).Error
}
