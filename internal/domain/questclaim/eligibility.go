package questclaim

import (
	"context"
	"errors"
	"time"

	"github.com/questbycycle/backend/internal/entity"
	"github.com/questbycycle/backend/internal/repository"
	"github.com/questbycycle/backend/pkg/errorx"
	"github.com/questbycycle/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type Eligibility struct {
	Allowed bool

	// NextEligibleAt is only set when the quest is not allowed and there is at
	// least one submission inside the current window.
	NextEligibleAt *time.Time
}

// Checker decides whether a user can submit a quest right now.
type Checker interface {
	// Always return errorx in this method.
	CanComplete(ctx context.Context, userID, questID string) (*Eligibility, error)

	// Always return errorx in this method.
	Check(ctx context.Context, userID string, quest *entity.Quest) (*Eligibility, error)
}

type eligibilityChecker struct {
	questRepo      repository.QuestRepository
	submissionRepo repository.QuestSubmissionRepository
	now            func() time.Time
}

func NewEligibilityChecker(
	questRepo repository.QuestRepository,
	submissionRepo repository.QuestSubmissionRepository,
) *eligibilityChecker {
	return &eligibilityChecker{
		questRepo:      questRepo,
		submissionRepo: submissionRepo,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (c *eligibilityChecker) CanComplete(
	ctx context.Context, userID, questID string,
) (*Eligibility, error) {
	quest, err := c.questRepo.GetByID(ctx, questID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &Eligibility{Allowed: false}, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get quest: %v", err)
		return nil, errorx.Unknown
	}

	return c.Check(ctx, userID, quest)
}

// Check counts the submissions of the user inside the rolling window ending
// now. The window rolls from the oldest submission it contains, so the quest
// becomes available again one window after that submission.
func (c *eligibilityChecker) Check(
	ctx context.Context, userID string, quest *entity.Quest,
) (*Eligibility, error) {
	window, known := quest.Frequency.Window()
	if !known {
		xcontext.Logger(ctx).Warnf("Quest %s has unknown frequency %q, use one day window",
			quest.ID, quest.Frequency)
	}

	periodStart := c.now().Add(-window)
	count, err := c.submissionRepo.CountSince(ctx, userID, quest.ID, periodStart)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count submissions: %v", err)
		return nil, errorx.Unknown
	}

	if count < int64(quest.CompletionLimit) {
		return &Eligibility{Allowed: true}, nil
	}

	if count == 0 {
		// Zero completion limit, the quest is never available.
		return &Eligibility{Allowed: false}, nil
	}

	earliest, err := c.submissionRepo.GetEarliestSince(ctx, userID, quest.ID, periodStart)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get earliest submission: %v", err)
		return nil, errorx.Unknown
	}

	next := earliest.CreatedAt.Add(window)
	return &Eligibility{Allowed: false, NextEligibleAt: &next}, nil
}
