package badge

import (
	"context"
	"errors"

	"github.com/questbycycle/backend/internal/domain/notification"
	"github.com/questbycycle/backend/internal/entity"
	"github.com/questbycycle/backend/internal/repository"
	"github.com/questbycycle/backend/pkg/errorx"
	"github.com/questbycycle/backend/pkg/xcontext"
	"golang.org/x/exp/maps"
	"gorm.io/gorm"
)

// Manager is the only writer of the badge set of users. Badges are granted by
// CheckAndAward and removed by CheckAndRevoke, both derive their decision from
// the completion ledger.
type Manager struct {
	questRepo     repository.QuestRepository
	badgeRepo     repository.BadgeRepository
	userBadgeRepo repository.UserBadgeRepository
	userQuestRepo repository.UserQuestRepository
	notifier      notification.Notifier
}

func NewManager(
	questRepo repository.QuestRepository,
	badgeRepo repository.BadgeRepository,
	userBadgeRepo repository.UserBadgeRepository,
	userQuestRepo repository.UserQuestRepository,
	notifier notification.Notifier,
) *Manager {
	return &Manager{
		questRepo:     questRepo,
		badgeRepo:     badgeRepo,
		userBadgeRepo: userBadgeRepo,
		userQuestRepo: userQuestRepo,
		notifier:      notifier,
	}
}

// isCompleted reports whether the ledger reached the completion limit of the
// quest. A quest which was never submitted is not completed, even with a zero
// limit.
func isCompleted(completions, limit int) bool {
	return completions > 0 && completions >= limit
}

// CheckAndAward grants the badge of the quest and the badges of its category
// when the user qualifies. Running it again without new submissions is a
// no-op.
func (m *Manager) CheckAndAward(ctx context.Context, userID, questID, gameID string) error {
	quest, err := m.questRepo.GetByID(ctx, questID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.NotFound, "Not found quest")
		}

		xcontext.Logger(ctx).Errorf("Cannot get quest: %v", err)
		return errorx.Unknown
	}

	if gameID == "" {
		gameID = quest.GameID
	}

	completions := 0
	userQuest, err := m.userQuestRepo.Get(ctx, userID, questID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get user quest: %v", err)
			return errorx.Unknown
		}
	} else {
		completions = userQuest.Completions
	}

	if quest.BadgeID.Valid && isCompleted(completions, quest.CompletionLimit) {
		badge, err := m.badgeRepo.GetByID(ctx, quest.BadgeID.String)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				xcontext.Logger(ctx).Errorf("Cannot get badge: %v", err)
				return errorx.Unknown
			}

			xcontext.Logger(ctx).Warnf("Quest %s links to missing badge %s", quest.ID, quest.BadgeID.String)
		} else if err := m.give(ctx, userID, gameID, badge); err != nil {
			return err
		}
	}

	if quest.Category == "" {
		return nil
	}

	completed, err := m.isCategoryCompleted(ctx, userID, gameID, quest.Category)
	if err != nil {
		return err
	}

	if !completed {
		return nil
	}

	badges, err := m.badgeRepo.GetByCategory(ctx, quest.Category)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get badges of category: %v", err)
		return errorx.Unknown
	}

	for i := range badges {
		if err := m.give(ctx, userID, gameID, &badges[i]); err != nil {
			return err
		}
	}

	return nil
}

// CheckAndRevoke removes every badge of the user which the ledger no longer
// justifies.
func (m *Manager) CheckAndRevoke(ctx context.Context, userID string) error {
	userBadges, err := m.userBadgeRepo.GetByUserID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get badges of user: %v", err)
		return errorx.Unknown
	}

	for _, ub := range userBadges {
		keep, err := m.stillQualifies(ctx, userID, ub.BadgeID)
		if err != nil {
			return err
		}

		if keep {
			continue
		}

		if err := m.userBadgeRepo.Delete(ctx, userID, ub.BadgeID); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot revoke badge: %v", err)
			return errorx.Unknown
		}
	}

	return nil
}

func (m *Manager) stillQualifies(ctx context.Context, userID, badgeID string) (bool, error) {
	linkedQuests, err := m.questRepo.GetByBadgeID(ctx, badgeID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get quests of badge: %v", err)
		return false, errorx.Unknown
	}

	if len(linkedQuests) > 0 {
		return m.allCompleted(ctx, userID, linkedQuests)
	}

	badge, err := m.badgeRepo.GetByID(ctx, badgeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get badge: %v", err)
		return false, errorx.Unknown
	}

	if badge.Category == "" {
		// Nothing can justify this badge anymore.
		return false, nil
	}

	categoryQuests, err := m.questRepo.GetByCategory(ctx, badge.Category)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get quests of category: %v", err)
		return false, errorx.Unknown
	}

	for _, quests := range groupByGame(categoryQuests) {
		ok, err := m.allCompleted(ctx, userID, quests)
		if err != nil {
			return false, err
		}

		if ok {
			return true, nil
		}
	}

	return false, nil
}

func (m *Manager) isCategoryCompleted(
	ctx context.Context, userID, gameID, category string,
) (bool, error) {
	categoryQuests, err := m.questRepo.GetByCategory(ctx, category)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get quests of category: %v", err)
		return false, errorx.Unknown
	}

	quests := groupByGame(categoryQuests)[gameID]
	if len(quests) == 0 {
		return false, nil
	}

	return m.allCompleted(ctx, userID, quests)
}

// allCompleted compares the set of quests with the subset the user completed
// to its limit.
func (m *Manager) allCompleted(ctx context.Context, userID string, quests []entity.Quest) (bool, error) {
	required := map[string]int{}
	for _, q := range quests {
		required[q.ID] = q.CompletionLimit
	}

	userQuests, err := m.userQuestRepo.GetByQuestIDs(ctx, userID, maps.Keys(required))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get user quests: %v", err)
		return false, errorx.Unknown
	}

	completed := map[string]struct{}{}
	for _, uq := range userQuests {
		if isCompleted(uq.Completions, required[uq.QuestID]) {
			completed[uq.QuestID] = struct{}{}
		}
	}

	return len(completed) == len(required), nil
}

func (m *Manager) give(ctx context.Context, userID, gameID string, badge *entity.Badge) error {
	created, err := m.userBadgeRepo.Create(ctx, &entity.UserBadge{
		UserID:  userID,
		BadgeID: badge.ID,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot give badge to user: %v", err)
		return errorx.Unknown
	}

	if !created {
		return nil
	}

	if err := m.notifier.BadgeAwarded(ctx, gameID, userID, badge); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot notify badge %s of user %s: %v", badge.ID, userID, err)
	}

	return nil
}

// groupByGame skips disabled quests, they cannot be completed anymore.
func groupByGame(quests []entity.Quest) map[string][]entity.Quest {
	result := map[string][]entity.Quest{}
	for _, q := range quests {
		if !q.Enabled() {
			continue
		}

		result[q.GameID] = append(result[q.GameID], q)
	}

	return result
}
