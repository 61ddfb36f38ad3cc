package badge

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/questbycycle/backend/internal/domain/notification"
	"github.com/questbycycle/backend/internal/entity"
	"github.com/questbycycle/backend/internal/repository"
	"github.com/questbycycle/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewManager(
		repository.NewQuestRepository(),
		repository.NewBadgeRepository(),
		repository.NewUserBadgeRepository(),
		repository.NewUserQuestRepository(),
		notification.NewNotifier(
			repository.NewShoutBoardRepository(), &testutil.MockPublisher{}, node),
	)
}

func setCompletions(t *testing.T, ctx context.Context, userID string, quest entity.Quest, completions int) {
	err := repository.NewUserQuestRepository().Upsert(ctx, &entity.UserQuest{
		UserID:        userID,
		QuestID:       quest.ID,
		Completions:   completions,
		PointsAwarded: int64(completions) * quest.Points,
		CompletedAt:   time.Now().UTC(),
	})
	require.NoError(t, err)
}

func userBadgeIDs(t *testing.T, ctx context.Context, userID string) []string {
	userBadges, err := repository.NewUserBadgeRepository().GetByUserID(ctx, userID)
	require.NoError(t, err)

	ids := []string{}
	for _, ub := range userBadges {
		ids = append(ids, ub.BadgeID)
	}
	return ids
}

func countShouts(t *testing.T, ctx context.Context) int {
	msgs, err := repository.NewShoutBoardRepository().GetByGameID(ctx, testutil.ActiveGame.ID, 0, 100)
	require.NoError(t, err)
	return len(msgs)
}

func Test_Manager_QuestBadge(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	m := newTestManager(t)

	badgeB, err := testutil.SampleBadge(ctx, &entity.Badge{Name: "B"})
	require.NoError(t, err)

	questA, err := testutil.SampleQuest(ctx, &entity.Quest{
		Points:          100,
		CompletionLimit: 3,
		Frequency:       entity.FrequencyWeekly,
		BadgeID:         sql.NullString{Valid: true, String: badgeB.ID},
	})
	require.NoError(t, err)

	// Not enough completions yet.
	setCompletions(t, ctx, testutil.User1.ID, questA, 2)
	require.NoError(t, m.CheckAndAward(ctx, testutil.User1.ID, questA.ID, testutil.ActiveGame.ID))
	require.Empty(t, userBadgeIDs(t, ctx, testutil.User1.ID))

	setCompletions(t, ctx, testutil.User1.ID, questA, 3)
	require.NoError(t, m.CheckAndAward(ctx, testutil.User1.ID, questA.ID, testutil.ActiveGame.ID))
	require.Equal(t, []string{badgeB.ID}, userBadgeIDs(t, ctx, testutil.User1.ID))
	require.Equal(t, 1, countShouts(t, ctx))

	// Running again must not duplicate the badge nor the notification.
	require.NoError(t, m.CheckAndAward(ctx, testutil.User1.ID, questA.ID, testutil.ActiveGame.ID))
	require.Equal(t, []string{badgeB.ID}, userBadgeIDs(t, ctx, testutil.User1.ID))
	require.Equal(t, 1, countShouts(t, ctx))

	// The ledger went back under the limit.
	setCompletions(t, ctx, testutil.User1.ID, questA, 0)
	require.NoError(t, m.CheckAndRevoke(ctx, testutil.User1.ID))
	require.Empty(t, userBadgeIDs(t, ctx, testutil.User1.ID))
}

func Test_Manager_CategoryBadge(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	m := newTestManager(t)

	categoryBadge, err := testutil.SampleBadge(ctx, &entity.Badge{
		Name:     "Errands master",
		Category: "Errands",
	})
	require.NoError(t, err)

	questA, err := testutil.SampleQuest(ctx, &entity.Quest{Category: "Errands", CompletionLimit: 2})
	require.NoError(t, err)
	questC, err := testutil.SampleQuest(ctx, &entity.Quest{Category: "Errands", CompletionLimit: 1})
	require.NoError(t, err)

	// A quest of the same category in another game doesn't matter.
	_, err = testutil.SampleQuest(ctx, &entity.Quest{
		GameID:   testutil.EndedGame.ID,
		Category: "Errands",
	})
	require.NoError(t, err)

	setCompletions(t, ctx, testutil.User1.ID, questA, 2)
	require.NoError(t, m.CheckAndAward(ctx, testutil.User1.ID, questA.ID, testutil.ActiveGame.ID))
	require.Empty(t, userBadgeIDs(t, ctx, testutil.User1.ID))

	setCompletions(t, ctx, testutil.User1.ID, questC, 1)
	require.NoError(t, m.CheckAndAward(ctx, testutil.User1.ID, questC.ID, testutil.ActiveGame.ID))
	require.Equal(t, []string{categoryBadge.ID}, userBadgeIDs(t, ctx, testutil.User1.ID))
	require.Equal(t, 1, countShouts(t, ctx))

	require.NoError(t, m.CheckAndAward(ctx, testutil.User1.ID, questA.ID, testutil.ActiveGame.ID))
	require.Equal(t, 1, countShouts(t, ctx))

	// Still fully completed, nothing to revoke.
	require.NoError(t, m.CheckAndRevoke(ctx, testutil.User1.ID))
	require.Equal(t, []string{categoryBadge.ID}, userBadgeIDs(t, ctx, testutil.User1.ID))

	setCompletions(t, ctx, testutil.User1.ID, questC, 0)
	require.NoError(t, m.CheckAndRevoke(ctx, testutil.User1.ID))
	require.Empty(t, userBadgeIDs(t, ctx, testutil.User1.ID))
}

func Test_Manager_DisabledQuestIsNotRequired(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	m := newTestManager(t)

	categoryBadge, err := testutil.SampleBadge(ctx, &entity.Badge{Category: "Repairs"})
	require.NoError(t, err)

	questA, err := testutil.SampleQuest(ctx, &entity.Quest{Category: "Repairs"})
	require.NoError(t, err)
	_, err = testutil.SampleQuest(ctx, &entity.Quest{Category: "Repairs", Disabled: true})
	require.NoError(t, err)

	setCompletions(t, ctx, testutil.User2.ID, questA, 1)
	require.NoError(t, m.CheckAndAward(ctx, testutil.User2.ID, questA.ID, ""))
	require.Equal(t, []string{categoryBadge.ID}, userBadgeIDs(t, ctx, testutil.User2.ID))
}

func Test_Manager_DeletedQuestStillJustifiesBadge(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	m := newTestManager(t)

	badgeB, err := testutil.SampleBadge(ctx, &entity.Badge{Name: "B"})
	require.NoError(t, err)

	quest, err := testutil.SampleQuest(ctx, &entity.Quest{
		BadgeID: sql.NullString{Valid: true, String: badgeB.ID},
	})
	require.NoError(t, err)

	setCompletions(t, ctx, testutil.User1.ID, quest, 1)
	require.NoError(t, m.CheckAndAward(ctx, testutil.User1.ID, quest.ID, testutil.ActiveGame.ID))
	require.Equal(t, []string{badgeB.ID}, userBadgeIDs(t, ctx, testutil.User1.ID))

	require.NoError(t, repository.NewQuestRepository().Delete(ctx, quest.ID))

	require.NoError(t, m.CheckAndRevoke(ctx, testutil.User1.ID))
	require.Equal(t, []string{badgeB.ID}, userBadgeIDs(t, ctx, testutil.User1.ID))
}
