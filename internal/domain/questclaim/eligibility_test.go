package questclaim

import (
	"testing"
	"time"

	"github.com/questbycycle/backend/internal/entity"
	"github.com/questbycycle/backend/internal/repository"
	"github.com/questbycycle/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func newTestChecker(now time.Time) *eligibilityChecker {
	checker := NewEligibilityChecker(
		repository.NewQuestRepository(),
		repository.NewQuestSubmissionRepository(),
	)
	checker.now = func() time.Time { return now }
	return checker
}

func Test_eligibilityChecker_QuestNotFound(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	checker := newTestChecker(time.Now().UTC())
	result, err := checker.CanComplete(ctx, testutil.User1.ID, "not-exist")
	require.NoError(t, err)
	require.False(t, result.Allowed)
	require.Nil(t, result.NextEligibleAt)
}

func Test_eligibilityChecker_DailyLimitOne(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	quest, err := testutil.SampleQuest(ctx, &entity.Quest{
		Frequency:       entity.FrequencyDaily,
		CompletionLimit: 1,
	})
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	checker := newTestChecker(now)

	result, err := checker.CanComplete(ctx, testutil.User1.ID, quest.ID)
	require.NoError(t, err)
	require.True(t, result.Allowed)
	require.Nil(t, result.NextEligibleAt)

	first := now.Add(-2 * time.Hour)
	_, err = testutil.SampleSubmission(ctx, testutil.User1.ID, quest.ID, first)
	require.NoError(t, err)

	result, err = checker.CanComplete(ctx, testutil.User1.ID, quest.ID)
	require.NoError(t, err)
	require.False(t, result.Allowed)
	require.NotNil(t, result.NextEligibleAt)
	require.True(t, first.Add(24*time.Hour).Equal(*result.NextEligibleAt))

	// Other users are not affected.
	result, err = checker.CanComplete(ctx, testutil.User2.ID, quest.ID)
	require.NoError(t, err)
	require.True(t, result.Allowed)
}

func Test_eligibilityChecker_WindowRollsFromOldestSubmission(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	quest, err := testutil.SampleQuest(ctx, &entity.Quest{
		Frequency:       entity.FrequencyWeekly,
		CompletionLimit: 2,
	})
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	oldest := now.Add(-6 * 24 * time.Hour)
	_, err = testutil.SampleSubmission(ctx, testutil.User1.ID, quest.ID, oldest)
	require.NoError(t, err)
	_, err = testutil.SampleSubmission(ctx, testutil.User1.ID, quest.ID, now.Add(-time.Hour))
	require.NoError(t, err)

	// Outside of the weekly window, it must not be counted.
	_, err = testutil.SampleSubmission(ctx, testutil.User1.ID, quest.ID, now.Add(-8*24*time.Hour))
	require.NoError(t, err)

	result, err := newTestChecker(now).CanComplete(ctx, testutil.User1.ID, quest.ID)
	require.NoError(t, err)
	require.False(t, result.Allowed)
	require.True(t, oldest.Add(7*24*time.Hour).Equal(*result.NextEligibleAt))

	// One day later the oldest submission left the window.
	result, err = newTestChecker(now.Add(24*time.Hour)).CanComplete(ctx, testutil.User1.ID, quest.ID)
	require.NoError(t, err)
	require.True(t, result.Allowed)
}

func Test_eligibilityChecker_AllowedAtNextEligibleTime(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	quest, err := testutil.SampleQuest(ctx, &entity.Quest{
		Frequency:       entity.FrequencyDaily,
		CompletionLimit: 1,
	})
	require.NoError(t, err)

	submittedAt := time.Now().UTC().Truncate(time.Second).Add(-time.Hour)
	_, err = testutil.SampleSubmission(ctx, testutil.User1.ID, quest.ID, submittedAt)
	require.NoError(t, err)

	result, err := newTestChecker(submittedAt.Add(24*time.Hour - time.Second)).
		CanComplete(ctx, testutil.User1.ID, quest.ID)
	require.NoError(t, err)
	require.False(t, result.Allowed)
	require.True(t, submittedAt.Add(24*time.Hour).Equal(*result.NextEligibleAt))

	// Retrying exactly at the returned time succeeds.
	result, err = newTestChecker(*result.NextEligibleAt).CanComplete(ctx, testutil.User1.ID, quest.ID)
	require.NoError(t, err)
	require.True(t, result.Allowed)
	require.Nil(t, result.NextEligibleAt)
}

func Test_eligibilityChecker_Windows(t *testing.T) {
	testCases := []struct {
		name      string
		frequency entity.Frequency
		age       time.Duration
		allowed   bool
	}{
		{
			name:      "daily inside window",
			frequency: entity.FrequencyDaily,
			age:       23 * time.Hour,
			allowed:   false,
		},
		{
			name:      "daily outside window",
			frequency: entity.FrequencyDaily,
			age:       25 * time.Hour,
			allowed:   true,
		},
		{
			name:      "monthly inside window",
			frequency: entity.FrequencyMonthly,
			age:       29 * 24 * time.Hour,
			allowed:   false,
		},
		{
			name:      "monthly outside window",
			frequency: entity.FrequencyMonthly,
			age:       31 * 24 * time.Hour,
			allowed:   true,
		},
		{
			name:      "legacy value uses one day",
			frequency: entity.Frequency("fortnightly"),
			age:       25 * time.Hour,
			allowed:   true,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testutil.MockContext()
			testutil.CreateFixtureDb(ctx)

			quest, err := testutil.SampleQuest(ctx, &entity.Quest{
				Frequency:       tt.frequency,
				CompletionLimit: 1,
			})
			require.NoError(t, err)

			now := time.Now().UTC()
			_, err = testutil.SampleSubmission(ctx, testutil.User1.ID, quest.ID, now.Add(-tt.age))
			require.NoError(t, err)

			result, err := newTestChecker(now).CanComplete(ctx, testutil.User1.ID, quest.ID)
			require.NoError(t, err)
			require.Equal(t, tt.allowed, result.Allowed)
		})
	}
}

func Test_eligibilityChecker_ZeroLimit(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	quest, err := testutil.SampleQuest(ctx, nil)
	require.NoError(t, err)
	quest.CompletionLimit = 0

	result, err := newTestChecker(time.Now().UTC()).Check(ctx, testutil.User1.ID, &quest)
	require.NoError(t, err)
	require.False(t, result.Allowed)
	require.Nil(t, result.NextEligibleAt)
}
