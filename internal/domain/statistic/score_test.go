package statistic

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/questbycycle/backend/internal/entity"
	"github.com/questbycycle/backend/internal/repository"
	"github.com/questbycycle/backend/pkg/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func addLedger(t *testing.T, ctx context.Context, userID string, points int64) {
	err := repository.NewUserQuestRepository().Upsert(ctx, &entity.UserQuest{
		UserID:        userID,
		QuestID:       uuid.NewString(),
		Completions:   1,
		PointsAwarded: points,
		CompletedAt:   time.Now().UTC(),
	})
	require.NoError(t, err)
}

func getScore(t *testing.T, ctx context.Context, userID string) int64 {
	user, err := repository.NewUserRepository().GetByID(ctx, userID)
	require.NoError(t, err)
	return user.Score
}

func Test_scoreAggregator_UpdateUserScore(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	aggregator := NewScoreAggregator(
		repository.NewUserRepository(), repository.NewUserQuestRepository(), nil)

	addLedger(t, ctx, testutil.User1.ID, 300)
	addLedger(t, ctx, testutil.User1.ID, 20)
	addLedger(t, ctx, testutil.User2.ID, 5)

	require.True(t, aggregator.UpdateUserScore(ctx, testutil.User1.ID))
	require.Equal(t, int64(320), getScore(t, ctx, testutil.User1.ID))

	// Idempotent.
	require.True(t, aggregator.UpdateUserScore(ctx, testutil.User1.ID))
	require.Equal(t, int64(320), getScore(t, ctx, testutil.User1.ID))

	// A user without ledger rows has a zero score.
	require.True(t, aggregator.UpdateUserScore(ctx, testutil.Admin.ID))
	require.Equal(t, int64(0), getScore(t, ctx, testutil.Admin.ID))

	require.False(t, aggregator.UpdateUserScore(ctx, "ghost"))
}

func Test_scoreAggregator_Saturates(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	aggregator := NewScoreAggregator(
		repository.NewUserRepository(), repository.NewUserQuestRepository(), nil)

	addLedger(t, ctx, testutil.User1.ID, math.MaxInt64-10)
	addLedger(t, ctx, testutil.User1.ID, 100)

	require.True(t, aggregator.UpdateUserScore(ctx, testutil.User1.ID))
	require.Equal(t, int64(math.MaxInt64), getScore(t, ctx, testutil.User1.ID))
}

func Test_scoreAggregator_MirrorsLeaderboard(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	var added []redis.Z
	redisClient := &testutil.MockRedisClient{
		ExistFunc: func(context.Context, string) (bool, error) { return true, nil },
		ZAddFunc: func(_ context.Context, key string, z redis.Z) error {
			require.Equal(t, redisKeyScoreLeaderboard, key)
			added = append(added, z)
			return nil
		},
	}

	aggregator := NewScoreAggregator(
		repository.NewUserRepository(), repository.NewUserQuestRepository(), redisClient)

	addLedger(t, ctx, testutil.User2.ID, 42)
	require.True(t, aggregator.UpdateUserScore(ctx, testutil.User2.ID))
	require.Equal(t, []redis.Z{{Score: 42, Member: testutil.User2.ID}}, added)

	// Redis failures never fail the score update, the stale key is dropped.
	var deleted []string
	redisClient.ZAddFunc = func(context.Context, string, redis.Z) error {
		return errors.New("redis is down")
	}
	redisClient.DelFunc = func(_ context.Context, keys ...string) error {
		deleted = append(deleted, keys...)
		return nil
	}
	require.True(t, aggregator.UpdateUserScore(ctx, testutil.User2.ID))
	require.Equal(t, []string{redisKeyScoreLeaderboard}, deleted)
}

func Test_scoreAggregator_DropsUnknownUserFromLeaderboard(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	var removed []string
	redisClient := &testutil.MockRedisClient{
		ZRemFunc: func(_ context.Context, key string, member string) error {
			require.Equal(t, redisKeyScoreLeaderboard, key)
			removed = append(removed, member)
			return nil
		},
	}

	aggregator := NewScoreAggregator(
		repository.NewUserRepository(), repository.NewUserQuestRepository(), redisClient)

	require.False(t, aggregator.UpdateUserScore(ctx, "ghost"))
	require.Equal(t, []string{"ghost"}, removed)

	require.True(t, aggregator.UpdateUserScore(ctx, testutil.User1.ID))
	require.Equal(t, []string{"ghost"}, removed)
}
