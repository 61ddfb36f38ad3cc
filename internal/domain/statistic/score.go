package statistic

import (
	"context"
	"errors"

	"github.com/questbycycle/backend/internal/repository"
	"github.com/questbycycle/backend/pkg/numberutil"
	"github.com/questbycycle/backend/pkg/xcontext"
	"github.com/questbycycle/backend/pkg/xredis"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type ScoreAggregator interface {
	// UpdateUserScore recomputes the score of the user from the ledger and
	// overwrites the stored one. It returns false if the user doesn't exist
	// or the score cannot be written. Callers treat false as non-fatal.
	UpdateUserScore(ctx context.Context, userID string) bool
}

type scoreAggregator struct {
	userRepo      repository.UserRepository
	userQuestRepo repository.UserQuestRepository
	redisClient   xredis.Client
}

// NewScoreAggregator creates the aggregator. The redis client is optional,
// without it the leaderboard is always served from the database.
func NewScoreAggregator(
	userRepo repository.UserRepository,
	userQuestRepo repository.UserQuestRepository,
	redisClient xredis.Client,
) *scoreAggregator {
	return &scoreAggregator{
		userRepo:      userRepo,
		userQuestRepo: userQuestRepo,
		redisClient:   redisClient,
	}
}

func (a *scoreAggregator) UpdateUserScore(ctx context.Context, userID string) bool {
	if _, err := a.userRepo.GetByID(ctx, userID); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot get user %s to update score: %v", userID, err)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			a.dropFromLeaderboard(ctx, userID)
		}
		return false
	}

	points, err := a.userQuestRepo.GetPointsByUserID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get ledger of user %s: %v", userID, err)
		return false
	}

	score := numberutil.SaturatingSum(points...)
	if err := a.userRepo.UpdateScore(ctx, userID, score); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update score of user %s: %v", userID, err)
		return false
	}

	a.mirrorLeaderboard(ctx, userID, score)
	return true
}

// mirrorLeaderboard keeps the cached leaderboard in sync. If the key doesn't
// exist, it will be loaded from database on the next read. A failed write
// drops the key so that a stale score is never served.
func (a *scoreAggregator) mirrorLeaderboard(ctx context.Context, userID string, score int64) {
	if a.redisClient == nil {
		return
	}

	ok, err := a.redisClient.Exist(ctx, redisKeyScoreLeaderboard)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot call exist redis: %v", err)
		return
	}

	if !ok {
		return
	}

	err = a.redisClient.ZAdd(ctx, redisKeyScoreLeaderboard, redis.Z{
		Score:  float64(score),
		Member: userID,
	})
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot call ZAdd redis: %v", err)
		if err := a.redisClient.Del(ctx, redisKeyScoreLeaderboard); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot invalidate leaderboard: %v", err)
		}
	}
}

// dropFromLeaderboard removes a user who no longer exists.
func (a *scoreAggregator) dropFromLeaderboard(ctx context.Context, userID string) {
	if a.redisClient == nil {
		return
	}

	if err := a.redisClient.ZRem(ctx, redisKeyScoreLeaderboard, userID); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot call ZRem redis: %v", err)
	}
}
