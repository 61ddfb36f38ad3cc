package domain

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/questbycycle/backend/internal/common"
	"github.com/questbycycle/backend/internal/domain/badge"
	"github.com/questbycycle/backend/internal/domain/notification"
	"github.com/questbycycle/backend/internal/domain/questclaim"
	"github.com/questbycycle/backend/internal/domain/social"
	"github.com/questbycycle/backend/internal/domain/statistic"
	"github.com/questbycycle/backend/internal/entity"
	"github.com/questbycycle/backend/internal/model"
	"github.com/questbycycle/backend/internal/repository"
	"github.com/questbycycle/backend/pkg/errorx"
	"github.com/questbycycle/backend/pkg/pubsub"
	"github.com/questbycycle/backend/pkg/testutil"
	"github.com/questbycycle/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

type failingUserQuestRepository struct {
	repository.UserQuestRepository
}

func (failingUserQuestRepository) Upsert(context.Context, *entity.UserQuest) error {
	return errors.New("disk is full")
}

func newTestNotifier(publisher pubsub.Publisher) notification.Notifier {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}

	return notification.NewNotifier(repository.NewShoutBoardRepository(), publisher, node)
}

func newTestPoster() social.Poster {
	return social.NewPoster(
		&testutil.MockTwitterEndpoint{
			PostPhotoFunc: func(context.Context, string, string, string) (string, error) {
				return "https://twitter.com/i/web/status/42", nil
			},
		},
		&testutil.MockFacebookEndpoint{},
		&testutil.MockInstagramEndpoint{},
	)
}

func newTestSubmissionDomain(userQuestRepo repository.UserQuestRepository) *submissionDomain {
	userRepo := repository.NewUserRepository()
	questRepo := repository.NewQuestRepository()
	submissionRepo := repository.NewQuestSubmissionRepository()

	return NewSubmissionDomain(
		userRepo,
		repository.NewGameRepository(),
		questRepo,
		submissionRepo,
		userQuestRepo,
		questclaim.NewEligibilityChecker(questRepo, submissionRepo),
		badge.NewManager(
			questRepo,
			repository.NewBadgeRepository(),
			repository.NewUserBadgeRepository(),
			userQuestRepo,
			newTestNotifier(&testutil.MockPublisher{}),
		),
		statistic.NewScoreAggregator(userRepo, userQuestRepo, nil),
		newTestPoster(),
	)
}

func requireErrorCode(t *testing.T, err error, code errorx.Code) errorx.Error {
	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Equal(t, code, errx.Code)
	return errx
}

func submit(ctx context.Context, d *submissionDomain, userID, questID string) (*model.SubmitQuestResponse, error) {
	return d.Submit(testutil.MockContextWithUserID(ctx, userID), &model.SubmitQuestRequest{
		QuestID:  questID,
		ImageURL: "https://example.com/ride.jpg",
		Comment:  "rode to the market",
	})
}

func getUserQuest(t *testing.T, ctx context.Context, userID, questID string) *entity.UserQuest {
	userQuest, err := repository.NewUserQuestRepository().Get(ctx, userID, questID)
	require.NoError(t, err)
	return userQuest
}

func hasBadge(t *testing.T, ctx context.Context, userID, badgeID string) bool {
	ok, err := repository.NewUserBadgeRepository().Exists(ctx, userID, badgeID)
	require.NoError(t, err)
	return ok
}

func Test_submissionDomain_Submit_DailyLimit(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestSubmissionDomain(repository.NewUserQuestRepository())

	quest, err := testutil.SampleQuest(ctx, nil)
	require.NoError(t, err)

	resp, err := submit(ctx, d, testutil.User1.ID, quest.ID)
	require.NoError(t, err)
	require.Equal(t, 1, resp.Completions)
	require.Equal(t, int64(10), resp.Points)

	first, err := repository.NewQuestSubmissionRepository().GetByID(ctx, resp.Submission.ID)
	require.NoError(t, err)

	_, err = submit(ctx, d, testutil.User1.ID, quest.ID)
	errx := requireErrorCode(t, err, errorx.TooManyRequests)
	require.True(t, first.CreatedAt.Add(24*time.Hour).Equal(errx.RetryAt))

	// Other users are not affected.
	_, err = submit(ctx, d, testutil.User2.ID, quest.ID)
	require.NoError(t, err)
}

func Test_submissionDomain_Submit_WeeklyScenario(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestSubmissionDomain(repository.NewUserQuestRepository())

	badgeB, err := testutil.SampleBadge(ctx, &entity.Badge{Name: "Errand runner"})
	require.NoError(t, err)

	questA, err := testutil.SampleQuest(ctx, &entity.Quest{
		Points:          100,
		CompletionLimit: 3,
		Frequency:       entity.FrequencyWeekly,
		Category:        "Errands",
		BadgeID:         sql.NullString{Valid: true, String: badgeB.ID},
	})
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		resp, err := submit(ctx, d, testutil.User1.ID, questA.ID)
		require.NoError(t, err)
		require.Equal(t, i, resp.Completions)
	}

	userQuest := getUserQuest(t, ctx, testutil.User1.ID, questA.ID)
	require.Equal(t, 3, userQuest.Completions)
	require.Equal(t, int64(300), userQuest.PointsAwarded)
	require.True(t, hasBadge(t, ctx, testutil.User1.ID, badgeB.ID))

	user, err := repository.NewUserRepository().GetByID(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Equal(t, int64(300), user.Score)

	_, err = submit(ctx, d, testutil.User1.ID, questA.ID)
	requireErrorCode(t, err, errorx.TooManyRequests)

	eligibility, err := d.checker.CanComplete(ctx, testutil.User1.ID, questA.ID)
	require.NoError(t, err)
	require.False(t, eligibility.Allowed)
	require.NotNil(t, eligibility.NextEligibleAt)

	// The rejected attempt changed nothing.
	userQuest = getUserQuest(t, ctx, testutil.User1.ID, questA.ID)
	require.Equal(t, 3, userQuest.Completions)
	require.Equal(t, int64(300), userQuest.PointsAwarded)
}

func Test_submissionDomain_Submit_CategoryBadge(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestSubmissionDomain(repository.NewUserQuestRepository())

	categoryBadge, err := testutil.SampleBadge(ctx, &entity.Badge{Category: "Errands"})
	require.NoError(t, err)

	questA, err := testutil.SampleQuest(ctx, &entity.Quest{Category: "Errands"})
	require.NoError(t, err)

	questC, err := testutil.SampleQuest(ctx, &entity.Quest{
		Category:        "Errands",
		CompletionLimit: 2,
		Frequency:       entity.FrequencyWeekly,
	})
	require.NoError(t, err)

	_, err = submit(ctx, d, testutil.User1.ID, questA.ID)
	require.NoError(t, err)
	_, err = submit(ctx, d, testutil.User1.ID, questC.ID)
	require.NoError(t, err)
	require.False(t, hasBadge(t, ctx, testutil.User1.ID, categoryBadge.ID))

	_, err = submit(ctx, d, testutil.User1.ID, questC.ID)
	require.NoError(t, err)
	require.True(t, hasBadge(t, ctx, testutil.User1.ID, categoryBadge.ID))

	userBadges, err := repository.NewUserBadgeRepository().GetByUserID(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Len(t, userBadges, 1)

	messages, err := repository.NewShoutBoardRepository().GetByGameID(ctx, testutil.ActiveGame.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, messages, 1)
}

func Test_submissionDomain_Submit_Rejected(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestSubmissionDomain(repository.NewUserQuestRepository())

	disabled, err := testutil.SampleQuest(ctx, &entity.Quest{Disabled: true})
	require.NoError(t, err)

	ended, err := testutil.SampleQuest(ctx, &entity.Quest{GameID: testutil.EndedGame.ID})
	require.NoError(t, err)

	paused, err := testutil.SampleQuest(ctx, &entity.Quest{VerificationType: entity.VerificationPause})
	require.NoError(t, err)

	legacy, err := testutil.SampleQuest(ctx, &entity.Quest{VerificationType: "selfie"})
	require.NoError(t, err)

	commentOnly, err := testutil.SampleQuest(ctx, &entity.Quest{VerificationType: entity.VerificationComment})
	require.NoError(t, err)

	tests := []struct {
		name    string
		req     *model.SubmitQuestRequest
		wantErr errorx.Code
	}{
		{
			name:    "unknown quest",
			req:     &model.SubmitQuestRequest{QuestID: "invalid-quest", ImageURL: "x"},
			wantErr: errorx.NotFound,
		},
		{
			name:    "disabled quest",
			req:     &model.SubmitQuestRequest{QuestID: disabled.ID, ImageURL: "x"},
			wantErr: errorx.Unavailable,
		},
		{
			name:    "game is not active",
			req:     &model.SubmitQuestRequest{QuestID: ended.ID, ImageURL: "x"},
			wantErr: errorx.Unavailable,
		},
		{
			name:    "paused quest",
			req:     &model.SubmitQuestRequest{QuestID: paused.ID, ImageURL: "x"},
			wantErr: errorx.Unavailable,
		},
		{
			name:    "unknown verification type",
			req:     &model.SubmitQuestRequest{QuestID: legacy.ID, ImageURL: "x"},
			wantErr: errorx.BadRequest,
		},
		{
			name:    "missing comment",
			req:     &model.SubmitQuestRequest{QuestID: commentOnly.ID, ImageURL: "x"},
			wantErr: errorx.BadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Submit(testutil.MockContextWithUserID(ctx, testutil.User1.ID), tt.req)
			requireErrorCode(t, err, tt.wantErr)
		})
	}

	submissions, err := d.submissionRepo.GetList(ctx, repository.QuestSubmissionFilter{}, 0, 10)
	require.NoError(t, err)
	require.Empty(t, submissions)
}

func Test_submissionDomain_Submit_RollbackOnFailure(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestSubmissionDomain(failingUserQuestRepository{repository.NewUserQuestRepository()})

	quest, err := testutil.SampleQuest(ctx, nil)
	require.NoError(t, err)

	_, err = submit(ctx, d, testutil.User1.ID, quest.ID)
	requireErrorCode(t, err, errorx.Internal)

	submissions, err := d.submissionRepo.GetList(ctx, repository.QuestSubmissionFilter{
		UserID: testutil.User1.ID,
	}, 0, 10)
	require.NoError(t, err)
	require.Empty(t, submissions)

	_, err = repository.NewUserQuestRepository().Get(ctx, testutil.User1.ID, quest.ID)
	require.Error(t, err)
}

func Test_submissionDomain_Submit_Concurrent(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestSubmissionDomain(repository.NewUserQuestRepository())

	quest, err := testutil.SampleQuest(ctx, nil)
	require.NoError(t, err)

	const attempts = 5
	errs := make(chan error, attempts)
	wg := sync.WaitGroup{}
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := submit(ctx, d, testutil.User1.ID, quest.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	accepted := 0
	for err := range errs {
		if err == nil {
			accepted++
			continue
		}

		requireErrorCode(t, err, errorx.TooManyRequests)
	}
	require.Equal(t, 1, accepted)

	userQuest := getUserQuest(t, ctx, testutil.User1.ID, quest.ID)
	require.Equal(t, 1, userQuest.Completions)
	require.Equal(t, int64(10), userQuest.PointsAwarded)
}

func Test_submissionDomain_Submit_CrossPost(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	cfg := xcontext.Configs(ctx)
	cfg.Quest.PostToSocial = true
	ctx = xcontext.WithConfigs(ctx, cfg)

	err := repository.NewGameRepository().UpdateByID(ctx, testutil.ActiveGame.ID, &entity.Game{
		TwitterToken: "bearer",
	})
	require.NoError(t, err)

	d := newTestSubmissionDomain(repository.NewUserQuestRepository())
	quest, err := testutil.SampleQuest(ctx, nil)
	require.NoError(t, err)

	resp, err := submit(ctx, d, testutil.User1.ID, quest.ID)
	require.NoError(t, err)
	require.Equal(t, "https://twitter.com/i/web/status/42", resp.Submission.TwitterURL)
	require.Empty(t, resp.Submission.FacebookURL)

	stored, err := d.submissionRepo.GetByID(ctx, resp.Submission.ID)
	require.NoError(t, err)
	require.Equal(t, "https://twitter.com/i/web/status/42", stored.TwitterURL)
}

func Test_submissionDomain_Submit_CrossPostOnlyCommitted(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	cfg := xcontext.Configs(ctx)
	cfg.Quest.PostToSocial = true
	ctx = xcontext.WithConfigs(ctx, cfg)

	err := repository.NewGameRepository().UpdateByID(ctx, testutil.ActiveGame.ID, &entity.Game{
		TwitterToken: "bearer",
	})
	require.NoError(t, err)

	var tweets atomic.Int32
	poster := social.NewPoster(
		&testutil.MockTwitterEndpoint{
			PostPhotoFunc: func(context.Context, string, string, string) (string, error) {
				tweets.Add(1)
				return "https://twitter.com/i/web/status/42", nil
			},
		},
		&testutil.MockFacebookEndpoint{},
		&testutil.MockInstagramEndpoint{},
	)

	quest, err := testutil.SampleQuest(ctx, nil)
	require.NoError(t, err)

	// The transaction is rolled back, nothing is published.
	failing := newTestSubmissionDomain(failingUserQuestRepository{repository.NewUserQuestRepository()})
	failing.poster = poster
	_, err = submit(ctx, failing, testutil.User1.ID, quest.ID)
	requireErrorCode(t, err, errorx.Internal)
	require.Equal(t, int32(0), tweets.Load())

	d := newTestSubmissionDomain(repository.NewUserQuestRepository())
	d.poster = poster
	_, err = submit(ctx, d, testutil.User1.ID, quest.ID)
	require.NoError(t, err)
	require.Equal(t, int32(1), tweets.Load())

	// Rejected by the completion limit.
	_, err = submit(ctx, d, testutil.User1.ID, quest.ID)
	requireErrorCode(t, err, errorx.TooManyRequests)
	require.Equal(t, int32(1), tweets.Load())
}

type failingScoreAggregator struct{}

func (failingScoreAggregator) UpdateUserScore(context.Context, string) bool { return false }

func Test_submissionDomain_Submit_CountsScoreFailureApart(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestSubmissionDomain(repository.NewUserQuestRepository())
	d.scoreAggregator = failingScoreAggregator{}

	failures := common.PromCounters[common.SubmissionSideEffectFailure]
	scoreBefore := promtestutil.ToFloat64(failures.WithLabelValues("score"))
	awardBefore := promtestutil.ToFloat64(failures.WithLabelValues("award"))

	quest, err := testutil.SampleQuest(ctx, nil)
	require.NoError(t, err)

	// The score failure doesn't fail the submission.
	_, err = submit(ctx, d, testutil.User1.ID, quest.ID)
	require.NoError(t, err)

	require.Equal(t, scoreBefore+1, promtestutil.ToFloat64(failures.WithLabelValues("score")))
	require.Equal(t, awardBefore, promtestutil.ToFloat64(failures.WithLabelValues("award")))
}

func Test_submissionDomain_Delete_RevokesBadge(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestSubmissionDomain(repository.NewUserQuestRepository())

	badgeB, err := testutil.SampleBadge(ctx, nil)
	require.NoError(t, err)

	questA, err := testutil.SampleQuest(ctx, &entity.Quest{
		Points:  100,
		BadgeID: sql.NullString{Valid: true, String: badgeB.ID},
	})
	require.NoError(t, err)

	resp, err := submit(ctx, d, testutil.User1.ID, questA.ID)
	require.NoError(t, err)
	require.True(t, hasBadge(t, ctx, testutil.User1.ID, badgeB.ID))

	_, err = d.Delete(testutil.MockContextWithUserID(ctx, testutil.User1.ID),
		&model.DeleteSubmissionRequest{ID: resp.Submission.ID})
	require.NoError(t, err)

	userQuest := getUserQuest(t, ctx, testutil.User1.ID, questA.ID)
	require.Equal(t, 0, userQuest.Completions)
	require.Equal(t, int64(0), userQuest.PointsAwarded)
	require.False(t, hasBadge(t, ctx, testutil.User1.ID, badgeB.ID))

	user, err := repository.NewUserRepository().GetByID(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), user.Score)

	_, err = d.submissionRepo.GetByID(ctx, resp.Submission.ID)
	require.Error(t, err)

	// The quest is available again.
	_, err = submit(ctx, d, testutil.User1.ID, questA.ID)
	require.NoError(t, err)
}

func Test_submissionDomain_Delete_NeverNegative(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestSubmissionDomain(repository.NewUserQuestRepository())

	quest, err := testutil.SampleQuest(ctx, &entity.Quest{
		Points:          100,
		CompletionLimit: 3,
		Frequency:       entity.FrequencyWeekly,
	})
	require.NoError(t, err)

	first, err := submit(ctx, d, testutil.User1.ID, quest.ID)
	require.NoError(t, err)
	second, err := submit(ctx, d, testutil.User1.ID, quest.ID)
	require.NoError(t, err)

	// Raise the points after the submissions.
	err = repository.NewQuestRepository().UpdateByID(ctx, quest.ID, map[string]any{"points": 500})
	require.NoError(t, err)

	_, err = d.Delete(testutil.MockContextWithUserID(ctx, testutil.User1.ID),
		&model.DeleteSubmissionRequest{ID: first.Submission.ID})
	require.NoError(t, err)

	userQuest := getUserQuest(t, ctx, testutil.User1.ID, quest.ID)
	require.Equal(t, 1, userQuest.Completions)
	require.Equal(t, int64(0), userQuest.PointsAwarded)

	// Admin can delete submissions of any user.
	_, err = d.Delete(testutil.MockContextWithUserID(ctx, testutil.Admin.ID),
		&model.DeleteSubmissionRequest{ID: second.Submission.ID})
	require.NoError(t, err)

	userQuest = getUserQuest(t, ctx, testutil.User1.ID, quest.ID)
	require.Equal(t, 0, userQuest.Completions)
	require.Equal(t, int64(0), userQuest.PointsAwarded)
}

func Test_submissionDomain_Delete_Failed(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestSubmissionDomain(repository.NewUserQuestRepository())

	quest, err := testutil.SampleQuest(ctx, nil)
	require.NoError(t, err)

	resp, err := submit(ctx, d, testutil.User1.ID, quest.ID)
	require.NoError(t, err)

	_, err = d.Delete(testutil.MockContextWithUserID(ctx, testutil.User2.ID),
		&model.DeleteSubmissionRequest{ID: resp.Submission.ID})
	requireErrorCode(t, err, errorx.PermissionDenied)

	_, err = d.Delete(testutil.MockContextWithUserID(ctx, testutil.User1.ID),
		&model.DeleteSubmissionRequest{ID: "invalid-submission"})
	requireErrorCode(t, err, errorx.NotFound)

	userQuest := getUserQuest(t, ctx, testutil.User1.ID, quest.ID)
	require.Equal(t, 1, userQuest.Completions)
}

func Test_submissionDomain_GetList(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestSubmissionDomain(repository.NewUserQuestRepository())

	quest, err := testutil.SampleQuest(ctx, nil)
	require.NoError(t, err)

	_, err = submit(ctx, d, testutil.User1.ID, quest.ID)
	require.NoError(t, err)
	resp, err := submit(ctx, d, testutil.User2.ID, quest.ID)
	require.NoError(t, err)

	list, err := d.GetList(ctx, &model.GetListSubmissionRequest{QuestID: quest.ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, list.Submissions, 2)

	list, err = d.GetList(ctx, &model.GetListSubmissionRequest{
		GameID: testutil.ActiveGame.ID,
		UserID: testutil.User2.ID,
		Limit:  10,
	})
	require.NoError(t, err)
	require.Len(t, list.Submissions, 1)
	require.Equal(t, resp.Submission.ID, list.Submissions[0].ID)

	got, err := d.Get(ctx, &model.GetSubmissionRequest{ID: resp.Submission.ID})
	require.NoError(t, err)
	require.Equal(t, testutil.User2.ID, got.UserID)
}
