package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/questbycycle/backend/internal/common"
	"github.com/questbycycle/backend/internal/domain/badge"
	"github.com/questbycycle/backend/internal/domain/questclaim"
	"github.com/questbycycle/backend/internal/domain/social"
	"github.com/questbycycle/backend/internal/domain/statistic"
	"github.com/questbycycle/backend/internal/entity"
	"github.com/questbycycle/backend/internal/model"
	"github.com/questbycycle/backend/internal/repository"
	"github.com/questbycycle/backend/pkg/errorx"
	"github.com/questbycycle/backend/pkg/numberutil"
	"github.com/questbycycle/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type SubmissionDomain interface {
	Submit(context.Context, *model.SubmitQuestRequest) (*model.SubmitQuestResponse, error)
	Delete(context.Context, *model.DeleteSubmissionRequest) (*model.DeleteSubmissionResponse, error)
	Get(context.Context, *model.GetSubmissionRequest) (*model.GetSubmissionResponse, error)
	GetList(context.Context, *model.GetListSubmissionRequest) (*model.GetListSubmissionResponse, error)
}

type submissionDomain struct {
	userRepo        repository.UserRepository
	gameRepo        repository.GameRepository
	questRepo       repository.QuestRepository
	submissionRepo  repository.QuestSubmissionRepository
	userQuestRepo   repository.UserQuestRepository
	checker         questclaim.Checker
	badgeManager    *badge.Manager
	scoreAggregator statistic.ScoreAggregator
	poster          social.Poster
	roleVerifier    *common.GlobalRoleVerifier
	now             func() time.Time
}

func NewSubmissionDomain(
	userRepo repository.UserRepository,
	gameRepo repository.GameRepository,
	questRepo repository.QuestRepository,
	submissionRepo repository.QuestSubmissionRepository,
	userQuestRepo repository.UserQuestRepository,
	checker questclaim.Checker,
	badgeManager *badge.Manager,
	scoreAggregator statistic.ScoreAggregator,
	poster social.Poster,
) *submissionDomain {
	return &submissionDomain{
		userRepo:        userRepo,
		gameRepo:        gameRepo,
		questRepo:       questRepo,
		submissionRepo:  submissionRepo,
		userQuestRepo:   userQuestRepo,
		checker:         checker,
		badgeManager:    badgeManager,
		scoreAggregator: scoreAggregator,
		poster:          poster,
		roleVerifier:    common.NewGlobalRoleVerifier(userRepo),
		now:             func() time.Time { return time.Now().UTC() },
	}
}

func (d *submissionDomain) Submit(
	ctx context.Context, req *model.SubmitQuestRequest,
) (*model.SubmitQuestResponse, error) {
	resp, err := d.submit(ctx, req)
	if err != nil {
		countSubmission("rejected")
		return nil, err
	}

	countSubmission("accepted")
	return resp, nil
}

func (d *submissionDomain) submit(
	ctx context.Context, req *model.SubmitQuestRequest,
) (*model.SubmitQuestResponse, error) {
	userID := xcontext.RequestUserID(ctx)

	quest, err := d.questRepo.GetByID(ctx, req.QuestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found quest")
		}

		xcontext.Logger(ctx).Errorf("Cannot get quest: %v", err)
		return nil, errorx.Unknown
	}

	if !quest.Enabled() {
		return nil, errorx.New(errorx.Unavailable, "This quest is disabled")
	}

	game, err := d.gameRepo.GetByID(ctx, quest.GameID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found game")
		}

		xcontext.Logger(ctx).Errorf("Cannot get game: %v", err)
		return nil, errorx.Unknown
	}

	if !game.IsActive(d.now()) {
		return nil, errorx.New(errorx.Unavailable, "The game is not active")
	}

	if err := d.checkEligibility(ctx, userID, quest); err != nil {
		return nil, err
	}

	evidence := questclaim.Evidence{ImageURL: req.ImageURL, Comment: req.Comment}
	validator, err := questclaim.NewValidator(quest.VerificationType)
	if err != nil {
		return nil, err
	}

	if err := validator.Validate(ctx, evidence); err != nil {
		return nil, err
	}

	submission := &entity.QuestSubmission{
		Base:     entity.Base{ID: uuid.NewString()},
		UserID:   userID,
		QuestID:  quest.ID,
		ImageURL: req.ImageURL,
		Comment:  req.Comment,
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.userRepo.LockByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot lock user: %v", err)
		return nil, errorx.New(errorx.Internal, "Cannot record the submission")
	}

	// Another request of the same user may have been accepted while this one
	// was validated.
	if err := d.checkEligibility(ctx, userID, quest); err != nil {
		return nil, err
	}

	if err := d.submissionRepo.Create(ctx, submission); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create submission: %v", err)
		return nil, errorx.New(errorx.Internal, "Cannot record the submission")
	}

	userQuest, err := d.userQuestRepo.Get(ctx, userID, quest.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get user quest: %v", err)
			return nil, errorx.New(errorx.Internal, "Cannot record the submission")
		}

		userQuest = &entity.UserQuest{UserID: userID, QuestID: quest.ID}
	}

	userQuest.Completions++
	userQuest.PointsAwarded = numberutil.SaturatingAdd(userQuest.PointsAwarded, quest.Points)
	userQuest.CompletedAt = d.now()
	if err := d.userQuestRepo.Upsert(ctx, userQuest); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update user quest: %v", err)
		return nil, errorx.New(errorx.Internal, "Cannot record the submission")
	}

	ctx, err = xcontext.WithCommitDBTransaction(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit submission: %v", err)
		return nil, errorx.New(errorx.Internal, "Cannot record the submission")
	}

	d.crossPost(ctx, game, submission)

	if !d.scoreAggregator.UpdateUserScore(ctx, userID) {
		countSideEffectFailure("score")
	}

	if err := d.badgeManager.CheckAndAward(ctx, userID, quest.ID, game.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot award badges to user %s: %v", userID, err)
		countSideEffectFailure("award")
	}

	return &model.SubmitQuestResponse{
		Submission:  convertQuestSubmission(submission),
		Completions: userQuest.Completions,
		Points:      userQuest.PointsAwarded,
	}, nil
}

// crossPost publishes the evidence of a recorded submission and stores the
// post urls on it.
func (d *submissionDomain) crossPost(
	ctx context.Context, game *entity.Game, submission *entity.QuestSubmission,
) {
	posts := d.poster.CrossPost(ctx, game, submission.ImageURL, submission.Comment)
	if posts == (social.PostResult{}) {
		return
	}

	err := d.submissionRepo.UpdateSocialURLs(ctx, submission.ID,
		posts.TwitterURL, posts.FacebookURL, posts.InstagramURL)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot save social urls of submission %s: %v", submission.ID, err)
		countSideEffectFailure("social")
		return
	}

	submission.TwitterURL = posts.TwitterURL
	submission.FacebookURL = posts.FacebookURL
	submission.InstagramURL = posts.InstagramURL
}

func (d *submissionDomain) checkEligibility(
	ctx context.Context, userID string, quest *entity.Quest,
) error {
	eligibility, err := d.checker.Check(ctx, userID, quest)
	if err != nil {
		return err
	}

	if eligibility.Allowed {
		return nil
	}

	if eligibility.NextEligibleAt == nil {
		return errorx.New(errorx.TooManyRequests, "This quest cannot be completed")
	}

	return errorx.RateLimited(*eligibility.NextEligibleAt,
		"You have reached the completion limit of this quest, please try again later")
}

func (d *submissionDomain) Delete(
	ctx context.Context, req *model.DeleteSubmissionRequest,
) (*model.DeleteSubmissionResponse, error) {
	submission, err := d.submissionRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found submission")
		}

		xcontext.Logger(ctx).Errorf("Cannot get submission: %v", err)
		return nil, errorx.Unknown
	}

	if submission.UserID != xcontext.RequestUserID(ctx) {
		if err := d.roleVerifier.Verify(ctx, entity.GlobalAdminRoles...); err != nil {
			xcontext.Logger(ctx).Debugf("Cannot delete submission of other user: %v", err)
			return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
		}
	}

	var questPoints int64
	quest, err := d.questRepo.GetByID(ctx, submission.QuestID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get quest: %v", err)
			return nil, errorx.Unknown
		}

		xcontext.Logger(ctx).Warnf("Submission %s belongs to missing quest %s",
			submission.ID, submission.QuestID)
	} else {
		questPoints = quest.Points
	}

	ownerID := submission.UserID

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.userRepo.LockByID(ctx, ownerID); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot lock user: %v", err)
		return nil, errorx.New(errorx.Internal, "Cannot delete the submission")
	}

	userQuest, err := d.userQuestRepo.Get(ctx, ownerID, submission.QuestID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get user quest: %v", err)
			return nil, errorx.New(errorx.Internal, "Cannot delete the submission")
		}
	} else {
		if userQuest.Completions > 0 {
			userQuest.Completions--
		}

		// Points of a quest may have been edited since the submission, the
		// current value is subtracted.
		if userQuest.Completions == 0 {
			userQuest.PointsAwarded = 0
		} else {
			userQuest.PointsAwarded = numberutil.SubFloorZero(userQuest.PointsAwarded, questPoints)
		}

		if err := d.userQuestRepo.Upsert(ctx, userQuest); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot update user quest: %v", err)
			return nil, errorx.New(errorx.Internal, "Cannot delete the submission")
		}
	}

	if err := d.badgeManager.CheckAndRevoke(ctx, ownerID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot revoke badges of user %s: %v", ownerID, err)
		return nil, errorx.New(errorx.Internal, "Cannot delete the submission")
	}

	if err := d.submissionRepo.Delete(ctx, submission.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete submission: %v", err)
		return nil, errorx.New(errorx.Internal, "Cannot delete the submission")
	}

	ctx, err = xcontext.WithCommitDBTransaction(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit submission deletion: %v", err)
		return nil, errorx.New(errorx.Internal, "Cannot delete the submission")
	}

	if !d.scoreAggregator.UpdateUserScore(ctx, ownerID) {
		countSideEffectFailure("score")
	}

	return &model.DeleteSubmissionResponse{}, nil
}

func (d *submissionDomain) Get(
	ctx context.Context, req *model.GetSubmissionRequest,
) (*model.GetSubmissionResponse, error) {
	submission, err := d.submissionRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found submission")
		}

		xcontext.Logger(ctx).Errorf("Cannot get submission: %v", err)
		return nil, errorx.Unknown
	}

	resp := model.GetSubmissionResponse(convertQuestSubmission(submission))
	return &resp, nil
}

func (d *submissionDomain) GetList(
	ctx context.Context, req *model.GetListSubmissionRequest,
) (*model.GetListSubmissionResponse, error) {
	offset, limit, err := common.NormalizePagination(ctx, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	submissions, err := d.submissionRepo.GetList(ctx, repository.QuestSubmissionFilter{
		UserID:  req.UserID,
		QuestID: req.QuestID,
		GameID:  req.GameID,
	}, offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get list of submissions: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.QuestSubmission{}
	for i := range submissions {
		result = append(result, convertQuestSubmission(&submissions[i]))
	}

	return &model.GetListSubmissionResponse{Submissions: result}, nil
}

func countSubmission(result string) {
	common.PromCounters[common.QuestSubmissionTotal].WithLabelValues(result).Inc()
}

func countSideEffectFailure(step string) {
	common.PromCounters[common.SubmissionSideEffectFailure].WithLabelValues(step).Inc()
}
