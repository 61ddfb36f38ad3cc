package domain

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/questbycycle/backend/internal/common"
	"github.com/questbycycle/backend/internal/domain/questclaim"
	"github.com/questbycycle/backend/internal/entity"
	"github.com/questbycycle/backend/internal/model"
	"github.com/questbycycle/backend/internal/repository"
	"github.com/questbycycle/backend/pkg/errorx"
	"github.com/questbycycle/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type QuestDomain interface {
	Create(context.Context, *model.CreateQuestRequest) (*model.CreateQuestResponse, error)
	Update(context.Context, *model.UpdateQuestRequest) (*model.UpdateQuestResponse, error)
	Get(context.Context, *model.GetQuestRequest) (*model.GetQuestResponse, error)
	GetList(context.Context, *model.GetListQuestRequest) (*model.GetListQuestResponse, error)
	GetEligibility(context.Context, *model.GetQuestEligibilityRequest) (*model.GetQuestEligibilityResponse, error)
	Delete(context.Context, *model.DeleteQuestRequest) (*model.DeleteQuestResponse, error)
}

type questDomain struct {
	questRepo    repository.QuestRepository
	gameRepo     repository.GameRepository
	badgeRepo    repository.BadgeRepository
	checker      questclaim.Checker
	roleVerifier *common.GlobalRoleVerifier
}

func NewQuestDomain(
	questRepo repository.QuestRepository,
	gameRepo repository.GameRepository,
	badgeRepo repository.BadgeRepository,
	userRepo repository.UserRepository,
	checker questclaim.Checker,
) *questDomain {
	return &questDomain{
		questRepo:    questRepo,
		gameRepo:     gameRepo,
		badgeRepo:    badgeRepo,
		checker:      checker,
		roleVerifier: common.NewGlobalRoleVerifier(userRepo),
	}
}

func (d *questDomain) Create(
	ctx context.Context, req *model.CreateQuestRequest,
) (*model.CreateQuestResponse, error) {
	if err := d.roleVerifier.Verify(ctx, entity.GlobalAdminRoles...); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied to create quest: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	if _, err := d.gameRepo.GetByID(ctx, req.GameID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found game")
		}

		xcontext.Logger(ctx).Errorf("Cannot get game: %v", err)
		return nil, errorx.Unknown
	}

	quest := &entity.Quest{
		Base:            entity.Base{ID: uuid.NewString()},
		GameID:          req.GameID,
		Title:           strings.TrimSpace(req.Title),
		Description:     req.Description,
		Points:          req.Points,
		CompletionLimit: req.CompletionLimit,
		Category:        strings.TrimSpace(req.Category),
	}

	if quest.Title == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty title")
	}

	if err := validateQuestNumbers(quest.Points, quest.CompletionLimit); err != nil {
		return nil, err
	}

	var err error
	quest.Frequency, err = parseFrequency(req.Frequency)
	if err != nil {
		return nil, err
	}

	quest.VerificationType, err = parseVerificationType(req.VerificationType)
	if err != nil {
		return nil, err
	}

	quest.BadgeID, err = d.parseBadgeID(ctx, req.BadgeID)
	if err != nil {
		return nil, err
	}

	if err := d.questRepo.Create(ctx, quest); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create quest: %v", err)
		return nil, errorx.Unknown
	}

	return &model.CreateQuestResponse{ID: quest.ID}, nil
}

func (d *questDomain) Update(
	ctx context.Context, req *model.UpdateQuestRequest,
) (*model.UpdateQuestResponse, error) {
	if err := d.roleVerifier.Verify(ctx, entity.GlobalAdminRoles...); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied to update quest: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	quest, err := d.questRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found quest")
		}

		xcontext.Logger(ctx).Errorf("Cannot get quest: %v", err)
		return nil, errorx.Unknown
	}

	updates := map[string]any{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, errorx.New(errorx.BadRequest, "Not allow an empty title")
		}
		updates["title"] = title
	}

	if req.Description != nil {
		updates["description"] = *req.Description
	}

	points, limit := quest.Points, quest.CompletionLimit
	if req.Points != nil {
		points = *req.Points
		updates["points"] = points
	}

	if req.CompletionLimit != nil {
		limit = *req.CompletionLimit
		updates["completion_limit"] = limit
	}

	if err := validateQuestNumbers(points, limit); err != nil {
		return nil, err
	}

	if req.Frequency != nil {
		frequency, err := parseFrequency(*req.Frequency)
		if err != nil {
			return nil, err
		}
		updates["frequency"] = frequency
	}

	if req.Category != nil {
		updates["category"] = strings.TrimSpace(*req.Category)
	}

	if req.VerificationType != nil {
		verificationType, err := parseVerificationType(*req.VerificationType)
		if err != nil {
			return nil, err
		}
		updates["verification_type"] = verificationType
	}

	if req.BadgeID != nil {
		badgeID, err := d.parseBadgeID(ctx, *req.BadgeID)
		if err != nil {
			return nil, err
		}
		updates["badge_id"] = badgeID
	}

	if req.Enabled != nil {
		updates["disabled"] = !*req.Enabled
	}

	if len(updates) == 0 {
		return &model.UpdateQuestResponse{}, nil
	}

	if err := d.questRepo.UpdateByID(ctx, quest.ID, updates); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update quest: %v", err)
		return nil, errorx.Unknown
	}

	return &model.UpdateQuestResponse{}, nil
}

func (d *questDomain) Get(ctx context.Context, req *model.GetQuestRequest) (*model.GetQuestResponse, error) {
	quest, err := d.questRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found quest")
		}

		xcontext.Logger(ctx).Errorf("Cannot get quest: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.GetQuestResponse{Quest: convertQuest(quest)}

	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return resp, nil
	}

	eligibility, err := d.checker.Check(ctx, userID, quest)
	if err != nil {
		return nil, err
	}

	resp.Eligibility = convertEligibility(eligibility)
	return resp, nil
}

func (d *questDomain) GetList(
	ctx context.Context, req *model.GetListQuestRequest,
) (*model.GetListQuestResponse, error) {
	offset, limit, err := common.NormalizePagination(ctx, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	includeDisabled := false
	if req.IncludeDisabled {
		if err := d.roleVerifier.Verify(ctx, entity.GlobalAdminRoles...); err != nil {
			return nil, errorx.New(errorx.PermissionDenied, "Only admin can see disabled quests")
		}
		includeDisabled = true
	}

	quests, err := d.questRepo.GetList(ctx, repository.QuestFilter{
		GameID:          req.GameID,
		Category:        req.Category,
		IncludeDisabled: includeDisabled,
	}, offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get list of quests: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.Quest{}
	for i := range quests {
		result = append(result, convertQuest(&quests[i]))
	}

	return &model.GetListQuestResponse{Quests: result}, nil
}

func (d *questDomain) GetEligibility(
	ctx context.Context, req *model.GetQuestEligibilityRequest,
) (*model.GetQuestEligibilityResponse, error) {
	eligibility, err := d.checker.CanComplete(ctx, xcontext.RequestUserID(ctx), req.QuestID)
	if err != nil {
		return nil, err
	}

	resp := model.GetQuestEligibilityResponse(convertEligibility(eligibility))
	return &resp, nil
}

// Delete hides the quest. Submissions and ledger rows of the quest are kept.
func (d *questDomain) Delete(
	ctx context.Context, req *model.DeleteQuestRequest,
) (*model.DeleteQuestResponse, error) {
	if err := d.roleVerifier.Verify(ctx, entity.GlobalAdminRoles...); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied to delete quest: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	if _, err := d.questRepo.GetByID(ctx, req.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found quest")
		}

		xcontext.Logger(ctx).Errorf("Cannot get quest: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.questRepo.Delete(ctx, req.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete quest: %v", err)
		return nil, errorx.Unknown
	}

	return &model.DeleteQuestResponse{}, nil
}

func (d *questDomain) parseBadgeID(ctx context.Context, badgeID string) (sql.NullString, error) {
	if badgeID == "" {
		return sql.NullString{}, nil
	}

	if _, err := d.badgeRepo.GetByID(ctx, badgeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return sql.NullString{}, errorx.New(errorx.NotFound, "Not found badge")
		}

		xcontext.Logger(ctx).Errorf("Cannot get badge: %v", err)
		return sql.NullString{}, errorx.Unknown
	}

	return sql.NullString{Valid: true, String: badgeID}, nil
}

func validateQuestNumbers(points int64, completionLimit int) error {
	if points < 0 {
		return errorx.New(errorx.BadRequest, "Points must not be negative")
	}

	if completionLimit < 0 {
		return errorx.New(errorx.BadRequest, "Completion limit must not be negative")
	}

	return nil
}

func parseFrequency(s string) (entity.Frequency, error) {
	f := entity.ParseFrequency(s)
	if f == entity.FrequencyUnknown {
		return "", errorx.New(errorx.BadRequest, "Invalid frequency %s", s)
	}

	return f, nil
}

func parseVerificationType(s string) (entity.VerificationType, error) {
	v := entity.ParseVerificationType(s)
	if v == entity.VerificationUnknown {
		return "", errorx.New(errorx.BadRequest, "Invalid verification type %s", s)
	}

	return v, nil
}
