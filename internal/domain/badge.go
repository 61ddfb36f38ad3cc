package domain

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/questbycycle/backend/internal/common"
	"github.com/questbycycle/backend/internal/entity"
	"github.com/questbycycle/backend/internal/model"
	"github.com/questbycycle/backend/internal/repository"
	"github.com/questbycycle/backend/pkg/errorx"
	"github.com/questbycycle/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type BadgeDomain interface {
	Create(context.Context, *model.CreateBadgeRequest) (*model.CreateBadgeResponse, error)
	Update(context.Context, *model.UpdateBadgeRequest) (*model.UpdateBadgeResponse, error)
	Delete(context.Context, *model.DeleteBadgeRequest) (*model.DeleteBadgeResponse, error)
	GetAll(context.Context, *model.GetAllBadgesRequest) (*model.GetAllBadgesResponse, error)
	GetUserBadges(context.Context, *model.GetUserBadgesRequest) (*model.GetUserBadgesResponse, error)
}

type badgeDomain struct {
	badgeRepo     repository.BadgeRepository
	userBadgeRepo repository.UserBadgeRepository
	questRepo     repository.QuestRepository
	userRepo      repository.UserRepository
	roleVerifier  *common.GlobalRoleVerifier
}

func NewBadgeDomain(
	badgeRepo repository.BadgeRepository,
	userBadgeRepo repository.UserBadgeRepository,
	questRepo repository.QuestRepository,
	userRepo repository.UserRepository,
) *badgeDomain {
	return &badgeDomain{
		badgeRepo:     badgeRepo,
		userBadgeRepo: userBadgeRepo,
		questRepo:     questRepo,
		userRepo:      userRepo,
		roleVerifier:  common.NewGlobalRoleVerifier(userRepo),
	}
}

func (d *badgeDomain) Create(
	ctx context.Context, req *model.CreateBadgeRequest,
) (*model.CreateBadgeResponse, error) {
	if err := d.roleVerifier.Verify(ctx, entity.GlobalAdminRoles...); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied to create badge: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty name")
	}

	_, err := d.badgeRepo.GetByName(ctx, name)
	if err == nil {
		return nil, errorx.New(errorx.AlreadyExists, "Badge %s already exists", name)
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get badge by name: %v", err)
		return nil, errorx.Unknown
	}

	badge := &entity.Badge{
		Base:        entity.Base{ID: uuid.NewString()},
		Name:        name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Category:    strings.TrimSpace(req.Category),
	}

	if err := d.badgeRepo.Create(ctx, badge); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create badge: %v", err)
		return nil, errorx.Unknown
	}

	return &model.CreateBadgeResponse{ID: badge.ID}, nil
}

// Update only changes the non-empty fields of the request. Badges which were
// already granted are not re-derived.
func (d *badgeDomain) Update(
	ctx context.Context, req *model.UpdateBadgeRequest,
) (*model.UpdateBadgeResponse, error) {
	if err := d.roleVerifier.Verify(ctx, entity.GlobalAdminRoles...); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied to update badge: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	badge, err := d.badgeRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found badge")
		}

		xcontext.Logger(ctx).Errorf("Cannot get badge: %v", err)
		return nil, errorx.Unknown
	}

	updates := map[string]any{}
	if name := strings.TrimSpace(req.Name); name != "" && name != badge.Name {
		_, err := d.badgeRepo.GetByName(ctx, name)
		if err == nil {
			return nil, errorx.New(errorx.AlreadyExists, "Badge %s already exists", name)
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get badge by name: %v", err)
			return nil, errorx.Unknown
		}

		updates["name"] = name
	}

	if req.Description != "" {
		updates["description"] = req.Description
	}

	if req.ImageURL != "" {
		updates["image_url"] = req.ImageURL
	}

	if category := strings.TrimSpace(req.Category); category != "" {
		updates["category"] = category
	}

	if len(updates) == 0 {
		return &model.UpdateBadgeResponse{}, nil
	}

	if err := d.badgeRepo.UpdateByID(ctx, badge.ID, updates); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update badge: %v", err)
		return nil, errorx.Unknown
	}

	return &model.UpdateBadgeResponse{}, nil
}

// Delete removes the badge from every holder and unlinks it from its quests.
func (d *badgeDomain) Delete(
	ctx context.Context, req *model.DeleteBadgeRequest,
) (*model.DeleteBadgeResponse, error) {
	if err := d.roleVerifier.Verify(ctx, entity.GlobalAdminRoles...); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied to delete badge: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	if _, err := d.badgeRepo.GetByID(ctx, req.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found badge")
		}

		xcontext.Logger(ctx).Errorf("Cannot get badge: %v", err)
		return nil, errorx.Unknown
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.questRepo.UnlinkBadge(ctx, req.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot unlink badge from quests: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.userBadgeRepo.DeleteByBadgeID(ctx, req.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete user badges: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.badgeRepo.Delete(ctx, req.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete badge: %v", err)
		return nil, errorx.Unknown
	}

	if _, err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit badge deletion: %v", err)
		return nil, errorx.Unknown
	}

	return &model.DeleteBadgeResponse{}, nil
}

func (d *badgeDomain) GetAll(
	ctx context.Context, req *model.GetAllBadgesRequest,
) (*model.GetAllBadgesResponse, error) {
	badges, err := d.badgeRepo.GetAll(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get all badges: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.Badge{}
	for i := range badges {
		result = append(result, convertBadge(&badges[i]))
	}

	return &model.GetAllBadgesResponse{Badges: result}, nil
}

func (d *badgeDomain) GetUserBadges(
	ctx context.Context, req *model.GetUserBadgesRequest,
) (*model.GetUserBadgesResponse, error) {
	userID := req.UserID
	if userID == "" {
		userID = xcontext.RequestUserID(ctx)
	}

	if _, err := d.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	badges, err := getUserBadges(ctx, d.userBadgeRepo, d.badgeRepo, userID)
	if err != nil {
		return nil, err
	}

	return &model.GetUserBadgesResponse{Badges: badges}, nil
}

// Always return errorx in this function.
func getUserBadges(
	ctx context.Context,
	userBadgeRepo repository.UserBadgeRepository,
	badgeRepo repository.BadgeRepository,
	userID string,
) ([]model.Badge, error) {
	userBadges, err := userBadgeRepo.GetByUserID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get badges of user: %v", err)
		return nil, errorx.Unknown
	}

	ids := []string{}
	for _, ub := range userBadges {
		ids = append(ids, ub.BadgeID)
	}

	badges, err := badgeRepo.GetByIDs(ctx, ids)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get badges: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.Badge{}
	for i := range badges {
		result = append(result, convertBadge(&badges[i]))
	}

	return result, nil
}
