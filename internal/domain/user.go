package domain

import (
	"context"
	"errors"

	"github.com/questbycycle/backend/internal/common"
	"github.com/questbycycle/backend/internal/domain/statistic"
	"github.com/questbycycle/backend/internal/entity"
	"github.com/questbycycle/backend/internal/model"
	"github.com/questbycycle/backend/internal/repository"
	"github.com/questbycycle/backend/pkg/errorx"
	"github.com/questbycycle/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type UserDomain interface {
	GetMe(context.Context, *model.GetMeRequest) (*model.GetMeResponse, error)
	GetUser(context.Context, *model.GetUserRequest) (*model.GetUserResponse, error)
	GetLeaderboard(context.Context, *model.GetLeaderboardRequest) (*model.GetLeaderboardResponse, error)
}

type userDomain struct {
	userRepo      repository.UserRepository
	badgeRepo     repository.BadgeRepository
	userBadgeRepo repository.UserBadgeRepository
	userQuestRepo repository.UserQuestRepository
	leaderboard   statistic.Leaderboard
}

func NewUserDomain(
	userRepo repository.UserRepository,
	badgeRepo repository.BadgeRepository,
	userBadgeRepo repository.UserBadgeRepository,
	userQuestRepo repository.UserQuestRepository,
	leaderboard statistic.Leaderboard,
) *userDomain {
	return &userDomain{
		userRepo:      userRepo,
		badgeRepo:     badgeRepo,
		userBadgeRepo: userBadgeRepo,
		userQuestRepo: userQuestRepo,
		leaderboard:   leaderboard,
	}
}

func (d *userDomain) GetMe(ctx context.Context, req *model.GetMeRequest) (*model.GetMeResponse, error) {
	user, err := d.getUser(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		return nil, err
	}

	badges, err := getUserBadges(ctx, d.userBadgeRepo, d.badgeRepo, user.ID)
	if err != nil {
		return nil, err
	}

	userQuests, err := d.userQuestRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get ledger of user: %v", err)
		return nil, errorx.Unknown
	}

	quests := []model.UserQuest{}
	for i := range userQuests {
		quests = append(quests, convertUserQuest(&userQuests[i]))
	}

	return &model.GetMeResponse{
		User:   convertUser(user, true),
		Badges: badges,
		Quests: quests,
	}, nil
}

func (d *userDomain) GetUser(ctx context.Context, req *model.GetUserRequest) (*model.GetUserResponse, error) {
	user, err := d.getUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	badges, err := getUserBadges(ctx, d.userBadgeRepo, d.badgeRepo, user.ID)
	if err != nil {
		return nil, err
	}

	return &model.GetUserResponse{User: convertUser(user, false), Badges: badges}, nil
}

func (d *userDomain) GetLeaderboard(
	ctx context.Context, req *model.GetLeaderboardRequest,
) (*model.GetLeaderboardResponse, error) {
	offset, limit, err := common.NormalizePagination(ctx, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	result, err := d.leaderboard.GetLeaderboard(ctx, offset, limit)
	if err != nil {
		return nil, err
	}

	return &model.GetLeaderboardResponse{Leaderboard: result}, nil
}

func (d *userDomain) getUser(ctx context.Context, userID string) (*entity.User, error) {
	user, err := d.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	return user, nil
}
