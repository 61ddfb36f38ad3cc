package common

import (
	"context"
	"errors"

	"github.com/questbycycle/backend/internal/entity"
	"github.com/questbycycle/backend/internal/repository"
	"github.com/questbycycle/backend/pkg/xcontext"
	"golang.org/x/exp/slices"
)

type GlobalRoleVerifier struct {
	userRepo repository.UserRepository
}

func NewGlobalRoleVerifier(userRepo repository.UserRepository) *GlobalRoleVerifier {
	return &GlobalRoleVerifier{userRepo: userRepo}
}

func (verifier *GlobalRoleVerifier) Verify(ctx context.Context, requiredRoles ...entity.GlobalRole) error {
	return verifier.VerifyUser(ctx, xcontext.RequestUserID(ctx), requiredRoles...)
}

func (verifier *GlobalRoleVerifier) VerifyUser(
	ctx context.Context, userID string, requiredRoles ...entity.GlobalRole,
) error {
	u, err := verifier.userRepo.GetByID(ctx, userID)
	if err != nil {
		return errors.New("user is not valid")
	}

	if !slices.Contains(requiredRoles, u.Role) {
		return errors.New("user role does not have permission")
	}

	return nil
}
