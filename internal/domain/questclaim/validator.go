package questclaim

import (
	"context"
	"strings"

	"github.com/questbycycle/backend/internal/entity"
	"github.com/questbycycle/backend/pkg/errorx"
)

// Evidence is what the user attaches to a submission.
type Evidence struct {
	ImageURL string
	Comment  string
}

func (e Evidence) hasPhoto() bool {
	return strings.TrimSpace(e.ImageURL) != ""
}

func (e Evidence) hasComment() bool {
	return strings.TrimSpace(e.Comment) != ""
}

// Validator checks the evidence against the verification type of a quest.
type Validator interface {
	// Always return errorx in this method.
	Validate(ctx context.Context, evidence Evidence) error
}

// NewValidator returns the validator of the verification type. Unknown types
// are rejected.
func NewValidator(verificationType entity.VerificationType) (Validator, error) {
	switch entity.ParseVerificationType(string(verificationType)) {
	case entity.VerificationPhoto:
		return &evidenceValidator{needPhoto: true}, nil
	case entity.VerificationComment:
		return &evidenceValidator{needComment: true}, nil
	case entity.VerificationPhotoComment:
		return &evidenceValidator{needPhoto: true, needComment: true}, nil
	case entity.VerificationQRCode:
		return qrCodeValidator{}, nil
	case entity.VerificationPause:
		return pauseValidator{}, nil
	}

	return nil, errorx.New(errorx.BadRequest, "Unsupported verification type %s", verificationType)
}

// Photo, comment and photo_comment validator.
type evidenceValidator struct {
	needPhoto   bool
	needComment bool
}

func (v *evidenceValidator) Validate(_ context.Context, evidence Evidence) error {
	if v.needPhoto && !evidence.hasPhoto() {
		return errorx.New(errorx.BadRequest, "A photo is required for this quest")
	}

	if v.needComment && !evidence.hasComment() {
		return errorx.New(errorx.BadRequest, "A comment is required for this quest")
	}

	return nil
}

// The code was already scanned to reach the submission.
type qrCodeValidator struct{}

func (qrCodeValidator) Validate(context.Context, Evidence) error {
	return nil
}

type pauseValidator struct{}

func (pauseValidator) Validate(context.Context, Evidence) error {
	return errorx.New(errorx.Unavailable, "This quest is paused")
}
