package domain

import (
	"context"

	"github.com/questbycycle/backend/internal/common"
	"github.com/questbycycle/backend/internal/model"
	"github.com/questbycycle/backend/pkg/errorx"
	"github.com/questbycycle/backend/pkg/storage"
	"github.com/questbycycle/backend/pkg/xcontext"
)

type FileDomain interface {
	UploadEvidence(context.Context, *model.UploadEvidenceRequest) (*model.UploadEvidenceResponse, error)
}

type fileDomain struct {
	storage storage.Storage
}

func NewFileDomain(storage storage.Storage) *fileDomain {
	return &fileDomain{storage: storage}
}

// UploadEvidence stores the photo of a submission. The returned url is then
// sent as the image url of the submission.
func (d *fileDomain) UploadEvidence(
	ctx context.Context, req *model.UploadEvidenceRequest,
) (*model.UploadEvidenceResponse, error) {
	resp, err := common.ProcessImage(ctx, d.storage, "image", "evidence/"+xcontext.RequestUserID(ctx))
	if err != nil {
		return nil, err
	}

	if len(resp) != len(common.EvidenceSizes) {
		xcontext.Logger(ctx).Errorf("Expected %d uploaded images, got %d", len(common.EvidenceSizes), len(resp))
		return nil, errorx.Unknown
	}

	return &model.UploadEvidenceResponse{
		URL:          resp[0].Url,
		ThumbnailURL: resp[1].Url,
	}, nil
}
