package model

type UploadEvidenceRequest struct {
	// Image is included in form-data.
}

type UploadEvidenceResponse struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url"`
}
