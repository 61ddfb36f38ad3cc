package model

type CreateBadgeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	Category    string `json:"category"`
}

type CreateBadgeResponse struct {
	ID string `json:"id"`
}

type GetAllBadgesRequest struct{}

type GetAllBadgesResponse struct {
	Badges []Badge `json:"badges"`
}

type GetUserBadgesRequest struct {
	// UserID is the requester when empty.
	UserID string `json:"user_id"`
}

type GetUserBadgesResponse struct {
	Badges []Badge `json:"badges"`
}

type UpdateBadgeRequest struct {
	ID string `json:"id"`
	CreateBadgeRequest
}

type UpdateBadgeResponse struct{}

type DeleteBadgeRequest struct {
	ID string `json:"id"`
}

type DeleteBadgeResponse struct{}
