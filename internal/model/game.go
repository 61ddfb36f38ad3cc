package model

type CreateGameRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	GameCode    string `json:"game_code"`

	// RFC3339 timestamps.
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`

	TwitterToken         string `json:"twitter_token"`
	FacebookPageID       string `json:"facebook_page_id"`
	FacebookAccessToken  string `json:"facebook_access_token"`
	InstagramUserID      string `json:"instagram_user_id"`
	InstagramAccessToken string `json:"instagram_access_token"`
}

type CreateGameResponse struct {
	ID string `json:"id"`
}

type UpdateGameRequest struct {
	ID string `json:"id"`
	CreateGameRequest
}

type UpdateGameResponse struct{}

type DeleteGameRequest struct {
	ID string `json:"id"`
}

type DeleteGameResponse struct{}

type GetGameRequest struct {
	GameID string `json:"game_id"`
}

type GetGameResponse Game

type GetListGameRequest struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type GetListGameResponse struct {
	Games []Game `json:"games"`
}
