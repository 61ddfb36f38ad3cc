package model

type ShoutRequest struct {
	GameID  string `json:"game_id"`
	Message string `json:"message"`
}

type ShoutResponse ShoutBoardMessage

type GetShoutBoardRequest struct {
	GameID string `json:"game_id"`

	// BeforeID is the id of the oldest message the client already has.
	BeforeID string `json:"before_id"`
	Limit    int    `json:"limit"`
}

type GetShoutBoardResponse struct {
	Messages []ShoutBoardMessage `json:"messages"`
}
