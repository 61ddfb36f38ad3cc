package model

type GetMeRequest struct{}

type GetMeResponse struct {
	User   User        `json:"user"`
	Badges []Badge     `json:"badges"`
	Quests []UserQuest `json:"quests"`
}

type GetUserRequest struct {
	UserID string `json:"user_id"`
}

type GetUserResponse struct {
	User   User    `json:"user"`
	Badges []Badge `json:"badges"`
}

type GetLeaderboardRequest struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type GetLeaderboardResponse struct {
	Leaderboard []UserStatistic `json:"leaderboard"`
}

// AccessToken is the object signed in access tokens.
type AccessToken struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
