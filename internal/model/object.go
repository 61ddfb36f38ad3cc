package model

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	Score int64  `json:"score"`
}

type UserStatistic struct {
	User  User  `json:"user"`
	Score int64 `json:"score"`
	Rank  int   `json:"rank"`
}

type Game struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	GameCode    string `json:"game_code,omitempty"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	IsActive    bool   `json:"is_active"`
	CreatedBy   string `json:"created_by,omitempty"`
}

type Quest struct {
	ID               string `json:"id"`
	GameID           string `json:"game_id"`
	Title            string `json:"title"`
	Description      string `json:"description,omitempty"`
	Points           int64  `json:"points"`
	CompletionLimit  int    `json:"completion_limit"`
	Frequency        string `json:"frequency"`
	Category         string `json:"category,omitempty"`
	VerificationType string `json:"verification_type"`
	BadgeID          string `json:"badge_id,omitempty"`
	Enabled          bool   `json:"enabled"`
	CreatedAt        string `json:"created_at,omitempty"`
}

type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	Category    string `json:"category,omitempty"`
}

type Eligibility struct {
	Allowed        bool   `json:"allowed"`
	NextEligibleAt string `json:"next_eligible_at,omitempty"`
}

type QuestSubmission struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	QuestID      string `json:"quest_id"`
	ImageURL     string `json:"image_url,omitempty"`
	Comment      string `json:"comment,omitempty"`
	TwitterURL   string `json:"twitter_url,omitempty"`
	FacebookURL  string `json:"facebook_url,omitempty"`
	InstagramURL string `json:"instagram_url,omitempty"`
	CreatedAt    string `json:"created_at"`
}

type UserQuest struct {
	QuestID       string `json:"quest_id"`
	Completions   int    `json:"completions"`
	PointsAwarded int64  `json:"points_awarded"`
	CompletedAt   string `json:"completed_at,omitempty"`
}

type ShoutBoardMessage struct {
	ID        string `json:"id"`
	GameID    string `json:"game_id"`
	UserID    string `json:"user_id"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}
