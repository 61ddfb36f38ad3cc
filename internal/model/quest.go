package model

type CreateQuestRequest struct {
	GameID           string `json:"game_id"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	Points           int64  `json:"points"`
	CompletionLimit  int    `json:"completion_limit"`
	Frequency        string `json:"frequency"`
	Category         string `json:"category"`
	VerificationType string `json:"verification_type"`
	BadgeID          string `json:"badge_id"`
}

type CreateQuestResponse struct {
	ID string `json:"id"`
}

type UpdateQuestRequest struct {
	ID               string  `json:"id"`
	Title            *string `json:"title"`
	Description      *string `json:"description"`
	Points           *int64  `json:"points"`
	CompletionLimit  *int    `json:"completion_limit"`
	Frequency        *string `json:"frequency"`
	Category         *string `json:"category"`
	VerificationType *string `json:"verification_type"`
	BadgeID          *string `json:"badge_id"`
	Enabled          *bool   `json:"enabled"`
}

type UpdateQuestResponse struct{}

type GetQuestRequest struct {
	ID string `json:"id"`
}

type GetQuestResponse struct {
	Quest       Quest       `json:"quest"`
	Eligibility Eligibility `json:"eligibility"`
}

type GetListQuestRequest struct {
	GameID          string `json:"game_id"`
	Category        string `json:"category"`
	IncludeDisabled bool   `json:"include_disabled"`
	Offset          int    `json:"offset"`
	Limit           int    `json:"limit"`
}

type GetListQuestResponse struct {
	Quests []Quest `json:"quests"`
}

type GetQuestEligibilityRequest struct {
	QuestID string `json:"quest_id"`
}

type GetQuestEligibilityResponse Eligibility

type DeleteQuestRequest struct {
	ID string `json:"id"`
}

type DeleteQuestResponse struct{}
