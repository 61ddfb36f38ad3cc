package model

type SubmitQuestRequest struct {
	QuestID  string `json:"quest_id"`
	ImageURL string `json:"image_url"`
	Comment  string `json:"comment"`
}

type SubmitQuestResponse struct {
	Submission  QuestSubmission `json:"submission"`
	Completions int             `json:"completions"`
	Points      int64           `json:"points"`
}

type DeleteSubmissionRequest struct {
	ID string `json:"id"`
}

type DeleteSubmissionResponse struct{}

type GetSubmissionRequest struct {
	ID string `json:"id"`
}

type GetSubmissionResponse QuestSubmission

type GetListSubmissionRequest struct {
	GameID  string `json:"game_id"`
	QuestID string `json:"quest_id"`
	UserID  string `json:"user_id"`
	Offset  int    `json:"offset"`
	Limit   int    `json:"limit"`
}

type GetListSubmissionResponse struct {
	Submissions []QuestSubmission `json:"submissions"`
}
