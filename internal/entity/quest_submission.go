package entity

type QuestSubmission struct {
	Base

	UserID       string `gorm:"index:idx_quest_submissions_user_quest"`
	QuestID      string `gorm:"index:idx_quest_submissions_user_quest"`
	ImageURL     string
	Comment      string
	TwitterURL   string
	FacebookURL  string
	InstagramURL string
}
