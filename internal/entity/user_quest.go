package entity

import "time"

// UserQuest is the completion ledger row of a user for a quest.
type UserQuest struct {
	UserID        string `gorm:"primaryKey"`
	QuestID       string `gorm:"primaryKey"`
	Completions   int
	PointsAwarded int64
	CompletedAt   time.Time
}
