package entity

import "time"

type Badge struct {
	Base

	Name        string `gorm:"unique"`
	Description string
	ImageURL    string
	Category    string `gorm:"index"`
}

type UserBadge struct {
	UserID    string `gorm:"primaryKey"`
	BadgeID   string `gorm:"primaryKey"`
	CreatedAt time.Time
}
