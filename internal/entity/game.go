package entity

import "time"

type Game struct {
	Base

	Title       string
	Description string
	GameCode    string `gorm:"index"`
	StartDate   time.Time
	EndDate     time.Time
	CreatedBy   string

	TwitterToken         string
	FacebookPageID       string
	FacebookAccessToken  string
	InstagramUserID      string
	InstagramAccessToken string
}

// IsActive reports whether submissions are accepted at the given time. Both
// ends of the window are inclusive.
func (g *Game) IsActive(now time.Time) bool {
	return !now.Before(g.StartDate) && !now.After(g.EndDate)
}
