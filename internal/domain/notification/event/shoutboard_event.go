package event

import "time"

type ShoutEvent struct {
	ID        string    `json:"id"`
	GameID    string    `json:"game_id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func (ShoutEvent) Op() string {
	return "shout"
}

type BadgeAwardedEvent struct {
	ShoutEvent
	BadgeID string `json:"badge_id"`
}

func (BadgeAwardedEvent) Op() string {
	return "badge_awarded"
}
