package entity

type ShoutBoardMessage struct {
	SnowFlakeBase

	GameID  string `gorm:"index"`
	UserID  string
	Message string
}
