package entity

import (
	"database/sql"
	"strings"
	"time"

	"github.com/questbycycle/backend/pkg/enum"
)

type Frequency string

var (
	FrequencyDaily   = enum.New(Frequency("daily"))
	FrequencyWeekly  = enum.New(Frequency("weekly"))
	FrequencyMonthly = enum.New(Frequency("monthly"))

	// FrequencyUnknown marks legacy rows whose stored value is not recognized.
	FrequencyUnknown = enum.New(Frequency("unknown"))
)

// ParseFrequency maps a raw stored value to a known frequency. Unrecognized
// values map to FrequencyUnknown.
func ParseFrequency(s string) Frequency {
	f, err := enum.ToEnum[Frequency](strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return FrequencyUnknown
	}

	return f
}

// Window returns the rolling period length of the frequency. The second value
// is false when the frequency is not recognized, in which case a one day
// window is returned.
func (f Frequency) Window() (time.Duration, bool) {
	switch ParseFrequency(string(f)) {
	case FrequencyDaily:
		return 24 * time.Hour, true
	case FrequencyWeekly:
		return 7 * 24 * time.Hour, true
	case FrequencyMonthly:
		return 30 * 24 * time.Hour, true
	default:
		return 24 * time.Hour, false
	}
}

type VerificationType string

var (
	VerificationPhoto        = enum.New(VerificationType("photo"))
	VerificationComment      = enum.New(VerificationType("comment"))
	VerificationPhotoComment = enum.New(VerificationType("photo_comment"))
	VerificationQRCode       = enum.New(VerificationType("qr_code"))
	VerificationPause        = enum.New(VerificationType("pause"))

	VerificationUnknown = enum.New(VerificationType("unknown"))
)

func ParseVerificationType(s string) VerificationType {
	v, err := enum.ToEnum[VerificationType](strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return VerificationUnknown
	}

	return v
}

type Quest struct {
	Base

	GameID           string `gorm:"index"`
	Title            string
	Description      string
	Points           int64
	CompletionLimit  int
	Frequency        Frequency
	Category         string `gorm:"index"`
	VerificationType VerificationType
	BadgeID          sql.NullString `gorm:"index"`
	Disabled         bool
}

func (q *Quest) Enabled() bool {
	return !q.Disabled
}
