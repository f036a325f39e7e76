package models

import (
	"time"
)

// Challenge types. Mandatory challenges allow at most one completed
// participation per user per calendar day.
const (
	ChallengeTypeMandatory = "mandatory"
	ChallengeTypeOpen      = "open"
)

// Challenge is a time-boxed event users participate in by uploading proof media.
// ParticipantsCount is a derived aggregate: every claim-creating and
// claim-destroying operation must update it inside the same transaction.
type Challenge struct {
	ID          string `json:"id" gorm:"primaryKey"`
	Slug        string `json:"slug" gorm:"index"`
	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description"`
	Type        string `json:"type" gorm:"type:varchar(16);not null;default:'open'"`

	ParticipantsCount int64 `json:"participants_count" gorm:"not null;default:0"`

	ImageURL  string    `json:"image_url"`
	EndDate   time.Time `json:"end_date" gorm:"index"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Active reports whether the challenge still accepts new claims.
func (c *Challenge) Active(now time.Time) bool {
	return c.EndDate.IsZero() || c.EndDate.After(now)
}
