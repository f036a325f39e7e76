package models

import (
	"time"
)

// ParticipationClaim tracks one user's attempt at a challenge from claim to
// completion. A claim is either Completed (terminal, never reaped) or pending
// with a bounded lifetime: the reaper deletes pending claims older than the
// grace window and releases their counter slot.
type ParticipationClaim struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	UserID      string    `json:"user_id" gorm:"index:idx_claims_user_challenge;not null"`
	ChallengeID string    `json:"challenge_id" gorm:"index:idx_claims_user_challenge;not null"`
	Completed   bool      `json:"completed" gorm:"not null;default:false;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}
