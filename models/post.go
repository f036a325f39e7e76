package models

import (
	"time"
)

// Post is the proof-of-participation content produced by finalize.
//
// Rejected is tri-state: nil means the moderation pipeline has not scanned the
// media yet, false means it passed, true means it was blocked. Only the
// moderation pipeline writes this field.
type Post struct {
	ID              string  `json:"id" gorm:"primaryKey"`
	ChallengeID     string  `json:"challenge_id" gorm:"index;not null"`
	UserID          string  `json:"user_id" gorm:"index;not null"`
	ImageURL        string  `json:"image_url" gorm:"not null"`
	Caption         *string `json:"caption,omitempty"`
	ParticipationID *string `json:"participation_id,omitempty" gorm:"index"`
	Rejected        *bool   `json:"rejected,omitempty"`
	Reported        bool    `json:"reported" gorm:"not null;default:false"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// PostReport is unique per (post, reporter). Crossing the report threshold
// cascade-deletes the post and its media.
type PostReport struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	PostID     string    `json:"post_id" gorm:"uniqueIndex:idx_report_post_reporter;not null"`
	ReporterID string    `json:"reporter_id" gorm:"uniqueIndex:idx_report_post_reporter;not null"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// PostReaction is plain per-user CRUD with no invariants.
type PostReaction struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	PostID    string    `json:"post_id" gorm:"uniqueIndex:idx_reaction_post_user;not null"`
	UserID    string    `json:"user_id" gorm:"uniqueIndex:idx_reaction_post_user;not null"`
	Emoji     string    `json:"emoji" gorm:"type:varchar(16)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// Comment is plain CRUD; it exists here so comment reports have a target.
type Comment struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	PostID    string    `json:"post_id" gorm:"index;not null"`
	UserID    string    `json:"user_id" gorm:"index;not null"`
	Text      string    `json:"text" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// CommentReport flags a comment for review. Duplicates from the same reporter
// are tolerated (last one wins on timestamps), unlike post reports.
type CommentReport struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	PostID     string    `json:"post_id" gorm:"index;not null"`
	CommentID  string    `json:"comment_id" gorm:"index;not null"`
	ReporterID string    `json:"reporter_id" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}
