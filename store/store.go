// store holds the persistence boundary of the service. Services depend on
// these interfaces only, so the orchestrator can be tested against the
// in-memory implementation while production runs on gorm/postgres.
package store

import (
	"context"
	"errors"
	"time"

	"challenge-service/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Store aggregates the repositories and the transaction primitive.
//
// Transaction runs fn against a Store view whose writes commit atomically or
// not at all. Bodies may be replayed on conflict, so they must be free of
// non-repository side effects.
type Store interface {
	Challenges() ChallengeRepository
	Participations() ParticipationRepository
	Posts() PostRepository
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type ChallengeRepository interface {
	Create(ctx context.Context, challenge *models.Challenge) error
	Get(ctx context.Context, id string) (*models.Challenge, error)
	Delete(ctx context.Context, id string) error
	// AddParticipants applies an atomic delta to participants_count.
	AddParticipants(ctx context.Context, id string, delta int64) error
	ListActive(ctx context.Context, now time.Time) ([]models.Challenge, error)
	// ListEndedBefore returns challenges whose end date passed before cutoff.
	ListEndedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Challenge, error)
}

type ParticipationRepository interface {
	Create(ctx context.Context, claim *models.ParticipationClaim) error
	Get(ctx context.Context, userID, id string) (*models.ParticipationClaim, error)
	// DeletePending removes the claim only while it is not completed and it
	// belongs to both the user and the challenge; reports whether a row was
	// actually deleted. The challenge scope keeps counter decrements tied to
	// the claim that released them.
	DeletePending(ctx context.Context, userID, challengeID, id string) (bool, error)
	MarkCompleted(ctx context.Context, userID, challengeID, id string) error
	// CountCompletedSince counts the user's completed claims for a challenge
	// created at or after since. Used for the mandatory daily dedup check.
	CountCompletedSince(ctx context.Context, userID, challengeID string, since time.Time) (int64, error)
	// ListStale returns pending claims created before cutoff, oldest first.
	ListStale(ctx context.Context, cutoff time.Time, limit int) ([]models.ParticipationClaim, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	Get(ctx context.Context, id string) (*models.Post, error)
	Delete(ctx context.Context, id string) error
	SetRejected(ctx context.Context, id string, rejected bool) error
	ListByChallenge(ctx context.Context, challengeID string, limit int) ([]models.Post, error)
	// ListOrphans returns posts whose challenge no longer exists.
	ListOrphans(ctx context.Context, limit int) ([]models.Post, error)

	CreateReport(ctx context.Context, report *models.PostReport) error // ErrDuplicate per (post, reporter)
	CountReports(ctx context.Context, postID string) (int64, error)
	MarkReported(ctx context.Context, postID string) error

	CreateReaction(ctx context.Context, reaction *models.PostReaction) error
	DeleteReaction(ctx context.Context, postID, userID string) error
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, id string) (*models.Comment, error)
	CreateCommentReport(ctx context.Context, report *models.CommentReport) error
}
