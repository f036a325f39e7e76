package services

import (
	"context"
	"errors"
	"log"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"challenge-service/apperr"
	"challenge-service/models"
	"challenge-service/store"
)

const maxCaptionLength = 80

// ModerationQueue is the post-created trigger path into the moderation
// pipeline. Enqueue must never block the caller.
type ModerationQueue interface {
	Enqueue(postID string)
}

// ParticipationService is the transactional state machine behind claim,
// finalize and cancel. All counter mutations happen inside a transaction that
// also touches the triggering claim record, so participants_count stays
// causally consistent with the ledger.
type ParticipationService struct {
	Store      store.Store
	Policy     ContentPolicy
	Moderation ModerationQueue

	now func() time.Time
}

func NewParticipationService(st store.Store, policy ContentPolicy, moderation ModerationQueue) *ParticipationService {
	return &ParticipationService{
		Store:      st,
		Policy:     policy,
		Moderation: moderation,
		now:        time.Now,
	}
}

// Claim reserves a participation slot: it creates a pending claim and
// increments the challenge counter atomically. For mandatory challenges the
// one-completed-claim-per-day check runs inside the same transaction, so two
// concurrent claims cannot both slip past it.
func (s *ParticipationService) Claim(ctx context.Context, userID, challengeID, challengeType string) (string, error) {
	if userID == "" {
		return "", apperr.New(apperr.Unauthenticated, "caller identity required")
	}
	if challengeID == "" || challengeType == "" {
		return "", apperr.New(apperr.InvalidArgument, "challenge_id and type are required")
	}

	claimID := uuid.NewString()
	err := s.Store.Transaction(ctx, func(tx store.Store) error {
		challenge, err := tx.Challenges().Get(ctx, challengeID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.New(apperr.NotFound, "challenge not found")
			}
			return apperr.Wrap(apperr.Unknown, "fetch challenge", err)
		}
		if !challenge.Active(s.now()) {
			return apperr.New(apperr.FailedPrecondition, "challenge has ended")
		}

		if challengeType == models.ChallengeTypeMandatory {
			midnight := s.localMidnight()
			count, err := tx.Participations().CountCompletedSince(ctx, userID, challengeID, midnight)
			if err != nil {
				return apperr.Wrap(apperr.Unknown, "daily participation check", err)
			}
			if count > 0 {
				return apperr.New(apperr.FailedPrecondition, "already participated today")
			}
		}

		if err := tx.Challenges().AddParticipants(ctx, challengeID, 1); err != nil {
			return apperr.Wrap(apperr.Unknown, "increment participants", err)
		}
		claim := &models.ParticipationClaim{
			ID:          claimID,
			UserID:      userID,
			ChallengeID: challengeID,
			Completed:   false,
			CreatedAt:   s.now(),
		}
		if err := tx.Participations().Create(ctx, claim); err != nil {
			return apperr.Wrap(apperr.Unknown, "create claim", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return claimID, nil
}

// Finalize attaches the uploaded media to the claim: it creates the post and
// marks the claim completed in one transaction, then hands the post to the
// moderation pipeline. A claim that was cancelled or reaped in the meantime
// does not fail the post; the slot is simply gone.
func (s *ParticipationService) Finalize(ctx context.Context, userID, challengeID, imageURL, caption, claimID string) (string, error) {
	if userID == "" {
		return "", apperr.New(apperr.Unauthenticated, "caller identity required")
	}
	if challengeID == "" || imageURL == "" {
		return "", apperr.New(apperr.InvalidArgument, "challenge_id and image_url are required")
	}
	if caption != "" {
		if utf8.RuneCountInString(caption) > maxCaptionLength {
			return "", apperr.Newf(apperr.InvalidArgument, "caption exceeds %d characters", maxCaptionLength)
		}
		if !s.Policy.IsAllowed(caption) {
			return "", apperr.New(apperr.FailedPrecondition, "caption contains blocked words")
		}
	}

	post := &models.Post{
		ID:          uuid.NewString(),
		ChallengeID: challengeID,
		UserID:      userID,
		ImageURL:    imageURL,
		Reported:    false,
		CreatedAt:   s.now(),
	}
	if caption != "" {
		post.Caption = &caption
	}
	if claimID != "" {
		post.ParticipationID = &claimID
	}

	err := s.Store.Transaction(ctx, func(tx store.Store) error {
		if claimID != "" {
			claim, err := tx.Participations().Get(ctx, userID, claimID)
			switch {
			case errors.Is(err, store.ErrNotFound):
				// Cancelled or reaped in the meantime. Keep the post, but
				// without a back-reference to a claim that no longer exists.
				log.Printf("[Participation] finalize: claim %s already gone for user %s, post %s kept", claimID, userID, post.ID)
				post.ParticipationID = nil
			case err != nil:
				return apperr.Wrap(apperr.Unknown, "fetch claim", err)
			case claim.ChallengeID != challengeID:
				return apperr.New(apperr.InvalidArgument, "claim does not belong to this challenge")
			default:
				if err := tx.Participations().MarkCompleted(ctx, userID, challengeID, claimID); err != nil {
					return apperr.Wrap(apperr.Unknown, "complete claim", err)
				}
			}
		}
		if err := tx.Posts().Create(ctx, post); err != nil {
			return apperr.Wrap(apperr.Unknown, "create post", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	if s.Moderation != nil {
		s.Moderation.Enqueue(post.ID)
	}
	return post.ID, nil
}

// Cancel deletes a pending claim and releases its counter slot, atomically.
// It is a no-op when the claim is missing or already completed, which makes
// it idempotent and safe to race with finalize.
func (s *ParticipationService) Cancel(ctx context.Context, userID, challengeID, claimID string) error {
	if userID == "" {
		return apperr.New(apperr.Unauthenticated, "caller identity required")
	}
	if challengeID == "" || claimID == "" {
		return apperr.New(apperr.InvalidArgument, "challenge_id and claim_id are required")
	}

	return s.Store.Transaction(ctx, func(tx store.Store) error {
		deleted, err := tx.Participations().DeletePending(ctx, userID, challengeID, claimID)
		if err != nil {
			return apperr.Wrap(apperr.Unknown, "delete claim", err)
		}
		if !deleted {
			return nil
		}
		if err := tx.Challenges().AddParticipants(ctx, challengeID, -1); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// Challenge removed out of band; nothing left to decrement.
				return nil
			}
			return apperr.Wrap(apperr.Unknown, "decrement participants", err)
		}
		return nil
	})
}

// localMidnight is the start of the current calendar day in the server's
// timezone, the boundary for the mandatory daily dedup.
func (s *ParticipationService) localMidnight() time.Time {
	now := s.now().Local()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
