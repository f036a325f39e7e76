package services

import (
	"context"
	"errors"
	"log"
	"time"

	"challenge-service/store"
)

const (
	// ReapGraceWindow is how long a pending claim may live before a sweep
	// reclaims its counter slot.
	ReapGraceWindow = 5 * time.Minute
	// reapPageSize bounds the work of a single sweep; the remainder is
	// picked up on the next run.
	reapPageSize = 500
)

// ReaperService reclaims counter capacity for abandoned claims. It is the
// compensating mechanism for the claim→finalize workflow: clients that die
// mid-capture leave a pending claim behind, and the sweep deletes it and
// decrements the challenge counter.
//
// Sweeps hold no lock against each other. Each claim is handled with
// delete-if-exists semantics, so overlapping runs are idempotent.
type ReaperService struct {
	Store store.Store

	now func() time.Time
}

func NewReaperService(st store.Store) *ReaperService {
	return &ReaperService{Store: st, now: time.Now}
}

// ReapStale deletes pending claims older than the grace window, one
// transaction per claim so a single failure leaves the rest of the page
// unaffected. Returns how many claims were reclaimed.
func (s *ReaperService) ReapStale(ctx context.Context) int {
	cutoff := s.now().Add(-ReapGraceWindow)
	stale, err := s.Store.Participations().ListStale(ctx, cutoff, reapPageSize)
	if err != nil {
		log.Printf("[Reaper] ❌ listing stale claims: %v", err)
		return 0
	}
	if len(stale) == 0 {
		return 0
	}

	reaped := 0
	for _, claim := range stale {
		claim := claim
		// The transaction body may be replayed on conflict; only count the
		// claim once the commit went through.
		var deleted bool
		err := s.Store.Transaction(ctx, func(tx store.Store) error {
			deleted = false
			d, err := tx.Participations().DeletePending(ctx, claim.UserID, claim.ChallengeID, claim.ID)
			if err != nil {
				return err
			}
			if !d {
				// Finalized or cancelled since the page was read.
				return nil
			}
			if err := tx.Challenges().AddParticipants(ctx, claim.ChallengeID, -1); err != nil && !errors.Is(err, store.ErrNotFound) {
				return err
			}
			deleted = true
			return nil
		})
		if err != nil {
			log.Printf("[Reaper] ❌ failed to reap claim %s: %v", claim.ID, err)
			continue
		}
		if deleted {
			reaped++
		}
	}
	if reaped > 0 {
		log.Printf("[Reaper] ✅ reclaimed %d abandoned claim(s)", reaped)
	}
	return reaped
}
