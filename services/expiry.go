package services

import (
	"context"
	"log"
	"time"

	"challenge-service/models"
	"challenge-service/store"
)

const (
	// ExpiryRetention is how long a finished challenge and its posts are
	// kept before the hourly sweep removes them.
	ExpiryRetention = 7 * 24 * time.Hour
	// expiryBatchSize bounds per-challenge post deletion within one pass.
	expiryBatchSize = 200
	// expirySweepChallenges bounds how many aged challenges one run touches.
	expirySweepChallenges = 50
)

// ExpiryService is the hourly bulk cleanup: challenges whose end date passed
// the retention window lose their posts, media and finally the challenge row;
// posts whose challenge vanished out of band are removed as orphans. Partial
// failure on one challenge never blocks the rest, and re-running the sweep is
// idempotent.
type ExpiryService struct {
	Store store.Store
	Media MediaStore

	now func() time.Time
}

func NewExpiryService(st store.Store, media MediaStore) *ExpiryService {
	return &ExpiryService{Store: st, Media: media, now: time.Now}
}

// Sweep runs one expiry pass. Returns the number of posts deleted.
func (s *ExpiryService) Sweep(ctx context.Context) int {
	cutoff := s.now().Add(-ExpiryRetention)
	removed := 0

	expired, err := s.Store.Challenges().ListEndedBefore(ctx, cutoff, expirySweepChallenges)
	if err != nil {
		log.Printf("[Expiry] ❌ listing aged challenges: %v", err)
	}
	for _, challenge := range expired {
		n, err := s.purgeChallenge(ctx, challenge)
		removed += n
		if err != nil {
			log.Printf("[Expiry] ❌ purging challenge %s: %v", challenge.ID, err)
			continue
		}
		if err := s.Store.Challenges().Delete(ctx, challenge.ID); err != nil {
			log.Printf("[Expiry] ❌ deleting challenge %s: %v", challenge.ID, err)
		} else {
			log.Printf("[Expiry] ✅ removed aged challenge %s (%d post(s))", challenge.ID, n)
		}
	}

	orphans, err := s.Store.Posts().ListOrphans(ctx, expiryBatchSize)
	if err != nil {
		log.Printf("[Expiry] ❌ listing orphan posts: %v", err)
		return removed
	}
	for _, post := range orphans {
		if err := s.deletePostWithMedia(ctx, post); err != nil {
			log.Printf("[Expiry] ❌ deleting orphan post %s: %v", post.ID, err)
			continue
		}
		removed++
	}
	if len(orphans) > 0 {
		log.Printf("[Expiry] ✅ removed %d orphan post(s)", len(orphans))
	}
	return removed
}

// purgeChallenge deletes the challenge's posts in fixed-size batches until
// none remain. The first failing batch stops this challenge for the run; the
// leftovers are picked up next hour.
func (s *ExpiryService) purgeChallenge(ctx context.Context, challenge models.Challenge) (int, error) {
	removed := 0
	for {
		posts, err := s.Store.Posts().ListByChallenge(ctx, challenge.ID, expiryBatchSize)
		if err != nil {
			return removed, err
		}
		if len(posts) == 0 {
			return removed, nil
		}
		for _, post := range posts {
			if err := s.deletePostWithMedia(ctx, post); err != nil {
				return removed, err
			}
			removed++
		}
		if len(posts) < expiryBatchSize {
			return removed, nil
		}
	}
}

func (s *ExpiryService) deletePostWithMedia(ctx context.Context, post models.Post) error {
	if err := s.Media.Delete(ctx, post.ImageURL); err != nil {
		log.Printf("[Expiry] ⚠️ failed to delete media for post %s: %v", post.ID, err)
	}
	return s.Store.Posts().Delete(ctx, post.ID)
}
