package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"challenge-service/models"
	"challenge-service/store"
)

func TestReaperReclaimsAbandonedClaims(t *testing.T) {
	st := store.NewMemory()
	svc, _ := newTestParticipationService(st)
	reaper := NewReaperService(st)
	seedChallenge(t, st, "c1", models.ChallengeTypeOpen)

	_, err := svc.Claim(context.Background(), "u1", "c1", models.ChallengeTypeOpen)
	require.NoError(t, err)
	require.Equal(t, int64(1), challengeCount(t, st, "c1"))

	// Within the grace window nothing is touched.
	assert.Equal(t, 0, reaper.ReapStale(context.Background()))
	assert.Equal(t, int64(1), challengeCount(t, st, "c1"))

	// Six minutes later the abandoned claim is reclaimed.
	reaper.now = func() time.Time { return time.Now().Add(6 * time.Minute) }
	assert.Equal(t, 1, reaper.ReapStale(context.Background()))
	assert.Equal(t, int64(0), challengeCount(t, st, "c1"))

	// Re-running finds nothing; sweeps are idempotent.
	assert.Equal(t, 0, reaper.ReapStale(context.Background()))
	assert.Equal(t, int64(0), challengeCount(t, st, "c1"))
}

func TestReaperNeverDeletesCompletedClaims(t *testing.T) {
	st := store.NewMemory()
	svc, _ := newTestParticipationService(st)
	reaper := NewReaperService(st)
	seedChallenge(t, st, "c1", models.ChallengeTypeOpen)

	claimID, err := svc.Claim(context.Background(), "u1", "c1", models.ChallengeTypeOpen)
	require.NoError(t, err)
	_, err = svc.Finalize(context.Background(), "u1", "c1", "gs://x.jpg", "", claimID)
	require.NoError(t, err)

	reaper.now = func() time.Time { return time.Now().Add(24 * time.Hour) }
	assert.Equal(t, 0, reaper.ReapStale(context.Background()))

	claim, err := st.Participations().Get(context.Background(), "u1", claimID)
	require.NoError(t, err)
	assert.True(t, claim.Completed)
	assert.Equal(t, int64(1), challengeCount(t, st, "c1"))
}

// replayingStore reruns every transaction body once after rolling back the
// first attempt, the way a store may behave on serialization conflicts.
type replayingStore struct {
	store.Store
}

var errReplay = errors.New("serialization conflict")

func (r replayingStore) Transaction(ctx context.Context, fn func(tx store.Store) error) error {
	_ = r.Store.Transaction(ctx, func(tx store.Store) error {
		_ = fn(tx)
		return errReplay
	})
	return r.Store.Transaction(ctx, fn)
}

func TestReaperCountsOnlyCommittedReaps(t *testing.T) {
	mem := store.NewMemory()
	svc, _ := newTestParticipationService(mem)
	seedChallenge(t, mem, "c1", models.ChallengeTypeOpen)

	_, err := svc.Claim(context.Background(), "u1", "c1", models.ChallengeTypeOpen)
	require.NoError(t, err)
	require.Equal(t, int64(1), challengeCount(t, mem, "c1"))

	reaper := NewReaperService(replayingStore{mem})
	reaper.now = func() time.Time { return time.Now().Add(6 * time.Minute) }

	// The replayed first attempt must not inflate the count or the decrement.
	assert.Equal(t, 1, reaper.ReapStale(context.Background()))
	assert.Equal(t, int64(0), challengeCount(t, mem, "c1"))
}

func TestReaperSurvivesMissingChallenge(t *testing.T) {
	st := store.NewMemory()
	reaper := NewReaperService(st)

	// Pending claim whose challenge was deleted out of band.
	err := st.Participations().Create(context.Background(), &models.ParticipationClaim{
		ID:          "orphan",
		UserID:      "u1",
		ChallengeID: "gone",
		CreatedAt:   time.Now().Add(-time.Hour),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, reaper.ReapStale(context.Background()))
	_, err = st.Participations().Get(context.Background(), "u1", "orphan")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
