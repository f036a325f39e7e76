package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"challenge-service/models"
)

func TestMemoryTransactionRollsBackOnError(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Challenges().Create(ctx, &models.Challenge{
		ID: "c1", Title: "Run", Type: models.ChallengeTypeOpen, EndDate: time.Now().Add(time.Hour),
	}))

	boom := errors.New("boom")
	err := m.Transaction(ctx, func(tx Store) error {
		if err := tx.Challenges().AddParticipants(ctx, "c1", 1); err != nil {
			return err
		}
		if err := tx.Participations().Create(ctx, &models.ParticipationClaim{
			ID: "claim-1", UserID: "u1", ChallengeID: "c1", CreatedAt: time.Now(),
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// The writes made before the failure are gone.
	challenge, err := m.Challenges().Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), challenge.ParticipantsCount)
	_, err = m.Participations().Get(ctx, "u1", "claim-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryTransactionCommitsOnSuccess(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Challenges().Create(ctx, &models.Challenge{
		ID: "c1", Title: "Run", Type: models.ChallengeTypeOpen, EndDate: time.Now().Add(time.Hour),
	}))

	err := m.Transaction(ctx, func(tx Store) error {
		return tx.Challenges().AddParticipants(ctx, "c1", 1)
	})
	require.NoError(t, err)

	challenge, err := m.Challenges().Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), challenge.ParticipantsCount)
}
