package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"challenge-service/apperr"
	"challenge-service/models"
	"challenge-service/store"
)

func TestCreateChallenge(t *testing.T) {
	st := store.NewMemory()
	notifier := &recordingNotifier{}
	svc := NewChallengeService(st, notifier)

	challenge, err := svc.Create(context.Background(), "admin-1", CreateChallengeInput{
		Title:   "No-Coffee Week",
		Type:    models.ChallengeTypeMandatory,
		EndDate: time.Now().Add(7 * 24 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, "no-coffee-week", challenge.Slug)
	assert.Equal(t, int64(0), challenge.ParticipantsCount)

	got, err := svc.Get(context.Background(), challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, challenge.ID, got.ID)
}

func TestCreateChallengeValidation(t *testing.T) {
	st := store.NewMemory()
	svc := NewChallengeService(st, &recordingNotifier{})

	_, err := svc.Create(context.Background(), "", CreateChallengeInput{Title: "x", Type: models.ChallengeTypeOpen})
	assert.Equal(t, apperr.Unauthenticated, apperr.KindOf(err))

	_, err = svc.Create(context.Background(), "admin", CreateChallengeInput{Type: models.ChallengeTypeOpen})
	assert.Equal(t, apperr.InvalidArgument, apperr.KindOf(err))

	_, err = svc.Create(context.Background(), "admin", CreateChallengeInput{Title: "x", Type: "weekly"})
	assert.Equal(t, apperr.InvalidArgument, apperr.KindOf(err))

	_, err = svc.Create(context.Background(), "admin", CreateChallengeInput{
		Title: "x", Type: models.ChallengeTypeOpen, EndDate: time.Now().Add(-time.Hour),
	})
	assert.Equal(t, apperr.InvalidArgument, apperr.KindOf(err))
}

func TestListActiveExcludesEndedChallenges(t *testing.T) {
	st := store.NewMemory()
	svc := NewChallengeService(st, &recordingNotifier{})

	require.NoError(t, st.Challenges().Create(context.Background(), &models.Challenge{
		ID: "ended", Title: "Ended", Type: models.ChallengeTypeOpen, EndDate: time.Now().Add(-time.Hour),
	}))
	require.NoError(t, st.Challenges().Create(context.Background(), &models.Challenge{
		ID: "live", Title: "Live", Type: models.ChallengeTypeOpen, EndDate: time.Now().Add(time.Hour),
	}))

	active, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "live", active[0].ID)
}

func TestGetChallengeNotFound(t *testing.T) {
	svc := NewChallengeService(store.NewMemory(), &recordingNotifier{})
	_, err := svc.Get(context.Background(), "missing")
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}
