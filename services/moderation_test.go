package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"challenge-service/models"
	"challenge-service/store"
)

type stubClassifier struct {
	result SafeSearchResult
	err    error
	calls  int
}

func (c *stubClassifier) Classify(context.Context, string) (SafeSearchResult, error) {
	c.calls++
	return c.result, c.err
}

type recordingMedia struct {
	deleted []string
	err     error
}

func (m *recordingMedia) Delete(_ context.Context, url string) error {
	m.deleted = append(m.deleted, url)
	return m.err
}

type recordingNotifier struct {
	blocked []string
}

func (n *recordingNotifier) PostBlocked(_ context.Context, _, postID string) {
	n.blocked = append(n.blocked, postID)
}

func (n *recordingNotifier) ChallengeCreated(context.Context, string, string) {}

func safe() SafeSearchResult {
	return SafeSearchResult{Adult: "VERY_UNLIKELY", Spoof: "UNLIKELY", Medical: "UNLIKELY", Violence: "VERY_UNLIKELY", Racy: "UNLIKELY"}
}

func seedPost(t *testing.T, st store.Store, id string) *models.Post {
	t.Helper()
	post := &models.Post{ID: id, ChallengeID: "c1", UserID: "u1", ImageURL: "https://cdn.test/" + id + ".jpg"}
	require.NoError(t, st.Posts().Create(context.Background(), post))
	return post
}

func TestScanPasses(t *testing.T) {
	st := store.NewMemory()
	classifier := &stubClassifier{result: safe()}
	media := &recordingMedia{}
	notifier := &recordingNotifier{}
	svc := NewModerationService(st, classifier, media, notifier)
	seedPost(t, st, "p1")

	require.NoError(t, svc.Scan(context.Background(), "p1"))

	post, err := st.Posts().Get(context.Background(), "p1")
	require.NoError(t, err)
	require.NotNil(t, post.Rejected)
	assert.False(t, *post.Rejected)
	assert.Empty(t, media.deleted)
	assert.Empty(t, notifier.blocked)
}

func TestScanBlocksRiskyMedia(t *testing.T) {
	for _, category := range []string{"adult", "violence", "racy"} {
		result := safe()
		switch category {
		case "adult":
			result.Adult = "LIKELY"
		case "violence":
			result.Violence = "VERY_LIKELY"
		case "racy":
			result.Racy = "LIKELY"
		}

		st := store.NewMemory()
		media := &recordingMedia{}
		notifier := &recordingNotifier{}
		svc := NewModerationService(st, &stubClassifier{result: result}, media, notifier)
		post := seedPost(t, st, "p1")

		require.NoError(t, svc.Scan(context.Background(), "p1"), category)

		got, err := st.Posts().Get(context.Background(), "p1")
		require.NoError(t, err, category)
		require.NotNil(t, got.Rejected, category)
		assert.True(t, *got.Rejected, category)
		assert.Equal(t, []string{post.ImageURL}, media.deleted, category)
		assert.Equal(t, []string{"p1"}, notifier.blocked, category)
	}
}

func TestScanRiskyButOnlyPossibleIsAllowed(t *testing.T) {
	st := store.NewMemory()
	result := safe()
	result.Adult = "POSSIBLE"
	result.Racy = "POSSIBLE"
	svc := NewModerationService(st, &stubClassifier{result: result}, &recordingMedia{}, &recordingNotifier{})
	seedPost(t, st, "p1")

	require.NoError(t, svc.Scan(context.Background(), "p1"))
	post, err := st.Posts().Get(context.Background(), "p1")
	require.NoError(t, err)
	require.NotNil(t, post.Rejected)
	assert.False(t, *post.Rejected)
}

func TestScanClassifierFailureLeavesPostUnscanned(t *testing.T) {
	st := store.NewMemory()
	svc := NewModerationService(st, &stubClassifier{err: errors.New("quota exceeded")}, &recordingMedia{}, &recordingNotifier{})
	seedPost(t, st, "p1")

	err := svc.Scan(context.Background(), "p1")
	require.Error(t, err)

	post, getErr := st.Posts().Get(context.Background(), "p1")
	require.NoError(t, getErr)
	assert.Nil(t, post.Rejected)
}

func TestScanDeletedPostIsNoop(t *testing.T) {
	st := store.NewMemory()
	classifier := &stubClassifier{result: safe()}
	svc := NewModerationService(st, classifier, &recordingMedia{}, &recordingNotifier{})

	require.NoError(t, svc.Scan(context.Background(), "gone"))
	assert.Zero(t, classifier.calls)
}

func TestScanIsLastWriteWins(t *testing.T) {
	st := store.NewMemory()
	classifier := &stubClassifier{result: safe()}
	classifier.result.Adult = "VERY_LIKELY"
	media := &recordingMedia{}
	svc := NewModerationService(st, classifier, media, &recordingNotifier{})
	seedPost(t, st, "p1")

	require.NoError(t, svc.Scan(context.Background(), "p1"))
	post, err := st.Posts().Get(context.Background(), "p1")
	require.NoError(t, err)
	require.NotNil(t, post.Rejected)
	require.True(t, *post.Rejected)

	// The second trigger path re-runs the classifier; the verdict field is
	// overwritten, not accumulated.
	classifier.result = safe()
	require.NoError(t, svc.Scan(context.Background(), "p1"))
	post, err = st.Posts().Get(context.Background(), "p1")
	require.NoError(t, err)
	require.NotNil(t, post.Rejected)
	assert.False(t, *post.Rejected)
}

func TestScanBlockProceedsWhenMediaDeleteFails(t *testing.T) {
	st := store.NewMemory()
	result := safe()
	result.Violence = "LIKELY"
	media := &recordingMedia{err: errors.New("blob gone")}
	notifier := &recordingNotifier{}
	svc := NewModerationService(st, &stubClassifier{result: result}, media, notifier)
	seedPost(t, st, "p1")

	require.NoError(t, svc.Scan(context.Background(), "p1"))
	post, err := st.Posts().Get(context.Background(), "p1")
	require.NoError(t, err)
	require.NotNil(t, post.Rejected)
	assert.True(t, *post.Rejected)
	assert.Equal(t, []string{"p1"}, notifier.blocked)
}
