package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"challenge-service/apperr"
	"challenge-service/store"
)

func TestReportPostDuplicateReporter(t *testing.T) {
	st := store.NewMemory()
	svc := NewPostService(st, &recordingMedia{})
	seedPost(t, st, "p1")

	require.NoError(t, svc.ReportPost(context.Background(), "u1", "p1"))

	err := svc.ReportPost(context.Background(), "u1", "p1")
	assert.Equal(t, apperr.AlreadyExists, apperr.KindOf(err))

	post, err := st.Posts().Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.True(t, post.Reported)
}

func TestReportPostValidation(t *testing.T) {
	st := store.NewMemory()
	svc := NewPostService(st, &recordingMedia{})

	err := svc.ReportPost(context.Background(), "", "p1")
	assert.Equal(t, apperr.Unauthenticated, apperr.KindOf(err))

	err = svc.ReportPost(context.Background(), "u1", "")
	assert.Equal(t, apperr.InvalidArgument, apperr.KindOf(err))

	err = svc.ReportPost(context.Background(), "u1", "missing")
	assert.Equal(t, apperr.InvalidArgument, apperr.KindOf(err))
}

func TestReportThresholdCascade(t *testing.T) {
	st := store.NewMemory()
	media := &recordingMedia{}
	svc := NewPostService(st, media)
	post := seedPost(t, st, "p1")

	// Nine distinct reporters: the post survives.
	for i := 0; i < ReportThreshold-1; i++ {
		require.NoError(t, svc.ReportPost(context.Background(), fmt.Sprintf("reporter-%d", i), "p1"))
	}
	_, err := st.Posts().Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Empty(t, media.deleted)

	// The tenth deletes the post and its media.
	require.NoError(t, svc.ReportPost(context.Background(), "reporter-final", "p1"))
	_, err = st.Posts().Get(context.Background(), "p1")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, []string{post.ImageURL}, media.deleted)
}

func TestReportComment(t *testing.T) {
	st := store.NewMemory()
	svc := NewPostService(st, &recordingMedia{})
	seedPost(t, st, "p1")

	commentID, err := svc.AddComment(context.Background(), "u1", "p1", "nice one")
	require.NoError(t, err)

	require.NoError(t, svc.ReportComment(context.Background(), "u2", "p1", commentID))
	// Duplicate comment reports are tolerated.
	require.NoError(t, svc.ReportComment(context.Background(), "u2", "p1", commentID))

	err = svc.ReportComment(context.Background(), "u2", "p1", "missing")
	assert.Equal(t, apperr.InvalidArgument, apperr.KindOf(err))

	err = svc.ReportComment(context.Background(), "", "p1", commentID)
	assert.Equal(t, apperr.Unauthenticated, apperr.KindOf(err))

	err = svc.ReportComment(context.Background(), "u2", "p1", "")
	assert.Equal(t, apperr.InvalidArgument, apperr.KindOf(err))
}

func TestDeletePostOwnership(t *testing.T) {
	st := store.NewMemory()
	media := &recordingMedia{}
	svc := NewPostService(st, media)
	post := seedPost(t, st, "p1")

	err := svc.DeletePost(context.Background(), "intruder", "p1", false)
	assert.Equal(t, apperr.FailedPrecondition, apperr.KindOf(err))

	require.NoError(t, svc.DeletePost(context.Background(), "u1", "p1", false))
	_, err = st.Posts().Get(context.Background(), "p1")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, []string{post.ImageURL}, media.deleted)

	// Admins may delete posts they do not own.
	seedPost(t, st, "p2")
	require.NoError(t, svc.DeletePost(context.Background(), "moderator", "p2", true))
}

func TestReactReplacesPreviousReaction(t *testing.T) {
	st := store.NewMemory()
	svc := NewPostService(st, &recordingMedia{})
	seedPost(t, st, "p1")

	require.NoError(t, svc.React(context.Background(), "u1", "p1", "🔥"))
	require.NoError(t, svc.React(context.Background(), "u1", "p1", "👏"))
	require.NoError(t, svc.Unreact(context.Background(), "u1", "p1"))
}

func TestDeletePostCascadesReports(t *testing.T) {
	st := store.NewMemory()
	svc := NewPostService(st, &recordingMedia{})
	seedPost(t, st, "p1")

	require.NoError(t, svc.ReportPost(context.Background(), "u2", "p1"))
	require.NoError(t, svc.DeletePost(context.Background(), "u1", "p1", false))

	count, err := st.Posts().CountReports(context.Background(), "p1")
	require.NoError(t, err)
	assert.Zero(t, count)
}
