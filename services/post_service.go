package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"challenge-service/apperr"
	"challenge-service/models"
	"challenge-service/store"
)

// ReportThreshold is the number of distinct reporters that cascade-deletes a
// post and its media.
const ReportThreshold = 10

type PostService struct {
	Store store.Store
	Media MediaStore
}

func NewPostService(st store.Store, media MediaStore) *PostService {
	return &PostService{Store: st, Media: media}
}

// ReportPost records a unique (post, reporter) report. Crossing the threshold
// deletes the post and, best-effort, its backing media.
func (s *PostService) ReportPost(ctx context.Context, userID, postID string) error {
	if userID == "" {
		return apperr.New(apperr.Unauthenticated, "caller identity required")
	}
	if postID == "" {
		return apperr.New(apperr.InvalidArgument, "post_id is required")
	}

	post, err := s.Store.Posts().Get(ctx, postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.New(apperr.InvalidArgument, "post does not exist")
		}
		return apperr.Wrap(apperr.Unknown, "fetch post", err)
	}

	report := &models.PostReport{
		ID:         uuid.NewString(),
		PostID:     postID,
		ReporterID: userID,
		CreatedAt:  time.Now(),
	}
	if err := s.Store.Posts().CreateReport(ctx, report); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return apperr.New(apperr.AlreadyExists, "post already reported by this user")
		}
		return apperr.Wrap(apperr.Unknown, "create report", err)
	}
	if err := s.Store.Posts().MarkReported(ctx, postID); err != nil {
		log.Printf("[Report] ⚠️ failed to flag post %s as reported: %v", postID, err)
	}

	count, err := s.Store.Posts().CountReports(ctx, postID)
	if err != nil {
		log.Printf("[Report] ⚠️ failed to count reports for post %s: %v", postID, err)
		return nil
	}
	if count >= ReportThreshold {
		log.Printf("[Report] 🚫 post %s crossed %d reports, cascading delete", postID, ReportThreshold)
		if err := s.Media.Delete(ctx, post.ImageURL); err != nil {
			log.Printf("[Report] ⚠️ failed to delete media for post %s: %v", postID, err)
		}
		if err := s.Store.Posts().Delete(ctx, postID); err != nil {
			log.Printf("[Report] ❌ failed to delete post %s: %v", postID, err)
		}
	}
	return nil
}

// ReportComment flags a comment for review. Duplicate reports from the same
// reporter are accepted; comment reports feed a manual review queue, not a
// cascade.
func (s *PostService) ReportComment(ctx context.Context, userID, postID, commentID string) error {
	if userID == "" {
		return apperr.New(apperr.Unauthenticated, "caller identity required")
	}
	if postID == "" || commentID == "" {
		return apperr.New(apperr.InvalidArgument, "post_id and comment_id are required")
	}
	if _, err := s.Store.Posts().GetComment(ctx, commentID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.New(apperr.InvalidArgument, "comment does not exist")
		}
		return apperr.Wrap(apperr.Unknown, "fetch comment", err)
	}
	report := &models.CommentReport{
		ID:         uuid.NewString(),
		PostID:     postID,
		CommentID:  commentID,
		ReporterID: userID,
		CreatedAt:  time.Now(),
	}
	if err := s.Store.Posts().CreateCommentReport(ctx, report); err != nil {
		return apperr.Wrap(apperr.Unknown, "create comment report", err)
	}
	return nil
}

// DeletePost removes a post on behalf of its owner (or an admin) along with
// its media blob, best-effort.
func (s *PostService) DeletePost(ctx context.Context, userID, postID string, admin bool) error {
	if userID == "" {
		return apperr.New(apperr.Unauthenticated, "caller identity required")
	}
	if postID == "" {
		return apperr.New(apperr.InvalidArgument, "post_id is required")
	}
	post, err := s.Store.Posts().Get(ctx, postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.New(apperr.NotFound, "post not found")
		}
		return apperr.Wrap(apperr.Unknown, "fetch post", err)
	}
	if !admin && post.UserID != userID {
		return apperr.New(apperr.FailedPrecondition, "only the owner can delete this post")
	}
	if err := s.Media.Delete(ctx, post.ImageURL); err != nil {
		log.Printf("[Post] ⚠️ failed to delete media for post %s: %v", postID, err)
	}
	if err := s.Store.Posts().Delete(ctx, postID); err != nil {
		return apperr.Wrap(apperr.Unknown, "delete post", err)
	}
	return nil
}

// React upserts the caller's reaction on a post.
func (s *PostService) React(ctx context.Context, userID, postID, emoji string) error {
	if userID == "" {
		return apperr.New(apperr.Unauthenticated, "caller identity required")
	}
	if postID == "" || emoji == "" {
		return apperr.New(apperr.InvalidArgument, "post_id and emoji are required")
	}
	reaction := &models.PostReaction{
		ID:        uuid.NewString(),
		PostID:    postID,
		UserID:    userID,
		Emoji:     emoji,
		CreatedAt: time.Now(),
	}
	if err := s.Store.Posts().CreateReaction(ctx, reaction); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// Replace the previous reaction.
			if err := s.Store.Posts().DeleteReaction(ctx, postID, userID); err != nil {
				return apperr.Wrap(apperr.Unknown, "replace reaction", err)
			}
			if err := s.Store.Posts().CreateReaction(ctx, reaction); err != nil {
				return apperr.Wrap(apperr.Unknown, "create reaction", err)
			}
			return nil
		}
		return apperr.Wrap(apperr.Unknown, "create reaction", err)
	}
	return nil
}

// Unreact removes the caller's reaction, if any.
func (s *PostService) Unreact(ctx context.Context, userID, postID string) error {
	if userID == "" {
		return apperr.New(apperr.Unauthenticated, "caller identity required")
	}
	if postID == "" {
		return apperr.New(apperr.InvalidArgument, "post_id is required")
	}
	return apperr.Wrap(apperr.Unknown, "delete reaction", s.Store.Posts().DeleteReaction(ctx, postID, userID))
}

// AddComment attaches a comment to a post.
func (s *PostService) AddComment(ctx context.Context, userID, postID, text string) (string, error) {
	if userID == "" {
		return "", apperr.New(apperr.Unauthenticated, "caller identity required")
	}
	if postID == "" || text == "" {
		return "", apperr.New(apperr.InvalidArgument, "post_id and text are required")
	}
	comment := &models.Comment{
		ID:        uuid.NewString(),
		PostID:    postID,
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now(),
	}
	if err := s.Store.Posts().CreateComment(ctx, comment); err != nil {
		return "", apperr.Wrap(apperr.Unknown, "create comment", err)
	}
	return comment.ID, nil
}

// GetPost returns a post by id.
func (s *PostService) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	post, err := s.Store.Posts().Get(ctx, postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "post not found")
		}
		return nil, apperr.Wrap(apperr.Unknown, "fetch post", err)
	}
	return post, nil
}
