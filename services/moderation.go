package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"challenge-service/store"
)

// SafeSearchResult carries the per-category risk levels returned by the image
// classifier. Levels follow the vision API vocabulary: VERY_UNLIKELY,
// UNLIKELY, POSSIBLE, LIKELY, VERY_LIKELY.
type SafeSearchResult struct {
	Adult    string `json:"adult"`
	Spoof    string `json:"spoof"`
	Medical  string `json:"medical"`
	Violence string `json:"violence"`
	Racy     string `json:"racy"`
}

// ImageClassifier is the opaque moderation model. Implementations call an
// external vision API; tests inject a stub.
type ImageClassifier interface {
	Classify(ctx context.Context, imageURL string) (SafeSearchResult, error)
}

// MediaStore deletes blobs backing rejected or removed posts.
type MediaStore interface {
	Delete(ctx context.Context, imageURL string) error
}

// MediaStoreFunc adapts a plain function to MediaStore.
type MediaStoreFunc func(ctx context.Context, imageURL string) error

func (f MediaStoreFunc) Delete(ctx context.Context, imageURL string) error { return f(ctx, imageURL) }

// Notifier is the best-effort out-of-band channel to users. Implementations
// log failures and never propagate them.
type Notifier interface {
	PostBlocked(ctx context.Context, userID, postID string)
	ChallengeCreated(ctx context.Context, challengeID, title string)
}

func likely(level string) bool {
	return level == "LIKELY" || level == "VERY_LIKELY"
}

// ModerationService applies the one-shot verdict to a post:
// unscanned → {passed, blocked}. Scan is keyed by post id and safe to invoke
// from both trigger paths (post created, media uploaded); the verdict field is
// overwritten, never accumulated, so repeat invocations are last-write-wins.
type ModerationService struct {
	Store      store.Store
	Classifier ImageClassifier
	Media      MediaStore
	Notifier   Notifier
}

func NewModerationService(st store.Store, classifier ImageClassifier, media MediaStore, notifier Notifier) *ModerationService {
	return &ModerationService{Store: st, Classifier: classifier, Media: media, Notifier: notifier}
}

// Scan classifies the post's media and applies the verdict. If the classifier
// call fails the post stays unscanned; there is no retry here — the next
// trigger for the same post, if any, scans it again.
func (s *ModerationService) Scan(ctx context.Context, postID string) error {
	post, err := s.Store.Posts().Get(ctx, postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Deleted since it was enqueued; nothing to moderate.
			return nil
		}
		return fmt.Errorf("fetch post %s: %w", postID, err)
	}

	result, err := s.Classifier.Classify(ctx, post.ImageURL)
	if err != nil {
		return fmt.Errorf("classify post %s: %w", postID, err)
	}

	blocked := likely(result.Adult) || likely(result.Violence) || likely(result.Racy)
	if !blocked {
		if err := s.Store.Posts().SetRejected(ctx, postID, false); err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("mark post %s passed: %w", postID, err)
		}
		return nil
	}

	// Blocked: drop the blob first, then flag the post. Blob deletion is
	// best-effort; a dangling object is preferable to a visible one.
	if err := s.Media.Delete(ctx, post.ImageURL); err != nil {
		log.Printf("[Moderation] ⚠️ failed to delete media for blocked post %s: %v", postID, err)
	}
	if err := s.Store.Posts().SetRejected(ctx, postID, true); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("mark post %s blocked: %w", postID, err)
	}
	if s.Notifier != nil {
		s.Notifier.PostBlocked(ctx, post.UserID, postID)
	}
	log.Printf("[Moderation] 🚫 post %s blocked (adult=%s violence=%s racy=%s)", postID, result.Adult, result.Violence, result.Racy)
	return nil
}
