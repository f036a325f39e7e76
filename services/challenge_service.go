package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"challenge-service/apperr"
	"challenge-service/models"
	"challenge-service/store"
)

type ChallengeService struct {
	Store    store.Store
	Notifier Notifier

	now func() time.Time
}

func NewChallengeService(st store.Store, notifier Notifier) *ChallengeService {
	return &ChallengeService{Store: st, Notifier: notifier, now: time.Now}
}

type CreateChallengeInput struct {
	Title       string
	Description string
	Type        string
	EndDate     time.Time
	ImageURL    string
}

// Create registers a new challenge and broadcasts it best-effort. The slug is
// a shareable handle derived from the title; it is not unique on its own.
func (s *ChallengeService) Create(ctx context.Context, userID string, in CreateChallengeInput) (*models.Challenge, error) {
	if userID == "" {
		return nil, apperr.New(apperr.Unauthenticated, "caller identity required")
	}
	if in.Title == "" {
		return nil, apperr.New(apperr.InvalidArgument, "title is required")
	}
	if in.Type != models.ChallengeTypeMandatory && in.Type != models.ChallengeTypeOpen {
		return nil, apperr.Newf(apperr.InvalidArgument, "type must be %q or %q", models.ChallengeTypeMandatory, models.ChallengeTypeOpen)
	}
	if !in.EndDate.IsZero() && in.EndDate.Before(s.now()) {
		return nil, apperr.New(apperr.InvalidArgument, "end_date must be in the future")
	}

	challenge := &models.Challenge{
		ID:          uuid.NewString(),
		Slug:        slug.Make(in.Title),
		Title:       in.Title,
		Description: in.Description,
		Type:        in.Type,
		EndDate:     in.EndDate,
		ImageURL:    in.ImageURL,
		CreatedAt:   s.now(),
	}
	if err := s.Store.Challenges().Create(ctx, challenge); err != nil {
		return nil, apperr.Wrap(apperr.Unknown, "create challenge", err)
	}
	if s.Notifier != nil {
		s.Notifier.ChallengeCreated(ctx, challenge.ID, challenge.Title)
	}
	return challenge, nil
}

func (s *ChallengeService) Get(ctx context.Context, id string) (*models.Challenge, error) {
	if id == "" {
		return nil, apperr.New(apperr.InvalidArgument, "challenge id is required")
	}
	challenge, err := s.Store.Challenges().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "challenge not found")
		}
		return nil, apperr.Wrap(apperr.Unknown, "fetch challenge", err)
	}
	return challenge, nil
}

// ListActive returns challenges whose end date has not passed.
func (s *ChallengeService) ListActive(ctx context.Context) ([]models.Challenge, error) {
	challenges, err := s.Store.Challenges().ListActive(ctx, s.now())
	if err != nil {
		return nil, apperr.Wrap(apperr.Unknown, "list challenges", err)
	}
	return challenges, nil
}

// Delete removes a challenge. Its posts become orphans and are reclaimed by
// the expiry sweep.
func (s *ChallengeService) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return apperr.New(apperr.Unauthenticated, "caller identity required")
	}
	if id == "" {
		return apperr.New(apperr.InvalidArgument, "challenge id is required")
	}
	return apperr.Wrap(apperr.Unknown, "delete challenge", s.Store.Challenges().Delete(ctx, id))
}
