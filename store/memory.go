package store

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"challenge-service/models"
)

// Memory is an in-memory Store used by service tests. Transaction takes the
// store-wide lock for the duration of fn, which is coarse but preserves the
// atomicity the services rely on.
type Memory struct {
	mu sync.Mutex

	challenges     map[string]models.Challenge
	claims         map[string]models.ParticipationClaim
	posts          map[string]models.Post
	reports        map[string]models.PostReport
	reactions      map[string]models.PostReaction
	comments       map[string]models.Comment
	commentReports map[string]models.CommentReport

	inTx bool
}

func NewMemory() *Memory {
	return &Memory{
		challenges:     make(map[string]models.Challenge),
		claims:         make(map[string]models.ParticipationClaim),
		posts:          make(map[string]models.Post),
		reports:        make(map[string]models.PostReport),
		reactions:      make(map[string]models.PostReaction),
		comments:       make(map[string]models.Comment),
		commentReports: make(map[string]models.CommentReport),
	}
}

func (m *Memory) Challenges() ChallengeRepository         { return memChallenges{m} }
func (m *Memory) Participations() ParticipationRepository { return memParticipations{m} }
func (m *Memory) Posts() PostRepository                   { return memPosts{m} }

func (m *Memory) Transaction(ctx context.Context, fn func(tx Store) error) error {
	m.lock()
	defer m.unlock()
	snap := m.snapshot()
	tx := &Memory{
		challenges:     m.challenges,
		claims:         m.claims,
		posts:          m.posts,
		reports:        m.reports,
		reactions:      m.reactions,
		comments:       m.comments,
		commentReports: m.commentReports,
		inTx:           true,
	}
	if err := fn(tx); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

type memSnapshot struct {
	challenges     map[string]models.Challenge
	claims         map[string]models.ParticipationClaim
	posts          map[string]models.Post
	reports        map[string]models.PostReport
	reactions      map[string]models.PostReaction
	comments       map[string]models.Comment
	commentReports map[string]models.CommentReport
}

func (m *Memory) snapshot() memSnapshot {
	return memSnapshot{
		challenges:     maps.Clone(m.challenges),
		claims:         maps.Clone(m.claims),
		posts:          maps.Clone(m.posts),
		reports:        maps.Clone(m.reports),
		reactions:      maps.Clone(m.reactions),
		comments:       maps.Clone(m.comments),
		commentReports: maps.Clone(m.commentReports),
	}
}

// restore rewrites the live maps in place so the transaction view, which
// shares them, is rolled back too.
func (m *Memory) restore(snap memSnapshot) {
	clear(m.challenges)
	maps.Copy(m.challenges, snap.challenges)
	clear(m.claims)
	maps.Copy(m.claims, snap.claims)
	clear(m.posts)
	maps.Copy(m.posts, snap.posts)
	clear(m.reports)
	maps.Copy(m.reports, snap.reports)
	clear(m.reactions)
	maps.Copy(m.reactions, snap.reactions)
	clear(m.comments)
	maps.Copy(m.comments, snap.comments)
	clear(m.commentReports)
	maps.Copy(m.commentReports, snap.commentReports)
}

func (m *Memory) lock() {
	if !m.inTx {
		m.mu.Lock()
	}
}

func (m *Memory) unlock() {
	if !m.inTx {
		m.mu.Unlock()
	}
}

type memChallenges struct{ m *Memory }

func (r memChallenges) Create(_ context.Context, challenge *models.Challenge) error {
	r.m.lock()
	defer r.m.unlock()
	if _, ok := r.m.challenges[challenge.ID]; ok {
		return ErrDuplicate
	}
	if challenge.CreatedAt.IsZero() {
		challenge.CreatedAt = time.Now()
	}
	r.m.challenges[challenge.ID] = *challenge
	return nil
}

func (r memChallenges) Get(_ context.Context, id string) (*models.Challenge, error) {
	r.m.lock()
	defer r.m.unlock()
	challenge, ok := r.m.challenges[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &challenge, nil
}

func (r memChallenges) Delete(_ context.Context, id string) error {
	r.m.lock()
	defer r.m.unlock()
	delete(r.m.challenges, id)
	return nil
}

func (r memChallenges) AddParticipants(_ context.Context, id string, delta int64) error {
	r.m.lock()
	defer r.m.unlock()
	challenge, ok := r.m.challenges[id]
	if !ok {
		return ErrNotFound
	}
	challenge.ParticipantsCount += delta
	r.m.challenges[id] = challenge
	return nil
}

func (r memChallenges) ListActive(_ context.Context, now time.Time) ([]models.Challenge, error) {
	r.m.lock()
	defer r.m.unlock()
	var out []models.Challenge
	for _, c := range r.m.challenges {
		if c.EndDate.After(now) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndDate.Before(out[j].EndDate) })
	return out, nil
}

func (r memChallenges) ListEndedBefore(_ context.Context, cutoff time.Time, limit int) ([]models.Challenge, error) {
	r.m.lock()
	defer r.m.unlock()
	var out []models.Challenge
	for _, c := range r.m.challenges {
		if !c.EndDate.IsZero() && c.EndDate.Before(cutoff) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndDate.Before(out[j].EndDate) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memParticipations struct{ m *Memory }

func (r memParticipations) Create(_ context.Context, claim *models.ParticipationClaim) error {
	r.m.lock()
	defer r.m.unlock()
	if _, ok := r.m.claims[claim.ID]; ok {
		return ErrDuplicate
	}
	if claim.CreatedAt.IsZero() {
		claim.CreatedAt = time.Now()
	}
	r.m.claims[claim.ID] = *claim
	return nil
}

func (r memParticipations) Get(_ context.Context, userID, id string) (*models.ParticipationClaim, error) {
	r.m.lock()
	defer r.m.unlock()
	claim, ok := r.m.claims[id]
	if !ok || claim.UserID != userID {
		return nil, ErrNotFound
	}
	return &claim, nil
}

func (r memParticipations) DeletePending(_ context.Context, userID, challengeID, id string) (bool, error) {
	r.m.lock()
	defer r.m.unlock()
	claim, ok := r.m.claims[id]
	if !ok || claim.UserID != userID || claim.ChallengeID != challengeID || claim.Completed {
		return false, nil
	}
	delete(r.m.claims, id)
	return true, nil
}

func (r memParticipations) MarkCompleted(_ context.Context, userID, challengeID, id string) error {
	r.m.lock()
	defer r.m.unlock()
	claim, ok := r.m.claims[id]
	if !ok || claim.UserID != userID || claim.ChallengeID != challengeID {
		return ErrNotFound
	}
	claim.Completed = true
	r.m.claims[id] = claim
	return nil
}

func (r memParticipations) CountCompletedSince(_ context.Context, userID, challengeID string, since time.Time) (int64, error) {
	r.m.lock()
	defer r.m.unlock()
	var count int64
	for _, claim := range r.m.claims {
		if claim.UserID == userID && claim.ChallengeID == challengeID &&
			claim.Completed && !claim.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r memParticipations) ListStale(_ context.Context, cutoff time.Time, limit int) ([]models.ParticipationClaim, error) {
	r.m.lock()
	defer r.m.unlock()
	var out []models.ParticipationClaim
	for _, claim := range r.m.claims {
		if !claim.Completed && claim.CreatedAt.Before(cutoff) {
			out = append(out, claim)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memPosts struct{ m *Memory }

func (r memPosts) Create(_ context.Context, post *models.Post) error {
	r.m.lock()
	defer r.m.unlock()
	if _, ok := r.m.posts[post.ID]; ok {
		return ErrDuplicate
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	r.m.posts[post.ID] = *post
	return nil
}

func (r memPosts) Get(_ context.Context, id string) (*models.Post, error) {
	r.m.lock()
	defer r.m.unlock()
	post, ok := r.m.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &post, nil
}

func (r memPosts) Delete(_ context.Context, id string) error {
	r.m.lock()
	defer r.m.unlock()
	delete(r.m.posts, id)
	for key, report := range r.m.reports {
		if report.PostID == id {
			delete(r.m.reports, key)
		}
	}
	for key, reaction := range r.m.reactions {
		if reaction.PostID == id {
			delete(r.m.reactions, key)
		}
	}
	for key, comment := range r.m.comments {
		if comment.PostID == id {
			delete(r.m.comments, key)
		}
	}
	for key, report := range r.m.commentReports {
		if report.PostID == id {
			delete(r.m.commentReports, key)
		}
	}
	return nil
}

func (r memPosts) SetRejected(_ context.Context, id string, rejected bool) error {
	r.m.lock()
	defer r.m.unlock()
	post, ok := r.m.posts[id]
	if !ok {
		return ErrNotFound
	}
	post.Rejected = &rejected
	r.m.posts[id] = post
	return nil
}

func (r memPosts) ListByChallenge(_ context.Context, challengeID string, limit int) ([]models.Post, error) {
	r.m.lock()
	defer r.m.unlock()
	var out []models.Post
	for _, post := range r.m.posts {
		if post.ChallengeID == challengeID {
			out = append(out, post)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memPosts) ListOrphans(_ context.Context, limit int) ([]models.Post, error) {
	r.m.lock()
	defer r.m.unlock()
	var out []models.Post
	for _, post := range r.m.posts {
		if _, ok := r.m.challenges[post.ChallengeID]; !ok {
			out = append(out, post)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memPosts) CreateReport(_ context.Context, report *models.PostReport) error {
	r.m.lock()
	defer r.m.unlock()
	for _, existing := range r.m.reports {
		if existing.PostID == report.PostID && existing.ReporterID == report.ReporterID {
			return ErrDuplicate
		}
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}
	r.m.reports[report.ID] = *report
	return nil
}

func (r memPosts) CountReports(_ context.Context, postID string) (int64, error) {
	r.m.lock()
	defer r.m.unlock()
	var count int64
	for _, report := range r.m.reports {
		if report.PostID == postID {
			count++
		}
	}
	return count, nil
}

func (r memPosts) MarkReported(_ context.Context, postID string) error {
	r.m.lock()
	defer r.m.unlock()
	post, ok := r.m.posts[postID]
	if !ok {
		return nil
	}
	post.Reported = true
	r.m.posts[postID] = post
	return nil
}

func (r memPosts) CreateReaction(_ context.Context, reaction *models.PostReaction) error {
	r.m.lock()
	defer r.m.unlock()
	for _, existing := range r.m.reactions {
		if existing.PostID == reaction.PostID && existing.UserID == reaction.UserID {
			return ErrDuplicate
		}
	}
	r.m.reactions[reaction.ID] = *reaction
	return nil
}

func (r memPosts) DeleteReaction(_ context.Context, postID, userID string) error {
	r.m.lock()
	defer r.m.unlock()
	for key, reaction := range r.m.reactions {
		if reaction.PostID == postID && reaction.UserID == userID {
			delete(r.m.reactions, key)
		}
	}
	return nil
}

func (r memPosts) CreateComment(_ context.Context, comment *models.Comment) error {
	r.m.lock()
	defer r.m.unlock()
	r.m.comments[comment.ID] = *comment
	return nil
}

func (r memPosts) GetComment(_ context.Context, id string) (*models.Comment, error) {
	r.m.lock()
	defer r.m.unlock()
	comment, ok := r.m.comments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &comment, nil
}

func (r memPosts) CreateCommentReport(_ context.Context, report *models.CommentReport) error {
	r.m.lock()
	defer r.m.unlock()
	r.m.commentReports[report.ID] = *report
	return nil
}
