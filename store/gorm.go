package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"challenge-service/models"
)

// Gorm is the production Store. Open the *gorm.DB with TranslateError so
// unique-index violations surface as gorm.ErrDuplicatedKey on every driver.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

// Migrate creates or updates the schema for every model the store owns.
func (s *Gorm) Migrate() error {
	return s.db.AutoMigrate(
		&models.Challenge{},
		&models.ParticipationClaim{},
		&models.Post{},
		&models.PostReport{},
		&models.PostReaction{},
		&models.Comment{},
		&models.CommentReport{},
	)
}

func (s *Gorm) Challenges() ChallengeRepository         { return gormChallenges{s.db} }
func (s *Gorm) Participations() ParticipationRepository { return gormParticipations{s.db} }
func (s *Gorm) Posts() PostRepository                   { return gormPosts{s.db} }

func (s *Gorm) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Gorm{db: tx})
	})
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

type gormChallenges struct{ db *gorm.DB }

func (r gormChallenges) Create(ctx context.Context, challenge *models.Challenge) error {
	return translate(r.db.WithContext(ctx).Create(challenge).Error)
}

func (r gormChallenges) Get(ctx context.Context, id string) (*models.Challenge, error) {
	var challenge models.Challenge
	if err := r.db.WithContext(ctx).First(&challenge, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &challenge, nil
}

func (r gormChallenges) Delete(ctx context.Context, id string) error {
	return translate(r.db.WithContext(ctx).Delete(&models.Challenge{}, "id = ?", id).Error)
}

func (r gormChallenges) AddParticipants(ctx context.Context, id string, delta int64) error {
	result := r.db.WithContext(ctx).Model(&models.Challenge{}).
		Where("id = ?", id).
		Update("participants_count", gorm.Expr("participants_count + ?", delta))
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r gormChallenges) ListActive(ctx context.Context, now time.Time) ([]models.Challenge, error) {
	var challenges []models.Challenge
	err := r.db.WithContext(ctx).
		Where("end_date > ?", now).
		Order("end_date ASC").
		Find(&challenges).Error
	return challenges, translate(err)
}

func (r gormChallenges) ListEndedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Challenge, error) {
	var challenges []models.Challenge
	err := r.db.WithContext(ctx).
		Where("end_date > ? AND end_date < ?", time.Time{}, cutoff).
		Order("end_date ASC").
		Limit(limit).
		Find(&challenges).Error
	return challenges, translate(err)
}

type gormParticipations struct{ db *gorm.DB }

func (r gormParticipations) Create(ctx context.Context, claim *models.ParticipationClaim) error {
	return translate(r.db.WithContext(ctx).Create(claim).Error)
}

func (r gormParticipations) Get(ctx context.Context, userID, id string) (*models.ParticipationClaim, error) {
	var claim models.ParticipationClaim
	err := r.db.WithContext(ctx).
		First(&claim, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, translate(err)
	}
	return &claim, nil
}

func (r gormParticipations) DeletePending(ctx context.Context, userID, challengeID, id string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND challenge_id = ? AND completed = ?", id, userID, challengeID, false).
		Delete(&models.ParticipationClaim{})
	if result.Error != nil {
		return false, translate(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r gormParticipations) MarkCompleted(ctx context.Context, userID, challengeID, id string) error {
	result := r.db.WithContext(ctx).Model(&models.ParticipationClaim{}).
		Where("id = ? AND user_id = ? AND challenge_id = ?", id, userID, challengeID).
		Update("completed", true)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r gormParticipations) CountCompletedSince(ctx context.Context, userID, challengeID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ParticipationClaim{}).
		Where("user_id = ? AND challenge_id = ? AND completed = ? AND created_at >= ?",
			userID, challengeID, true, since).
		Count(&count).Error
	return count, translate(err)
}

func (r gormParticipations) ListStale(ctx context.Context, cutoff time.Time, limit int) ([]models.ParticipationClaim, error) {
	var claims []models.ParticipationClaim
	err := r.db.WithContext(ctx).
		Where("completed = ? AND created_at < ?", false, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&claims).Error
	return claims, translate(err)
}

type gormPosts struct{ db *gorm.DB }

func (r gormPosts) Create(ctx context.Context, post *models.Post) error {
	return translate(r.db.WithContext(ctx).Create(post).Error)
}

func (r gormPosts) Get(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (r gormPosts) Delete(ctx context.Context, id string) error {
	// Reports, reactions and comments go with the post.
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.PostReport{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostReaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.CommentReport{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, "id = ?", id).Error
	}))
}

func (r gormPosts) SetRejected(ctx context.Context, id string, rejected bool) error {
	result := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		Update("rejected", rejected)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r gormPosts) ListByChallenge(ctx context.Context, challengeID string, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Where("challenge_id = ?", challengeID).
		Order("created_at ASC").
		Limit(limit).
		Find(&posts).Error
	return posts, translate(err)
}

func (r gormPosts) ListOrphans(ctx context.Context, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Where("challenge_id NOT IN (?)", r.db.Model(&models.Challenge{}).Select("id")).
		Order("created_at ASC").
		Limit(limit).
		Find(&posts).Error
	return posts, translate(err)
}

func (r gormPosts) CreateReport(ctx context.Context, report *models.PostReport) error {
	return translate(r.db.WithContext(ctx).Create(report).Error)
}

func (r gormPosts) CountReports(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PostReport{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, translate(err)
}

func (r gormPosts) MarkReported(ctx context.Context, postID string) error {
	return translate(r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", postID).
		Update("reported", true).Error)
}

func (r gormPosts) CreateReaction(ctx context.Context, reaction *models.PostReaction) error {
	return translate(r.db.WithContext(ctx).Create(reaction).Error)
}

func (r gormPosts) DeleteReaction(ctx context.Context, postID, userID string) error {
	return translate(r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.PostReaction{}).Error)
}

func (r gormPosts) CreateComment(ctx context.Context, comment *models.Comment) error {
	return translate(r.db.WithContext(ctx).Create(comment).Error)
}

func (r gormPosts) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

func (r gormPosts) CreateCommentReport(ctx context.Context, report *models.CommentReport) error {
	return translate(r.db.WithContext(ctx).Create(report).Error)
}
