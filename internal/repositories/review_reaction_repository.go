package repositories

import (
	"github.com/anvarbek/vitrina/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReviewReactionRepository defines the interface for review reaction data operations
type ReviewReactionRepository interface {
	Upsert(reaction *models.ReviewReaction) (string, error)
	Delete(reviewID, userID uint) (string, error)
	Get(reviewID, userID uint) (*models.ReviewReaction, error)
	CountByKind(reviewID uint, kind string) (int64, error)
}

// PostgresReviewReactionRepository implements ReviewReactionRepository for PostgreSQL
type PostgresReviewReactionRepository struct {
	db *gorm.DB
}

// NewPostgresReviewReactionRepository creates a new PostgresReviewReactionRepository
func NewPostgresReviewReactionRepository(db *gorm.DB) *PostgresReviewReactionRepository {
	return &PostgresReviewReactionRepository{db: db}
}

// Upsert inserts or updates the reaction, serialized on the unique
// (review_id, user_id) constraint. Returns the previously stored kind.
func (r *PostgresReviewReactionRepository) Upsert(reaction *models.ReviewReaction) (string, error) {
	var previous string
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.ReviewReaction
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("review_id = ? AND user_id = ?", reaction.ReviewID, reaction.UserID).
			First(&existing).Error
		if err == nil {
			previous = existing.Kind
		} else if err != gorm.ErrRecordNotFound {
			return err
		}

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "review_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"kind", "updated_at"}),
		}).Create(reaction).Error
	})
	return previous, err
}

// Delete removes the reaction and reports the kind it had
func (r *PostgresReviewReactionRepository) Delete(reviewID, userID uint) (string, error) {
	var kind string
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.ReviewReaction
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("review_id = ? AND user_id = ?", reviewID, userID).
			First(&existing).Error
		if err != nil {
			return err
		}
		kind = existing.Kind
		return tx.Delete(&existing).Error
	})
	return kind, err
}

// Get retrieves the reaction for a specific (review, user) pair
func (r *PostgresReviewReactionRepository) Get(reviewID, userID uint) (*models.ReviewReaction, error) {
	var reaction models.ReviewReaction
	if err := r.db.Where("review_id = ? AND user_id = ?", reviewID, userID).First(&reaction).Error; err != nil {
		return nil, err
	}
	return &reaction, nil
}

// CountByKind counts reactions of one kind for a review
func (r *PostgresReviewReactionRepository) CountByKind(reviewID uint, kind string) (int64, error) {
	var count int64
	err := r.db.Model(&models.ReviewReaction{}).
		Where("review_id = ? AND kind = ?", reviewID, kind).
		Count(&count).Error
	return count, err
}
