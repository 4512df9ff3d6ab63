package repositories

import (
	"github.com/anvarbek/vitrina/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductReactionRepository defines the interface for product reaction data operations
type ProductReactionRepository interface {
	// Upsert inserts or updates the reaction for the (product, user) pair and
	// returns the kind that was previously stored, empty when there was none.
	Upsert(reaction *models.ProductReaction) (string, error)
	// Delete removes the reaction for the (product, user) pair and returns the
	// kind that was stored. Returns gorm.ErrRecordNotFound when none existed.
	Delete(productID string, userID uint) (string, error)
	Get(productID string, userID uint) (*models.ProductReaction, error)
	CountByKind(productID, kind string) (int64, error)
}

// PostgresProductReactionRepository implements ProductReactionRepository for PostgreSQL
type PostgresProductReactionRepository struct {
	db *gorm.DB
}

// NewPostgresProductReactionRepository creates a new PostgresProductReactionRepository
func NewPostgresProductReactionRepository(db *gorm.DB) *PostgresProductReactionRepository {
	return &PostgresProductReactionRepository{db: db}
}

// Upsert serializes concurrent toggles on the unique (product_id, user_id)
// constraint instead of a separate read-then-write pair.
func (r *PostgresProductReactionRepository) Upsert(reaction *models.ProductReaction) (string, error) {
	var previous string
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.ProductReaction
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("product_id = ? AND user_id = ?", reaction.ProductID, reaction.UserID).
			First(&existing).Error
		if err == nil {
			previous = existing.Kind
		} else if err != gorm.ErrRecordNotFound {
			return err
		}

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"kind", "updated_at"}),
		}).Create(reaction).Error
	})
	return previous, err
}

// Delete removes the reaction and reports the kind it had
func (r *PostgresProductReactionRepository) Delete(productID string, userID uint) (string, error) {
	var kind string
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.ProductReaction
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("product_id = ? AND user_id = ?", productID, userID).
			First(&existing).Error
		if err != nil {
			return err
		}
		kind = existing.Kind
		return tx.Delete(&existing).Error
	})
	return kind, err
}

// Get retrieves the reaction for a specific (product, user) pair
func (r *PostgresProductReactionRepository) Get(productID string, userID uint) (*models.ProductReaction, error) {
	var reaction models.ProductReaction
	if err := r.db.Where("product_id = ? AND user_id = ?", productID, userID).First(&reaction).Error; err != nil {
		return nil, err
	}
	return &reaction, nil
}

// CountByKind counts reactions of one kind for a product
func (r *PostgresProductReactionRepository) CountByKind(productID, kind string) (int64, error) {
	var count int64
	err := r.db.Model(&models.ProductReaction{}).
		Where("product_id = ? AND kind = ?", productID, kind).
		Count(&count).Error
	return count, err
}
