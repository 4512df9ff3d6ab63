package repositories

import (
	"github.com/anvarbek/vitrina/backend/internal/models"
	"gorm.io/gorm"
)

// ReviewRepository defines the interface for review data operations
type ReviewRepository interface {
	CreateReview(review *models.Review) error
	GetReviewByID(id uint) (*models.Review, error)
	GetReviewsByProductID(productID string) ([]models.Review, error)
	GetReplies(parentID uint) ([]models.Review, error)
	UpdateReview(review *models.Review) error
	DeleteReview(id uint) error
}

// PostgresReviewRepository implements ReviewRepository for PostgreSQL
type PostgresReviewRepository struct {
	db *gorm.DB
}

// NewPostgresReviewRepository creates a new PostgresReviewRepository
func NewPostgresReviewRepository(db *gorm.DB) *PostgresReviewRepository {
	return &PostgresReviewRepository{db: db}
}

// CreateReview creates a new review in PostgreSQL
func (r *PostgresReviewRepository) CreateReview(review *models.Review) error {
	return r.db.Create(review).Error
}

// GetReviewByID retrieves a review by ID
func (r *PostgresReviewRepository) GetReviewByID(id uint) (*models.Review, error) {
	var review models.Review
	if err := r.db.First(&review, id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// GetReviewsByProductID retrieves all top-level reviews for a product
func (r *PostgresReviewRepository) GetReviewsByProductID(productID string) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.Where("product_id = ? AND parent_id IS NULL", productID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

// GetReplies retrieves all direct replies of a review
func (r *PostgresReviewRepository) GetReplies(parentID uint) ([]models.Review, error) {
	var replies []models.Review
	err := r.db.Where("parent_id = ?", parentID).
		Order("created_at ASC").
		Find(&replies).Error
	if err != nil {
		return nil, err
	}
	return replies, nil
}

// UpdateReview updates an existing review
func (r *PostgresReviewRepository) UpdateReview(review *models.Review) error {
	return r.db.Save(review).Error
}

// DeleteReview deletes a single review row. Callers walk the reply tree
// themselves so compensation can run before each row disappears.
func (r *PostgresReviewRepository) DeleteReview(id uint) error {
	res := r.db.Delete(&models.Review{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
