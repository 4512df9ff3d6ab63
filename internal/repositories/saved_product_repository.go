package repositories

import (
	"fmt"

	"github.com/anvarbek/vitrina/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SavedProductRepository defines the interface for saved product data operations
type SavedProductRepository interface {
	SaveProduct(saved *models.SavedProduct) error
	UnsaveProduct(userID uint, productID string) error
	IsProductSaved(userID uint, productID string) (bool, error)
	GetSavedByUserID(userID uint, page, limit int) ([]models.SavedProduct, int64, error)
	GetSavesCountByProductID(productID string) (int64, error)
}

// PostgresSavedProductRepository implements SavedProductRepository for PostgreSQL
type PostgresSavedProductRepository struct {
	db *gorm.DB
}

// NewPostgresSavedProductRepository creates a new PostgresSavedProductRepository
func NewPostgresSavedProductRepository(db *gorm.DB) *PostgresSavedProductRepository {
	return &PostgresSavedProductRepository{db: db}
}

// SaveProduct bookmarks a product. Repeated saves from the same user are
// absorbed by the unique (user_id, product_id) constraint.
func (r *PostgresSavedProductRepository) SaveProduct(saved *models.SavedProduct) error {
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(saved).Error
}

// UnsaveProduct removes a bookmark
func (r *PostgresSavedProductRepository) UnsaveProduct(userID uint, productID string) error {
	res := r.db.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.SavedProduct{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("saved product not found")
	}
	return nil
}

// IsProductSaved checks whether a user has saved a specific product
func (r *PostgresSavedProductRepository) IsProductSaved(userID uint, productID string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.SavedProduct{}).Where("user_id = ? AND product_id = ?", userID, productID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetSavedByUserID retrieves a user's saved products with pagination
func (r *PostgresSavedProductRepository) GetSavedByUserID(userID uint, page, limit int) ([]models.SavedProduct, int64, error) {
	var saved []models.SavedProduct
	var total int64

	r.db.Model(&models.SavedProduct{}).Where("user_id = ?", userID).Count(&total)

	offset := (page - 1) * limit
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&saved).Error

	return saved, total, err
}

// GetSavesCountByProductID counts saves for a product
func (r *PostgresSavedProductRepository) GetSavesCountByProductID(productID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.SavedProduct{}).Where("product_id = ?", productID).Count(&count).Error
	return count, err
}
