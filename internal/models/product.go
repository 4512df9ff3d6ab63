package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product represents a catalog item stored in MongoDB
type Product struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	OwnerID       uint               `json:"owner_id" bson:"owner_id"` // Admin who published the product
	Name          string             `json:"name" bson:"name"`
	Description   string             `json:"description" bson:"description"`
	Price         float64            `json:"price" bson:"price"`
	ImageURLs     []string           `json:"image_urls,omitempty" bson:"image_urls,omitempty"`
	LikesCount    int                `json:"likes_count" bson:"likes_count"`
	DislikesCount int                `json:"dislikes_count" bson:"dislikes_count"`
	SavesCount    int                `json:"saves_count" bson:"saves_count"`
	ReviewsCount  int                `json:"reviews_count" bson:"reviews_count"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

// CreateProductRequest defines the request body for publishing a new product
type CreateProductRequest struct {
	Name        string   `json:"name" validate:"required,min=1,max=120"`
	Description string   `json:"description" validate:"required,min=1,max=2000"`
	Price       float64  `json:"price" validate:"required,gte=0"`
	ImageURLs   []string `json:"image_urls,omitempty" validate:"omitempty,dive,url"`
}

// UpdateProductRequest defines the request body for updating an existing product
type UpdateProductRequest struct {
	Name        string   `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Description string   `json:"description,omitempty" validate:"omitempty,min=1,max=2000"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	ImageURLs   []string `json:"image_urls,omitempty" validate:"omitempty,dive,url"`
}
