package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/anvarbek/vitrina/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProductRepository defines the interface for product data operations
type ProductRepository interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProductByID(ctx context.Context, id string) (*models.Product, error)
	GetAllProducts(ctx context.Context, skip, limit int64) ([]models.Product, error)
	UpdateProduct(ctx context.Context, id string, product *models.Product) error
	DeleteProduct(ctx context.Context, id string) error
	AdjustReactionCounts(ctx context.Context, productID string, likesDelta, dislikesDelta int) error
	IncrementSavesCount(ctx context.Context, productID string) error
	DecrementSavesCount(ctx context.Context, productID string) error
	IncrementReviewsCount(ctx context.Context, productID string) error
	DecrementReviewsCount(ctx context.Context, productID string) error
}

// MongoProductRepository implements ProductRepository for MongoDB
type MongoProductRepository struct {
	collection *mongo.Collection
}

// NewMongoProductRepository creates a new MongoProductRepository
func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{collection: db.Collection("products")}
}

// CreateProduct creates a new product in MongoDB
func (r *MongoProductRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	product.ID = primitive.NewObjectID()
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, product)
	return err
}

// GetProductByID retrieves a product by ID from MongoDB
func (r *MongoProductRepository) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid product ID format: %w", err)
	}

	var product models.Product
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("product not found")
		}
		return nil, err
	}
	return &product, nil
}

// GetAllProducts retrieves products from MongoDB with pagination
func (r *MongoProductRepository) GetAllProducts(ctx context.Context, skip, limit int64) ([]models.Product, error) {
	var products []models.Product
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.D{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// UpdateProduct updates an existing product in MongoDB
func (r *MongoProductRepository) UpdateProduct(ctx context.Context, id string, product *models.Product) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid product ID format: %w", err)
	}

	product.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"name":        product.Name,
			"description": product.Description,
			"price":       product.Price,
			"image_urls":  product.ImageURLs,
			"updated_at":  product.UpdatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("product not found")
	}
	return nil
}

// DeleteProduct deletes a product by ID from MongoDB
func (r *MongoProductRepository) DeleteProduct(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid product ID format: %w", err)
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("product not found")
	}
	return nil
}

// AdjustReactionCounts applies deltas to the like/dislike counters in one update
func (r *MongoProductRepository) AdjustReactionCounts(ctx context.Context, productID string, likesDelta, dislikesDelta int) error {
	objID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return fmt.Errorf("invalid product ID format: %w", err)
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{
		"$inc": bson.M{"likes_count": likesDelta, "dislikes_count": dislikesDelta},
	})
	return err
}

// IncrementSavesCount increments the saves counter of a product
func (r *MongoProductRepository) IncrementSavesCount(ctx context.Context, productID string) error {
	return r.adjustCounter(ctx, productID, "saves_count", 1)
}

// DecrementSavesCount decrements the saves counter of a product
func (r *MongoProductRepository) DecrementSavesCount(ctx context.Context, productID string) error {
	return r.adjustCounter(ctx, productID, "saves_count", -1)
}

// IncrementReviewsCount increments the reviews counter of a product
func (r *MongoProductRepository) IncrementReviewsCount(ctx context.Context, productID string) error {
	return r.adjustCounter(ctx, productID, "reviews_count", 1)
}

// DecrementReviewsCount decrements the reviews counter of a product
func (r *MongoProductRepository) DecrementReviewsCount(ctx context.Context, productID string) error {
	return r.adjustCounter(ctx, productID, "reviews_count", -1)
}

func (r *MongoProductRepository) adjustCounter(ctx context.Context, productID, field string, delta int) error {
	objID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return fmt.Errorf("invalid product ID format: %w", err)
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$inc": bson.M{field: delta}})
	return err
}
