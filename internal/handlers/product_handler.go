package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/anvarbek/vitrina/backend/internal/cache"
	"github.com/anvarbek/vitrina/backend/internal/models"
	"github.com/anvarbek/vitrina/backend/internal/repositories"
	"github.com/anvarbek/vitrina/backend/pkg/images"
	"github.com/anvarbek/vitrina/backend/pkg/storage"
	"github.com/labstack/echo/v4"
)

const (
	productCacheTTL     = 5 * time.Minute
	productListPrefix   = "products:list:"
	signedImageURLTTL   = 24 * time.Hour
	productImageMaxSize = 10 << 20 // ~10MB
)

// ProductHandler handles HTTP requests related to catalog products
type ProductHandler struct {
	productRepository repositories.ProductRepository
	cache             cache.Store
	storage           storage.ObjectStorage
	watermarker       images.Watermarker
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productRepo repositories.ProductRepository, store cache.Store, objectStorage storage.ObjectStorage, watermarker images.Watermarker) *ProductHandler {
	return &ProductHandler{
		productRepository: productRepo,
		cache:             store,
		storage:           objectStorage,
		watermarker:       watermarker,
	}
}

// RegisterProductRoutes registers product routes readable by any user
func (h *ProductHandler) RegisterProductRoutes(g *echo.Group) {
	g.GET("/products", h.GetProducts)
	g.GET("/products/:id", h.GetProduct)
}

// RegisterAdminRoutes registers catalog management routes for admins
func (h *ProductHandler) RegisterAdminRoutes(g *echo.Group) {
	g.POST("/products", h.CreateProduct)
	g.PUT("/products/:id", h.UpdateProduct)
	g.DELETE("/products/:id", h.DeleteProduct)
	g.POST("/products/:id/images", h.UploadProductImage)
}

// GetProducts returns a page of the catalog, cache-fronted
func (h *ProductHandler) GetProducts(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	key := fmt.Sprintf("%spage:%d:limit:%d", productListPrefix, page, limit)
	if cached, ok := h.cache.Get(key); ok {
		if products, ok := cached.([]models.Product); ok {
			return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"products": products}})
		}
	}

	skip := int64((page - 1) * limit)
	products, err := h.productRepository.GetAllProducts(c.Request().Context(), skip, int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.cache.Set(key, products, productCacheTTL)

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"products": products}})
}

// GetProduct returns a single product
func (h *ProductHandler) GetProduct(c echo.Context) error {
	product, err := h.productRepository.GetProductByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Product not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": product})
}

// CreateProduct publishes a new product
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	product := &models.Product{
		OwnerID:     currentUserID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURLs:   req.ImageURLs,
	}
	if err := h.productRepository.CreateProduct(c.Request().Context(), product); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.cache.DeletePrefix(productListPrefix)
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": product})
}

// UpdateProduct updates an existing product
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	productID := c.Param("id")

	product, err := h.productRepository.GetProductByID(c.Request().Context(), productID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Product not found")
	}

	var req models.UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if req.Name != "" {
		product.Name = req.Name
	}
	if req.Description != "" {
		product.Description = req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.ImageURLs != nil {
		product.ImageURLs = req.ImageURLs
	}

	if err := h.productRepository.UpdateProduct(c.Request().Context(), productID, product); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.cache.DeletePrefix(productListPrefix)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": product})
}

// DeleteProduct removes a product and its stored images
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	productID := c.Param("id")

	product, err := h.productRepository.GetProductByID(c.Request().Context(), productID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Product not found")
	}

	if err := h.productRepository.DeleteProduct(c.Request().Context(), productID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Stored images are cleaned up best-effort; the catalog row is gone.
	for i := range product.ImageURLs {
		h.storage.Delete(c.Request().Context(), productImageKey(productID, i))
	}

	h.cache.DeletePrefix(productListPrefix)
	return c.NoContent(http.StatusNoContent)
}

// UploadProductImage watermarks an uploaded image and stores it
func (h *ProductHandler) UploadProductImage(c echo.Context) error {
	productID := c.Param("id")

	product, err := h.productRepository.GetProductByID(c.Request().Context(), productID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Product not found")
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing image file")
	}
	if fileHeader.Size > productImageMaxSize {
		return echo.NewHTTPError(http.StatusBadRequest, "Image too large")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read uploaded image")
	}
	defer file.Close()

	stamped, err := h.watermarker.Apply(file)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unsupported image format")
	}

	key := productImageKey(productID, len(product.ImageURLs))
	if err := h.storage.Upload(c.Request().Context(), key, "image/jpeg", stamped); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store image")
	}

	url, err := h.storage.SignedURL(key, signedImageURLTTL)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to sign image URL")
	}

	product.ImageURLs = append(product.ImageURLs, url)
	if err := h.productRepository.UpdateProduct(c.Request().Context(), productID, product); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.cache.DeletePrefix(productListPrefix)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"url": url}})
}

func productImageKey(productID string, index int) string {
	return fmt.Sprintf("products/%s/%d.jpg", productID, index)
}
