// internal/domain/product/service.go
package product

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Sentinel errors surfaced to handlers
var (
	ErrNotFound        = errors.New("product not found")
	ErrInvalidCategory = errors.New("invalid product category")
	ErrInvalidSeason   = errors.New("invalid product season")
	ErrInvalidPrice    = errors.New("product price must not be negative")
	ErrInvalidStock    = errors.New("stock quantity must not be negative")
)

// Service handles product catalog business logic
type Service struct {
	db *gorm.DB
}

// NewService creates a new product service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ListRequest represents product list query parameters. Absent filters
// impose no constraint; supplied filters combine with AND. Price bounds
// are parsed from query strings at the handler layer so malformed
// decimals are rejected explicitly instead of binding to zero.
type ListRequest struct {
	Page      int
	Limit     int
	Category  string
	Season    string
	Fabric    string
	Brand     string
	PriceMin  *decimal.Decimal
	PriceMax  *decimal.Decimal
	SortBy    string
	SortOrder string
}

// CreateRequest represents product creation data
type CreateRequest struct {
	Category      Category        `json:"category" binding:"required"`
	Name          string          `json:"name" binding:"required"`
	Price         decimal.Decimal `json:"price" binding:"required"`
	StockQuantity int             `json:"stock_quantity"`
	Dimensions    string          `json:"dimensions"`
	Weight        string          `json:"weight"`
	Offers        string          `json:"offers"`
	ImageURL      string          `json:"image_url"`
	Season        Season          `json:"season"`
	Fabric        string          `json:"fabric"`
	Texture       string          `json:"texture"`
	Brand         string          `json:"brand"`
}

// UpdateRequest represents partial product update data
type UpdateRequest struct {
	Category      *Category        `json:"category"`
	Name          *string          `json:"name"`
	Price         *decimal.Decimal `json:"price"`
	StockQuantity *int             `json:"stock_quantity"`
	Dimensions    *string          `json:"dimensions"`
	Weight        *string          `json:"weight"`
	Offers        *string          `json:"offers"`
	ImageURL      *string          `json:"image_url"`
	Season        *Season          `json:"season"`
	Fabric        *string          `json:"fabric"`
	Texture       *string          `json:"texture"`
	Brand         *string          `json:"brand"`
}

// ListResponse represents product response with pagination
type ListResponse struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// List retrieves products with filtering and pagination
func (s *Service) List(req *ListRequest) (*ListResponse, error) {
	var products []Product
	var total int64

	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = 20
	}

	query := s.db.Model(&Product{})

	// Apply filters
	if req.Category != "" {
		query = query.Where("category = ?", req.Category)
	}

	if req.Season != "" {
		query = query.Where("season = ?", req.Season)
	}

	if req.Fabric != "" {
		query = query.Where("LOWER(fabric) LIKE ?", "%"+strings.ToLower(req.Fabric)+"%")
	}

	if req.Brand != "" {
		query = query.Where("LOWER(brand) LIKE ?", "%"+strings.ToLower(req.Brand)+"%")
	}

	// Price bounds are inclusive
	if req.PriceMin != nil {
		query = query.Where("price >= ?", *req.PriceMin)
	}

	if req.PriceMax != nil {
		query = query.Where("price <= ?", *req.PriceMax)
	}

	// Count total records
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	// Apply sorting
	query = query.Order(s.buildOrderClause(req.SortBy, req.SortOrder))

	// Apply pagination
	offset := (req.Page - 1) * req.Limit
	if err := query.Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	pagination := Pagination{
		Page:       req.Page,
		Limit:      req.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    req.Page < totalPages,
		HasPrev:    req.Page > 1,
	}

	return &ListResponse{
		Products:   products,
		Pagination: pagination,
	}, nil
}

// Get retrieves a single product by ID
func (s *Service) Get(id uint) (*Product, error) {
	var prod Product
	result := s.db.Where("id = ?", id).First(&prod)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}
	return &prod, nil
}

// Create creates a new product
func (s *Service) Create(req *CreateRequest) (*Product, error) {
	if !req.Category.Valid() {
		return nil, ErrInvalidCategory
	}
	if req.Season == "" {
		req.Season = SeasonAllSeason
	}
	if !req.Season.Valid() {
		return nil, ErrInvalidSeason
	}
	if req.Price.IsNegative() {
		return nil, ErrInvalidPrice
	}
	if req.StockQuantity < 0 {
		return nil, ErrInvalidStock
	}

	prod := Product{
		Category:      req.Category,
		Name:          req.Name,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		Dimensions:    req.Dimensions,
		Weight:        req.Weight,
		Offers:        req.Offers,
		ImageURL:      req.ImageURL,
		Season:        req.Season,
		Fabric:        req.Fabric,
		Texture:       req.Texture,
		Brand:         req.Brand,
	}

	if err := s.db.Create(&prod).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return &prod, nil
}

// Update updates an existing product
func (s *Service) Update(id uint, req *UpdateRequest) (*Product, error) {
	prod, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if req.Category != nil {
		if !req.Category.Valid() {
			return nil, ErrInvalidCategory
		}
		updates["category"] = *req.Category
	}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, ErrInvalidPrice
		}
		updates["price"] = *req.Price
	}
	if req.StockQuantity != nil {
		if *req.StockQuantity < 0 {
			return nil, ErrInvalidStock
		}
		updates["stock_quantity"] = *req.StockQuantity
	}
	if req.Dimensions != nil {
		updates["dimensions"] = *req.Dimensions
	}
	if req.Weight != nil {
		updates["weight"] = *req.Weight
	}
	if req.Offers != nil {
		updates["offers"] = *req.Offers
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.Season != nil {
		if !req.Season.Valid() {
			return nil, ErrInvalidSeason
		}
		updates["season"] = *req.Season
	}
	if req.Fabric != nil {
		updates["fabric"] = *req.Fabric
	}
	if req.Texture != nil {
		updates["texture"] = *req.Texture
	}
	if req.Brand != nil {
		updates["brand"] = *req.Brand
	}

	if len(updates) > 0 {
		if err := s.db.Model(prod).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
	}

	return s.Get(id)
}

// Delete soft deletes a product
func (s *Service) Delete(id uint) error {
	result := s.db.Where("id = ?", id).Delete(&Product{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStock sets the absolute stock quantity of a product
func (s *Service) UpdateStock(id uint, quantity int) error {
	if quantity < 0 {
		return ErrInvalidStock
	}

	result := s.db.Model(&Product{}).
		Where("id = ?", id).
		Update("stock_quantity", quantity)

	if result.Error != nil {
		return fmt.Errorf("failed to update stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// buildOrderClause builds ORDER BY clause for sorting
func (s *Service) buildOrderClause(sortBy, sortOrder string) string {
	validSortFields := map[string]bool{
		"name":         true,
		"price":        true,
		"created_at":   true,
		"review_score": true,
		"brand":        true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	return fmt.Sprintf("%s %s", sortBy, sortOrder)
}
