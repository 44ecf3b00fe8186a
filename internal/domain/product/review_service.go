// internal/domain/product/review_service.go
package product

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrDuplicateReview = errors.New("product already reviewed by this user")
)

// ReviewService handles product review business logic
type ReviewService struct {
	db *gorm.DB
}

// NewReviewService creates a new review service
func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db}
}

// AddReviewRequest represents review creation data
type AddReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// AddReview creates a review and refreshes the product's average score.
// One review per (user, product); a second submission is a conflict.
func (s *ReviewService) AddReview(userID, productID uint, req *AddReviewRequest) (*Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, ErrInvalidRating
	}

	var prod Product
	if err := s.db.Where("id = ?", productID).First(&prod).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}

	review := Review{
		UserID:    userID,
		ProductID: productID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&review).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateReview
			}
			return fmt.Errorf("failed to create review: %w", err)
		}
		return s.refreshReviewScore(tx, productID)
	})
	if err != nil {
		return nil, err
	}

	return &review, nil
}

// ListReviews returns all reviews for a product, newest first
func (s *ReviewService) ListReviews(productID uint) ([]Review, error) {
	var prod Product
	if err := s.db.Where("id = ?", productID).First(&prod).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}

	var reviews []Review
	if err := s.db.Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve reviews: %w", err)
	}
	return reviews, nil
}

// refreshReviewScore recomputes the stored average rating
func (s *ReviewService) refreshReviewScore(tx *gorm.DB, productID uint) error {
	var avg float64
	if err := tx.Model(&Review{}).
		Where("product_id = ?", productID).
		Select("COALESCE(AVG(rating), 0)").
		Scan(&avg).Error; err != nil {
		return fmt.Errorf("failed to compute review score: %w", err)
	}

	if err := tx.Model(&Product{}).
		Where("id = ?", productID).
		Update("review_score", avg).Error; err != nil {
		return fmt.Errorf("failed to update review score: %w", err)
	}
	return nil
}
