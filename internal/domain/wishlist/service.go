// internal/domain/wishlist/service.go
package wishlist

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/product"
)

// ErrItemNotFound is returned when a product is not on the wishlist
var ErrItemNotFound = errors.New("wishlist item not found")

// Service handles wishlist business logic
type Service struct {
	db      *gorm.DB
	cartSvc *cart.Service
}

// NewService creates a new wishlist service
func NewService(db *gorm.DB, cartSvc *cart.Service) *Service {
	return &Service{db: db, cartSvc: cartSvc}
}

// getOrCreateWishlist returns the user's wishlist, creating it on first
// use. A concurrent create loses the unique-index race and re-reads.
func (s *Service) getOrCreateWishlist(tx *gorm.DB, userID uint) (*Wishlist, error) {
	var w Wishlist
	err := tx.Where("user_id = ?", userID).First(&w).Error
	if err == nil {
		return &w, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to retrieve wishlist: %w", err)
	}

	w = Wishlist{UserID: userID}
	if err := tx.Create(&w).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if err := tx.Where("user_id = ?", userID).First(&w).Error; err != nil {
				return nil, fmt.Errorf("failed to retrieve wishlist: %w", err)
			}
			return &w, nil
		}
		return nil, fmt.Errorf("failed to create wishlist: %w", err)
	}
	return &w, nil
}

// AddProduct saves a product to the user's wishlist. Adding a product
// that is already saved succeeds without creating a duplicate.
func (s *Service) AddProduct(userID, productID uint) error {
	var prod product.Product
	if err := s.db.Where("id = ?", productID).First(&prod).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return product.ErrNotFound
		}
		return fmt.Errorf("failed to retrieve product: %w", err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		w, err := s.getOrCreateWishlist(tx, userID)
		if err != nil {
			return err
		}

		item := WishlistItem{WishlistID: w.ID, ProductID: productID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&item).Error; err != nil {
			return fmt.Errorf("failed to add wishlist item: %w", err)
		}
		return nil
	})
}

// GetWishlist returns the user's saved products. A user without a
// wishlist row yet gets an empty list.
func (s *Service) GetWishlist(userID uint) ([]WishlistItem, error) {
	var w Wishlist
	err := s.db.Preload("Items.Product").Where("user_id = ?", userID).First(&w).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []WishlistItem{}, nil
		}
		return nil, fmt.Errorf("failed to retrieve wishlist: %w", err)
	}
	if w.Items == nil {
		w.Items = []WishlistItem{}
	}
	return w.Items, nil
}

// RemoveProduct removes a product from the user's wishlist
func (s *Service) RemoveProduct(userID, productID uint) error {
	var w Wishlist
	if err := s.db.Where("user_id = ?", userID).First(&w).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrItemNotFound
		}
		return fmt.Errorf("failed to retrieve wishlist: %w", err)
	}

	result := s.db.Where("wishlist_id = ? AND product_id = ?", w.ID, productID).Delete(&WishlistItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove wishlist item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}

// MoveToCart moves a saved product into the cart and removes it from
// the wishlist. If the product is already in the cart its quantity
// increments like a normal add. A quantity below 1 means 1. The cart
// add happens first so a failure there leaves the wishlist intact.
func (s *Service) MoveToCart(userID, productID uint, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}

	var w Wishlist
	if err := s.db.Where("user_id = ?", userID).First(&w).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrItemNotFound
		}
		return fmt.Errorf("failed to retrieve wishlist: %w", err)
	}
	var count int64
	if err := s.db.Model(&WishlistItem{}).
		Where("wishlist_id = ? AND product_id = ?", w.ID, productID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check wishlist item: %w", err)
	}
	if count == 0 {
		return ErrItemNotFound
	}

	if _, err := s.cartSvc.AddItem(userID, &cart.AddItemRequest{ProductID: productID, Quantity: quantity}); err != nil {
		return err
	}
	return s.RemoveProduct(userID, productID)
}
