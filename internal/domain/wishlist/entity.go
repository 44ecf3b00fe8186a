// internal/domain/wishlist/entity.go
package wishlist

import (
	"time"

	"github.com/your-org/storefront-backend/internal/domain/product"
)

// Wishlist is the per-user set of saved products. The unique index on
// user_id keeps it to one wishlist per user.
type Wishlist struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Items []WishlistItem `gorm:"foreignKey:WishlistID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items,omitempty"`
}

// WishlistItem is one saved product. The composite unique index gives
// the wishlist set semantics; re-adding is a no-op. Rows are
// hard-deleted so a removed product can be saved again.
type WishlistItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	WishlistID uint      `gorm:"not null;uniqueIndex:idx_wishlist_items_list_product" json:"wishlist_id"`
	ProductID  uint      `gorm:"not null;uniqueIndex:idx_wishlist_items_list_product" json:"product_id"`
	CreatedAt  time.Time `json:"created_at"`

	// Relationships
	Product product.Product `gorm:"foreignKey:ProductID" json:"product"`
}

// TableName overrides
func (Wishlist) TableName() string     { return "wishlists" }
func (WishlistItem) TableName() string { return "wishlist_items" }
