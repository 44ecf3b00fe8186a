// internal/domain/cart/service.go
package cart

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/your-org/storefront-backend/internal/domain/product"
)

// Sentinel errors surfaced to handlers
var (
	ErrItemNotFound    = errors.New("cart item not found")
	ErrInvalidQuantity = errors.New("quantity must not be negative")
)

// Service handles shopping cart business logic
type Service struct {
	db *gorm.DB
}

// NewService creates a new cart service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// AddItemRequest represents add to cart request data
type AddItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity"`
}

// Line is one priced cart row in a cart view
type Line struct {
	ID        uint            `json:"id"`
	ProductID uint            `json:"product_id"`
	Product   product.Product `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// View is the priced rendering of a user's cart
type View struct {
	CartID    uint            `json:"cart_id"`
	Items     []Line          `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

// getOrCreateCart returns the user's cart, creating it on first use.
// A concurrent create loses the unique-index race and retries the read.
func (s *Service) getOrCreateCart(tx *gorm.DB, userID uint) (*Cart, error) {
	var c Cart
	err := tx.Where("user_id = ?", userID).First(&c).Error
	if err == nil {
		return &c, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}

	c = Cart{UserID: userID}
	if err := tx.Create(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if err := tx.Where("user_id = ?", userID).First(&c).Error; err != nil {
				return nil, fmt.Errorf("failed to retrieve cart: %w", err)
			}
			return &c, nil
		}
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return &c, nil
}

// AddItem adds a product to the user's cart. Adding a product that is
// already in the cart increments its quantity instead of creating a
// second line. Quantity defaults to 1 when omitted.
func (s *Service) AddItem(userID uint, req *AddItemRequest) (*View, error) {
	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 0 {
		return nil, ErrInvalidQuantity
	}

	var prod product.Product
	if err := s.db.Where("id = ?", req.ProductID).First(&prod).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		c, err := s.getOrCreateCart(tx, userID)
		if err != nil {
			return err
		}

		item := CartItem{
			CartID:    c.ID,
			ProductID: req.ProductID,
			Quantity:  qty,
		}
		// Single atomic statement; the composite unique index resolves
		// concurrent adds of the same product into one incremented row.
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity": gorm.Expr("quantity + ?", qty),
			}),
		}).Create(&item).Error; err != nil {
			return fmt.Errorf("failed to add cart item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetCart(userID)
}

// GetCart returns the priced view of the user's cart. A user without a
// cart row yet gets an empty view rather than an error.
func (s *Service) GetCart(userID uint) (*View, error) {
	var c Cart
	err := s.db.Preload("Items.Product").Where("user_id = ?", userID).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &View{Items: []Line{}, Total: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}

	view := &View{
		CartID: c.ID,
		Items:  make([]Line, 0, len(c.Items)),
		Total:  decimal.Zero,
	}
	// Preload skips soft-deleted products, leaving their lines with a
	// zero Product. Those lines are pruned instead of rendered.
	var dangling []uint
	for _, item := range c.Items {
		if item.Product.ID == 0 {
			dangling = append(dangling, item.ID)
			continue
		}
		line := Line{
			ID:        item.ID,
			ProductID: item.ProductID,
			Product:   item.Product,
			Quantity:  item.Quantity,
			UnitPrice: item.Product.Price,
			Subtotal:  lineSubtotal(item.Product.Price, item.Quantity),
		}
		view.Items = append(view.Items, line)
		view.ItemCount += item.Quantity
	}
	view.Total = cartTotal(view.Items)

	if len(dangling) > 0 {
		if err := s.db.Where("id IN ?", dangling).Delete(&CartItem{}).Error; err != nil {
			return nil, fmt.Errorf("failed to prune cart items: %w", err)
		}
	}

	return view, nil
}

// UpdateQuantities applies a batch of quantity changes keyed by cart
// item ID. A quantity of zero removes the line. All changes apply in
// one transaction; any invalid entry rolls back the whole batch.
func (s *Service) UpdateQuantities(userID uint, updates map[uint]int) (*View, error) {
	if len(updates) == 0 {
		return s.GetCart(userID)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var c Cart
		if err := tx.Where("user_id = ?", userID).First(&c).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return fmt.Errorf("failed to retrieve cart: %w", err)
		}

		for itemID, qty := range updates {
			if qty < 0 {
				return ErrInvalidQuantity
			}

			var result *gorm.DB
			if qty == 0 {
				result = tx.Where("id = ? AND cart_id = ?", itemID, c.ID).Delete(&CartItem{})
			} else {
				result = tx.Model(&CartItem{}).
					Where("id = ? AND cart_id = ?", itemID, c.ID).
					Update("quantity", qty)
			}
			if result.Error != nil {
				return fmt.Errorf("failed to update cart item: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return ErrItemNotFound
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetCart(userID)
}

// RemoveItem deletes one line from the user's cart. Items in other
// users' carts are invisible here and report not found.
func (s *Service) RemoveItem(userID, itemID uint) error {
	var c Cart
	if err := s.db.Where("user_id = ?", userID).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrItemNotFound
		}
		return fmt.Errorf("failed to retrieve cart: %w", err)
	}

	result := s.db.Where("id = ? AND cart_id = ?", itemID, c.ID).Delete(&CartItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove cart item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}

// ClearCart removes every line from the user's cart
func (s *Service) ClearCart(userID uint) error {
	var c Cart
	if err := s.db.Where("user_id = ?", userID).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to retrieve cart: %w", err)
	}

	if err := s.db.Where("cart_id = ?", c.ID).Delete(&CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// lineSubtotal computes unit price times quantity
func lineSubtotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// cartTotal sums the subtotals of all lines
func cartTotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal)
	}
	return total
}
