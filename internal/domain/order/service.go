// internal/domain/order/service.go
package order

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/user"
)

// Sentinel errors surfaced to handlers
var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInsufficientStock = errors.New("insufficient stock for product")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrDuplicatePayment  = errors.New("order already has a payment")
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
	ErrInvalidMethod     = errors.New("unsupported payment method")
)

// Payment methods accepted at checkout
const (
	MethodWallet         = "wallet"
	MethodCashOnDelivery = "cod"
)

// Service handles order and payment business logic
type Service struct {
	db *gorm.DB
}

// NewService creates a new order service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreatePaymentRequest represents payment creation data
type CreatePaymentRequest struct {
	Method string `json:"method" binding:"required"`
}

// Checkout converts the user's cart into an order. Unit prices are
// snapshotted into the order lines, stock is decremented with a guard
// against going negative, and the cart is cleared. Everything happens
// in one transaction.
func (s *Service) Checkout(userID uint) (*Order, error) {
	var ord Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var c cart.Cart
		if err := tx.Preload("Items.Product").Where("user_id = ?", userID).First(&c).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEmptyCart
			}
			return fmt.Errorf("failed to retrieve cart: %w", err)
		}
		if len(c.Items) == 0 {
			return ErrEmptyCart
		}

		total := decimal.Zero
		items := make([]OrderedItem, 0, len(c.Items))
		for _, line := range c.Items {
			// Lines whose product was soft-deleted since they were added
			// are dropped from the cart rather than ordered.
			if line.Product.ID == 0 {
				if err := tx.Where("id = ?", line.ID).Delete(&cart.CartItem{}).Error; err != nil {
					return fmt.Errorf("failed to prune cart item: %w", err)
				}
				continue
			}

			// Guarded decrement; zero rows means someone else took the stock
			result := tx.Model(&product.Product{}).
				Where("id = ? AND stock_quantity >= ?", line.ProductID, line.Quantity).
				Updates(map[string]interface{}{
					"stock_quantity":  gorm.Expr("stock_quantity - ?", line.Quantity),
					"purchased_count": gorm.Expr("purchased_count + ?", line.Quantity),
				})
			if result.Error != nil {
				return fmt.Errorf("failed to reserve stock: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("%w: %s", ErrInsufficientStock, line.Product.Name)
			}

			items = append(items, OrderedItem{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Price:     line.Product.Price,
			})
			total = total.Add(line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		ord = Order{
			UserID:     userID,
			TotalPrice: total,
			Status:     StatusPending,
			Items:      items,
		}
		if err := tx.Create(&ord).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		if err := tx.Where("cart_id = ?", c.ID).Delete(&cart.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetOrder(userID, ord.ID)
}

// ListOrders returns the user's orders, newest first
func (s *Service) ListOrders(userID uint) ([]Order, error) {
	var orders []Order
	if err := s.db.Preload("Items.Product").Preload("Payment").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}
	return orders, nil
}

// GetOrder returns one order scoped to its owner
func (s *Service) GetOrder(userID, orderID uint) (*Order, error) {
	var ord Order
	err := s.db.Preload("Items.Product").Preload("Payment").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&ord).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return &ord, nil
}

// UpdateStatus moves an order through its lifecycle. Changes outside
// the transition table are rejected.
func (s *Service) UpdateStatus(orderID uint, target Status) (*Order, error) {
	if !target.Valid() {
		return nil, ErrInvalidTransition
	}

	var ord Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", orderID).First(&ord).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("failed to retrieve order: %w", err)
		}

		if !ord.Status.CanTransitionTo(target) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, ord.Status, target)
		}

		if target == StatusCancelled {
			if err := s.restoreStock(tx, orderID); err != nil {
				return err
			}
		}

		if err := tx.Model(&ord).Update("status", target).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		ord.Status = target
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ord, nil
}

// CancelOrder cancels the user's own order and returns its stock
func (s *Service) CancelOrder(userID, orderID uint) (*Order, error) {
	if _, err := s.GetOrder(userID, orderID); err != nil {
		return nil, err
	}
	return s.UpdateStatus(orderID, StatusCancelled)
}

// restoreStock returns reserved quantities to the catalog
func (s *Service) restoreStock(tx *gorm.DB, orderID uint) error {
	var items []OrderedItem
	if err := tx.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
		return fmt.Errorf("failed to retrieve order items: %w", err)
	}

	for _, item := range items {
		if err := tx.Model(&product.Product{}).
			Where("id = ?", item.ProductID).
			Updates(map[string]interface{}{
				"stock_quantity":  gorm.Expr("stock_quantity + ?", item.Quantity),
				"purchased_count": gorm.Expr("purchased_count - ?", item.Quantity),
			}).Error; err != nil {
			return fmt.Errorf("failed to restore stock: %w", err)
		}
	}
	return nil
}

// CreatePayment records the payment for an order. The amount always
// equals the order total; a second payment attempt is a conflict. The
// wallet method debits the user's balance in the same transaction.
func (s *Service) CreatePayment(userID, orderID uint, req *CreatePaymentRequest) (*Payment, error) {
	if req.Method != MethodWallet && req.Method != MethodCashOnDelivery {
		return nil, ErrInvalidMethod
	}

	var payment Payment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var ord Order
		if err := tx.Where("id = ? AND user_id = ?", orderID, userID).First(&ord).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("failed to retrieve order: %w", err)
		}

		if !ord.Status.CanTransitionTo(StatusPaid) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, ord.Status, StatusPaid)
		}

		var existing Payment
		err := tx.Where("order_id = ?", orderID).First(&existing).Error
		if err == nil {
			return ErrDuplicatePayment
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check existing payment: %w", err)
		}

		if req.Method == MethodWallet {
			// The subtraction happens in Go so the balance stays
			// decimal-exact; the compare-and-swap write keeps a
			// concurrent debit from double-spending.
			var profile user.Profile
			if err := tx.Where("user_id = ?", userID).First(&profile).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrInsufficientFunds
				}
				return fmt.Errorf("failed to retrieve profile: %w", err)
			}
			if profile.WalletBalance.LessThan(ord.TotalPrice) {
				return ErrInsufficientFunds
			}

			newBalance := profile.WalletBalance.Sub(ord.TotalPrice)
			result := tx.Model(&user.Profile{}).
				Where("user_id = ? AND wallet_balance = ?", userID, profile.WalletBalance).
				Update("wallet_balance", newBalance)
			if result.Error != nil {
				return fmt.Errorf("failed to debit wallet: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("wallet balance changed during payment")
			}
		}

		payment = Payment{
			UserID:  userID,
			OrderID: orderID,
			Amount:  ord.TotalPrice,
			Method:  req.Method,
			Status:  PaymentStatusCompleted,
		}
		if err := tx.Create(&payment).Error; err != nil {
			// Unique index backstop for a concurrent payment racing the check
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicatePayment
			}
			return fmt.Errorf("failed to create payment: %w", err)
		}

		if err := tx.Model(&ord).Update("status", StatusPaid).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetPayment returns the payment for the user's own order
func (s *Service) GetPayment(userID, orderID uint) (*Payment, error) {
	if _, err := s.GetOrder(userID, orderID); err != nil {
		return nil, err
	}

	var payment Payment
	if err := s.db.Where("order_id = ?", orderID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to retrieve payment: %w", err)
	}
	return &payment, nil
}
