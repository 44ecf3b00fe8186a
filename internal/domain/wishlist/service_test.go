// internal/domain/wishlist/service_test.go
package wishlist

import (
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/product"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access underlying database: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&product.Product{}, &product.Review{},
		&cart.Cart{}, &cart.CartItem{},
		&Wishlist{}, &WishlistItem{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func newServices(db *gorm.DB) (*Service, *cart.Service) {
	cartSvc := cart.NewService(db)
	return NewService(db, cartSvc), cartSvc
}

func seedProduct(t *testing.T, db *gorm.DB, name string) *product.Product {
	t.Helper()

	p := &product.Product{
		Category:      product.CategoryWomen,
		Name:          name,
		Price:         decimal.RequireFromString("25.00"),
		StockQuantity: 10,
		Season:        product.SeasonAllSeason,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return p
}

func TestAddProductIdempotent(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newServices(db)
	p := seedProduct(t, db, "Silk Dress")

	if err := svc.AddProduct(1, p.ID); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if err := svc.AddProduct(1, p.ID); err != nil {
		t.Fatalf("second add failed: %v", err)
	}

	items, err := svc.GetWishlist(1)
	if err != nil {
		t.Fatalf("get wishlist failed: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("expected 1 wishlist item after double add, got %d", len(items))
	}
}

func TestAddProductUnknownProduct(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newServices(db)

	if err := svc.AddProduct(1, 999); !errors.Is(err, product.ErrNotFound) {
		t.Errorf("expected product.ErrNotFound, got %v", err)
	}
}

func TestGetWishlistEmptyForNewUser(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newServices(db)

	items, err := svc.GetWishlist(42)
	if err != nil {
		t.Fatalf("get wishlist failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty wishlist, got %d items", len(items))
	}
}

func TestRemoveProduct(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newServices(db)
	p := seedProduct(t, db, "Silk Dress")

	if err := svc.AddProduct(1, p.ID); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	// Another user sees nothing to remove
	if err := svc.RemoveProduct(2, p.ID); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound for foreign user, got %v", err)
	}

	if err := svc.RemoveProduct(1, p.ID); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if err := svc.RemoveProduct(1, p.ID); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound on second remove, got %v", err)
	}

	// Removed products can be saved again
	if err := svc.AddProduct(1, p.ID); err != nil {
		t.Errorf("re-add after remove failed: %v", err)
	}
}

func TestMoveToCart(t *testing.T) {
	db := setupTestDB(t)
	svc, cartSvc := newServices(db)
	p := seedProduct(t, db, "Silk Dress")

	if err := svc.AddProduct(1, p.ID); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := svc.MoveToCart(1, p.ID, 0); err != nil {
		t.Fatalf("move to cart failed: %v", err)
	}

	items, err := svc.GetWishlist(1)
	if err != nil {
		t.Fatalf("get wishlist failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected product removed from wishlist, got %d items", len(items))
	}

	view, err := cartSvc.GetCart(1)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(view.Items) != 1 || view.Items[0].ProductID != p.ID {
		t.Fatalf("expected product in cart, got %+v", view.Items)
	}
	if view.Items[0].Quantity != 1 {
		t.Errorf("expected quantity 1, got %d", view.Items[0].Quantity)
	}
}

func TestMoveToCartNotOnWishlist(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newServices(db)
	p := seedProduct(t, db, "Silk Dress")

	if err := svc.MoveToCart(1, p.ID, 1); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}

	// The cart stays untouched when the product is not on the wishlist
	view, err := cart.NewService(db).GetCart(1)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(view.Items) != 0 {
		t.Errorf("expected empty cart, got %d lines", len(view.Items))
	}
}
