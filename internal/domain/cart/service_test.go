// internal/domain/cart/service_test.go
package cart

import (
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

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

	// A second pooled connection would see a different in-memory database
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access underlying database: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&product.Product{}, &product.Review{}, &Cart{}, &CartItem{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name, price string, stock int) *product.Product {
	t.Helper()

	p := &product.Product{
		Category:      product.CategoryMen,
		Name:          name,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		Season:        product.SeasonAllSeason,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return p
}

func TestAddItemMergesExistingLine(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	p := seedProduct(t, db, "Linen Shirt", "19.99", 10)

	if _, err := svc.AddItem(1, &AddItemRequest{ProductID: p.ID, Quantity: 2}); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	view, err := svc.AddItem(1, &AddItemRequest{ProductID: p.ID, Quantity: 3})
	if err != nil {
		t.Fatalf("second add failed: %v", err)
	}

	if len(view.Items) != 1 {
		t.Fatalf("expected 1 cart line, got %d", len(view.Items))
	}
	if view.Items[0].Quantity != 5 {
		t.Errorf("expected merged quantity 5, got %d", view.Items[0].Quantity)
	}

	var count int64
	db.Model(&CartItem{}).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 cart_items row, got %d", count)
	}
}

func TestAddItemDefaultsQuantityToOne(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	p := seedProduct(t, db, "Wool Scarf", "12.50", 5)

	view, err := svc.AddItem(1, &AddItemRequest{ProductID: p.ID})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if view.Items[0].Quantity != 1 {
		t.Errorf("expected quantity 1, got %d", view.Items[0].Quantity)
	}
}

func TestAddItemUnknownProduct(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	_, err := svc.AddItem(1, &AddItemRequest{ProductID: 999, Quantity: 1})
	if !errors.Is(err, product.ErrNotFound) {
		t.Errorf("expected product.ErrNotFound, got %v", err)
	}
}

func TestAddItemCreatesSingleCartPerUser(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	p1 := seedProduct(t, db, "Cap", "9.99", 5)
	p2 := seedProduct(t, db, "Belt", "14.99", 5)

	if _, err := svc.AddItem(7, &AddItemRequest{ProductID: p1.ID, Quantity: 1}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := svc.AddItem(7, &AddItemRequest{ProductID: p2.ID, Quantity: 1}); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	var count int64
	db.Model(&Cart{}).Where("user_id = ?", 7).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 cart for user, got %d", count)
	}
}

func TestGetCartTotals(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	p1 := seedProduct(t, db, "Linen Shirt", "19.99", 10)
	p2 := seedProduct(t, db, "Cotton Socks", "5.00", 10)

	if _, err := svc.AddItem(1, &AddItemRequest{ProductID: p1.ID, Quantity: 2}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := svc.AddItem(1, &AddItemRequest{ProductID: p2.ID, Quantity: 1}); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	view, err := svc.GetCart(1)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}

	want := decimal.RequireFromString("44.98")
	if !view.Total.Equal(want) {
		t.Errorf("expected total %s, got %s", want, view.Total)
	}
	if view.ItemCount != 3 {
		t.Errorf("expected item count 3, got %d", view.ItemCount)
	}
	for _, line := range view.Items {
		wantSub := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		if !line.Subtotal.Equal(wantSub) {
			t.Errorf("line %d: expected subtotal %s, got %s", line.ID, wantSub, line.Subtotal)
		}
	}
}

func TestGetCartPrunesDeletedProducts(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	p1 := seedProduct(t, db, "Linen Shirt", "19.99", 10)
	p2 := seedProduct(t, db, "Cotton Socks", "5.00", 10)

	if _, err := svc.AddItem(1, &AddItemRequest{ProductID: p1.ID, Quantity: 1}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := svc.AddItem(1, &AddItemRequest{ProductID: p2.ID, Quantity: 1}); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	// Soft-delete one product out from under the cart
	if err := db.Delete(&product.Product{}, p1.ID).Error; err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	view, err := svc.GetCart(1)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(view.Items) != 1 {
		t.Fatalf("expected 1 line after product delete, got %d", len(view.Items))
	}
	if view.Items[0].ProductID != p2.ID {
		t.Errorf("expected surviving line for product %d, got %d", p2.ID, view.Items[0].ProductID)
	}
	want := decimal.RequireFromString("5.00")
	if !view.Total.Equal(want) {
		t.Errorf("expected total %s, got %s", want, view.Total)
	}

	// The orphaned line is removed, not just hidden
	var count int64
	db.Model(&CartItem{}).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 cart_items row after prune, got %d", count)
	}
}

func TestGetCartEmptyForNewUser(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	view, err := svc.GetCart(42)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(view.Items) != 0 {
		t.Errorf("expected empty cart, got %d items", len(view.Items))
	}
	if !view.Total.IsZero() {
		t.Errorf("expected zero total, got %s", view.Total)
	}
}

func TestUpdateQuantities(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	p1 := seedProduct(t, db, "Shirt", "10.00", 10)
	p2 := seedProduct(t, db, "Jeans", "40.00", 10)
	p3 := seedProduct(t, db, "Jacket", "80.00", 10)

	for _, p := range []*product.Product{p1, p2, p3} {
		if _, err := svc.AddItem(1, &AddItemRequest{ProductID: p.ID, Quantity: 1}); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}
	view, err := svc.GetCart(1)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}

	byProduct := make(map[uint]uint)
	for _, line := range view.Items {
		byProduct[line.ProductID] = line.ID
	}

	// Set one, delete one, leave one untouched
	view, err = svc.UpdateQuantities(1, map[uint]int{
		byProduct[p1.ID]: 4,
		byProduct[p2.ID]: 0,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if len(view.Items) != 2 {
		t.Fatalf("expected 2 lines after delete, got %d", len(view.Items))
	}
	quantities := make(map[uint]int)
	for _, line := range view.Items {
		quantities[line.ProductID] = line.Quantity
	}
	if quantities[p1.ID] != 4 {
		t.Errorf("expected quantity 4 for updated line, got %d", quantities[p1.ID])
	}
	if quantities[p3.ID] != 1 {
		t.Errorf("expected untouched line to keep quantity 1, got %d", quantities[p3.ID])
	}
}

func TestUpdateQuantitiesAllOrNothing(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	p := seedProduct(t, db, "Shirt", "10.00", 10)

	view, err := svc.AddItem(1, &AddItemRequest{ProductID: p.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	itemID := view.Items[0].ID

	// One valid change plus one unknown item ID rolls back the batch
	_, err = svc.UpdateQuantities(1, map[uint]int{
		itemID: 9,
		9999:   3,
	})
	if !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}

	view, err = svc.GetCart(1)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if view.Items[0].Quantity != 2 {
		t.Errorf("expected rollback to original quantity 2, got %d", view.Items[0].Quantity)
	}
}

func TestUpdateQuantitiesRejectsNegative(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	p := seedProduct(t, db, "Shirt", "10.00", 10)

	view, err := svc.AddItem(1, &AddItemRequest{ProductID: p.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	_, err = svc.UpdateQuantities(1, map[uint]int{view.Items[0].ID: -1})
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestRemoveItemScopedToOwner(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	p := seedProduct(t, db, "Shirt", "10.00", 10)

	view, err := svc.AddItem(1, &AddItemRequest{ProductID: p.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	itemID := view.Items[0].ID

	// Another user cannot remove it
	if err := svc.RemoveItem(2, itemID); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound for foreign user, got %v", err)
	}

	// The line survives the failed attempt
	view, err = svc.GetCart(1)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(view.Items) != 1 {
		t.Fatalf("expected line to survive, got %d lines", len(view.Items))
	}

	// The owner can
	if err := svc.RemoveItem(1, itemID); err != nil {
		t.Fatalf("owner remove failed: %v", err)
	}
	view, err = svc.GetCart(1)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(view.Items) != 0 {
		t.Errorf("expected empty cart, got %d lines", len(view.Items))
	}
}

func TestClearCart(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	p1 := seedProduct(t, db, "Shirt", "10.00", 10)
	p2 := seedProduct(t, db, "Jeans", "40.00", 10)

	for _, p := range []*product.Product{p1, p2} {
		if _, err := svc.AddItem(1, &AddItemRequest{ProductID: p.ID, Quantity: 1}); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}

	if err := svc.ClearCart(1); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	view, err := svc.GetCart(1)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(view.Items) != 0 {
		t.Errorf("expected empty cart, got %d lines", len(view.Items))
	}
}

func TestCartTotalProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	genLine := gopter.CombineGens(
		gen.Int64Range(0, 100000), // price in cents
		gen.IntRange(1, 50),       // quantity
	).Map(func(vals []interface{}) Line {
		price := decimal.NewFromInt(vals[0].(int64)).Div(decimal.NewFromInt(100))
		qty := vals[1].(int)
		return Line{
			Quantity:  qty,
			UnitPrice: price,
			Subtotal:  lineSubtotal(price, qty),
		}
	})

	properties.Property("total equals sum of price times quantity", prop.ForAll(
		func(lines []Line) bool {
			want := decimal.Zero
			for _, l := range lines {
				want = want.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
			}
			return cartTotal(lines).Equal(want)
		},
		gen.SliceOf(genLine),
	))

	properties.Property("total is never negative", prop.ForAll(
		func(lines []Line) bool {
			return !cartTotal(lines).IsNegative()
		},
		gen.SliceOf(genLine),
	))

	properties.TestingRun(t)
}
