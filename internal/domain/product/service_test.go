// internal/domain/product/service_test.go
package product

import (
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
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

	if err := db.AutoMigrate(&Product{}, &Review{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func seedCatalog(t *testing.T, svc *Service) {
	t.Helper()

	products := []CreateRequest{
		{Category: CategoryMen, Name: "Linen Shirt", Price: decimal.RequireFromString("29.99"), Fabric: "Linen", Brand: "Northwind", Season: SeasonSummer, StockQuantity: 10},
		{Category: CategoryMen, Name: "Wool Coat", Price: decimal.RequireFromString("120.00"), Fabric: "Wool", Brand: "Northwind", Season: SeasonWinter, StockQuantity: 5},
		{Category: CategoryWomen, Name: "Silk Dress", Price: decimal.RequireFromString("45.00"), Fabric: "Silk", Brand: "Aurora", Season: SeasonSummer, StockQuantity: 8},
		{Category: CategoryToddler, Name: "Cotton Romper", Price: decimal.RequireFromString("15.00"), Fabric: "Cotton", Brand: "Sprout", StockQuantity: 20},
	}
	for i := range products {
		if _, err := svc.Create(&products[i]); err != nil {
			t.Fatalf("failed to seed product %q: %v", products[i].Name, err)
		}
	}
}

func TestListNoFilters(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	seedCatalog(t, svc)

	resp, err := svc.List(&ListRequest{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(resp.Products) != 4 {
		t.Errorf("expected 4 products, got %d", len(resp.Products))
	}
	if resp.Pagination.Total != 4 {
		t.Errorf("expected total 4, got %d", resp.Pagination.Total)
	}
}

func TestListFiltersCombineWithAnd(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	seedCatalog(t, svc)

	priceMax := decimal.RequireFromString("50.00")
	resp, err := svc.List(&ListRequest{Category: "Men", PriceMax: &priceMax})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(resp.Products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(resp.Products))
	}
	if resp.Products[0].Name != "Linen Shirt" {
		t.Errorf("expected Linen Shirt, got %s", resp.Products[0].Name)
	}
}

func TestListPriceBoundsInclusive(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	seedCatalog(t, svc)

	min := decimal.RequireFromString("45.00")
	max := decimal.RequireFromString("45.00")
	resp, err := svc.List(&ListRequest{PriceMin: &min, PriceMax: &max})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(resp.Products) != 1 || resp.Products[0].Name != "Silk Dress" {
		t.Errorf("expected exactly the 45.00 product, got %+v", resp.Products)
	}
}

func TestListFabricCaseInsensitiveSubstring(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	seedCatalog(t, svc)

	resp, err := svc.List(&ListRequest{Fabric: "wOOl"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(resp.Products) != 1 || resp.Products[0].Name != "Wool Coat" {
		t.Errorf("expected Wool Coat, got %+v", resp.Products)
	}

	// Substring match on brand too
	resp, err = svc.List(&ListRequest{Brand: "north"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(resp.Products) != 2 {
		t.Errorf("expected 2 Northwind products, got %d", len(resp.Products))
	}
}

func TestListNoMatches(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	seedCatalog(t, svc)

	resp, err := svc.List(&ListRequest{Category: "Girls"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(resp.Products) != 0 {
		t.Errorf("expected empty result, got %d", len(resp.Products))
	}
}

func TestCreateValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	if _, err := svc.Create(&CreateRequest{Category: "Pets", Name: "X", Price: decimal.NewFromInt(1)}); !errors.Is(err, ErrInvalidCategory) {
		t.Errorf("expected ErrInvalidCategory, got %v", err)
	}
	if _, err := svc.Create(&CreateRequest{Category: CategoryMen, Name: "X", Price: decimal.NewFromInt(-1)}); !errors.Is(err, ErrInvalidPrice) {
		t.Errorf("expected ErrInvalidPrice, got %v", err)
	}

	// Season defaults when omitted
	p, err := svc.Create(&CreateRequest{Category: CategoryMen, Name: "X", Price: decimal.NewFromInt(1)})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if p.Season != SeasonAllSeason {
		t.Errorf("expected default season, got %s", p.Season)
	}
}

func TestUpdatePartial(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	p, err := svc.Create(&CreateRequest{Category: CategoryMen, Name: "Linen Shirt", Price: decimal.RequireFromString("29.99")})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	newPrice := decimal.RequireFromString("24.99")
	updated, err := svc.Update(p.ID, &UpdateRequest{Price: &newPrice})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !updated.Price.Equal(newPrice) {
		t.Errorf("expected price %s, got %s", newPrice, updated.Price)
	}
	if updated.Name != "Linen Shirt" {
		t.Errorf("expected untouched name, got %s", updated.Name)
	}
}

func TestGetAndDelete(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	p, err := svc.Create(&CreateRequest{Category: CategoryMen, Name: "Linen Shirt", Price: decimal.RequireFromString("29.99")})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.Get(p.ID); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if err := svc.Delete(p.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.Get(p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := svc.Delete(999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown product, got %v", err)
	}
}

func TestUpdateStock(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	p, err := svc.Create(&CreateRequest{Category: CategoryMen, Name: "Linen Shirt", Price: decimal.RequireFromString("29.99")})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.UpdateStock(p.ID, 12); err != nil {
		t.Fatalf("update stock failed: %v", err)
	}
	got, _ := svc.Get(p.ID)
	if got.StockQuantity != 12 {
		t.Errorf("expected stock 12, got %d", got.StockQuantity)
	}
	if err := svc.UpdateStock(p.ID, -1); !errors.Is(err, ErrInvalidStock) {
		t.Errorf("expected ErrInvalidStock, got %v", err)
	}
}

func TestAddReviewRefreshesScore(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	reviews := NewReviewService(db)

	p, err := svc.Create(&CreateRequest{Category: CategoryMen, Name: "Linen Shirt", Price: decimal.RequireFromString("29.99")})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := reviews.AddReview(1, p.ID, &AddReviewRequest{Rating: 5, Comment: "great"}); err != nil {
		t.Fatalf("first review failed: %v", err)
	}
	if _, err := reviews.AddReview(2, p.ID, &AddReviewRequest{Rating: 3}); err != nil {
		t.Fatalf("second review failed: %v", err)
	}

	got, _ := svc.Get(p.ID)
	if got.ReviewScore != 4.0 {
		t.Errorf("expected review score 4.0, got %v", got.ReviewScore)
	}

	// Second review from the same user is a conflict
	if _, err := reviews.AddReview(1, p.ID, &AddReviewRequest{Rating: 1}); !errors.Is(err, ErrDuplicateReview) {
		t.Errorf("expected ErrDuplicateReview, got %v", err)
	}
}
