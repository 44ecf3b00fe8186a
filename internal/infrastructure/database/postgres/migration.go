// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/domain/wishlist"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Models in dependency order
	models := []interface{}{
		&user.User{},
		&user.Profile{},

		&product.Product{},
		&product.Review{},

		&cart.Cart{},
		&cart.CartItem{},

		&wishlist.Wishlist{},
		&wishlist.WishlistItem{},

		&order.Order{},
		&order.OrderedItem{},
		&order.Payment{},
	}

	for _, model := range models {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at DESC)",

		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_category_season ON products(category, season)",
		"CREATE INDEX IF NOT EXISTS idx_products_price ON products(price)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_products_review_score ON products(review_score DESC)",

		// Cart indexes
		"CREATE INDEX IF NOT EXISTS idx_cart_items_product ON cart_items(product_id)",

		// Wishlist indexes
		"CREATE INDEX IF NOT EXISTS idx_wishlist_items_product ON wishlist_items(product_id)",

		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_orders_user_status ON orders(user_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_ordered_items_product ON ordered_items(product_id)",

		// Payment indexes
		"CREATE INDEX IF NOT EXISTS idx_payments_status ON payments(status)",
		"CREATE INDEX IF NOT EXISTS idx_payments_method ON payments(method)",
		"CREATE INDEX IF NOT EXISTS idx_payments_created_at ON payments(created_at DESC)",

		// Review indexes
		"CREATE INDEX IF NOT EXISTS idx_reviews_product_created ON reviews(product_id, created_at DESC)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("✅ Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData inserts initial data into the database
func (m *Migration) SeedInitialData() error {
	log.Println("🌱 Seeding initial data...")

	if err := m.seedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := m.seedSampleProducts(); err != nil {
		return fmt.Errorf("failed to seed sample products: %w", err)
	}

	log.Println("✅ Initial data seeded successfully")
	return nil
}

func (m *Migration) seedAdminUser() error {
	log.Println("👤 Seeding admin user...")

	var existing user.User
	result := m.db.Where("email = ?", "admin@example.com").First(&existing)
	if result.Error == nil {
		log.Printf("⏭️ Admin user already exists with ID: %d", existing.ID)
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("Admin123"), 10)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	adminUser := user.User{
		Email:     "admin@example.com",
		Password:  string(hashedPassword),
		FirstName: "Admin",
		LastName:  "User",
		IsActive:  true,
		IsAdmin:   true,
	}

	if err := m.db.Create(&adminUser).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	profile := user.Profile{UserID: adminUser.ID, WalletBalance: decimal.Zero}
	if err := m.db.Create(&profile).Error; err != nil {
		return fmt.Errorf("failed to create admin profile: %w", err)
	}

	log.Println("✅ Created admin user: admin@example.com")
	return nil
}

// seedSampleProducts creates a small starter catalog for development
func (m *Migration) seedSampleProducts() error {
	log.Println("🛍️ Seeding sample products...")

	var productCount int64
	m.db.Model(&product.Product{}).Count(&productCount)
	if productCount > 0 {
		log.Println("⏭️ Products already exist")
		return nil
	}

	sampleProducts := []product.Product{
		{
			Category:      product.CategoryMen,
			Name:          "Classic Linen Shirt",
			Price:         decimal.RequireFromString("29.99"),
			StockQuantity: 50,
			Dimensions:    "30x22x2",
			Weight:        "250g",
			Season:        product.SeasonSummer,
			Fabric:        "Linen",
			Texture:       "Woven",
			Brand:         "Northwind",
		},
		{
			Category:      product.CategoryWomen,
			Name:          "Silk Evening Dress",
			Price:         decimal.RequireFromString("89.99"),
			StockQuantity: 20,
			Dimensions:    "35x25x3",
			Weight:        "300g",
			Offers:        "10% off first order",
			Season:        product.SeasonSummer,
			Fabric:        "Silk",
			Texture:       "Smooth",
			Brand:         "Aurora",
		},
		{
			Category:      product.CategoryToddler,
			Name:          "Cotton Romper",
			Price:         decimal.RequireFromString("15.00"),
			StockQuantity: 80,
			Weight:        "120g",
			Season:        product.SeasonAllSeason,
			Fabric:        "Cotton",
			Texture:       "Soft knit",
			Brand:         "Sprout",
		},
		{
			Category:      product.CategoryBoys,
			Name:          "Winter Parka",
			Price:         decimal.RequireFromString("64.50"),
			StockQuantity: 30,
			Weight:        "800g",
			Season:        product.SeasonWinter,
			Fabric:        "Polyester",
			Texture:       "Quilted",
			Brand:         "Northwind",
		},
	}

	for _, prod := range sampleProducts {
		if err := m.db.Create(&prod).Error; err != nil {
			log.Printf("⚠️ Failed to create sample product %s: %v", prod.Name, err)
		} else {
			log.Printf("✅ Created sample product: %s", prod.Name)
		}
	}

	return nil
}

// GetTableInfo returns information about database tables
func (m *Migration) GetTableInfo() error {
	var tables []string

	if err := m.db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public' ORDER BY tablename").Scan(&tables).Error; err != nil {
		return err
	}

	log.Println("📊 Database Tables Information:")
	for _, table := range tables {
		var count int64
		m.db.Table(table).Count(&count)
		log.Printf("%-25s | %d records", table, count)
	}

	return nil
}
