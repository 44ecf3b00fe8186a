// internal/domain/product/entity.go
package product

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category represents the product category
type Category string

const (
	CategoryBoys    Category = "Boys"
	CategoryGirls   Category = "Girls"
	CategoryMen     Category = "Men"
	CategoryWomen   Category = "Women"
	CategoryToddler Category = "Toddler"
)

// Season represents the season a product is intended for
type Season string

const (
	SeasonSummer    Season = "Summer"
	SeasonWinter    Season = "Winter"
	SeasonAllSeason Season = "All Season"
)

// Categories lists every valid product category.
func Categories() []Category {
	return []Category{CategoryBoys, CategoryGirls, CategoryMen, CategoryWomen, CategoryToddler}
}

// Seasons lists every valid product season.
func Seasons() []Season {
	return []Season{SeasonSummer, SeasonWinter, SeasonAllSeason}
}

// Valid reports whether the category is one of the known values.
func (c Category) Valid() bool {
	switch c {
	case CategoryBoys, CategoryGirls, CategoryMen, CategoryWomen, CategoryToddler:
		return true
	}
	return false
}

// Valid reports whether the season is one of the known values.
func (s Season) Valid() bool {
	switch s {
	case SeasonSummer, SeasonWinter, SeasonAllSeason:
		return true
	}
	return false
}

// Product represents the product entity
type Product struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Category       Category        `gorm:"not null;size:20;index" json:"category"`
	Name           string          `gorm:"not null;size:100" json:"name"`
	Price          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	ReviewScore    float64         `gorm:"default:0" json:"review_score"`
	PurchasedCount int             `gorm:"default:0" json:"purchased_count"`
	StockQuantity  int             `gorm:"default:0" json:"stock_quantity"`
	Dimensions     string          `gorm:"size:100" json:"dimensions"`
	Weight         string          `gorm:"size:50" json:"weight"`
	Offers         string          `gorm:"size:100" json:"offers"`
	ImageURL       string          `gorm:"size:500" json:"image_url"`
	Season         Season          `gorm:"size:20;default:'All Season'" json:"season"`
	Fabric         string          `gorm:"size:50" json:"fabric"`
	Texture        string          `gorm:"size:50" json:"texture"`
	Brand          string          `gorm:"size:50;index" json:"brand"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Reviews []Review `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"reviews,omitempty"`
}

// Review represents a customer review for a product
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_reviews_user_product" json:"user_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_reviews_user_product" json:"product_id"`
	Rating    int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides
func (Product) TableName() string { return "products" }
func (Review) TableName() string  { return "reviews" }

// IsInStock reports whether any stock remains
func (p *Product) IsInStock() bool {
	return p.StockQuantity > 0
}
