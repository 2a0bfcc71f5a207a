package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
}

// LowStockThreshold marks products that need restocking.
const LowStockThreshold = 5

type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Name        string          `gorm:"size:200;not null" json:"name"`
	Designation string          `gorm:"size:100" json:"designation,omitempty"`
	Brand       string          `gorm:"size:100" json:"brand,omitempty"`
	Barcode     string          `gorm:"size:100;uniqueIndex;not null" json:"barcode"`
	CategoryID  uint            `gorm:"index;not null" json:"category_id"`
	Category    *Category       `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"category,omitempty"`
	Quantity    int             `gorm:"not null;default:0" json:"quantity"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	ImageKey    string          `gorm:"size:255" json:"image_key,omitempty"`
	ImageURL    string          `gorm:"-" json:"image_url,omitempty"`
}

// LowStock reports whether the product is below LowStockThreshold.
func (p *Product) LowStock() bool { return p.Quantity < LowStockThreshold }

type MovementType string

const (
	MovementIn  MovementType = "IN"
	MovementOut MovementType = "OUT"
)

// Reasons accepted for a stock-out movement.
const (
	ReasonSold       = "Sold"
	ReasonDamaged    = "Damaged"
	ReasonUsedOnSite = "Used on Site"
	ReasonModified   = "Modified"
)

func StockOutReasons() []string {
	return []string{ReasonSold, ReasonDamaged, ReasonUsedOnSite, ReasonModified}
}

// StockMovement records one change to a product's quantity together with
// the quantity before and after it.
type StockMovement struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time    `gorm:"index" json:"created_at"`
	ProductID      uint         `gorm:"index;not null" json:"product_id"`
	Product        *Product     `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product,omitempty"`
	MovementType   MovementType `gorm:"size:3;not null;index" json:"movement_type"`
	Quantity       int          `gorm:"not null" json:"quantity"`
	Reason         string       `gorm:"size:50" json:"reason,omitempty"`
	QuantityBefore int          `gorm:"not null" json:"quantity_before"`
	QuantityAfter  int          `gorm:"not null" json:"quantity_after"`
	PerformedByID  *uint        `gorm:"index" json:"performed_by_id,omitempty"`
	PerformedBy    *User        `gorm:"foreignKey:PerformedByID;constraint:OnDelete:SET NULL" json:"performed_by,omitempty"`
}
