package models

import (
	"time"

	"github.com/ellsondrew-png/inventory-system-tml/internal/money"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DocumentHeader holds the columns shared by every sales document.
// Subtotal, Tax and Total are derived from the items and only written by the ledger.
type DocumentHeader struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Number     string          `gorm:"size:20;uniqueIndex;not null" json:"number"`
	Date       time.Time       `gorm:"not null" json:"date"`
	ClientID   uint            `gorm:"index;not null" json:"client_id"`
	PreparedBy string          `gorm:"size:100" json:"prepared_by,omitempty"`
	Subtotal   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"subtotal"`
	Tax        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"tax"`
	Total      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total"`
}

// Persisted reports whether the header has a storage identity.
func (h *DocumentHeader) Persisted() bool { return h.ID != 0 }

// SetTotals copies derived totals onto the header.
func (h *DocumentHeader) SetTotals(t money.Totals) {
	h.Subtotal, h.Tax, h.Total = t.Subtotal, t.Tax, t.Total
}

// Totals returns the stored derived fields.
func (h *DocumentHeader) Totals() money.Totals {
	return money.Totals{Subtotal: h.Subtotal, Tax: h.Tax, Total: h.Total}
}

// LineItem holds the columns shared by every document item.
type LineItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time       `json:"created_at"`
	ItemNumber  int             `gorm:"not null" json:"item_number"`
	Designation string          `gorm:"size:255" json:"designation,omitempty"`
	Description string          `gorm:"size:255;not null" json:"description"`
	Brand       string          `gorm:"size:255" json:"brand,omitempty"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
}

// BeforeSave keeps Amount equal to Quantity × UnitPrice whatever the caller set.
func (l *LineItem) BeforeSave(tx *gorm.DB) error {
	l.UnitPrice = money.Round(l.UnitPrice)
	l.Amount = money.LineAmount(l.Quantity, l.UnitPrice)
	return nil
}

// Field is a labelled header value shown on printed documents.
type Field struct {
	Label string
	Value string
}
