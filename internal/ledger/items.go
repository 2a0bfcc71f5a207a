package ledger

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ellsondrew-png/inventory-system-tml/internal/models"
	"github.com/ellsondrew-png/inventory-system-tml/internal/money"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ItemInput is one submitted line before validation.
type ItemInput struct {
	Designation string          `json:"designation"`
	Description string          `json:"description"`
	Brand       string          `json:"brand"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	// Malformed marks rows whose quantity or price could not be read.
	Malformed bool `json:"-"`
}

// maxItemText is the column width of the item text fields.
const maxItemText = 255

// Valid reports whether the line can be stored: a description, a positive
// quantity, a non-negative price and text that fits its columns.
func (in ItemInput) Valid() bool {
	return !in.Malformed &&
		strings.TrimSpace(in.Description) != "" &&
		in.Quantity > 0 &&
		!in.UnitPrice.IsNegative() &&
		fits(in.Designation) && fits(in.Description) && fits(in.Brand)
}

func fits(s string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) <= maxItemText
}

// ValidateItems splits inputs into the lines that will be stored and a
// count of skipped ones. Skipping is not an error; callers report the count.
func ValidateItems(inputs []ItemInput) (accepted []ItemInput, skipped int) {
	accepted = make([]ItemInput, 0, len(inputs))
	for _, in := range inputs {
		if !in.Valid() {
			skipped++
			continue
		}
		in.Designation = strings.TrimSpace(in.Designation)
		in.Description = strings.TrimSpace(in.Description)
		in.Brand = strings.TrimSpace(in.Brand)
		in.UnitPrice = money.Round(in.UnitPrice)
		accepted = append(accepted, in)
	}
	return accepted, skipped
}

func (in ItemInput) line(number int) models.LineItem {
	return models.LineItem{
		ItemNumber:  number,
		Designation: in.Designation,
		Description: in.Description,
		Brand:       in.Brand,
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		Amount:      money.LineAmount(in.Quantity, in.UnitPrice),
	}
}

// NextItemNumber returns max(item_number)+1 among the document's items,
// or 1 when it has none. Gaps left by deleting a middle item stay; deleting
// the highest item makes its number the next one handed out.
func NextItemNumber(tx *gorm.DB, spec models.KindSpec, documentID uint) (int, error) {
	var last int
	err := tx.Table(spec.ItemTable).
		Where(spec.ParentColumn+" = ?", documentID).
		Select("COALESCE(MAX(item_number), 0)").
		Scan(&last).Error
	if err != nil {
		return 0, fmt.Errorf("next item number: %w", err)
	}
	return last + 1, nil
}
