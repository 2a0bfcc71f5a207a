// Package money holds the fixed-point arithmetic behind line amounts and
// document totals. Every monetary value is a decimal with 2 places.
package money

import "github.com/shopspring/decimal"

// Places is the number of decimal places kept for monetary values.
const Places = 2

// TaxRate is the flat surcharge applied to every document subtotal.
var TaxRate = decimal.RequireFromString("0.16")

// Totals are the derived monetary fields of a sales document.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Round rounds d to Places decimal places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// LineAmount is quantity × unit price.
func LineAmount(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return Round(unitPrice.Mul(decimal.NewFromInt(int64(quantity))))
}

// Recompute derives subtotal, tax and total from line amounts. It has no
// side effects; no amounts gives zero totals.
func Recompute(amounts ...decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, a := range amounts {
		subtotal = subtotal.Add(a)
	}
	subtotal = Round(subtotal)
	tax := Round(subtotal.Mul(TaxRate))
	return Totals{Subtotal: subtotal, Tax: tax, Total: subtotal.Add(tax)}
}

// Parse reads a user-supplied amount, tolerating surrounding spaces and a
// comma decimal separator.
func Parse(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(normalize(s))
}

func normalize(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r == ' ' || r == '\t':
		case r == ',':
			out = append(out, '.')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
