package validation

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidators(t *testing.T) {
	v := make(Violations)
	Required("name", "  ", v)
	PositiveInt("quantity", 0, v)
	NonNegativeInt("stock", 3, v)
	NonNegativeDecimal("price", decimal.RequireFromString("-0.01"), v)
	Email("email", "not-an-email", v)
	Email("optional_email", "", v)
	OneOf("reason", "Lost", []string{"Sold", "Damaged"}, v)
	MaxLen("pin", "12345", 3, v)

	want := map[string]string{
		"name":     "required",
		"quantity": "must_be_positive",
		"price":    "must_not_be_negative",
		"email":    "invalid_email",
		"reason":   "invalid_choice",
		"pin":      "too_long",
	}
	if len(v) != len(want) {
		t.Fatalf("expected %d violations, got %v", len(want), v)
	}
	for field, code := range want {
		if v[field] != code {
			t.Errorf("%s: expected %q got %q", field, code, v[field])
		}
	}
}

func TestMaxLenCountsCharacters(t *testing.T) {
	v := make(Violations)
	MaxLen("city", "Zürich", 6, v)
	if !v.Empty() {
		t.Fatalf("expected no violations, got %v", v)
	}
	MaxLen("city", "Zürichs", 6, v)
	if v["city"] != "too_long" {
		t.Fatalf("expected too_long, got %v", v)
	}
}
