package ledger

import (
	"strings"
	"testing"

	"github.com/ellsondrew-png/inventory-system-tml/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"QTN-3380", 3380, true},
		{"INV-0007", 7, true},
		{"DN-12345", 12345, true},
		{"CN-", 0, false},
		{"INV-12a", 0, false},
		{"", 0, false},
		{"4410", 4410, true},
	}
	for _, c := range cases {
		n, ok := ParseNumber(c.in)
		assert.Equal(t, c.ok, ok, c.in)
		assert.Equal(t, c.want, n, c.in)
	}
}

func TestFormatNumberPads(t *testing.T) {
	spec, _ := models.KindCreditNote.Spec()
	assert.Equal(t, "CN-0042", FormatNumber(spec, 42))
	assert.Equal(t, "CN-2212", FormatNumber(spec, 2212))
	assert.Equal(t, "CN-12345", FormatNumber(spec, 12345))
}

func TestValidateItems(t *testing.T) {
	accepted, skipped := ValidateItems([]ItemInput{
		{Description: "  Cable ", Quantity: 1, UnitPrice: price("1.005")},
		{Description: "Free", Quantity: 1},
		{Description: "Broken", Quantity: 1, Malformed: true},
		{Description: "   ", Quantity: 1},
		{Description: "Refund", Quantity: 1, UnitPrice: price("-1")},
		{Description: strings.Repeat("d", 256), Quantity: 1},
		{Description: "Long brand", Brand: strings.Repeat("b", 256), Quantity: 1},
		{Description: "Long designation", Designation: strings.Repeat("x", 256), Quantity: 1},
		{Description: "Wide", Designation: strings.Repeat("é", 255), Quantity: 1},
	})
	assert.Equal(t, 6, skipped)
	if assert.Len(t, accepted, 3) {
		assert.Equal(t, "Cable", accepted[0].Description)
		assert.Equal(t, "1.01", accepted[0].UnitPrice.StringFixed(2))
		assert.Equal(t, "Wide", accepted[2].Description)
	}
}
