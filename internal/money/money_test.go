package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestLineAmount(t *testing.T) {
	assert.True(t, LineAmount(3, d("10.00")).Equal(d("30.00")))
	assert.True(t, LineAmount(1, d("25")).Equal(d("25")))
	assert.True(t, LineAmount(7, d("0")).IsZero())
	assert.Equal(t, "0.30", LineAmount(3, d("0.10")).StringFixed(2))
}

func TestRecompute(t *testing.T) {
	cases := []struct {
		name                     string
		amounts                  []decimal.Decimal
		subtotal, tax, wantTotal string
	}{
		{"no items", nil, "0.00", "0.00", "0.00"},
		{"widget and gadget", []decimal.Decimal{d("30.00"), d("25.00")}, "55.00", "8.80", "63.80"},
		{"single replacement line", []decimal.Decimal{d("10.00")}, "10.00", "1.60", "11.60"},
		{"tiny subtotal rounds tax to zero", []decimal.Decimal{d("0.03")}, "0.03", "0.00", "0.03"},
		{"tax rounds to cents", []decimal.Decimal{d("12.34")}, "12.34", "1.97", "14.31"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Recompute(c.amounts...)
			assert.Equal(t, c.subtotal, got.Subtotal.StringFixed(2))
			assert.Equal(t, c.tax, got.Tax.StringFixed(2))
			assert.Equal(t, c.wantTotal, got.Total.StringFixed(2))
			assert.True(t, got.Total.Equal(got.Subtotal.Add(got.Tax)))
		})
	}
}

func TestParse(t *testing.T) {
	v, err := Parse(" 1 250,50 ")
	require.NoError(t, err)
	assert.Equal(t, "1250.50", v.StringFixed(2))

	_, err = Parse("ten")
	assert.Error(t, err)
}
