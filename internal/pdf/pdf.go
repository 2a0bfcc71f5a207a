// Package pdf renders sales documents as one-page A4 PDFs.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"
)

// Item is one printed line.
type Item struct {
	Number      int
	Designation string
	Description string
	Brand       string
	Quantity    int
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
}

type ClientData struct {
	Name    string
	Address []string
}

type Field struct {
	Label string
	Value string
}

// DocumentData is everything printed on a document.
type DocumentData struct {
	Title      string // "Invoice", "Quotation", ...
	Number     string
	Date       string
	PreparedBy string
	Client     ClientData
	Fields     []Field
	Items      []Item
	Subtotal   decimal.Decimal
	Tax        decimal.Decimal
	Total      decimal.Decimal
	TaxLabel   string
}

var columns = []struct {
	title string
	width float64
	align string
}{
	{"No.", 10, "C"},
	{"Designation", 30, "L"},
	{"Description", 55, "L"},
	{"Brand", 22, "L"},
	{"Qty", 13, "R"},
	{"Unit price", 25, "R"},
	{"Amount", 25, "R"},
}

// Render lays out d and returns the PDF bytes.
func Render(d DocumentData) ([]byte, error) {
	f := gofpdf.New("P", "mm", "A4", "")
	f.SetTitle(d.Title+" "+d.Number, true)
	f.SetMargins(15, 15, 15)
	f.AddPage()
	tr := f.UnicodeTranslatorFromDescriptor("")

	f.SetFont("Helvetica", "B", 18)
	f.CellFormat(0, 10, tr(d.Title), "", 1, "L", false, 0, "")
	f.SetFont("Helvetica", "", 10)
	f.CellFormat(0, 6, "No: "+d.Number, "", 1, "L", false, 0, "")
	f.CellFormat(0, 6, "Date: "+d.Date, "", 1, "L", false, 0, "")
	for _, fl := range d.Fields {
		if fl.Value == "" {
			continue
		}
		f.CellFormat(0, 6, tr(fl.Label+": "+fl.Value), "", 1, "L", false, 0, "")
	}
	f.Ln(4)

	f.SetFont("Helvetica", "B", 11)
	f.CellFormat(0, 6, "Bill to", "", 1, "L", false, 0, "")
	f.SetFont("Helvetica", "", 10)
	f.CellFormat(0, 5, tr(d.Client.Name), "", 1, "L", false, 0, "")
	for _, line := range d.Client.Address {
		f.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
	}
	f.Ln(6)

	f.SetFont("Helvetica", "B", 9)
	f.SetFillColor(230, 230, 230)
	for _, c := range columns {
		f.CellFormat(c.width, 7, c.title, "1", 0, c.align, true, 0, "")
	}
	f.Ln(-1)
	f.SetFont("Helvetica", "", 9)
	for _, it := range d.Items {
		cells := []string{
			fmt.Sprint(it.Number),
			it.Designation,
			it.Description,
			it.Brand,
			fmt.Sprint(it.Quantity),
			it.UnitPrice.StringFixed(2),
			it.Amount.StringFixed(2),
		}
		for i, c := range columns {
			f.CellFormat(c.width, 6, tr(fit(f, cells[i], c.width)), "1", 0, c.align, false, 0, "")
		}
		f.Ln(-1)
	}
	f.Ln(4)

	label := d.TaxLabel
	if label == "" {
		label = "Tax"
	}
	totals := []struct {
		label string
		value decimal.Decimal
		bold  bool
	}{
		{"Subtotal", d.Subtotal, false},
		{label, d.Tax, false},
		{"Total", d.Total, true},
	}
	for _, t := range totals {
		style := ""
		if t.bold {
			style = "B"
		}
		f.SetFont("Helvetica", style, 10)
		f.CellFormat(150, 6, t.label, "", 0, "R", false, 0, "")
		f.CellFormat(30, 6, t.value.StringFixed(2), "", 1, "R", false, 0, "")
	}

	if d.PreparedBy != "" {
		f.Ln(10)
		f.SetFont("Helvetica", "I", 9)
		f.CellFormat(0, 5, tr("Prepared by: "+d.PreparedBy), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := f.Output(&buf); err != nil {
		return nil, fmt.Errorf("render %s %s: %w", d.Title, d.Number, err)
	}
	return buf.Bytes(), nil
}

// fit truncates s so it prints inside a cell of width w.
func fit(f *gofpdf.Fpdf, s string, w float64) string {
	const pad = 2
	if f.GetStringWidth(s) <= w-pad {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && f.GetStringWidth(string(r)+"...") > w-pad {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
