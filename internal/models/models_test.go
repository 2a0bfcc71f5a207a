package models

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestKindSpecs(t *testing.T) {
	want := map[DocumentKind]string{
		KindQuotation:    "QTN-",
		KindInvoice:      "INV-",
		KindDeliveryNote: "DN-",
		KindCreditNote:   "CN-",
	}
	for _, k := range Kinds() {
		s, ok := k.Spec()
		if !ok {
			t.Fatalf("missing spec for %s", k)
		}
		if s.Prefix != want[k] {
			t.Errorf("%s prefix: got %s want %s", k, s.Prefix, want[k])
		}
	}
	if _, ok := DocumentKind("receipt").Spec(); ok {
		t.Error("unknown kind must not resolve")
	}
}

func TestLineItemAmountIgnoresCallerValue(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&Client{}, &Quotation{}, &QuotationItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	item := QuotationItem{
		LineItem: LineItem{
			ItemNumber:  1,
			Description: "Widget",
			Quantity:    3,
			UnitPrice:   decimal.RequireFromString("10.005"),
			Amount:      decimal.RequireFromString("999"),
		},
		QuotationID: 1,
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("create: %v", err)
	}
	var got QuotationItem
	if err := db.First(&got, item.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Amount.StringFixed(2) != "30.03" {
		t.Fatalf("expected amount 30.03 (3 × 10.01), got %s", got.Amount.StringFixed(2))
	}
}

func TestClientAddressLines(t *testing.T) {
	c := Client{Name: "Acme", POBox: "P.O. Box 12", Location: "Nairobi", PIN: "A001"}
	lines := c.AddressLines()
	if len(lines) != 3 || lines[2] != "PIN: A001" {
		t.Fatalf("unexpected lines: %#v", lines)
	}
}

func TestUserDisplayName(t *testing.T) {
	if n := (&User{Email: "a@b.c"}).DisplayName(); n != "a@b.c" {
		t.Errorf("expected email fallback, got %s", n)
	}
	if n := (&User{Email: "a@b.c", Name: "Amina"}).DisplayName(); n != "Amina" {
		t.Errorf("expected name, got %s", n)
	}
}

func TestProductLowStock(t *testing.T) {
	if !(&Product{Quantity: 4}).LowStock() || (&Product{Quantity: 5}).LowStock() {
		t.Fatal("low stock threshold is strictly below 5")
	}
}
