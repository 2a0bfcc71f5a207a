// Package ledger issues and maintains the sales documents: quotations,
// invoices, delivery notes and credit notes. Every operation runs in a
// single database transaction; numbers come from an explicit per kind
// counter and totals are always recomputed from the stored items.
package ledger

import (
	"github.com/ellsondrew-png/inventory-system-tml/internal/models"
	"gorm.io/gorm"
)

type (
	QuotationBook    = Book[models.Quotation, models.QuotationItem, *models.Quotation, *models.QuotationItem]
	InvoiceBook      = Book[models.Invoice, models.InvoiceItem, *models.Invoice, *models.InvoiceItem]
	DeliveryNoteBook = Book[models.DeliveryNote, models.DeliveryNoteItem, *models.DeliveryNote, *models.DeliveryNoteItem]
	CreditNoteBook   = Book[models.CreditNote, models.CreditNoteItem, *models.CreditNote, *models.CreditNoteItem]
)

// Ledger groups the books of all document kinds over one connection.
type Ledger struct {
	DB            *gorm.DB
	Sequencer     *Sequencer
	Quotations    *QuotationBook
	Invoices      *InvoiceBook
	DeliveryNotes *DeliveryNoteBook
	CreditNotes   *CreditNoteBook
}

func New(conn *gorm.DB) *Ledger {
	seq := NewSequencer()
	return &Ledger{
		DB:            conn,
		Sequencer:     seq,
		Quotations:    NewBook[models.Quotation, models.QuotationItem](conn, seq),
		Invoices:      NewBook[models.Invoice, models.InvoiceItem](conn, seq),
		DeliveryNotes: NewBook[models.DeliveryNote, models.DeliveryNoteItem](conn, seq),
		CreditNotes:   NewBook[models.CreditNote, models.CreditNoteItem](conn, seq),
	}
}

// Models lists every table the ledger writes, in migration order.
func Models() []any {
	return []any{
		&models.DocumentSequence{},
		&models.Quotation{}, &models.QuotationItem{},
		&models.Invoice{}, &models.InvoiceItem{},
		&models.DeliveryNote{}, &models.DeliveryNoteItem{},
		&models.CreditNote{}, &models.CreditNoteItem{},
	}
}
