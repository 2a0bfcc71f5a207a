package models

import (
	"strconv"

	"gorm.io/gorm"
)

// PaymentStatus of an invoice.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentPaid    PaymentStatus = "Paid"
	PaymentOverdue PaymentStatus = "Overdue"
)

// PaymentStatuses lists the accepted values in display order.
func PaymentStatuses() []string {
	return []string{string(PaymentPending), string(PaymentPaid), string(PaymentOverdue)}
}

// DefaultValidityDays is applied to quotations created without a validity period.
const DefaultValidityDays = 14

type Quotation struct {
	DocumentHeader
	Client         *Client         `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"client,omitempty"`
	ValidityPeriod int             `gorm:"not null;default:14" json:"validity_period"`
	Items          []QuotationItem `gorm:"foreignKey:QuotationID;constraint:OnDelete:CASCADE" json:"items"`
}

// BeforeCreate applies the default validity period.
func (d *Quotation) BeforeCreate(tx *gorm.DB) error {
	if d.ValidityPeriod <= 0 {
		d.ValidityPeriod = DefaultValidityDays
	}
	return nil
}

type QuotationItem struct {
	LineItem
	QuotationID uint `gorm:"index;not null" json:"quotation_id"`
}

type Invoice struct {
	DocumentHeader
	Client             *Client       `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"client,omitempty"`
	OrderNumber        string        `gorm:"size:50" json:"order_number,omitempty"`
	DeliveryNoteNumber string        `gorm:"size:50" json:"delivery_note_number,omitempty"`
	ApprovedBy         string        `gorm:"size:100" json:"approved_by,omitempty"`
	PaymentStatus      PaymentStatus `gorm:"size:20;not null;default:'Pending'" json:"payment_status"`
	Items              []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`
}

type InvoiceItem struct {
	LineItem
	InvoiceID uint `gorm:"index;not null" json:"invoice_id"`
}

// BeforeSave defaults the payment status to Pending.
func (inv *Invoice) BeforeSave(tx *gorm.DB) error {
	if inv.PaymentStatus == "" {
		inv.PaymentStatus = PaymentPending
	}
	return nil
}

// BeforeDelete detaches delivery and credit notes that point at the invoice.
func (inv *Invoice) BeforeDelete(tx *gorm.DB) error {
	if inv.ID == 0 {
		return nil
	}
	for _, m := range []any{&DeliveryNote{}, &CreditNote{}} {
		if err := tx.Model(m).Where("invoice_id = ?", inv.ID).Update("invoice_id", nil).Error; err != nil {
			return err
		}
	}
	return nil
}

type DeliveryNote struct {
	DocumentHeader
	Client      *Client            `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"client,omitempty"`
	InvoiceID   *uint              `gorm:"index" json:"invoice_id,omitempty"`
	Invoice     *Invoice           `gorm:"foreignKey:InvoiceID;constraint:OnDelete:SET NULL" json:"-"`
	OrderNumber string             `gorm:"size:50" json:"order_number,omitempty"`
	Items       []DeliveryNoteItem `gorm:"foreignKey:DeliveryNoteID;constraint:OnDelete:CASCADE" json:"items"`
}

type DeliveryNoteItem struct {
	LineItem
	DeliveryNoteID uint `gorm:"index;not null" json:"delivery_note_id"`
}

type CreditNote struct {
	DocumentHeader
	Client      *Client          `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"client,omitempty"`
	InvoiceID   *uint            `gorm:"index" json:"invoice_id,omitempty"`
	Invoice     *Invoice         `gorm:"foreignKey:InvoiceID;constraint:OnDelete:SET NULL" json:"-"`
	OrderNumber string           `gorm:"size:50" json:"order_number,omitempty"`
	Items       []CreditNoteItem `gorm:"foreignKey:CreditNoteID;constraint:OnDelete:CASCADE" json:"items"`
}

type CreditNoteItem struct {
	LineItem
	CreditNoteID uint `gorm:"index;not null" json:"credit_note_id"`
}

func (d *Quotation) Header() *DocumentHeader    { return &d.DocumentHeader }
func (d *Invoice) Header() *DocumentHeader      { return &d.DocumentHeader }
func (d *DeliveryNote) Header() *DocumentHeader { return &d.DocumentHeader }
func (d *CreditNote) Header() *DocumentHeader   { return &d.DocumentHeader }

func (*Quotation) Kind() DocumentKind    { return KindQuotation }
func (*Invoice) Kind() DocumentKind      { return KindInvoice }
func (*DeliveryNote) Kind() DocumentKind { return KindDeliveryNote }
func (*CreditNote) Kind() DocumentKind   { return KindCreditNote }

func (d *Quotation) Lines() []LineItem {
	out := make([]LineItem, len(d.Items))
	for i := range d.Items {
		out[i] = d.Items[i].LineItem
	}
	return out
}

func (d *Invoice) Lines() []LineItem {
	out := make([]LineItem, len(d.Items))
	for i := range d.Items {
		out[i] = d.Items[i].LineItem
	}
	return out
}

func (d *DeliveryNote) Lines() []LineItem {
	out := make([]LineItem, len(d.Items))
	for i := range d.Items {
		out[i] = d.Items[i].LineItem
	}
	return out
}

func (d *CreditNote) Lines() []LineItem {
	out := make([]LineItem, len(d.Items))
	for i := range d.Items {
		out[i] = d.Items[i].LineItem
	}
	return out
}

func (d *Quotation) Fields() []Field {
	return []Field{{"Validity", strconv.Itoa(d.ValidityPeriod) + " days"}, {"Prepared by", d.PreparedBy}}
}

func (d *Invoice) Fields() []Field {
	return []Field{
		{"Order No.", d.OrderNumber},
		{"Delivery Note No.", d.DeliveryNoteNumber},
		{"Prepared by", d.PreparedBy},
		{"Approved by", d.ApprovedBy},
		{"Payment status", string(d.PaymentStatus)},
	}
}

func (d *DeliveryNote) Fields() []Field {
	return []Field{{"Order No.", d.OrderNumber}, {"Prepared by", d.PreparedBy}}
}

func (d *CreditNote) Fields() []Field {
	return []Field{{"Order No.", d.OrderNumber}, {"Prepared by", d.PreparedBy}}
}

func (d *DeliveryNote) LinkedInvoice() *uint    { return d.InvoiceID }
func (d *CreditNote) LinkedInvoice() *uint      { return d.InvoiceID }
func (d *DeliveryNote) SetOrderNumber(n string) { d.OrderNumber = n }
func (d *CreditNote) SetOrderNumber(n string)   { d.OrderNumber = n }

func (it *QuotationItem) Line() *LineItem    { return &it.LineItem }
func (it *InvoiceItem) Line() *LineItem      { return &it.LineItem }
func (it *DeliveryNoteItem) Line() *LineItem { return &it.LineItem }
func (it *CreditNoteItem) Line() *LineItem   { return &it.LineItem }

func (it *QuotationItem) SetDocumentID(id uint)    { it.QuotationID = id }
func (it *InvoiceItem) SetDocumentID(id uint)      { it.InvoiceID = id }
func (it *DeliveryNoteItem) SetDocumentID(id uint) { it.DeliveryNoteID = id }
func (it *CreditNoteItem) SetDocumentID(id uint)   { it.CreditNoteID = id }

// DocumentSequence is the per-kind counter behind document numbers.
// LastValue is the numeric suffix of the most recently issued number.
type DocumentSequence struct {
	Kind      DocumentKind `gorm:"primaryKey;size:20"`
	LastValue int          `gorm:"not null"`
}
