package models

// DocumentKind names one of the four sales document types.
type DocumentKind string

const (
	KindQuotation    DocumentKind = "quotation"
	KindInvoice      DocumentKind = "invoice"
	KindDeliveryNote DocumentKind = "delivery_note"
	KindCreditNote   DocumentKind = "credit_note"
)

// KindSpec describes how a document kind is numbered and stored.
type KindSpec struct {
	Kind  DocumentKind
	Title string
	// Prefix is prepended to the zero-padded sequence value.
	Prefix string
	// Seed is the sequence value assumed when no usable number is stored,
	// so the first allocated number is Seed+1.
	Seed         int
	Table        string
	ItemTable    string
	ParentColumn string
	// Path is the URL segment the kind is served under.
	Path string
}

var kindSpecs = map[DocumentKind]KindSpec{
	KindQuotation: {
		Kind: KindQuotation, Title: "Quotation", Prefix: "QTN-", Seed: 3379,
		Table: "quotations", ItemTable: "quotation_items", ParentColumn: "quotation_id", Path: "quotations",
	},
	KindInvoice: {
		Kind: KindInvoice, Title: "Invoice", Prefix: "INV-", Seed: 4394,
		Table: "invoices", ItemTable: "invoice_items", ParentColumn: "invoice_id", Path: "invoices",
	},
	KindDeliveryNote: {
		Kind: KindDeliveryNote, Title: "Delivery Note", Prefix: "DN-", Seed: 1555,
		Table: "delivery_notes", ItemTable: "delivery_note_items", ParentColumn: "delivery_note_id", Path: "delivery-notes",
	},
	KindCreditNote: {
		Kind: KindCreditNote, Title: "Credit Note", Prefix: "CN-", Seed: 2211,
		Table: "credit_notes", ItemTable: "credit_note_items", ParentColumn: "credit_note_id", Path: "credit-notes",
	},
}

// Spec returns the numbering and storage description of k.
func (k DocumentKind) Spec() (KindSpec, bool) {
	s, ok := kindSpecs[k]
	return s, ok
}

// Kinds lists every document kind in a stable order.
func Kinds() []DocumentKind {
	return []DocumentKind{KindQuotation, KindInvoice, KindDeliveryNote, KindCreditNote}
}
