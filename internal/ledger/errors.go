package ledger

import "errors"

var (
	ErrUnknownKind      = errors.New("unknown_document_kind")
	ErrDocumentNotFound = errors.New("document_not_found")
	ErrItemNotFound     = errors.New("item_not_found")
	ErrClientNotFound   = errors.New("client_not_found")
	ErrInvoiceNotFound  = errors.New("invoice_not_found")
	ErrNotPersisted     = errors.New("document_not_persisted")
	ErrDuplicateNumber  = errors.New("duplicate_document_number")
	ErrInvalidItem      = errors.New("invalid_item")
)
