package services

import "errors"

var (
	ErrClientNotFound    = errors.New("client_not_found")
	ErrProductNotFound   = errors.New("product_not_found")
	ErrCategoryNotFound  = errors.New("category_not_found")
	ErrInvalidQuantity   = errors.New("invalid_quantity")
	ErrInsufficientStock = errors.New("insufficient_stock")
	ErrReasonRequired    = errors.New("reason_required")
	ErrDuplicateBarcode  = errors.New("duplicate_barcode")
	ErrDuplicateCategory = errors.New("duplicate_category")
)
