// Package handlers serves the JSON back-office API. Write endpoints also
// accept classic form posts and answer them with a 303 redirect.
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/ellsondrew-png/inventory-system-tml/httpx"
	"github.com/ellsondrew-png/inventory-system-tml/internal/ledger"
	"github.com/ellsondrew-png/inventory-system-tml/internal/services"
	"github.com/ellsondrew-png/inventory-system-tml/internal/storage"
	"github.com/go-chi/chi/v5"
)

// maxFormMemory bounds multipart bodies kept in memory (image uploads).
const maxFormMemory = 8 << 20

// maxBodyBytes bounds JSON and urlencoded request bodies.
const maxBodyBytes = 1 << 20

// urlID parses the chi URL parameter name as a positive ID.
func urlID(r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func queryInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}

func queryUint(r *http.Request, name string) uint {
	n, _ := strconv.ParseUint(r.URL.Query().Get(name), 10, 64)
	return uint(n)
}

func pageFrom(r *http.Request) services.Page {
	return services.Page{Page: queryInt(r, "page"), Limit: queryInt(r, "limit")}
}

// decodeJSON reads a JSON body into dst and answers 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return false
	}
	return true
}

func parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return false
	}
	return true
}

type listResponse struct {
	Items any   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

var errorStatus = []struct {
	err    error
	status int
}{
	{ledger.ErrDocumentNotFound, http.StatusNotFound},
	{ledger.ErrItemNotFound, http.StatusNotFound},
	{ledger.ErrClientNotFound, http.StatusNotFound},
	{ledger.ErrInvoiceNotFound, http.StatusNotFound},
	{services.ErrClientNotFound, http.StatusNotFound},
	{services.ErrProductNotFound, http.StatusNotFound},
	{services.ErrCategoryNotFound, http.StatusNotFound},
	{ledger.ErrInvalidItem, http.StatusUnprocessableEntity},
	{ledger.ErrNotPersisted, http.StatusConflict},
	{ledger.ErrDuplicateNumber, http.StatusConflict},
	{services.ErrDuplicateBarcode, http.StatusConflict},
	{services.ErrDuplicateCategory, http.StatusConflict},
	{services.ErrInvalidQuantity, http.StatusUnprocessableEntity},
	{services.ErrInsufficientStock, http.StatusUnprocessableEntity},
	{services.ErrReasonRequired, http.StatusUnprocessableEntity},
	{storage.ErrUnsupportedImage, http.StatusUnsupportedMediaType},
	{storage.ErrNotConfigured, http.StatusServiceUnavailable},
}

// writeError maps domain errors to their status; the sentinel text is the
// error code. Anything unknown is logged and reported as 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			httpx.JSONError(w, e.status, e.err.Error(), nil)
			return
		}
	}
	log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
}
