package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ellsondrew-png/inventory-system-tml/auth"
	"github.com/ellsondrew-png/inventory-system-tml/httpx"
	"github.com/ellsondrew-png/inventory-system-tml/internal/ledger"
	"github.com/ellsondrew-png/inventory-system-tml/internal/models"
	"github.com/ellsondrew-png/inventory-system-tml/internal/money"
	"github.com/ellsondrew-png/inventory-system-tml/internal/pdf"
	"github.com/ellsondrew-png/inventory-system-tml/validation"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// DocumentHandler serves one document kind on top of its ledger book.
type DocumentHandler[D any, I any, PD ledger.DocPtr[D], PI ledger.ItemPtr[I]] struct {
	db   *gorm.DB
	book *ledger.Book[D, I, PD, PI]
}

func NewDocumentHandler[D any, I any, PD ledger.DocPtr[D], PI ledger.ItemPtr[I]](db *gorm.DB, book *ledger.Book[D, I, PD, PI]) *DocumentHandler[D, I, PD, PI] {
	return &DocumentHandler[D, I, PD, PI]{db: db, book: book}
}

// headerInput carries every editable header field; fields that do not apply
// to the document kind are ignored.
type headerInput struct {
	ClientID           uint   `json:"client_id"`
	Date               string `json:"date"`
	PreparedBy         string `json:"prepared_by"`
	ValidityPeriod     *int   `json:"validity_period"`
	OrderNumber        string `json:"order_number"`
	DeliveryNoteNumber string `json:"delivery_note_number"`
	ApprovedBy         string `json:"approved_by"`
	PaymentStatus      string `json:"payment_status"`
	InvoiceID          *uint  `json:"invoice_id"`
}

type documentInput struct {
	headerInput
	Items []ledger.ItemInput `json:"items"`
}

type saveResponse struct {
	Document     any `json:"document"`
	SkippedItems int `json:"skipped_items"`
}

func (h *DocumentHandler[D, I, PD, PI]) location(doc PD) string {
	return fmt.Sprintf("/%s/%d", h.book.Spec().Path, doc.Header().ID)
}

func (h *DocumentHandler[D, I, PD, PI]) List(w http.ResponseWriter, r *http.Request) {
	q := ledger.ListQuery{
		Limit:    queryInt(r, "limit"),
		Page:     queryInt(r, "page"),
		Search:   r.URL.Query().Get("q"),
		ClientID: queryUint(r, "client_id"),
	}
	docs, total, q, err := h.book.List(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{Items: docs, Total: total, Page: q.Page, Limit: q.Limit})
}

func (h *DocumentHandler[D, I, PD, PI]) Get(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.load(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler[D, I, PD, PI]) load(w http.ResponseWriter, r *http.Request) (PD, bool) {
	id, ok := urlID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return nil, false
	}
	doc, err := h.book.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return doc, true
}

// Create stores a new document with its items. Invalid item rows are
// dropped and counted in skipped_items.
func (h *DocumentHandler[D, I, PD, PI]) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := bindDocument(w, r)
	if !ok {
		return
	}
	doc := h.book.CreateDocument(in.ClientID, in.PreparedBy)
	if doc.Header().PreparedBy == "" {
		doc.Header().PreparedBy = h.currentUserName(r)
	}
	if !h.applyHeader(w, doc, in.headerInput) {
		return
	}
	skipped, err := h.book.Save(r.Context(), doc, in.Items)
	if err != nil {
		writeError(w, r, err)
		return
	}
	fresh, err := h.book.Get(r.Context(), doc.Header().ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.Respond(w, r, http.StatusCreated, saveResponse{Document: fresh, SkippedItems: skipped}, h.location(fresh))
}

// Edit rewrites the header and replaces every item. The number is kept.
func (h *DocumentHandler[D, I, PD, PI]) Edit(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.load(w, r)
	if !ok {
		return
	}
	in, ok := bindDocument(w, r)
	if !ok {
		return
	}
	if in.PreparedBy != "" {
		doc.Header().PreparedBy = in.PreparedBy
	}
	doc.Header().ClientID = in.ClientID
	if !h.applyHeader(w, doc, in.headerInput) {
		return
	}
	skipped, err := h.book.Save(r.Context(), doc, in.Items)
	if err != nil {
		writeError(w, r, err)
		return
	}
	fresh, err := h.book.Get(r.Context(), doc.Header().ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.Respond(w, r, http.StatusOK, saveResponse{Document: fresh, SkippedItems: skipped}, h.location(fresh))
}

func (h *DocumentHandler[D, I, PD, PI]) Delete(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := h.book.DeleteDocument(r.Context(), doc); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.Respond(w, r, http.StatusOK, map[string]any{"deleted": doc.Header().Number}, "/"+h.book.Spec().Path)
}

// AddItem: POST /{id}/items
func (h *DocumentHandler[D, I, PD, PI]) AddItem(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.load(w, r)
	if !ok {
		return
	}
	var in ledger.ItemInput
	if httpx.IsJSONBody(r) {
		if !decodeJSON(w, r, &in) {
			return
		}
	} else {
		if !parseForm(w, r) {
			return
		}
		items := formItems(r)
		if len(items) == 0 {
			writeError(w, r, ledger.ErrInvalidItem)
			return
		}
		in = items[0]
	}
	item, err := h.book.AddItem(r.Context(), doc, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.Respond(w, r, http.StatusCreated, item, h.location(doc))
}

// DeleteItem: POST /{id}/items/{item_id}/delete
func (h *DocumentHandler[D, I, PD, PI]) DeleteItem(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.load(w, r)
	if !ok {
		return
	}
	itemID, ok := urlID(r, "item_id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.book.DeleteItem(r.Context(), doc, itemID); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.Respond(w, r, http.StatusOK, doc.Header(), h.location(doc))
}

// PDF: GET /{id}/pdf
func (h *DocumentHandler[D, I, PD, PI]) PDF(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.load(w, r)
	if !ok {
		return
	}
	out, err := pdf.Render(printable(h.book.Spec(), doc))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", doc.Header().Number+".pdf"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// applyHeader copies the kind specific fields of in onto doc. It answers
// 422 and returns false on invalid values.
func (h *DocumentHandler[D, I, PD, PI]) applyHeader(w http.ResponseWriter, doc PD, in headerInput) bool {
	v := make(validation.Violations)
	if in.ClientID == 0 {
		v["client_id"] = "required"
	}
	if in.Date != "" {
		d, err := time.Parse(dateLayout, in.Date)
		if err != nil {
			v["date"] = "invalid_date"
		} else {
			doc.Header().Date = d
		}
	}
	validation.MaxLen("prepared_by", doc.Header().PreparedBy, 100, v)
	validation.MaxLen("order_number", in.OrderNumber, 50, v)
	validation.MaxLen("delivery_note_number", in.DeliveryNoteNumber, 50, v)
	validation.MaxLen("approved_by", in.ApprovedBy, 100, v)

	switch d := any(doc).(type) {
	case *models.Quotation:
		if in.ValidityPeriod != nil {
			validation.PositiveInt("validity_period", *in.ValidityPeriod, v)
			d.ValidityPeriod = *in.ValidityPeriod
		}
		if d.ValidityPeriod == 0 {
			d.ValidityPeriod = models.DefaultValidityDays
		}
	case *models.Invoice:
		d.OrderNumber = in.OrderNumber
		d.DeliveryNoteNumber = in.DeliveryNoteNumber
		d.ApprovedBy = in.ApprovedBy
		if in.PaymentStatus != "" {
			validation.OneOf("payment_status", in.PaymentStatus, models.PaymentStatuses(), v)
			d.PaymentStatus = models.PaymentStatus(in.PaymentStatus)
		}
	case *models.DeliveryNote:
		d.InvoiceID = in.InvoiceID
		d.OrderNumber = in.OrderNumber
	case *models.CreditNote:
		d.InvoiceID = in.InvoiceID
		d.OrderNumber = in.OrderNumber
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return false
	}
	return true
}

func (h *DocumentHandler[D, I, PD, PI]) currentUserName(r *http.Request) string {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return ""
	}
	var u models.User
	if err := h.db.WithContext(r.Context()).First(&u, uid).Error; err != nil {
		return ""
	}
	return u.DisplayName()
}

// bindDocument reads a header plus item list from JSON or a form post.
func bindDocument(w http.ResponseWriter, r *http.Request) (documentInput, bool) {
	var in documentInput
	if httpx.IsJSONBody(r) {
		return in, decodeJSON(w, r, &in)
	}
	if !parseForm(w, r) {
		return in, false
	}
	cid, _ := strconv.ParseUint(r.FormValue("client_id"), 10, 64)
	in.ClientID = uint(cid)
	in.Date = r.FormValue("date")
	in.PreparedBy = strings.TrimSpace(r.FormValue("prepared_by"))
	if raw := r.FormValue("validity_period"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			n = 0
		}
		in.ValidityPeriod = &n
	}
	in.OrderNumber = r.FormValue("order_number")
	in.DeliveryNoteNumber = r.FormValue("delivery_note_number")
	in.ApprovedBy = r.FormValue("approved_by")
	in.PaymentStatus = r.FormValue("payment_status")
	if raw := r.FormValue("invoice_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil && id > 0 {
			iid := uint(id)
			in.InvoiceID = &iid
		}
	}
	in.Items = formItems(r)
	return in, true
}

// formItems zips the parallel item lists of a form post. Rows whose
// quantity or price do not parse are kept as malformed so they are
// counted as skipped.
func formItems(r *http.Request) []ledger.ItemInput {
	descriptions := r.Form["description"]
	designations := r.Form["designation"]
	brands := r.Form["brand"]
	quantities := r.Form["quantity"]
	prices := r.Form["unit_price"]

	at := func(list []string, i int) string {
		if i < len(list) {
			return strings.TrimSpace(list[i])
		}
		return ""
	}

	items := make([]ledger.ItemInput, 0, len(descriptions))
	for i := range descriptions {
		in := ledger.ItemInput{
			Designation: at(designations, i),
			Description: at(descriptions, i),
			Brand:       at(brands, i),
		}
		qty, err := strconv.Atoi(at(quantities, i))
		if err != nil {
			in.Malformed = true
		}
		in.Quantity = qty
		price, err := money.Parse(at(prices, i))
		if err != nil {
			in.Malformed = true
		}
		in.UnitPrice = price
		items = append(items, in)
	}
	return items
}

// printable converts a stored document into what the PDF renderer prints.
func printable(spec models.KindSpec, doc ledger.Document) pdf.DocumentData {
	h := doc.Header()
	totals := h.Totals()
	data := pdf.DocumentData{
		Title:      spec.Title,
		Number:     h.Number,
		Date:       h.Date.Format("02/01/2006"),
		PreparedBy: h.PreparedBy,
		Subtotal:   totals.Subtotal,
		Tax:        totals.Tax,
		Total:      totals.Total,
	}
	if c := clientOf(doc); c != nil {
		data.Client = pdf.ClientData{Name: c.Name, Address: c.AddressLines()}
	}
	for _, f := range doc.Fields() {
		data.Fields = append(data.Fields, pdf.Field{Label: f.Label, Value: f.Value})
	}
	for _, l := range doc.Lines() {
		data.Items = append(data.Items, pdf.Item{
			Number:      l.ItemNumber,
			Designation: l.Designation,
			Description: l.Description,
			Brand:       l.Brand,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Amount:      l.Amount,
		})
	}
	return data
}

func clientOf(doc ledger.Document) *models.Client {
	switch d := doc.(type) {
	case *models.Quotation:
		return d.Client
	case *models.Invoice:
		return d.Client
	case *models.DeliveryNote:
		return d.Client
	case *models.CreditNote:
		return d.Client
	}
	return nil
}

// PaymentStatusHandler updates the payment status of an invoice.
type PaymentStatusHandler struct {
	book *ledger.InvoiceBook
}

func NewPaymentStatusHandler(book *ledger.InvoiceBook) *PaymentStatusHandler {
	return &PaymentStatusHandler{book: book}
}

// Update: POST /invoices/{id}/payment-status
func (h *PaymentStatusHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var in struct {
		PaymentStatus string `json:"payment_status"`
	}
	if httpx.IsJSONBody(r) {
		if !decodeJSON(w, r, &in) {
			return
		}
	} else {
		if !parseForm(w, r) {
			return
		}
		in.PaymentStatus = r.FormValue("payment_status")
	}
	v := make(validation.Violations)
	validation.OneOf("payment_status", in.PaymentStatus, models.PaymentStatuses(), v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}
	inv, err := h.book.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	inv.PaymentStatus = models.PaymentStatus(in.PaymentStatus)
	if err := h.book.Persist(r.Context(), inv); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.Respond(w, r, http.StatusOK, inv, fmt.Sprintf("/invoices/%d", inv.ID))
}
