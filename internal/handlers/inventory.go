package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ellsondrew-png/inventory-system-tml/auth"
	"github.com/ellsondrew-png/inventory-system-tml/httpx"
	"github.com/ellsondrew-png/inventory-system-tml/internal/models"
	"github.com/ellsondrew-png/inventory-system-tml/internal/money"
	"github.com/ellsondrew-png/inventory-system-tml/internal/services"
	"github.com/ellsondrew-png/inventory-system-tml/validation"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// InventoryHandler serves categories, products and stock movements.
type InventoryHandler struct {
	svc *services.InventoryService
}

func NewInventoryHandler(svc *services.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

func idPath(prefix string, id uint) string {
	return prefix + strconv.FormatUint(uint64(id), 10)
}

// --- categories ---

func (h *InventoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.Categories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{Items: cats, Total: int64(len(cats)), Page: 1, Limit: len(cats)})
}

func (h *InventoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	c, err := h.svc.Category(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func bindCategoryName(w http.ResponseWriter, r *http.Request) (string, bool) {
	var in struct {
		Name string `json:"name"`
	}
	if httpx.IsJSONBody(r) {
		if !decodeJSON(w, r, &in) {
			return "", false
		}
	} else {
		if !parseForm(w, r) {
			return "", false
		}
		in.Name = r.FormValue("name")
	}
	v := make(validation.Violations)
	validation.Required("name", in.Name, v)
	validation.MaxLen("name", in.Name, 100, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return "", false
	}
	return in.Name, true
}

func (h *InventoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	name, ok := bindCategoryName(w, r)
	if !ok {
		return
	}
	c, err := h.svc.CreateCategory(r.Context(), name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.Respond(w, r, http.StatusCreated, c, "/categories")
}

func (h *InventoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	name, ok := bindCategoryName(w, r)
	if !ok {
		return
	}
	c, err := h.svc.RenameCategory(r.Context(), id, name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.Respond(w, r, http.StatusOK, c, "/categories")
}

func (h *InventoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.svc.DeleteCategory(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.Respond(w, r, http.StatusOK, map[string]any{"deleted": id}, "/categories")
}

// --- products ---

func (h *InventoryHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	f := services.ProductFilter{
		Search:     r.URL.Query().Get("q"),
		CategoryID: queryUint(r, "category_id"),
		LowStock:   r.URL.Query().Get("low_stock") == "1",
		Page:       pageFrom(r),
	}
	products, total, err := h.svc.Products(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{Items: products, Total: total, Page: f.Page.Page, Limit: f.Page.Limit})
}

func (h *InventoryHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	p, err := h.svc.Product(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// LookupBarcode: GET /products/barcode/{barcode}
func (h *InventoryHandler) LookupBarcode(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.LookupBarcode(r.Context(), chi.URLParam(r, "barcode"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

type productInput struct {
	Name        string          `json:"name"`
	Designation string          `json:"designation"`
	Brand       string          `json:"brand"`
	Barcode     string          `json:"barcode"`
	CategoryID  uint            `json:"category_id"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

func bindProduct(w http.ResponseWriter, r *http.Request) (*models.Product, bool) {
	var in productInput
	v := make(validation.Violations)
	if httpx.IsJSONBody(r) {
		if !decodeJSON(w, r, &in) {
			return nil, false
		}
	} else {
		if !parseForm(w, r) {
			return nil, false
		}
		in.Name = r.FormValue("name")
		in.Designation = r.FormValue("designation")
		in.Brand = r.FormValue("brand")
		in.Barcode = r.FormValue("barcode")
		cid, _ := strconv.ParseUint(r.FormValue("category_id"), 10, 64)
		in.CategoryID = uint(cid)
		if raw := r.FormValue("quantity"); raw != "" {
			q, err := strconv.Atoi(raw)
			if err != nil {
				v["quantity"] = "invalid_number"
			}
			in.Quantity = q
		}
		price, err := money.Parse(r.FormValue("price"))
		if err != nil {
			v["price"] = "invalid_number"
		}
		in.Price = price
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Designation = strings.TrimSpace(in.Designation)
	in.Brand = strings.TrimSpace(in.Brand)
	in.Barcode = strings.TrimSpace(in.Barcode)

	validation.Required("name", in.Name, v)
	validation.MaxLen("name", in.Name, 200, v)
	validation.MaxLen("designation", in.Designation, 100, v)
	validation.MaxLen("brand", in.Brand, 100, v)
	validation.Required("barcode", in.Barcode, v)
	validation.MaxLen("barcode", in.Barcode, 100, v)
	validation.NonNegativeInt("quantity", in.Quantity, v)
	validation.NonNegativeDecimal("price", in.Price, v)
	if in.CategoryID == 0 {
		v["category_id"] = "required"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return nil, false
	}
	return &models.Product{
		Name:        in.Name,
		Designation: in.Designation,
		Brand:       in.Brand,
		Barcode:     in.Barcode,
		CategoryID:  in.CategoryID,
		Quantity:    in.Quantity,
		Price:       in.Price,
	}, true
}

func (h *InventoryHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := bindProduct(w, r)
	if !ok {
		return
	}
	if err := h.svc.CreateProduct(r.Context(), p); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.Respond(w, r, http.StatusCreated, p, idPath("/products/", p.ID))
}

func (h *InventoryHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	p, ok := bindProduct(w, r)
	if !ok {
		return
	}
	if err := h.svc.UpdateProduct(r.Context(), id, p); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.Respond(w, r, http.StatusOK, p, idPath("/products/", id))
}

func (h *InventoryHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.svc.DeleteProduct(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.Respond(w, r, http.StatusOK, map[string]any{"deleted": id}, "/products")
}

// UploadImage: POST /products/{id}/image with a multipart "image" file.
func (h *InventoryHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxFormMemory)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_upload", nil)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "image_required", nil)
		return
	}
	defer file.Close()

	p, err := h.svc.SetImage(r.Context(), id, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.Respond(w, r, http.StatusOK, p, idPath("/products/", id))
}

// --- stock ---

type movementInput struct {
	ProductID uint   `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason"`
}

func bindMovement(w http.ResponseWriter, r *http.Request) (movementInput, bool) {
	var in movementInput
	if httpx.IsJSONBody(r) {
		return in, decodeJSON(w, r, &in)
	}
	if !parseForm(w, r) {
		return in, false
	}
	pid, _ := strconv.ParseUint(r.FormValue("product_id"), 10, 64)
	in.ProductID = uint(pid)
	qty, err := strconv.Atoi(r.FormValue("quantity"))
	if err != nil {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", validation.Violations{"quantity": "invalid_number"})
		return in, false
	}
	in.Quantity = qty
	in.Reason = r.FormValue("reason")
	return in, true
}

// StockIn: POST /stock/in
func (h *InventoryHandler) StockIn(w http.ResponseWriter, r *http.Request) {
	in, ok := bindMovement(w, r)
	if !ok {
		return
	}
	uid, _ := auth.UserIDFromContext(r.Context())
	mv, err := h.svc.StockIn(r.Context(), in.ProductID, in.Quantity, uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.Respond(w, r, http.StatusCreated, mv, "/stock/movements")
}

// StockOut: POST /stock/out
func (h *InventoryHandler) StockOut(w http.ResponseWriter, r *http.Request) {
	in, ok := bindMovement(w, r)
	if !ok {
		return
	}
	uid, _ := auth.UserIDFromContext(r.Context())
	mv, err := h.svc.StockOut(r.Context(), in.ProductID, in.Quantity, in.Reason, uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.Respond(w, r, http.StatusCreated, mv, "/stock/movements")
}

// Movements: GET /stock/movements?product_id=&type=IN|OUT
func (h *InventoryHandler) Movements(w http.ResponseWriter, r *http.Request) {
	f := services.MovementFilter{
		ProductID: queryUint(r, "product_id"),
		Type:      models.MovementType(strings.ToUpper(r.URL.Query().Get("type"))),
		Page:      pageFrom(r),
	}
	mvs, total, err := h.svc.Movements(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{Items: mvs, Total: total, Page: f.Page.Page, Limit: f.Page.Limit})
}
