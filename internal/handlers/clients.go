package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ellsondrew-png/inventory-system-tml/httpx"
	"github.com/ellsondrew-png/inventory-system-tml/internal/models"
	"github.com/ellsondrew-png/inventory-system-tml/internal/services"
	"github.com/ellsondrew-png/inventory-system-tml/validation"
)

type ClientHandler struct {
	svc *services.ClientService
}

func NewClientHandler(svc *services.ClientService) *ClientHandler {
	return &ClientHandler{svc: svc}
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	page := pageFrom(r)
	clients, total, err := h.svc.List(r.Context(), r.URL.Query().Get("q"), page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{Items: clients, Total: total, Page: page.Page, Limit: page.Limit})
}

func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

// bindClient reads a client from JSON or form fields and validates it.
func bindClient(w http.ResponseWriter, r *http.Request) (*models.Client, bool) {
	var c models.Client
	if httpx.IsJSONBody(r) {
		if !decodeJSON(w, r, &c) {
			return nil, false
		}
	} else {
		if !parseForm(w, r) {
			return nil, false
		}
		c = models.Client{
			Name:      r.FormValue("name"),
			POBox:     r.FormValue("po_box"),
			Location:  r.FormValue("location"),
			Telephone: r.FormValue("telephone"),
			Email:     r.FormValue("email"),
			PIN:       r.FormValue("pin"),
		}
	}
	c.Name = strings.TrimSpace(c.Name)
	c.POBox = strings.TrimSpace(c.POBox)
	c.Location = strings.TrimSpace(c.Location)
	c.Telephone = strings.TrimSpace(c.Telephone)
	c.Email = strings.TrimSpace(c.Email)
	c.PIN = strings.TrimSpace(c.PIN)

	v := make(validation.Violations)
	validation.Required("name", c.Name, v)
	validation.MaxLen("name", c.Name, 255, v)
	validation.MaxLen("po_box", c.POBox, 100, v)
	validation.MaxLen("location", c.Location, 255, v)
	validation.MaxLen("telephone", c.Telephone, 50, v)
	validation.MaxLen("email", c.Email, 255, v)
	validation.MaxLen("pin", c.PIN, 50, v)
	validation.Email("email", c.Email, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return nil, false
	}
	return &c, true
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	c, ok := bindClient(w, r)
	if !ok {
		return
	}
	if err := h.svc.Create(r.Context(), c); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.Respond(w, r, http.StatusCreated, c, "/clients/"+strconv.FormatUint(uint64(c.ID), 10))
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	c, ok := bindClient(w, r)
	if !ok {
		return
	}
	if err := h.svc.Update(r.Context(), id, c); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.Respond(w, r, http.StatusOK, c, "/clients/"+strconv.FormatUint(uint64(id), 10))
}

// Delete also removes every document addressed to the client.
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.Respond(w, r, http.StatusOK, map[string]any{"deleted": id}, "/clients")
}
