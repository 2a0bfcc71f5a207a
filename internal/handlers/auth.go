package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ellsondrew-png/inventory-system-tml/auth"
	"github.com/ellsondrew-png/inventory-system-tml/httpx"
	"github.com/ellsondrew-png/inventory-system-tml/internal/db"
	"github.com/ellsondrew-png/inventory-system-tml/internal/models"
	"github.com/ellsondrew-png/inventory-system-tml/validation"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// MinPasswordLength applies to password changes and new accounts.
const MinPasswordLength = 8

type AuthHandler struct {
	db *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{db: db}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login: POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if httpx.IsJSONBody(r) {
		if !decodeJSON(w, r, &in) {
			return
		}
	} else {
		if !parseForm(w, r) {
			return
		}
		in.Email, in.Password = r.FormValue("email"), r.FormValue("password")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	var user models.User
	err := h.db.WithContext(r.Context()).Preload("Profile").Where("email = ?", email).First(&user).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, r, err)
			return
		}
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)) != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}

	now := time.Now()
	h.db.WithContext(r.Context()).Model(&user).UpdateColumn("last_login_at", now)
	user.LastLoginAt = &now
	auth.CreateSession(w, user.ID)
	httpx.Respond(w, r, http.StatusOK, user, "/dashboard")
}

// Logout: POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	httpx.Respond(w, r, http.StatusOK, map[string]string{"status": "logged_out"}, "/login")
}

func (h *AuthHandler) currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return nil, false
	}
	var user models.User
	if err := h.db.WithContext(r.Context()).Preload("Profile").First(&user, uid).Error; err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return nil, false
	}
	return &user, true
}

// Me: GET /me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

// UpdateMe: POST /me
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	var in struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if httpx.IsJSONBody(r) {
		if !decodeJSON(w, r, &in) {
			return
		}
	} else {
		if !parseForm(w, r) {
			return
		}
		in.Name, in.Email = r.FormValue("name"), r.FormValue("email")
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)

	v := make(validation.Violations)
	validation.Required("email", in.Email, v)
	validation.Email("email", in.Email, v)
	validation.MaxLen("name", in.Name, 255, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}

	err := h.db.WithContext(r.Context()).Model(user).Updates(map[string]any{"name": in.Name, "email": in.Email}).Error
	if err != nil {
		if db.IsUniqueViolation(err) {
			httpx.JSONError(w, http.StatusConflict, "email_taken", nil)
			return
		}
		writeError(w, r, err)
		return
	}
	user.Name, user.Email = in.Name, in.Email
	httpx.Respond(w, r, http.StatusOK, user, "/me")
}

// ChangePassword: POST /me/password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	var in struct {
		Current string `json:"current_password"`
		New     string `json:"new_password"`
		Confirm string `json:"confirm_password"`
	}
	if httpx.IsJSONBody(r) {
		if !decodeJSON(w, r, &in) {
			return
		}
	} else {
		if !parseForm(w, r) {
			return
		}
		in.Current, in.New, in.Confirm = r.FormValue("current_password"), r.FormValue("new_password"), r.FormValue("confirm_password")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Current)) != nil {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "invalid_current_password", nil)
		return
	}
	if len(in.New) < MinPasswordLength {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "password_too_short", nil)
		return
	}
	if in.Confirm != "" && in.Confirm != in.New {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "password_mismatch", nil)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.New), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.db.WithContext(r.Context()).Model(user).Update("password", string(hash)).Error; err != nil {
		writeError(w, r, err)
		return
	}
	httpx.Respond(w, r, http.StatusOK, map[string]string{"status": "password_changed"}, "/me")
}
