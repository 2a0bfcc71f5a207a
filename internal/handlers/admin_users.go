package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ellsondrew-png/inventory-system-tml/httpx"
	"github.com/ellsondrew-png/inventory-system-tml/internal/db"
	"github.com/ellsondrew-png/inventory-system-tml/internal/models"
	"github.com/ellsondrew-png/inventory-system-tml/validation"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ProfileInvalidator drops cached authorization data for a user.
type ProfileInvalidator interface {
	InvalidateUser(userID uint)
}

// AdminUserHandler lets admins create users and assign profiles.
type AdminUserHandler struct {
	DB    *gorm.DB
	Cache ProfileInvalidator
}

func NewAdminUserHandler(db *gorm.DB, cache ProfileInvalidator) *AdminUserHandler {
	return &AdminUserHandler{DB: db, Cache: cache}
}

// List: GET /admin/users
func (h *AdminUserHandler) List(w http.ResponseWriter, r *http.Request) {
	var users []models.User
	if err := h.DB.WithContext(r.Context()).Preload("Profile").Order("email").Find(&users).Error; err != nil {
		writeError(w, r, err)
		return
	}
	var profiles []models.Profile
	if err := h.DB.WithContext(r.Context()).Preload("Permissions").Order("name").Find(&profiles).Error; err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"users": users, "profiles": profiles})
}

type newUserInput struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	Password  string `json:"password"`
	ProfileID uint   `json:"profile_id"`
}

// Create: POST /admin/users
func (h *AdminUserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in newUserInput
	if httpx.IsJSONBody(r) {
		if !decodeJSON(w, r, &in) {
			return
		}
	} else {
		if !parseForm(w, r) {
			return
		}
		pid, _ := strconv.ParseUint(r.FormValue("profile_id"), 10, 64)
		in = newUserInput{Email: r.FormValue("email"), Name: r.FormValue("name"), Password: r.FormValue("password"), ProfileID: uint(pid)}
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	v := make(validation.Violations)
	validation.Required("email", in.Email, v)
	validation.Email("email", in.Email, v)
	if len(in.Password) < MinPasswordLength {
		v["password"] = "password_too_short"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}

	user := models.User{Email: in.Email, Name: strings.TrimSpace(in.Name)}
	if in.ProfileID != 0 {
		if !h.profileExists(w, r, in.ProfileID) {
			return
		}
		user.ProfileID = &in.ProfileID
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, r, err)
		return
	}
	user.Password = string(hash)
	if err := h.DB.WithContext(r.Context()).Create(&user).Error; err != nil {
		if db.IsUniqueViolation(err) {
			httpx.JSONError(w, http.StatusConflict, "email_taken", nil)
			return
		}
		writeError(w, r, err)
		return
	}
	httpx.Respond(w, r, http.StatusCreated, user, "/admin/users")
}

// AssignProfile: POST /admin/users/{id}/profile. An empty or zero
// profile_id removes the profile.
func (h *AdminUserHandler) AssignProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := urlID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_user_id", nil)
		return
	}
	var in struct {
		ProfileID uint `json:"profile_id"`
	}
	if httpx.IsJSONBody(r) {
		if !decodeJSON(w, r, &in) {
			return
		}
	} else {
		if !parseForm(w, r) {
			return
		}
		raw := r.FormValue("profile_id")
		if raw != "" {
			pid, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				httpx.JSONError(w, http.StatusBadRequest, "invalid_profile_id", nil)
				return
			}
			in.ProfileID = uint(pid)
		}
	}

	var profileID *uint
	if in.ProfileID != 0 {
		if !h.profileExists(w, r, in.ProfileID) {
			return
		}
		profileID = &in.ProfileID
	}
	res := h.DB.WithContext(r.Context()).Model(&models.User{}).Where("id = ?", userID).Update("profile_id", profileID)
	if res.Error != nil {
		writeError(w, r, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "user_not_found", nil)
		return
	}
	if h.Cache != nil {
		h.Cache.InvalidateUser(userID)
	}
	httpx.Respond(w, r, http.StatusOK, map[string]any{"user_id": userID, "profile_id": profileID}, "/admin/users")
}

func (h *AdminUserHandler) profileExists(w http.ResponseWriter, r *http.Request, id uint) bool {
	var p models.Profile
	err := h.DB.WithContext(r.Context()).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "profile_not_found", nil)
		return false
	}
	if err != nil {
		writeError(w, r, err)
		return false
	}
	return true
}
