package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/ellsondrew-png/inventory-system-tml/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type recordingInvalidator struct{ users []uint }

func (r *recordingInvalidator) InvalidateUser(id uint) { r.users = append(r.users, id) }

func withPassword(t *testing.T, f *fixture, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, f.db.Model(f.user).Update("password", string(hash)).Error)
}

func TestLogin(t *testing.T) {
	f := setup(t)
	withPassword(t, f, "s3cret-pass")
	ah := NewAuthHandler(f.db)
	f.router.Post("/login", ah.Login)

	w := f.postJSON(t, "/login", credentials{Email: "CLERK@shop.test ", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, w.Header().Get("Set-Cookie"))

	w = f.postJSON(t, "/login", credentials{Email: "nobody@shop.test", Password: "s3cret-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.postJSON(t, "/login", credentials{Email: "CLERK@shop.test ", Password: "s3cret-pass"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("Set-Cookie"))

	var u models.User
	require.NoError(t, f.db.First(&u, f.user.ID).Error)
	assert.NotNil(t, u.LastLoginAt)
}

func TestChangePassword(t *testing.T) {
	f := setup(t)
	withPassword(t, f, "old-password")
	f.router.Post("/me/password", NewAuthHandler(f.db).ChangePassword)

	w := f.postJSON(t, "/me/password", map[string]string{"current_password": "nope", "new_password": "new-password"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_current_password")

	w = f.postJSON(t, "/me/password", map[string]string{"current_password": "old-password", "new_password": "short"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "password_too_short")

	w = f.postJSON(t, "/me/password", map[string]string{"current_password": "old-password", "new_password": "new-password"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var u models.User
	require.NoError(t, f.db.First(&u, f.user.ID).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("new-password")))
}

func TestUpdateMeRejectsTakenEmail(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.db.Create(&models.User{Email: "taken@shop.test", Password: "x"}).Error)
	f.router.Post("/me", NewAuthHandler(f.db).UpdateMe)

	w := f.postJSON(t, "/me", map[string]string{"name": "Amina", "email": "taken@shop.test"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.postJSON(t, "/me", map[string]string{"name": "Amina K", "email": "Amina@Shop.test"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var u models.User
	require.NoError(t, f.db.First(&u, f.user.ID).Error)
	assert.Equal(t, "amina@shop.test", u.Email)
	assert.Equal(t, "Amina K", u.DisplayName())
}

func TestAssignProfileInvalidatesCache(t *testing.T) {
	f := setup(t)
	p := &models.Profile{Name: "viewer"}
	require.NoError(t, f.db.Create(p).Error)
	cache := &recordingInvalidator{}
	h := NewAdminUserHandler(f.db, cache)
	f.router.Post("/admin/users", h.Create)
	f.router.Post("/admin/users/{id}/profile", h.AssignProfile)

	w := f.postJSON(t, "/admin/users/9999/profile", map[string]uint{"profile_id": p.ID})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.postJSON(t, "/admin/users/1/profile", map[string]uint{"profile_id": 777})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "profile_not_found")

	path := fmt.Sprintf("/admin/users/%d/profile", f.user.ID)
	w = f.postJSON(t, path, map[string]uint{"profile_id": p.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []uint{f.user.ID}, cache.users)

	var u models.User
	require.NoError(t, f.db.First(&u, f.user.ID).Error)
	require.NotNil(t, u.ProfileID)
	assert.Equal(t, p.ID, *u.ProfileID)

	w = f.postJSON(t, "/admin/users", newUserInput{Email: "new@shop.test", Password: "short"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	w = f.postJSON(t, "/admin/users", newUserInput{Email: "new@shop.test", Password: "long-enough", ProfileID: p.ID})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = f.postJSON(t, "/admin/users", newUserInput{Email: "NEW@shop.test", Password: "long-enough"})
	assert.Equal(t, http.StatusConflict, w.Code)
}
