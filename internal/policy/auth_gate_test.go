package policy

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ellsondrew-png/inventory-system-tml/auth"
	"github.com/ellsondrew-png/inventory-system-tml/gate"
	"github.com/ellsondrew-png/inventory-system-tml/internal/db"
	"github.com/ellsondrew-png/inventory-system-tml/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupPolicyDB(t *testing.T) *gorm.DB {
	t.Helper()
	d, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.AutoMigrate(&models.Permission{}, &models.Profile{}, &models.User{}); err != nil {
		t.Fatal(err)
	}
	if err := db.SeedProfiles(d); err != nil {
		t.Fatal(err)
	}
	return d
}

func userWithProfile(t *testing.T, d *gorm.DB, email, profile string) *models.User {
	t.Helper()
	u := &models.User{Email: email, Password: "x"}
	if profile != "" {
		var p models.Profile
		if err := d.Where("name = ?", profile).First(&p).Error; err != nil {
			t.Fatal(err)
		}
		u.ProfileID = &p.ID
	}
	if err := d.Create(u).Error; err != nil {
		t.Fatal(err)
	}
	return u
}

func serve(h http.Handler, userID uint) int {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if userID != 0 {
		req = req.WithContext(auth.WithUserID(req.Context(), userID))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w.Code
}

func TestRequirePermissionByProfile(t *testing.T) {
	d := setupPolicyDB(t)
	ag := NewAuthGate(d, time.Minute)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	admin := userWithProfile(t, d, "admin@x.test", "admin")
	clerk := userWithProfile(t, d, "clerk@x.test", "stock_clerk")
	viewer := userWithProfile(t, d, "viewer@x.test", "viewer")
	nobody := userWithProfile(t, d, "none@x.test", "")

	createInvoice := ag.RequirePermission("invoice", gate.ActionCreate)(ok)
	listStock := ag.RequirePermission("stock", gate.ActionList)(ok)

	cases := []struct {
		name string
		h    http.Handler
		user uint
		want int
	}{
		{"anonymous", createInvoice, 0, http.StatusUnauthorized},
		{"admin create", createInvoice, admin.ID, http.StatusNoContent},
		{"clerk create", createInvoice, clerk.ID, http.StatusNoContent},
		{"viewer create", createInvoice, viewer.ID, http.StatusForbidden},
		{"viewer list", listStock, viewer.ID, http.StatusNoContent},
		{"no profile", listStock, nobody.ID, http.StatusForbidden},
		{"unknown user", listStock, 9999, http.StatusForbidden},
	}
	for _, c := range cases {
		if got := serve(c.h, c.user); got != c.want {
			t.Errorf("%s: got %d want %d", c.name, got, c.want)
		}
	}
}

func TestRequireAdmin(t *testing.T) {
	d := setupPolicyDB(t)
	ag := NewAuthGate(d, time.Minute)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := ag.RequireAdmin()(ok)

	admin := userWithProfile(t, d, "admin@x.test", "admin")
	clerk := userWithProfile(t, d, "clerk@x.test", "stock_clerk")
	if got := serve(h, admin.ID); got != http.StatusNoContent {
		t.Fatalf("admin: got %d", got)
	}
	if got := serve(h, clerk.ID); got != http.StatusForbidden {
		t.Fatalf("clerk: got %d", got)
	}
	if got := serve(h, 0); got != http.StatusUnauthorized {
		t.Fatalf("anonymous: got %d", got)
	}
}

func TestInvalidateUserPicksUpProfileChange(t *testing.T) {
	d := setupPolicyDB(t)
	ag := NewAuthGate(d, time.Hour)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := ag.RequirePermission("invoice", gate.ActionDelete)(ok)

	u := userWithProfile(t, d, "v@x.test", "viewer")
	if got := serve(h, u.ID); got != http.StatusForbidden {
		t.Fatalf("viewer: got %d", got)
	}
	var clerk models.Profile
	if err := d.Where("name = ?", "stock_clerk").First(&clerk).Error; err != nil {
		t.Fatal(err)
	}
	if err := d.Model(u).Update("profile_id", clerk.ID).Error; err != nil {
		t.Fatal(err)
	}
	if got := serve(h, u.ID); got != http.StatusForbidden {
		t.Fatalf("cached profile should still deny, got %d", got)
	}
	ag.InvalidateUser(u.ID)
	if got := serve(h, u.ID); got != http.StatusNoContent {
		t.Fatalf("after invalidate: got %d", got)
	}
}
