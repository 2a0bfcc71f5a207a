package db

import (
	"fmt"
	"testing"

	"github.com/ellsondrew-png/inventory-system-tml/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	d, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range AllModels() {
		if err := d.AutoMigrate(m); err != nil {
			t.Fatalf("migrate %T: %v", m, err)
		}
	}
	return d
}

func TestSeedIdempotent(t *testing.T) {
	d := openTestDB(t)
	if err := Seed(d, "", ""); err != nil {
		t.Fatal(err)
	}
	var first int64
	d.Model(&models.Permission{}).Count(&first)
	if err := Seed(d, "", ""); err != nil {
		t.Fatal(err)
	}
	var second int64
	d.Model(&models.Permission{}).Count(&second)
	if first != second {
		t.Fatalf("permissions duplicated: %d then %d", first, second)
	}
	want := int64(1 + len(Resources)*(len(actions)+1))
	if first != want {
		t.Fatalf("expected %d permissions got %d", want, first)
	}

	var profiles int64
	d.Model(&models.Profile{}).Count(&profiles)
	if profiles != 3 {
		t.Fatalf("expected 3 profiles got %d", profiles)
	}
}

func TestSeedProfilePermissions(t *testing.T) {
	d := openTestDB(t)
	if err := SeedProfiles(d); err != nil {
		t.Fatal(err)
	}
	codes := func(name string) map[string]bool {
		var p models.Profile
		if err := d.Preload("Permissions").Where("name = ?", name).First(&p).Error; err != nil {
			t.Fatalf("load %s: %v", name, err)
		}
		out := map[string]bool{}
		for _, perm := range p.Permissions {
			out[perm.Code()] = true
		}
		return out
	}
	if admin := codes("admin"); !admin["*:*"] || len(admin) != 1 {
		t.Fatalf("admin permissions: %v", admin)
	}
	clerk := codes("stock_clerk")
	for _, c := range []string{"invoice:*", "stock:*", "dashboard:view"} {
		if !clerk[c] {
			t.Errorf("stock_clerk missing %s", c)
		}
	}
	if clerk["user:*"] {
		t.Error("stock_clerk must not manage users")
	}
	viewer := codes("viewer")
	if !viewer["invoice:view"] || viewer["invoice:create"] {
		t.Errorf("viewer permissions: %v", viewer)
	}
}

func TestSeedAdmin(t *testing.T) {
	d := openTestDB(t)
	if err := Seed(d, " Admin@Example.com ", "s3cret"); err != nil {
		t.Fatal(err)
	}
	if err := Seed(d, "admin@example.com", "other"); err != nil {
		t.Fatal(err)
	}
	var users []models.User
	d.Preload("Profile").Find(&users)
	if len(users) != 1 {
		t.Fatalf("expected one admin got %d", len(users))
	}
	u := users[0]
	if u.Email != "admin@example.com" || u.Profile == nil || u.Profile.Name != "admin" {
		t.Fatalf("unexpected admin %+v", u)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("s3cret")) != nil {
		t.Fatal("password not hashed with bcrypt")
	}
}
