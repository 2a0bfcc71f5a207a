package db

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/ellsondrew-png/inventory-system-tml/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Resources guarded by the permission table.
var Resources = []string{
	"client", "quotation", "invoice", "delivery_note", "credit_note",
	"product", "category", "stock", "dashboard", "user", "profile",
}

var actions = []string{"list", "view", "create", "update", "delete"}

type profileSeed struct {
	Name        string
	Description string
	Permissions []string // "resource:action"
}

var documentResources = []string{"client", "quotation", "invoice", "delivery_note", "credit_note"}

func defaultProfiles() []profileSeed {
	clerk := []string{"dashboard:view"}
	viewer := []string{"dashboard:view"}
	for _, r := range append(documentResources, "product", "category", "stock") {
		clerk = append(clerk, r+":*")
	}
	for _, r := range append(documentResources, "product", "stock") {
		viewer = append(viewer, r+":list", r+":view")
	}
	return []profileSeed{
		{Name: "admin", Description: "Full system administrator", Permissions: []string{"*:*"}},
		{Name: "stock_clerk", Description: "Issues documents and moves stock", Permissions: clerk},
		{Name: "viewer", Description: "Read-only access to documents and stock", Permissions: viewer},
	}
}

// SeedPermissions creates one row per resource and action, the per
// resource wildcard and the superadmin wildcard. It is idempotent.
func SeedPermissions(conn *gorm.DB) error {
	ensure := func(resource, action, desc string) error {
		perm := models.Permission{ResourceType: resource, Action: action, Description: desc}
		return conn.Where("resource_type = ? AND action = ?", resource, action).FirstOrCreate(&perm).Error
	}
	if err := ensure("*", "*", "Full system access"); err != nil {
		return err
	}
	for _, r := range Resources {
		if err := ensure(r, "*", "All "+r+" actions"); err != nil {
			return err
		}
		for _, a := range actions {
			if err := ensure(r, a, strings.ToUpper(a[:1])+a[1:]+" "+r); err != nil {
				return err
			}
		}
	}
	return nil
}

// SeedProfiles creates the system profiles and resets their permission sets.
func SeedProfiles(conn *gorm.DB) error {
	if err := SeedPermissions(conn); err != nil {
		return err
	}
	for _, p := range defaultProfiles() {
		var profile models.Profile
		err := conn.Where("name = ?", p.Name).First(&profile).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			profile = models.Profile{Name: p.Name, Description: p.Description, IsSystem: true}
			err = conn.Create(&profile).Error
		}
		if err != nil {
			return err
		}

		var perms []models.Permission
		for _, code := range p.Permissions {
			resource, action, ok := strings.Cut(code, ":")
			if !ok {
				continue
			}
			var perm models.Permission
			if err := conn.Where("resource_type = ? AND action = ?", resource, action).First(&perm).Error; err == nil {
				perms = append(perms, perm)
			}
		}
		if err := conn.Model(&profile).Association("Permissions").Replace(perms); err != nil {
			return err
		}
	}
	return nil
}

// SeedAdmin creates the bootstrap administrator when email and password are
// set and no user with that email exists yet.
func SeedAdmin(conn *gorm.DB, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}
	var count int64
	if err := conn.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	var admin models.Profile
	if err := conn.Where("name = ?", "admin").First(&admin).Error; err != nil {
		return fmt.Errorf("admin profile: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := models.User{Email: email, Name: "Administrator", Password: string(hash), ProfileID: &admin.ID}
	if err := conn.Create(&user).Error; err != nil {
		return err
	}
	log.Printf("[DB] created admin user %s", email)
	return nil
}

// Seed loads profiles, permissions and the optional admin account.
func Seed(conn *gorm.DB, adminEmail, adminPassword string) error {
	if err := SeedProfiles(conn); err != nil {
		return fmt.Errorf("seed profiles: %w", err)
	}
	if err := SeedAdmin(conn, adminEmail, adminPassword); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}
