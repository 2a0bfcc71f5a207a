package main

import (
	"net/http"

	"github.com/ellsondrew-png/inventory-system-tml/auth"
	"github.com/ellsondrew-png/inventory-system-tml/gate"
	"github.com/ellsondrew-png/inventory-system-tml/internal/config"
	"github.com/ellsondrew-png/inventory-system-tml/internal/handlers"
	"github.com/ellsondrew-png/inventory-system-tml/internal/ledger"
	"github.com/ellsondrew-png/inventory-system-tml/internal/middleware"
	"github.com/ellsondrew-png/inventory-system-tml/internal/policy"
	"github.com/ellsondrew-png/inventory-system-tml/internal/services"
	"github.com/ellsondrew-png/inventory-system-tml/internal/storage"
	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

// App is the main application handler that sets up all routes.
type App struct {
	router  chi.Router
	db      *gorm.DB
	ledger  *ledger.Ledger
	gate    *policy.AuthGate
	limiter *middleware.LoginLimiter
	images  storage.ImageStore
	cfg     *config.Config
}

// NewApp creates a new application with all routes configured.
func NewApp(db *gorm.DB, cfg *config.Config, images storage.ImageStore, limiter *middleware.LoginLimiter) *App {
	app := &App{
		router:  chi.NewRouter(),
		db:      db,
		ledger:  ledger.New(db),
		gate:    policy.NewAuthGate(db, policy.DefaultCacheTTL),
		limiter: limiter,
		images:  images,
		cfg:     cfg,
	}
	app.setupRoutes()
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

func (a *App) setupRoutes() {
	r := a.router
	r.Use(middleware.Recover, middleware.Logging, auth.Middleware)

	// Public routes
	ah := handlers.NewAuthHandler(a.db)
	r.Get("/health", handlers.Health)
	r.Get("/healthz", handlers.Ready(a.db))
	r.With(a.limiter.Limit).Post("/login", ah.Login)
	r.Post("/logout", ah.Logout)

	if a.cfg.Storage.Backend == "" || a.cfg.Storage.Backend == "local" {
		r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(a.cfg.Storage.MediaRoot))))
	}

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)

		r.Get("/me", ah.Me)
		r.Post("/me", ah.UpdateMe)
		r.Post("/me/password", ah.ChangePassword)

		dh := handlers.NewDashboardHandler(services.NewDashboardService(a.db))
		r.With(a.can("dashboard", gate.ActionView)).Get("/dashboard", dh.Show)

		ch := handlers.NewClientHandler(services.NewClientService(a.db))
		r.Route("/clients", func(r chi.Router) {
			a.crud(r, "client", ch.List, ch.Create, ch.Get, ch.Update, ch.Delete)
		})

		ih := handlers.NewInventoryHandler(services.NewInventoryService(a.db, a.images))
		r.Route("/categories", func(r chi.Router) {
			a.crud(r, "category", ih.ListCategories, ih.CreateCategory, ih.GetCategory, ih.UpdateCategory, ih.DeleteCategory)
		})
		r.Route("/products", func(r chi.Router) {
			r.With(a.can("product", gate.ActionView)).Get("/barcode/{barcode}", ih.LookupBarcode)
			r.With(a.can("product", gate.ActionUpdate)).Post("/{id}/image", ih.UploadImage)
			a.crud(r, "product", ih.ListProducts, ih.CreateProduct, ih.GetProduct, ih.UpdateProduct, ih.DeleteProduct)
		})
		r.Route("/stock", func(r chi.Router) {
			r.With(a.can("stock", gate.ActionList)).Get("/movements", ih.Movements)
			r.With(a.can("stock", gate.ActionCreate)).Post("/in", ih.StockIn)
			r.With(a.can("stock", gate.ActionCreate)).Post("/out", ih.StockOut)
		})

		mountDocuments(a, r, a.ledger.Quotations)
		ph := handlers.NewPaymentStatusHandler(a.ledger.Invoices)
		mountDocuments(a, r, a.ledger.Invoices, func(r chi.Router) {
			r.With(a.can("invoice", gate.ActionUpdate)).Post("/{id}/payment-status", ph.Update)
		})
		mountDocuments(a, r, a.ledger.DeliveryNotes)
		mountDocuments(a, r, a.ledger.CreditNotes)
	})

	// Admin routes
	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.RequireAuth, a.gate.RequireAdmin())
		uh := handlers.NewAdminUserHandler(a.db, a.gate)
		r.Get("/users", uh.List)
		r.Post("/users", uh.Create)
		r.Post("/users/{id}/profile", uh.AssignProfile)
	})
}

// can guards a route with resource:action.
func (a *App) can(resource string, action gate.Action) func(http.Handler) http.Handler {
	return a.gate.RequirePermission(resource, action)
}

// crud mounts the list/create/view/update/delete routes shared by every
// back-office resource.
func (a *App) crud(r chi.Router, resource string, list, create, get, update, del http.HandlerFunc) {
	r.With(a.can(resource, gate.ActionList)).Get("/", list)
	r.With(a.can(resource, gate.ActionCreate)).Post("/", create)
	r.With(a.can(resource, gate.ActionView)).Get("/{id}", get)
	r.With(a.can(resource, gate.ActionUpdate)).Post("/{id}", update)
	r.With(a.can(resource, gate.ActionDelete)).Post("/{id}/delete", del)
}

// mountDocuments serves one document kind under its URL segment. Item
// changes count as updates of the document. extra mounts kind specific
// routes on the same subrouter.
func mountDocuments[D any, I any, PD ledger.DocPtr[D], PI ledger.ItemPtr[I]](a *App, r chi.Router, book *ledger.Book[D, I, PD, PI], extra ...func(chi.Router)) {
	spec := book.Spec()
	h := handlers.NewDocumentHandler(a.db, book)
	resource := string(spec.Kind)
	r.Route("/"+spec.Path, func(r chi.Router) {
		a.crud(r, resource, h.List, h.Create, h.Get, h.Edit, h.Delete)
		r.With(a.can(resource, gate.ActionUpdate)).Post("/{id}/items", h.AddItem)
		r.With(a.can(resource, gate.ActionUpdate)).Post("/{id}/items/{item_id}/delete", h.DeleteItem)
		r.With(a.can(resource, gate.ActionView)).Get("/{id}/pdf", h.PDF)
		for _, mount := range extra {
			mount(r)
		}
	})
}
