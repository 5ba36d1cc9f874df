package router

import (
	"warehouse-inventory-api/internal/handler"
	"warehouse-inventory-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler          *handler.Handler
	InventoryHandler *handler.InventoryHandler
	ReferenceHandler *handler.ReferenceHandler
	AdminHandler     *handler.AdminHandler
	AllowedOrigins   []string
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Handler != nil {
			r.Get("/health", cfg.Handler.Health)
			r.Get("/ready", cfg.Handler.Ready)
		}

		if cfg.InventoryHandler != nil {
			r.Post("/scans", cfg.InventoryHandler.Scan)

			r.Route("/boxes/{code}", func(r chi.Router) {
				r.Get("/", cfg.InventoryHandler.GetBox)
				r.Get("/events", cfg.InventoryHandler.GetBoxEvents)
			})

			r.Route("/inventory", func(r chi.Router) {
				r.Get("/", cfg.InventoryHandler.ListInventory)
				r.Get("/occupancy", cfg.InventoryHandler.Occupancy)
			})
		}

		if cfg.ReferenceHandler != nil {
			r.Route("/references/{table}", func(r chi.Router) {
				r.Put("/", cfg.ReferenceHandler.Replace)
				r.Post("/", cfg.ReferenceHandler.Merge)
			})
		}

		if cfg.AdminHandler != nil {
			r.Get("/admin/stats", cfg.AdminHandler.GetStats)
		}
	})

	return r
}
