package handlers

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lehmann314159/navigator/internal/repository"
)

type Options struct {
	Logger         *log.Logger
	FaviconService string
	Version        string
	Now            func() time.Time
}

// NewRouter mounts the JSON API under /api.
func NewRouter(repo *repository.Repository, opts Options) http.Handler {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	navigatorHandler := NewNavigatorHandler(repo, opts.Logger, opts.Version, opts.Now)
	groupHandler := NewGroupHandler(repo, opts.Logger)
	siteHandler := NewSiteHandler(repo, opts.Logger, opts.FaviconService, opts.Now)
	sortHandler := NewSortHandler(repo, opts.Logger, opts.Now)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(opts.Logger))

	r.Route("/api", func(r chi.Router) {
		r.Get("/navigator", navigatorHandler.Tree)
		r.Get("/export", navigatorHandler.Export)
		r.Post("/import", navigatorHandler.Import)

		// Groups
		r.Get("/groups", groupHandler.List)
		r.Post("/groups", groupHandler.Create)
		r.Put("/groups/order", groupHandler.Order)
		r.Put("/groups/{id}", groupHandler.Update)
		r.Delete("/groups/{id}", groupHandler.Delete)
		r.Put("/groups/{id}/parent", groupHandler.SetParent)

		// Sites
		r.Get("/sites", siteHandler.List)
		r.Post("/sites", siteHandler.Create)
		r.Post("/sites/bulk", siteHandler.Bulk)
		r.Put("/sites/{id}", siteHandler.Update)
		r.Delete("/sites/{id}", siteHandler.Delete)

		// Site ordering
		r.Get("/sort", sortHandler.State)
		r.Post("/sort/{scope}", sortHandler.Start)
		r.Post("/sort/{scope}/move", sortHandler.Move)
		r.Post("/sort/{scope}/save", sortHandler.Save)
		r.Delete("/sort/{scope}", sortHandler.Cancel)
	})

	return r
}
