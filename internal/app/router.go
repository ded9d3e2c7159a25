package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/brickline-erp/brickline-erp/internal/masterdata"
	"github.com/brickline-erp/brickline-erp/internal/procurement"
	"github.com/brickline-erp/brickline-erp/internal/projects"
	"github.com/brickline-erp/brickline-erp/internal/reports"
	"github.com/brickline-erp/brickline-erp/internal/stocknotes"
	"github.com/brickline-erp/brickline-erp/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	ProjectsHandler    *projects.Handler
	MasterDataHandler  *masterdata.Handler
	ProcurementHandler *procurement.Handler
	StockNotesHandler  *stocknotes.Handler
	ReportsHandler     *reports.Handler
	JobHandler         *jobs.Handler
}

// NewRouter constructs the chi.Router with Brickline defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/projects", func(r chi.Router) { params.ProjectsHandler.MountRoutes(r) })
	r.Route("/masterdata", func(r chi.Router) { params.MasterDataHandler.MountRoutes(r) })
	r.Route("/procurement", func(r chi.Router) { params.ProcurementHandler.MountRoutes(r) })
	r.Route("/stock-notes", func(r chi.Router) { params.StockNotesHandler.MountRoutes(r) })
	r.Route("/reports", func(r chi.Router) { params.ReportsHandler.MountRoutes(r) })
	if params.JobHandler != nil {
		r.Route("/jobs", func(r chi.Router) { params.JobHandler.MountRoutes(r) })
	}

	return r
}
