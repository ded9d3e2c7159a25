package reports

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/brickline-erp/brickline-erp/internal/platform/httpx"
	"github.com/brickline-erp/brickline-erp/internal/procurement"
)

// Handler serves the report query endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the report routes. Query endpoints are GET only;
// anything else answers 405 with the statusMessage body.
func (h *Handler) MountRoutes(r chi.Router) {
	r.MethodNotAllowed(httpx.MethodNotAllowed)
	r.Use(httprate.LimitByIP(60, time.Minute))
	r.Get("/stock", h.stock)
	r.Get("/stock/po-wise", h.poWise)
	r.Get("/invoice-summary", h.invoiceSummary)
}

func (h *Handler) stock(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.StockReport(r.Context(),
		r.URL.Query().Get("corporation_uuid"),
		r.URL.Query().Get("project_uuid"))
	if err != nil {
		h.respondError(w, "stock report", err)
		return
	}
	httpx.Report(w, report.Items, report.Totals)
}

func (h *Handler) poWise(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.POWiseReport(r.Context(),
		r.URL.Query().Get("corporation_uuid"),
		r.URL.Query().Get("project_uuid"))
	if err != nil {
		h.respondError(w, "po-wise stock report", err)
		return
	}
	httpx.Report(w, report.Orders, report.Totals)
}

func (h *Handler) invoiceSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.InvoiceSummary(r.Context(),
		r.URL.Query().Get("purchase_order_uuid"),
		r.URL.Query().Get("currentInvoiceUuid"))
	if err != nil {
		h.respondError(w, "invoice summary", err)
		return
	}
	httpx.Report(w, summary, nil)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		httpx.Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, procurement.ErrPONotFound):
		httpx.Fail(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, err.Error())
	}
}
