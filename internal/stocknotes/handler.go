package stocknotes

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/brickline-erp/brickline-erp/internal/platform/httpx"
	"github.com/brickline-erp/brickline-erp/internal/procurement"
)

// Handler manages receipt and return note endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers stock note routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.MethodNotAllowed(httpx.MethodNotAllowed)
	r.Post("/receipts", h.createReceipt)
	r.Delete("/receipts/{uuid}", h.deleteReceipt)
	r.Post("/returns", h.createReturn)
	r.Delete("/returns/{uuid}", h.deleteReturn)
}

type receiptForm struct {
	CorporationUUID string  `json:"corporation_uuid" validate:"required,uuid"`
	ProjectUUID     string  `json:"project_uuid" validate:"required,uuid"`
	OrderUUID       string  `json:"order_uuid"`
	OrderKind       string  `json:"order_kind"`
	OrderItemUUID   string  `json:"order_item_uuid" validate:"required"`
	Status          string  `json:"status" validate:"required"`
	ReceivedQty     float64 `json:"received_quantity" validate:"gt=0"`
	UnitCost        float64 `json:"unit_cost" validate:"gte=0"`
	VendorUUID      string  `json:"vendor_uuid"`
	ReceivedDate    string  `json:"received_date"`
	InvoiceNumber   string  `json:"invoice_number"`
	InvoiceDate     string  `json:"invoice_date"`
}

type returnForm struct {
	CorporationUUID string  `json:"corporation_uuid" validate:"required,uuid"`
	ProjectUUID     string  `json:"project_uuid" validate:"required,uuid"`
	OrderUUID       string  `json:"order_uuid"`
	OrderKind       string  `json:"order_kind"`
	OrderItemUUID   string  `json:"order_item_uuid" validate:"required"`
	ReturnedQty     float64 `json:"returned_quantity" validate:"gt=0"`
}

func (h *Handler) createReceipt(w http.ResponseWriter, r *http.Request) {
	var form receiptForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	item, err := h.service.CreateReceiptItem(r.Context(), ReceiptNoteItem{
		CorporationUUID: form.CorporationUUID,
		ProjectUUID:     form.ProjectUUID,
		OrderUUID:       form.OrderUUID,
		OrderKind:       procurement.OrderKind(form.OrderKind),
		OrderItemUUID:   form.OrderItemUUID,
		Status:          form.Status,
		ReceivedQty:     form.ReceivedQty,
		UnitCost:        form.UnitCost,
		VendorUUID:      form.VendorUUID,
		ReceivedDate:    form.ReceivedDate,
		InvoiceNumber:   form.InvoiceNumber,
		InvoiceDate:     form.InvoiceDate,
	})
	if err != nil {
		h.respondError(w, "create receipt note item", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

func (h *Handler) createReturn(w http.ResponseWriter, r *http.Request) {
	var form returnForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	item, err := h.service.CreateReturnItem(r.Context(), ReturnNoteItem{
		CorporationUUID: form.CorporationUUID,
		ProjectUUID:     form.ProjectUUID,
		OrderUUID:       form.OrderUUID,
		OrderKind:       procurement.OrderKind(form.OrderKind),
		OrderItemUUID:   form.OrderItemUUID,
		ReturnedQty:     form.ReturnedQty,
	})
	if err != nil {
		h.respondError(w, "create return note item", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

func (h *Handler) deleteReceipt(w http.ResponseWriter, r *http.Request) {
	corp := r.URL.Query().Get("corporation_uuid")
	if err := h.service.SoftDeleteReceiptItem(r.Context(), corp, chi.URLParam(r, "uuid")); err != nil {
		h.respondError(w, "delete receipt note item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteReturn(w http.ResponseWriter, r *http.Request) {
	corp := r.URL.Query().Get("corporation_uuid")
	if err := h.service.SoftDeleteReturnItem(r.Context(), corp, chi.URLParam(r, "uuid")); err != nil {
		h.respondError(w, "delete return note item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		httpx.Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		httpx.Fail(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "internal error")
	}
}
