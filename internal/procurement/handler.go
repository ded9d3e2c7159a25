package procurement

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/brickline-erp/brickline-erp/internal/platform/httpx"
)

// Handler manages purchase order, change order and invoice endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers procurement routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.MethodNotAllowed(httpx.MethodNotAllowed)
	r.Route("/purchase-orders", func(r chi.Router) {
		r.Get("/", h.listPOs)
		r.Post("/", h.createPO)
		r.Get("/{uuid}", h.getPO)
		r.Post("/{uuid}/approve", h.approvePO)
		r.Patch("/{uuid}/status", h.updatePOStatus)
		r.Post("/{uuid}/invoices", h.createInvoice)
	})
	r.Route("/change-orders", func(r chi.Router) {
		r.Get("/", h.listCOs)
		r.Post("/", h.createCO)
		r.Post("/{uuid}/approve", h.approveCO)
	})
}

type orderItemForm struct {
	ItemUUID   string  `json:"item_uuid" validate:"required"`
	OrderedQty float64 `json:"ordered_quantity" validate:"gt=0"`
	UnitPrice  float64 `json:"unit_price" validate:"gte=0"`
}

type createPOForm struct {
	CorporationUUID string             `json:"corporation_uuid" validate:"required,uuid"`
	ProjectUUID     string             `json:"project_uuid" validate:"required,uuid"`
	VendorUUID      string             `json:"vendor_uuid"`
	Number          string             `json:"po_number" validate:"required"`
	POType          string             `json:"po_type"`
	Breakdown       FinancialBreakdown `json:"financial_breakdown"`
	Items           []orderItemForm    `json:"items" validate:"required,min=1,dive"`
}

type createCOForm struct {
	CorporationUUID   string             `json:"corporation_uuid" validate:"required,uuid"`
	ProjectUUID       string             `json:"project_uuid" validate:"required,uuid"`
	VendorUUID        string             `json:"vendor_uuid"`
	PurchaseOrderUUID string             `json:"purchase_order_uuid"`
	Number            string             `json:"co_number" validate:"required"`
	Breakdown         FinancialBreakdown `json:"financial_breakdown"`
	Items             []orderItemForm    `json:"items" validate:"required,min=1,dive"`
}

type statusForm struct {
	Status string `json:"status" validate:"required"`
}

type createInvoiceForm struct {
	Number                string `json:"invoice_number" validate:"required"`
	Date                  string `json:"invoice_date" validate:"required"`
	Amount                string `json:"amount" validate:"required"`
	AgainstAdvancePayment bool   `json:"against_advance_payment"`
	AdjustedInvoiceUUID   string `json:"adjusted_invoice_uuid"`
}

func (h *Handler) listPOs(w http.ResponseWriter, r *http.Request) {
	corp := r.URL.Query().Get("corporation_uuid")
	project := r.URL.Query().Get("project_uuid")
	orders, err := h.service.ListPOs(r.Context(), corp, project)
	if err != nil {
		h.respondError(w, "list purchase orders", err)
		return
	}
	httpx.JSON(w, http.StatusOK, orders)
}

func (h *Handler) createPO(w http.ResponseWriter, r *http.Request) {
	var form createPOForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	input := CreatePOInput{
		CorporationUUID: form.CorporationUUID,
		ProjectUUID:     form.ProjectUUID,
		VendorUUID:      form.VendorUUID,
		Number:          form.Number,
		POType:          form.POType,
		Breakdown:       form.Breakdown,
	}
	for _, line := range form.Items {
		input.Items = append(input.Items, OrderItemInput(line))
	}
	po, err := h.service.CreatePO(r.Context(), input)
	if err != nil {
		h.respondError(w, "create purchase order", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, po)
}

func (h *Handler) getPO(w http.ResponseWriter, r *http.Request) {
	po, items, err := h.service.GetPO(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		h.respondError(w, "get purchase order", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"order": po, "items": items})
}

func (h *Handler) approvePO(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ApprovePO(r.Context(), chi.URLParam(r, "uuid")); err != nil {
		h.respondError(w, "approve purchase order", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) updatePOStatus(w http.ResponseWriter, r *http.Request) {
	var form statusForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.service.UpdatePOStatus(r.Context(), chi.URLParam(r, "uuid"), OrderStatus(form.Status)); err != nil {
		h.respondError(w, "update purchase order status", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	var form createInvoiceForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	amount, err := decimal.NewFromString(form.Amount)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid amount")
		return
	}
	inv, err := h.service.CreateInvoice(r.Context(), CreateInvoiceInput{
		PurchaseOrderUUID:     chi.URLParam(r, "uuid"),
		Number:                form.Number,
		Date:                  form.Date,
		Amount:                amount,
		AgainstAdvancePayment: form.AgainstAdvancePayment,
		AdjustedInvoiceUUID:   form.AdjustedInvoiceUUID,
	})
	if err != nil {
		h.respondError(w, "create invoice", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) listCOs(w http.ResponseWriter, r *http.Request) {
	corp := r.URL.Query().Get("corporation_uuid")
	project := r.URL.Query().Get("project_uuid")
	orders, err := h.service.ListCOs(r.Context(), corp, project)
	if err != nil {
		h.respondError(w, "list change orders", err)
		return
	}
	httpx.JSON(w, http.StatusOK, orders)
}

func (h *Handler) createCO(w http.ResponseWriter, r *http.Request) {
	var form createCOForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	input := CreateCOInput{
		CorporationUUID:   form.CorporationUUID,
		ProjectUUID:       form.ProjectUUID,
		VendorUUID:        form.VendorUUID,
		PurchaseOrderUUID: form.PurchaseOrderUUID,
		Number:            form.Number,
		Breakdown:         form.Breakdown,
	}
	for _, line := range form.Items {
		input.Items = append(input.Items, OrderItemInput(line))
	}
	co, err := h.service.CreateCO(r.Context(), input)
	if err != nil {
		h.respondError(w, "create change order", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, co)
}

func (h *Handler) approveCO(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ApproveCO(r.Context(), chi.URLParam(r, "uuid")); err != nil {
		h.respondError(w, "approve change order", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		httpx.Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrPONotFound):
		httpx.Fail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidState):
		httpx.Fail(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "internal error")
	}
}
