package masterdata

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/brickline-erp/brickline-erp/internal/platform/httpx"
)

// Handler manages master data endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers master data routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.MethodNotAllowed(httpx.MethodNotAllowed)
	r.Get("/vendors", h.listVendors)
	r.Post("/vendors", h.createVendor)
	r.Get("/vendors/{uuid}", h.getVendor)
	r.Get("/cost-codes", h.listCostCodes)
	r.Post("/cost-codes", h.createCostCode)
	r.Get("/items", h.listItems)
	r.Post("/items", h.createItem)
}

type vendorForm struct {
	CorporationUUID string `json:"corporation_uuid" validate:"required,uuid"`
	Name            string `json:"name" validate:"required"`
}

type costCodeForm struct {
	CorporationUUID string `json:"corporation_uuid" validate:"required,uuid"`
	Number          string `json:"cost_code_number" validate:"required"`
	Name            string `json:"cost_code_name"`
}

type itemForm struct {
	CorporationUUID string `json:"corporation_uuid" validate:"required,uuid"`
	ProjectUUID     string `json:"project_uuid" validate:"required,uuid"`
	Name            string `json:"item_name" validate:"required"`
	SequenceCode    string `json:"item_sequence"`
	ModelNumber     string `json:"manufacturer_model_number"`
	Unit            string `json:"unit"`
	CostCodeUUID    string `json:"cost_code_uuid" validate:"omitempty,uuid"`
}

func (h *Handler) listVendors(w http.ResponseWriter, r *http.Request) {
	vendors, err := h.service.ListVendors(r.Context(), r.URL.Query().Get("corporation_uuid"))
	if err != nil {
		h.respondError(w, "list vendors", err)
		return
	}
	httpx.Report(w, vendors, nil)
}

func (h *Handler) createVendor(w http.ResponseWriter, r *http.Request) {
	var form vendorForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	vendor, err := h.service.CreateVendor(r.Context(), Vendor{CorporationUUID: form.CorporationUUID, Name: form.Name})
	if err != nil {
		h.respondError(w, "create vendor", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, vendor)
}

func (h *Handler) getVendor(w http.ResponseWriter, r *http.Request) {
	vendor, err := h.service.GetVendor(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		h.respondError(w, "get vendor", err)
		return
	}
	httpx.JSON(w, http.StatusOK, vendor)
}

func (h *Handler) listCostCodes(w http.ResponseWriter, r *http.Request) {
	codes, err := h.service.ListCostCodes(r.Context(), r.URL.Query().Get("corporation_uuid"))
	if err != nil {
		h.respondError(w, "list cost codes", err)
		return
	}
	httpx.Report(w, codes, nil)
}

func (h *Handler) createCostCode(w http.ResponseWriter, r *http.Request) {
	var form costCodeForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	code, err := h.service.CreateCostCode(r.Context(), CostCode{CorporationUUID: form.CorporationUUID, Number: form.Number, Name: form.Name})
	if err != nil {
		h.respondError(w, "create cost code", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, code)
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListCatalogItems(r.Context(), r.URL.Query().Get("corporation_uuid"), r.URL.Query().Get("project_uuid"))
	if err != nil {
		h.respondError(w, "list items", err)
		return
	}
	httpx.Report(w, items, nil)
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	var form itemForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	item, err := h.service.CreateCatalogItem(r.Context(), CatalogItem{
		CorporationUUID: form.CorporationUUID,
		ProjectUUID:     form.ProjectUUID,
		Name:            form.Name,
		SequenceCode:    form.SequenceCode,
		ModelNumber:     form.ModelNumber,
		Unit:            form.Unit,
		CostCodeUUID:    form.CostCodeUUID,
	})
	if err != nil {
		h.respondError(w, "create item", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
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
