package projects

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/brickline-erp/brickline-erp/internal/platform/httpx"
	"github.com/brickline-erp/brickline-erp/internal/shared"
)

// Handler manages project endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers project routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.MethodNotAllowed(httpx.MethodNotAllowed)
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{uuid}", h.get)
	r.Patch("/{uuid}", h.update)
	r.Delete("/{uuid}", h.softDelete)
	r.Delete("/{uuid}/hard", h.hardDelete)
}

type addressForm struct {
	Kind       string `json:"kind"`
	Line1      string `json:"line1" validate:"required"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
}

type createForm struct {
	CorporationUUID string        `json:"corporation_uuid" validate:"required,uuid"`
	Name            string        `json:"name" validate:"required"`
	Status          string        `json:"status"`
	Addresses       []addressForm `json:"addresses" validate:"dive"`
}

type updateForm struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	corp := r.URL.Query().Get("corporation_uuid")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	items, total, err := h.service.List(r.Context(), corp, limit, offset)
	if err != nil {
		h.respondError(w, "list projects", err)
		return
	}
	httpx.Report(w, items, shared.NewPagination(offset/max(limit, 1)+1, limit, total))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var form createForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	input := CreateInput{CorporationUUID: form.CorporationUUID, Name: form.Name, Status: Status(form.Status)}
	for _, a := range form.Addresses {
		input.Addresses = append(input.Addresses, Address{
			Kind: a.Kind, Line1: a.Line1, Line2: a.Line2, City: a.City, State: a.State, PostalCode: a.PostalCode,
		})
	}
	project, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.respondError(w, "create project", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, project)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	project, err := h.service.Get(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		h.respondError(w, "get project", err)
		return
	}
	httpx.JSON(w, http.StatusOK, project)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var form updateForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	project, err := h.service.Update(r.Context(), UpdateInput{
		UUID:   chi.URLParam(r, "uuid"),
		Name:   form.Name,
		Status: Status(form.Status),
	})
	if err != nil {
		h.respondError(w, "update project", err)
		return
	}
	httpx.JSON(w, http.StatusOK, project)
}

func (h *Handler) softDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.SoftDelete(r.Context(), chi.URLParam(r, "uuid")); err != nil {
		h.respondError(w, "soft delete project", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) hardDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.HardDelete(r.Context(), chi.URLParam(r, "uuid")); err != nil {
		h.respondError(w, "hard delete project", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidStatus):
		httpx.Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		httpx.Fail(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "internal error")
	}
}
