package damage

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/wareline/wareline/internal/journal"
	"github.com/wareline/wareline/internal/observability"
	"github.com/wareline/wareline/internal/platform/httpx"
	"github.com/wareline/wareline/internal/stock"
)

// Handler manages damage/recovery HTTP endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	metrics *observability.Metrics
}

// NewHandler creates a new handler.
func NewHandler(logger *slog.Logger, service *Service, metrics *observability.Metrics) *Handler {
	return &Handler{logger: logger, service: service, metrics: metrics}
}

// MountRoutes registers routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.show)
	r.Post("/report", h.report)
	r.Post("/recover", h.recover)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	barcode := r.URL.Query().Get("barcode")

	logs, err := h.service.List(r.Context(), barcode, limit, offset)
	if err != nil {
		h.logger.Error("list damage logs failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"logs": logs})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive integer")
		return
	}
	log, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, log)
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	var req ActionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	id, err := h.service.ReportDamage(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.metrics.ObserveMovement(string(journal.MovementDamage))
	httpx.JSON(w, http.StatusCreated, map[string]any{"id": id, "action": string(ActionDamage)})
}

func (h *Handler) recover(w http.ResponseWriter, r *http.Request) {
	var req ActionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	id, err := h.service.Recover(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.metrics.ObserveMovement(string(journal.MovementRecovery))
	httpx.JSON(w, http.StatusCreated, map[string]any{"id": id, "action": string(ActionRecover)})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var verr validator.ValidationErrors
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.As(err, &verr), errors.Is(err, stock.ErrInvalidQuantity):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, stock.ErrNoActiveStock):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Unprocessable", err.Error())
	default:
		h.logger.Error("damage operation failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
