package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/cloo-solutions/khub/internal/api"
	"github.com/cloo-solutions/khub/internal/domain"
	"github.com/cloo-solutions/khub/internal/pagination"
)

type CollectorService interface {
	Record(ctx context.Context, ev *domain.TelemetryEvent) error
	List(ctx context.Context, cursor string, limit int) (pagination.Listing[*domain.TelemetryEvent], error)
	Tally(ctx context.Context) ([]domain.VoteTally, error)
}

// TelemetryHandler serves the logging endpoint the explorer posts events to.
type TelemetryHandler struct {
	svc CollectorService
}

func NewTelemetryHandler(svc CollectorService) *TelemetryHandler {
	return &TelemetryHandler{svc: svc}
}

func (h *TelemetryHandler) Record(w http.ResponseWriter, r *http.Request) {
	var ev domain.TelemetryEvent
	if err := api.Decode(r, &ev); err != nil {
		api.HandleError(w, err)
		return
	}

	if err := h.svc.Record(r.Context(), &ev); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusAccepted, map[string]string{"id": ev.ID})
}

func (h *TelemetryHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			api.Error(w, http.StatusBadRequest, "limit must be a positive number")
			return
		}
		limit = n
	}

	listing, err := h.svc.List(r.Context(), r.URL.Query().Get("cursor"), limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, listing)
}

func (h *TelemetryHandler) Tally(w http.ResponseWriter, r *http.Request) {
	tally, err := h.svc.Tally(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, tally)
}
