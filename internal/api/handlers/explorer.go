package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/cloo-solutions/khub/internal/api"
	"github.com/cloo-solutions/khub/internal/api/middleware"
	"github.com/cloo-solutions/khub/internal/domain"
	"github.com/cloo-solutions/khub/internal/service"
)

type ExplorerService interface {
	Search(ctx context.Context, sessionID, query string) (*service.State, error)
	Compare(ctx context.Context, sessionID, query string) (*service.State, error)
	Vote(ctx context.Context, sessionID, slot string) (*service.State, error)
	State(ctx context.Context, sessionID string, req service.PageRequest) (*service.State, error)
	Status() service.StatusInfo
}

type ExplorerHandler struct {
	svc ExplorerService
}

func NewExplorerHandler(svc ExplorerService) *ExplorerHandler {
	return &ExplorerHandler{svc: svc}
}

type QueryRequest struct {
	Query string `json:"query"`
}

type VoteRequest struct {
	Slot string `json:"slot"`
}

func (h *ExplorerHandler) Health(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *ExplorerHandler) Status(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, h.svc.Status())
}

func (h *ExplorerHandler) Search(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, h.svc.Search)
}

func (h *ExplorerHandler) Compare(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, h.svc.Compare)
}

func (h *ExplorerHandler) submit(w http.ResponseWriter, r *http.Request, run func(context.Context, string, string) (*service.State, error)) {
	var req QueryRequest
	if err := api.Decode(r, &req); err != nil {
		api.HandleError(w, err)
		return
	}

	state, err := run(r.Context(), middleware.GetSessionID(r.Context()), req.Query)
	writeState(w, state, err)
}

func (h *ExplorerHandler) Vote(w http.ResponseWriter, r *http.Request) {
	var req VoteRequest
	if err := api.Decode(r, &req); err != nil {
		api.HandleError(w, err)
		return
	}

	state, err := h.svc.Vote(r.Context(), middleware.GetSessionID(r.Context()), req.Slot)
	writeState(w, state, err)
}

func (h *ExplorerHandler) State(w http.ResponseWriter, r *http.Request) {
	var req service.PageRequest
	for name, dst := range map[string]*int{
		"page":       &req.Page,
		"left_page":  &req.LeftPage,
		"right_page": &req.RightPage,
	} {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			api.HandleError(w, domain.ErrInvalidPage)
			return
		}
		*dst = n
	}

	state, err := h.svc.State(r.Context(), middleware.GetSessionID(r.Context()), req)
	writeState(w, state, err)
}

// writeState renders a service result. Errors that leave the session
// readable still carry the state.
func writeState(w http.ResponseWriter, state *service.State, err error) {
	switch {
	case err != nil && state != nil:
		api.HandleErrorWithData(w, err, state)
	case err != nil:
		api.HandleError(w, err)
	default:
		api.Success(w, http.StatusOK, state)
	}
}
