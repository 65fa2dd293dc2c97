package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloo-solutions/khub/internal/api/handlers"
	"github.com/cloo-solutions/khub/internal/api/middleware"
	"github.com/cloo-solutions/khub/internal/domain"
	"github.com/cloo-solutions/khub/internal/pagination"
	"github.com/cloo-solutions/khub/internal/service"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockExplorerService struct {
	mock.Mock
}

func (m *MockExplorerService) Search(ctx context.Context, sessionID, query string) (*service.State, error) {
	args := m.Called(ctx, sessionID, query)
	return args.Get(0).(*service.State), args.Error(1)
}

func (m *MockExplorerService) Compare(ctx context.Context, sessionID, query string) (*service.State, error) {
	args := m.Called(ctx, sessionID, query)
	return args.Get(0).(*service.State), args.Error(1)
}

func (m *MockExplorerService) Vote(ctx context.Context, sessionID, slot string) (*service.State, error) {
	args := m.Called(ctx, sessionID, slot)
	return args.Get(0).(*service.State), args.Error(1)
}

func (m *MockExplorerService) State(ctx context.Context, sessionID string, req service.PageRequest) (*service.State, error) {
	args := m.Called(ctx, sessionID, req)
	return args.Get(0).(*service.State), args.Error(1)
}

func (m *MockExplorerService) Status() service.StatusInfo {
	return m.Called().Get(0).(service.StatusInfo)
}

type MockCollectorService struct {
	mock.Mock
}

func (m *MockCollectorService) Record(ctx context.Context, ev *domain.TelemetryEvent) error {
	return m.Called(ctx, ev).Error(0)
}

func (m *MockCollectorService) List(ctx context.Context, cursor string, limit int) (pagination.Listing[*domain.TelemetryEvent], error) {
	args := m.Called(ctx, cursor, limit)
	return args.Get(0).(pagination.Listing[*domain.TelemetryEvent]), args.Error(1)
}

func (m *MockCollectorService) Tally(ctx context.Context) ([]domain.VoteTally, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.VoteTally), args.Error(1)
}

func newTestRouter(explorer *MockExplorerService, collector *MockCollectorService) http.Handler {
	cfg := RouterConfig{
		Logger:          zerolog.Nop(),
		NewSessionID:    func() string { return "minted" },
		ExplorerHandler: handlers.NewExplorerHandler(explorer),
	}
	if collector != nil {
		cfg.TelemetryHandler = handlers.NewTelemetryHandler(collector)
	}
	return NewRouter(cfg)
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(new(MockExplorerService), nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	assert.Empty(t, w.Header().Get(middleware.SessionIDHeader))
}

func TestRouter_SearchMintsSession(t *testing.T) {
	explorer := new(MockExplorerService)
	explorer.On("Search", mock.Anything, "minted", "q").Return(&service.State{SessionID: "minted"}, nil)
	router := newTestRouter(explorer, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/search", bytes.NewBufferString(`{"query":"q"}`)))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "minted", w.Header().Get(middleware.SessionIDHeader))
	explorer.AssertExpectations(t)
}

func TestRouter_StateUsesClientSession(t *testing.T) {
	explorer := new(MockExplorerService)
	explorer.On("State", mock.Anything, "mine", service.PageRequest{}).Return(&service.State{SessionID: "mine"}, nil)
	router := newTestRouter(explorer, nil)

	req := httptest.NewRequest(http.MethodGet, "/state", nil)
	req.Header.Set(middleware.SessionIDHeader, "mine")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "mine", w.Header().Get(middleware.SessionIDHeader))
}

func TestRouter_LogsOnlyWithCollector(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter(new(MockExplorerService), nil).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/logs/tally", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	collector := new(MockCollectorService)
	collector.On("Tally", mock.Anything).Return([]domain.VoteTally{}, nil)

	w = httptest.NewRecorder()
	newTestRouter(new(MockExplorerService), collector).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/logs/tally", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_RejectsOversizedBody(t *testing.T) {
	router := newTestRouter(new(MockExplorerService), nil)

	body := bytes.Repeat([]byte("a"), int(maxBodyBytes)+1)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/search", bytes.NewReader(body)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
