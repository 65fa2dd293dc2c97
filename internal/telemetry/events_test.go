package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sink struct {
	mu     sync.Mutex
	events []Event
	status int
}

func (s *sink) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var ev Event
	_ = json.NewDecoder(r.Body).Decode(&ev)
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
	if s.status != 0 {
		w.WriteHeader(s.status)
	}
}

func TestNewEmitter_DisabledWithoutEndpoint(t *testing.T) {
	emitter := NewEmitter("", http.DefaultClient, zerolog.Nop())

	assert.IsType(t, NopEmitter{}, emitter)
	emitter.Emit(context.Background(), QueryEvent("s", "q", nil))
}

func TestHTTPEmitter_QueryEvent(t *testing.T) {
	s := &sink{}
	srv := httptest.NewServer(s)
	defer srv.Close()

	emitter := NewEmitter(srv.URL, srv.Client(), zerolog.Nop()).(*HTTPEmitter)
	emitter.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	emitter.Emit(context.Background(), QueryEvent("session-1", "budget", map[string]int{"KHub": 3, "Confluence": 0}))
	emitter.Wait()

	require.Len(t, s.events, 1)
	ev := s.events[0]
	assert.Equal(t, EventQuery, ev.Type)
	assert.Equal(t, "session-1", ev.UUID)
	assert.Equal(t, "budget", ev.Query)
	assert.Equal(t, map[string]int{"KHub": 3, "Confluence": 0}, ev.Sizes)
	assert.Nil(t, ev.Vote)
	assert.True(t, ev.Timestamp.Equal(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))
}

func TestHTTPEmitter_VoteEvent(t *testing.T) {
	s := &sink{}
	srv := httptest.NewServer(s)
	defer srv.Close()

	emitter := NewEmitter(srv.URL, srv.Client(), zerolog.Nop()).(*HTTPEmitter)
	emitter.Emit(context.Background(), VoteEvent("", "budget", "Confluence"))
	emitter.Wait()

	require.Len(t, s.events, 1)
	ev := s.events[0]
	assert.Equal(t, EventVote, ev.Type)
	assert.Equal(t, "Confluence", ev.Source)
	require.NotNil(t, ev.Vote)
	assert.True(t, *ev.Vote)
	assert.NotEmpty(t, ev.UUID)
}

func TestHTTPEmitter_FailureIsLoggedNotReturned(t *testing.T) {
	s := &sink{status: http.StatusInternalServerError}
	srv := httptest.NewServer(s)
	defer srv.Close()

	var buf bytes.Buffer
	emitter := NewEmitter(srv.URL, srv.Client(), zerolog.New(&buf)).(*HTTPEmitter)

	emitter.Emit(context.Background(), QueryEvent("s", "q", nil))
	emitter.Wait()

	assert.Len(t, s.events, 1)
	assert.Contains(t, buf.String(), "telemetry delivery failed")
	assert.Contains(t, buf.String(), "500")
}

func TestHTTPEmitter_SurvivesCanceledContext(t *testing.T) {
	s := &sink{}
	srv := httptest.NewServer(s)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	emitter := NewEmitter(srv.URL, srv.Client(), zerolog.Nop()).(*HTTPEmitter)
	emitter.Emit(ctx, QueryEvent("s", "q", nil))
	emitter.Wait()

	assert.Len(t, s.events, 1)
}
