package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Event types.
const (
	EventQuery = "query"
	EventVote  = "vote"
)

// Event is the body posted to the logging endpoint.
type Event struct {
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	UUID      string         `json:"uuid"`
	Query     string         `json:"query"`
	Source    string         `json:"source,omitempty"`
	Vote      *bool          `json:"vote,omitempty"`
	Sizes     map[string]int `json:"sizes,omitempty"`
}

// QueryEvent describes a resolved query and the result count per source.
func QueryEvent(sessionID, query string, sizes map[string]int) Event {
	return Event{Type: EventQuery, UUID: sessionID, Query: query, Sizes: sizes}
}

// VoteEvent records a preference for the named source.
func VoteEvent(sessionID, query, source string) Event {
	liked := true
	return Event{Type: EventVote, UUID: sessionID, Query: query, Source: source, Vote: &liked}
}

// Emitter delivers events without blocking the caller.
type Emitter interface {
	Emit(ctx context.Context, ev Event)
}

// NopEmitter drops every event. Used when no logging endpoint is configured.
type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, Event) {}

// HTTPEmitter posts events as JSON. Failures are logged and recorded as
// Sentry breadcrumbs; events are never retried.
type HTTPEmitter struct {
	endpoint   string
	httpClient *http.Client
	logger     zerolog.Logger
	now        func() time.Time
	wg         sync.WaitGroup
}

// NewEmitter returns an HTTPEmitter for endpoint, or a NopEmitter when
// endpoint is empty.
func NewEmitter(endpoint string, httpClient *http.Client, logger zerolog.Logger) Emitter {
	if endpoint == "" {
		return NopEmitter{}
	}
	return &HTTPEmitter{
		endpoint:   endpoint,
		httpClient: httpClient,
		logger:     logger.With().Str("component", "telemetry").Logger(),
		now:        time.Now,
	}
}

func (e *HTTPEmitter) Emit(ctx context.Context, ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = e.now().UTC()
	}
	if ev.UUID == "" {
		ev.UUID = uuid.NewString()
	}

	// The caller's request may finish before delivery does.
	ctx = context.WithoutCancel(ctx)

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if err := e.send(ctx, ev); err != nil {
			e.logger.Warn().Err(err).Str("event", ev.Type).Msg("telemetry delivery failed")
			AddBreadcrumb(ctx, "telemetry", fmt.Sprintf("dropped %s event: %v", ev.Type, err))
		}
	}()
}

// Wait blocks until in-flight deliveries finish.
func (e *HTTPEmitter) Wait() {
	e.wg.Wait()
}

func (e *HTTPEmitter) send(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("logging endpoint responded %d", resp.StatusCode)
	}
	return nil
}
