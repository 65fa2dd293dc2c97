// Package backend holds the HTTP transports to the graph and document search
// services and the liveness probe.
package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cloo-solutions/khub/internal/domain"
)

// maxPayloadBytes caps how much of a backend response is read.
const maxPayloadBytes = 32 << 20

// Searcher runs one query against one backend and returns normalized results.
type Searcher interface {
	Source() domain.Source
	Search(ctx context.Context, query string) ([]domain.SearchResult, error)
}

// NewHTTPClient returns the client shared by all backend transports.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// StatusError reports a backend response other than 200.
type StatusError struct {
	Source     domain.Source
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s backend responded %d: %s", e.Source, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return domain.ErrBackendStatus
}

// fetch sends req and returns the body of a 200 response.
func fetch(client *http.Client, req *http.Request, source domain.Source) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, domain.ErrBackendRequest.Message, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, domain.ErrBackendRequest.Message,
			fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Source: source, StatusCode: resp.StatusCode, Body: truncateBody(body)}
	}

	return body, nil
}

func truncateBody(body []byte) string {
	const max = 256
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
