// Package dispatch fans one query out to the configured search backends and
// joins the outcomes.
package dispatch

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/cloo-solutions/khub/internal/backend"
	"github.com/cloo-solutions/khub/internal/domain"
	"github.com/cloo-solutions/khub/internal/telemetry"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Result is the joined outcome of a successful dispatch.
type Result struct {
	Outcomes map[domain.Source][]domain.SearchResult
	// Duration is in seconds, rounded to two decimals.
	Duration float64
}

// Sizes returns the result count per source label.
func (r Result) Sizes() map[string]int {
	sizes := make(map[string]int, len(r.Outcomes))
	for source, results := range r.Outcomes {
		sizes[source.Label()] = len(results)
	}
	return sizes
}

// Total is the number of results across all sources.
func (r Result) Total() int {
	total := 0
	for _, results := range r.Outcomes {
		total += len(results)
	}
	return total
}

// Dispatcher fans a query out to the configured backends, one per source.
type Dispatcher struct {
	searchers map[domain.Source]backend.Searcher
	logger    zerolog.Logger
	now       func() time.Time
}

// New returns a Dispatcher over searchers. A later searcher for the same
// source replaces an earlier one.
func New(logger zerolog.Logger, searchers ...backend.Searcher) *Dispatcher {
	d := &Dispatcher{
		searchers: make(map[domain.Source]backend.Searcher, len(searchers)),
		logger:    logger.With().Str("component", "dispatch").Logger(),
		now:       time.Now,
	}
	for _, s := range searchers {
		d.searchers[s.Source()] = s
	}
	return d
}

// Has reports whether a backend is configured for source.
func (d *Dispatcher) Has(source domain.Source) bool {
	_, ok := d.searchers[source]
	return ok
}

// Dispatch runs query against every source concurrently and waits for all of
// them. Any failure fails the whole dispatch; partial results are never
// returned.
func (d *Dispatcher) Dispatch(ctx context.Context, query string, sources []domain.Source) (Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Result{}, domain.ErrEmptyQuery
	}
	if len(sources) == 0 {
		return Result{}, fmt.Errorf("%w: no sources requested", domain.ErrSourceNotConfigured)
	}
	for _, source := range sources {
		if !d.Has(source) {
			return Result{}, fmt.Errorf("%w: %s", domain.ErrSourceNotConfigured, source)
		}
	}

	ctx, span := telemetry.StartSpan(ctx, "dispatch.query", telemetry.SpanAttributes{
		Operation: "dispatch",
		Mode:      mode(sources),
	})
	defer span.End()

	start := d.now()

	var (
		mu       sync.Mutex
		outcomes = make(map[domain.Source][]domain.SearchResult, len(sources))
		g        errgroup.Group
	)
	for _, source := range sources {
		searcher := d.searchers[source]
		g.Go(func() error {
			childCtx, child := telemetry.StartSpan(ctx, "dispatch.backend", telemetry.SpanAttributes{
				Source: string(searcher.Source()),
			})
			defer child.End()

			results, err := searcher.Search(childCtx, query)
			if err != nil {
				child.SetFailed()
				return fmt.Errorf("%s search: %w", searcher.Source(), err)
			}
			if results == nil {
				results = []domain.SearchResult{}
			}

			mu.Lock()
			outcomes[searcher.Source()] = results
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.SetError(err)
		d.logger.Warn().Err(err).Str("mode", mode(sources)).Msg("dispatch failed")
		return Result{}, err
	}

	result := Result{
		Outcomes: outcomes,
		Duration: roundSeconds(d.now().Sub(start)),
	}
	d.logger.Debug().
		Str("mode", mode(sources)).
		Int("results", result.Total()).
		Float64("duration_s", result.Duration).
		Msg("dispatch resolved")
	return result, nil
}

func roundSeconds(elapsed time.Duration) float64 {
	return math.Round(elapsed.Seconds()*100) / 100
}

func mode(sources []domain.Source) string {
	if len(sources) > 1 {
		return "compare"
	}
	return "single"
}
