// Package liveness polls the graph service and publishes its reachability.
package liveness

import (
	"context"
	"sync"
	"time"

	"github.com/cloo-solutions/khub/internal/domain"
	"github.com/rs/zerolog"
)

// DefaultInterval is the polling period.
const DefaultInterval = 3 * time.Second

// Prober performs a single reachability check.
type Prober interface {
	Check(ctx context.Context) domain.Reachability
}

// Monitor polls a Prober on a fixed interval. Every result is published as is,
// with no debounce.
type Monitor struct {
	prober   Prober
	interval time.Duration
	state    *domain.ReachabilityState
	logger   zerolog.Logger
	stopChan chan struct{}
	doneChan chan struct{}
	stopOnce sync.Once
}

func NewMonitor(prober Prober, interval time.Duration, state *domain.ReachabilityState, logger zerolog.Logger) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if state == nil {
		state = &domain.ReachabilityState{}
	}
	return &Monitor{
		prober:   prober,
		interval: interval,
		state:    state,
		logger:   logger.With().Str("component", "liveness").Logger(),
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// State returns the latest published reachability.
func (m *Monitor) State() domain.Reachability {
	return m.state.Load()
}

// Start probes once, then on every tick until ctx is cancelled or Stop is
// called. It blocks.
func (m *Monitor) Start(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	defer close(m.doneChan)

	m.logger.Info().Dur("interval", m.interval).Msg("liveness monitor started")
	m.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			m.logger.Info().Msg("liveness monitor stopped: context cancelled")
			return
		case <-m.stopChan:
			m.logger.Info().Msg("liveness monitor stopped")
			return
		case <-ticker.C:
			m.poll(ctx)
		}
	}
}

// Stop ends the polling loop and waits for it to exit. Start must have been
// called.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
	<-m.doneChan
}

func (m *Monitor) poll(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, m.interval)
	defer cancel()

	next := m.prober.Check(ctx)
	prev := m.state.Load()
	m.state.Store(next)

	if next != prev {
		m.logger.Info().
			Str("from", prev.String()).
			Str("to", next.String()).
			Msg("graph reachability changed")
	}
}
