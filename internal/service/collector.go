package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloo-solutions/khub/internal/domain"
	"github.com/cloo-solutions/khub/internal/pagination"
)

// DefaultEventListLimit bounds a single listing page of collected events.
const DefaultEventListLimit = 50

// EventRepository persists telemetry events.
type EventRepository interface {
	Create(ctx context.Context, ev *domain.TelemetryEvent) error
	// List returns up to limit rows older than cursor, newest first.
	List(ctx context.Context, cursor *pagination.Cursor, limit int) ([]*domain.TelemetryEvent, error)
	Tally(ctx context.Context) ([]domain.VoteTally, error)
}

// CollectorService accepts events posted to the logging endpoint.
type CollectorService struct {
	repo EventRepository
	now  func() time.Time
}

func NewCollectorService(repo EventRepository) *CollectorService {
	return &CollectorService{repo: repo, now: time.Now}
}

// Record validates and stores an event. The server assigns ReceivedAt;
// OccurredAt falls back to it when the sender omitted a timestamp.
func (s *CollectorService) Record(ctx context.Context, ev *domain.TelemetryEvent) error {
	if err := validateEvent(ev); err != nil {
		return err
	}

	ev.ReceivedAt = s.now().UTC()
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = ev.ReceivedAt
	}
	if ev.Type == domain.EventTypeQuery {
		ev.Source = ""
		ev.Vote = nil
	}

	if err := s.repo.Create(ctx, ev); err != nil {
		return fmt.Errorf("store telemetry event: %w", err)
	}
	return nil
}

// List pages through stored events, newest first.
func (s *CollectorService) List(ctx context.Context, cursor string, limit int) (pagination.Listing[*domain.TelemetryEvent], error) {
	if limit <= 0 || limit > DefaultEventListLimit {
		limit = DefaultEventListLimit
	}

	after, err := pagination.ParseCursor(cursor)
	if err != nil {
		return pagination.Listing[*domain.TelemetryEvent]{}, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
	}

	rows, err := s.repo.List(ctx, after, limit+1)
	if err != nil {
		return pagination.Listing[*domain.TelemetryEvent]{}, fmt.Errorf("list telemetry events: %w", err)
	}

	return pagination.NewListing(rows, limit, func(ev *domain.TelemetryEvent) pagination.Cursor {
		return pagination.Cursor{ID: ev.ID, At: ev.ReceivedAt}
	}), nil
}

// Tally returns the vote count per source.
func (s *CollectorService) Tally(ctx context.Context) ([]domain.VoteTally, error) {
	tally, err := s.repo.Tally(ctx)
	if err != nil {
		return nil, fmt.Errorf("tally votes: %w", err)
	}
	if tally == nil {
		tally = []domain.VoteTally{}
	}
	return tally, nil
}

func validateEvent(ev *domain.TelemetryEvent) error {
	if ev == nil {
		return domain.ErrInvalidEvent
	}
	if strings.TrimSpace(ev.SessionID) == "" {
		return domain.NewDomainErrorWithCause(domain.ErrCodeValidation, domain.ErrInvalidEvent.Message, fmt.Errorf("uuid is required"))
	}
	if strings.TrimSpace(ev.Query) == "" {
		return domain.NewDomainErrorWithCause(domain.ErrCodeValidation, domain.ErrInvalidEvent.Message, domain.ErrEmptyQuery)
	}

	switch ev.Type {
	case domain.EventTypeQuery:
		for label, n := range ev.Sizes {
			if !knownLabel(label) || n < 0 {
				return domain.NewDomainErrorWithCause(domain.ErrCodeValidation, domain.ErrInvalidEvent.Message, fmt.Errorf("bad size entry %q", label))
			}
		}
	case domain.EventTypeVote:
		if !knownLabel(ev.Source) {
			return domain.NewDomainErrorWithCause(domain.ErrCodeValidation, domain.ErrInvalidEvent.Message, fmt.Errorf("%w: %q", domain.ErrUnknownSource, ev.Source))
		}
		if ev.Vote == nil {
			return domain.NewDomainErrorWithCause(domain.ErrCodeValidation, domain.ErrInvalidEvent.Message, fmt.Errorf("vote is required"))
		}
	default:
		return domain.NewDomainErrorWithCause(domain.ErrCodeValidation, domain.ErrInvalidEvent.Message, fmt.Errorf("unknown type %q", ev.Type))
	}
	return nil
}

func knownLabel(label string) bool {
	return label == domain.SourceGraph.Label() || label == domain.SourceDocument.Label()
}
