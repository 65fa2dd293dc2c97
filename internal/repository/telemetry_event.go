package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cloo-solutions/khub/internal/domain"
	"github.com/cloo-solutions/khub/internal/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const eventColumns = `id, type, session_id, query, source, vote, sizes, occurred_at, received_at`

// EventRepository stores telemetry events posted to the collector.
type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

// Create inserts ev and fills in its generated ID.
func (r *EventRepository) Create(ctx context.Context, ev *domain.TelemetryEvent) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO telemetry_events (type, session_id, query, source, vote, sizes, occurred_at, received_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		ev.Type,
		ev.SessionID,
		ev.Query,
		nullableString(ev.Source),
		ev.Vote,
		ev.SizesJSON(),
		ev.OccurredAt,
		ev.ReceivedAt,
	).Scan(&ev.ID)
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*domain.TelemetryEvent, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM telemetry_events WHERE id = $1`,
		id,
	)
	ev, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	return ev, nil
}

// List returns up to limit events received before cursor, newest first.
// Callers ask for one extra row to detect a following page.
func (r *EventRepository) List(ctx context.Context, cursor *pagination.Cursor, limit int) ([]*domain.TelemetryEvent, error) {
	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.pool.Query(ctx,
			`SELECT `+eventColumns+` FROM telemetry_events
			 WHERE (received_at, id) < ($1, $2::uuid)
			 ORDER BY received_at DESC, id DESC
			 LIMIT $3`,
			cursor.At, cursor.ID, limit,
		)
	} else {
		rows, err = r.pool.Query(ctx,
			`SELECT `+eventColumns+` FROM telemetry_events
			 ORDER BY received_at DESC, id DESC
			 LIMIT $1`,
			limit,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.TelemetryEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// Tally counts positive votes per source.
func (r *EventRepository) Tally(ctx context.Context) ([]domain.VoteTally, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT source, COUNT(*) FROM telemetry_events
		 WHERE type = 'vote' AND vote AND source IS NOT NULL
		 GROUP BY source
		 ORDER BY source`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tally []domain.VoteTally
	for rows.Next() {
		var t domain.VoteTally
		if err := rows.Scan(&t.Source, &t.Votes); err != nil {
			return nil, err
		}
		tally = append(tally, t)
	}
	return tally, rows.Err()
}

func scanEvent(row pgx.Row) (*domain.TelemetryEvent, error) {
	var (
		ev     domain.TelemetryEvent
		source *string
		sizes  []byte
	)
	if err := row.Scan(&ev.ID, &ev.Type, &ev.SessionID, &ev.Query, &source, &ev.Vote, &sizes, &ev.OccurredAt, &ev.ReceivedAt); err != nil {
		return nil, err
	}
	if source != nil {
		ev.Source = *source
	}
	if len(sizes) > 0 {
		if err := json.Unmarshal(sizes, &ev.Sizes); err != nil {
			return nil, fmt.Errorf("decode sizes: %w", err)
		}
		if len(ev.Sizes) == 0 {
			ev.Sizes = nil
		}
	}
	return &ev, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
