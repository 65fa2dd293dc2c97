//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/cloo-solutions/khub/internal/domain"
	"github.com/cloo-solutions/khub/internal/pagination"
	"github.com/cloo-solutions/khub/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEvent(typ, query, source string, at time.Time) *domain.TelemetryEvent {
	ev := &domain.TelemetryEvent{
		Type:       typ,
		SessionID:  "session-1",
		Query:      query,
		OccurredAt: at,
		ReceivedAt: at,
	}
	if typ == domain.EventTypeVote {
		liked := true
		ev.Source = source
		ev.Vote = &liked
	} else {
		ev.Sizes = map[string]int{"KHub": 3, "Confluence": 0}
	}
	return ev
}

func TestEventRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewEventRepository(pool)
	at := time.Now().UTC().Truncate(time.Microsecond)

	ev := newEvent(domain.EventTypeQuery, "budget", "", at)
	require.NoError(t, repo.Create(ctx, ev))
	require.NotEmpty(t, ev.ID)

	got, err := repo.GetByID(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "budget", got.Query)
	assert.Equal(t, map[string]int{"KHub": 3, "Confluence": 0}, got.Sizes)
	assert.Empty(t, got.Source)
	assert.Nil(t, got.Vote)
	assert.True(t, got.OccurredAt.Equal(at))
}

func TestEventRepository_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	_, err := NewEventRepository(pool).GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}

func TestEventRepository_ListWithCursor(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewEventRepository(pool)
	base := time.Now().UTC().Truncate(time.Microsecond)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, newEvent(domain.EventTypeQuery, "q", "", base.Add(time.Duration(i)*time.Second))))
	}

	first, err := repo.List(ctx, nil, 3)
	require.NoError(t, err)
	require.Len(t, first, 3)
	assert.True(t, first[0].ReceivedAt.After(first[1].ReceivedAt))

	cursor := &pagination.Cursor{ID: first[1].ID, At: first[1].ReceivedAt}
	rest, err := repo.List(ctx, cursor, 10)
	require.NoError(t, err)
	assert.Len(t, rest, 3)
	assert.Equal(t, first[2].ID, rest[0].ID)
}

func TestEventRepository_Tally(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewEventRepository(pool)
	at := time.Now().UTC()
	require.NoError(t, repo.Create(ctx, newEvent(domain.EventTypeVote, "q", "KHub", at)))
	require.NoError(t, repo.Create(ctx, newEvent(domain.EventTypeVote, "q", "KHub", at)))
	require.NoError(t, repo.Create(ctx, newEvent(domain.EventTypeVote, "q", "Confluence", at)))
	require.NoError(t, repo.Create(ctx, newEvent(domain.EventTypeQuery, "q", "", at)))

	tally, err := repo.Tally(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.VoteTally{
		{Source: "Confluence", Votes: 1},
		{Source: "KHub", Votes: 2},
	}, tally)

	require.NoError(t, testutil.TruncateAll(ctx, pool))
	tally, err = repo.Tally(ctx)
	require.NoError(t, err)
	assert.Empty(t, tally)
}
