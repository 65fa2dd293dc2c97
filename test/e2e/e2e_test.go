//go:build e2e

package e2e

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/cloo-solutions/khub/internal/domain"
	"github.com/cloo-solutions/khub/internal/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestE2E_Search covers single source mode and session continuity.
func TestE2E_Search(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	resp, err := env.Post("/search", map[string]string{"query": "deploy"}, "")
	require.NoError(t, err)
	require.NotEmpty(t, resp.SessionID)

	st := State(t, resp)
	assert.Equal(t, resp.SessionID, st.SessionID)
	assert.Equal(t, "deploy", st.Query)
	assert.Equal(t, "single", string(st.Mode))
	require.NotNil(t, st.Results)
	assert.Positive(t, st.Results.TotalItems)
	assert.True(t, strings.HasPrefix(st.Statistics, "Retrieved "), st.Statistics)
	assert.Equal(t, 1, env.Graph.Requests()+env.Document.Requests())

	t.Run("state is kept per session", func(t *testing.T) {
		again, err := env.Get("/state", resp.SessionID)
		require.NoError(t, err)
		assert.Equal(t, "deploy", State(t, again).Query)

		other, err := env.Get("/state", "")
		require.NoError(t, err)
		assert.NotEqual(t, resp.SessionID, other.SessionID)
		assert.Empty(t, State(t, other).Query)
	})

	t.Run("blank query clears without a request", func(t *testing.T) {
		before := env.Graph.Requests() + env.Document.Requests()

		cleared, err := env.Post("/search", map[string]string{"query": "   "}, resp.SessionID)
		require.NoError(t, err)

		st := State(t, cleared)
		assert.Empty(t, st.Query)
		assert.Nil(t, st.Results)
		assert.Empty(t, st.Statistics)
		assert.Equal(t, before, env.Graph.Requests()+env.Document.Requests())
	})
}

// TestE2E_CompareAndVote runs a blind comparison through to the collector.
func TestE2E_CompareAndVote(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	resp, err := env.Post("/compare", map[string]string{"query": "deploy"}, "")
	require.NoError(t, err)
	sessionID := resp.SessionID

	st := State(t, resp)
	assert.Equal(t, "compare", string(st.Mode))
	require.NotNil(t, st.Left)
	require.NotNil(t, st.Right)
	assert.Equal(t, 1, st.Left.TotalItems)
	assert.Equal(t, 2, st.Right.TotalItems)
	assert.Equal(t, 2, st.Right.TotalPages)
	assert.True(t, strings.HasPrefix(st.Statistics, "Retrieved 3 items in"), st.Statistics)
	assert.True(t, st.CanVote)
	assert.False(t, st.Voted)

	t.Run("pages move independently", func(t *testing.T) {
		paged, err := env.Get("/state?right_page=2", sessionID)
		require.NoError(t, err)

		st := State(t, paged)
		assert.Equal(t, 1, st.Left.Current)
		assert.Equal(t, 2, st.Right.Current)
		require.Len(t, st.Right.Items, 1)
		assert.Equal(t, "https://jira.example.com/browse/ENG-42", st.Right.Items[0].Link)
	})

	t.Run("invalid page is rejected", func(t *testing.T) {
		bad, err := env.Get("/state?left_page=zero", sessionID)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
	})

	t.Run("first vote counts", func(t *testing.T) {
		voted, err := env.Post("/vote", map[string]string{"slot": "left"}, sessionID)
		require.NoError(t, err)

		st := State(t, voted)
		assert.True(t, st.Voted)
		assert.False(t, st.CanVote)

		again, err := env.Post("/vote", map[string]string{"slot": "right"}, sessionID)
		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, again.StatusCode)
	})

	t.Run("events reach the collector", func(t *testing.T) {
		env.FlushTelemetry()

		tallyResp, err := env.Get("/logs/tally", "")
		require.NoError(t, err)

		var tally []domain.VoteTally
		require.NoError(t, json.Unmarshal(tallyResp.Data, &tally))
		require.Len(t, tally, 1)
		assert.Equal(t, "Confluence", tally[0].Source)
		assert.Equal(t, 1, tally[0].Votes)

		listResp, err := env.Get("/logs?limit=1", "")
		require.NoError(t, err)

		var listing pagination.Listing[*domain.TelemetryEvent]
		require.NoError(t, json.Unmarshal(listResp.Data, &listing))
		require.Len(t, listing.Items, 1)
		assert.True(t, listing.HasMore)

		nextResp, err := env.Get("/logs?limit=1&cursor="+listing.Next, "")
		require.NoError(t, err)

		var next pagination.Listing[*domain.TelemetryEvent]
		require.NoError(t, json.Unmarshal(nextResp.Data, &next))
		require.Len(t, next.Items, 1)
		assert.False(t, next.HasMore)

		byType := map[string]*domain.TelemetryEvent{}
		for _, ev := range append(listing.Items, next.Items...) {
			assert.Equal(t, sessionID, ev.SessionID)
			byType[ev.Type] = ev
		}
		require.Contains(t, byType, domain.EventTypeQuery)
		require.Contains(t, byType, domain.EventTypeVote)
		assert.Equal(t, map[string]int{"KHub": 2, "Confluence": 1}, byType[domain.EventTypeQuery].Sizes)
		assert.Equal(t, "Confluence", byType[domain.EventTypeVote].Source)
	})
}

// TestE2E_BackendFailure checks the notice raised when a source fails.
func TestE2E_BackendFailure(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	env.Document.Fail(http.StatusInternalServerError)

	resp, err := env.Post("/compare", map[string]string{"query": "deploy"}, "")
	require.NoError(t, err)

	st := State(t, resp)
	assert.True(t, st.Notice)
	assert.Equal(t, "Unable to send a request!", st.NoticeText)
	assert.Nil(t, st.Left)
	assert.False(t, st.CanVote)

	vote, err := env.Post("/vote", map[string]string{"slot": "left"}, resp.SessionID)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, vote.StatusCode)
}

// TestE2E_CLI drives the khub binary against the running server.
func TestE2E_CLI(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()
	env.BuildBinaries()

	out, err := env.RunKhub("status")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Server available")

	out, err = env.RunKhub("compare", "deploy")
	require.NoError(t, err, out)
	assert.Contains(t, out, "== Left (1) ==")
	assert.Contains(t, out, "== Right (2) ==")
	assert.Contains(t, out, "khub vote left|right")

	out, err = env.RunKhub("page", "2", "--side", "right")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Deploy pipeline flakes")

	out, err = env.RunKhub("vote", "left")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Vote recorded. Thank you!")

	out, err = env.RunKhub("vote", "left")
	require.Error(t, err)
	assert.Contains(t, out, "already")

	out, err = env.RunKhub("reset")
	require.NoError(t, err, out)

	out, err = env.RunKhub("--output", "show")
	require.NoError(t, err, out)
	var st struct {
		Query string `json:"query"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Empty(t, st.Query)

	out, err = env.RunKhub("--help-json")
	require.NoError(t, err, out)
	assert.Contains(t, out, `"name": "khub"`)
}
