package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchResult_DisplayTime(t *testing.T) {
	tests := []struct {
		name     string
		result   SearchResult
		expected string
	}{
		{"update wins", SearchResult{CreationTime: StringPtr("1 May 2023"), LastUpdateTime: StringPtr("2 May 2023")}, "Updated 2 May 2023"},
		{"creation only", SearchResult{CreationTime: StringPtr("1 May 2023")}, "Created 1 May 2023"},
		{"none", SearchResult{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.result.DisplayTime())
		})
	}
}

func TestQueryOutcome_Resolved(t *testing.T) {
	assert.False(t, QueryOutcome{}.Resolved())
	assert.Equal(t, -1, QueryOutcome{}.Size())

	empty := QueryOutcome{Results: []SearchResult{}}
	assert.True(t, empty.Resolved())
	assert.Equal(t, 0, empty.Size())
}

func TestParseSource(t *testing.T) {
	s, err := ParseSource("graph")
	assert.NoError(t, err)
	assert.Equal(t, SourceGraph, s)
	assert.Equal(t, "Confluence", SourceDocument.Label())

	_, err = ParseSource("bing")
	assert.ErrorIs(t, err, ErrUnknownSource)
}

func TestReachability_RoundTrip(t *testing.T) {
	for _, r := range []Reachability{ReachabilityUnknown, ReachabilityReachable, ReachabilityUnreachable} {
		assert.Equal(t, r, ParseReachability(r.String()))
	}
	assert.Equal(t, "Initializing", ReachabilityUnknown.StatusText())

	var state ReachabilityState
	assert.Equal(t, ReachabilityUnknown, state.Load())
	state.Store(ReachabilityReachable)
	assert.Equal(t, ReachabilityReachable, state.Load())
}

func TestDomainError_IsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("dispatch: %w", ErrAlreadyVoted)
	assert.True(t, errors.Is(wrapped, ErrAlreadyVoted))
	assert.False(t, errors.Is(wrapped, ErrEmptyQuery))

	withCause := NewDomainErrorWithCause(ErrCodeInternalError, "backend request failed", errors.New("eof"))
	assert.True(t, errors.Is(withCause, ErrBackendRequest))
	assert.Contains(t, withCause.Error(), "eof")
}
