package domain

import (
	"encoding/json"
	"time"
)

// Telemetry event types accepted by the collector.
const (
	EventTypeQuery = "query"
	EventTypeVote  = "vote"
)

// TelemetryEvent is a query or vote event as persisted by the collector.
type TelemetryEvent struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	SessionID  string         `json:"uuid"`
	Query      string         `json:"query"`
	Source     string         `json:"source,omitempty"`
	Vote       *bool          `json:"vote,omitempty"`
	Sizes      map[string]int `json:"sizes,omitempty"`
	OccurredAt time.Time      `json:"timestamp"`
	ReceivedAt time.Time      `json:"received_at"`
}

// SizesJSON returns the per-source result counts as a JSON object, never null.
func (e *TelemetryEvent) SizesJSON() []byte {
	if len(e.Sizes) == 0 {
		return []byte("{}")
	}
	b, err := json.Marshal(e.Sizes)
	if err != nil {
		return []byte("{}")
	}
	return b
}

// VoteTally counts votes per source label.
type VoteTally struct {
	Source string `json:"source"`
	Votes  int    `json:"votes"`
}
