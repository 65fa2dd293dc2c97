package pagination

import (
	"encoding/base64"
	"errors"
	"strings"
	"time"
)

var ErrInvalidCursor = errors.New("invalid cursor format")

// Cursor points just past the last row of a listing page. Rows are ordered
// by time, then ID.
type Cursor struct {
	ID string
	At time.Time
}

// Listing is one page of a cursor-paged listing.
type Listing[T any] struct {
	Items   []T    `json:"items"`
	Next    string `json:"next,omitempty"`
	HasMore bool   `json:"has_more"`
}

// Encode returns the opaque form handed to clients.
func (c Cursor) Encode() string {
	if c.ID == "" {
		return ""
	}
	raw := c.At.UTC().Format(time.RFC3339Nano) + "|" + c.ID
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// ParseCursor decodes an opaque cursor. An empty string yields nil.
func ParseCursor(s string) (*Cursor, error) {
	if s == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	at, id, ok := strings.Cut(string(decoded), "|")
	if !ok || id == "" {
		return nil, ErrInvalidCursor
	}

	ts, err := time.Parse(time.RFC3339Nano, at)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	return &Cursor{ID: id, At: ts}, nil
}

// NewListing builds a listing from rows fetched with limit+1, so that the
// extra row signals another page.
func NewListing[T any](rows []T, limit int, key func(T) Cursor) Listing[T] {
	listing := Listing[T]{Items: rows}
	if len(rows) > limit {
		listing.Items = rows[:limit]
		listing.HasMore = true
		listing.Next = key(listing.Items[limit-1]).Encode()
	}
	if listing.Items == nil {
		listing.Items = []T{}
	}
	return listing
}
