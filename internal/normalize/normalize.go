// Package normalize reduces the raw records of both backends to the canonical
// domain.SearchResult.
package normalize

import (
	"strings"
	"time"

	"github.com/cloo-solutions/khub/internal/domain"
	"github.com/cloo-solutions/khub/internal/snippet"
)

// MessageTitle replaces the missing title of chat posts.
const MessageTitle = "MS Teams Message"

// DateLayout renders dates as "1 May 2023".
const DateLayout = "2 January 2006"

// typeMarkers is checked in order; the first marker found in a row's type
// list decides its result type.
var typeMarkers = []struct {
	marker string
	kind   domain.ResultType
}{
	{"Confluence", domain.ResultTypeWikiPage},
	{"Teams", domain.ResultTypeChatMessage},
}

const messageMarker = "Post"

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Config holds the snippet lengths of both source profiles.
type Config struct {
	GraphSnippetLength    int
	DocumentSnippetLength int
	Location              *time.Location
}

// DefaultConfig returns the stock profile lengths.
func DefaultConfig() Config {
	return Config{
		GraphSnippetLength:    snippet.DefaultGraphLength,
		DocumentSnippetLength: snippet.DefaultDocumentLength,
		Location:              time.UTC,
	}
}

// Normalizer converts decoded records into search results.
type Normalizer struct {
	cfg Config
}

// New creates a Normalizer.
func New(cfg Config) *Normalizer {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Normalizer{cfg: cfg}
}

// GraphPayload decodes and normalizes a graph response body.
func (n *Normalizer) GraphPayload(payload []byte) ([]domain.SearchResult, error) {
	records, err := DecodeGraph(payload)
	if err != nil {
		return nil, err
	}
	results := make([]domain.SearchResult, 0, len(records))
	for _, rec := range records {
		results = append(results, n.Graph(rec))
	}
	return results, nil
}

// DocumentPayload decodes and normalizes a document response body. Non-page
// items are dropped. fallbackBase is used when the payload has no base URL.
func (n *Normalizer) DocumentPayload(payload []byte, fallbackBase string) ([]domain.SearchResult, error) {
	base, records, err := DecodeDocument(payload)
	if err != nil {
		return nil, err
	}
	if base == "" {
		base = fallbackBase
	}
	results := make([]domain.SearchResult, 0, len(records))
	for _, rec := range records {
		if result, ok := n.Document(base, rec); ok {
			results = append(results, result)
		}
	}
	return results, nil
}

func (n *Normalizer) formatDate(raw *string) *string {
	if raw == nil {
		return nil
	}
	value := strings.TrimSpace(*raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return domain.StringPtr(t.In(n.cfg.Location).Format(DateLayout))
		}
	}
	return nil
}
