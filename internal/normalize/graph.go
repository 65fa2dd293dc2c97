package normalize

import (
	"strings"

	"github.com/cloo-solutions/khub/internal/domain"
	"github.com/cloo-solutions/khub/internal/snippet"
)

// Graph normalizes one graph row.
func (n *Normalizer) Graph(rec GraphRecord) domain.SearchResult {
	kind := resolveType(rec.Types)
	result := domain.SearchResult{
		Link:           rec.Link,
		Type:           kind,
		Email:          rec.Email,
		CreationTime:   n.formatDate(rec.CreationTime),
		LastUpdateTime: n.formatDate(rec.LastUpdateTime),
		Ancestors:      rec.Ancestors,
	}

	switch {
	case rec.Title != nil:
		result.Title = rec.Title
	case hasMarker(rec.Types, messageMarker):
		result.Title = domain.StringPtr(MessageTitle)
	}

	strategy := snippet.KindMarkup
	if kind == domain.ResultTypeChatMessage {
		strategy = snippet.KindFlattened
	}
	content := ""
	if rec.Content != nil {
		content = snippet.Extract(*rec.Content, strategy, n.cfg.GraphSnippetLength)
	}
	result.Content = &content

	return result
}

func resolveType(types []string) domain.ResultType {
	for _, m := range typeMarkers {
		if hasMarker(types, m.marker) {
			return m.kind
		}
	}
	return domain.ResultTypeUnknown
}

func hasMarker(types []string, marker string) bool {
	for _, t := range types {
		if strings.Contains(t, marker) {
			return true
		}
	}
	return false
}
