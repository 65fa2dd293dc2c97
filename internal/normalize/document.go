package normalize

import (
	"strings"

	"github.com/cloo-solutions/khub/internal/domain"
	"github.com/cloo-solutions/khub/internal/snippet"
)

// Document normalizes one wiki search item. It returns false for items that
// are not pages.
//
// Items without ancestors get neither content nor update time. That mirrors
// how the upstream search expands ancestors and is kept for compatibility.
func (n *Normalizer) Document(base string, rec DocumentRecord) (domain.SearchResult, bool) {
	if !rec.IsPage() {
		return domain.SearchResult{}, false
	}

	result := domain.SearchResult{
		Link: joinURL(base, rec.Path),
		Type: domain.ResultTypeWikiPage,
	}
	if rec.Title != nil {
		result.Title = domain.StringPtr(strings.TrimSpace(snippet.StripHighlights(*rec.Title)))
	}

	if len(rec.Ancestors) == 0 {
		return result, true
	}

	ancestors := make([]domain.Ancestor, len(rec.Ancestors))
	for i, a := range rec.Ancestors {
		ancestors[i] = domain.Ancestor{Title: a.Title, Link: joinURL(base, a.Link)}
	}
	result.Ancestors = ancestors

	if rec.Excerpt != nil {
		content := snippet.Extract(*rec.Excerpt, snippet.KindHighlighted, n.cfg.DocumentSnippetLength)
		result.Content = &content
	}
	result.LastUpdateTime = n.formatDate(rec.LastModified)

	return result, true
}

func joinURL(base, path string) string {
	if path == "" {
		return base
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
}
