package normalize

import (
	"fmt"
	"strings"

	"github.com/cloo-solutions/khub/internal/domain"
	"github.com/tidwall/gjson"
)

// AncestorSeparator joins the graph source's ancestor titles and links.
const AncestorSeparator = "///"

// GraphRecord is one row of a SPARQL binding set, decoded once at the source
// boundary.
type GraphRecord struct {
	Link           string
	Title          *string
	Content        *string
	Email          *string
	CreationTime   *string
	LastUpdateTime *string
	Types          []string
	// Ancestors is nil when the row has no hierarchy or the parallel lists
	// disagree in length.
	Ancestors []domain.Ancestor
}

// DocumentRecord is one item of a wiki search response.
type DocumentRecord struct {
	ContentType  string
	Path         string
	Title        *string
	Excerpt      *string
	LastModified *string
	Ancestors    []domain.Ancestor
}

// IsPage reports whether the record describes a wiki page.
func (r DocumentRecord) IsPage() bool {
	return r.ContentType == "page"
}

// DecodeGraph reads the bindings of a SPARQL JSON result. Rows without a link
// are skipped.
func DecodeGraph(payload []byte) ([]GraphRecord, error) {
	if !gjson.ValidBytes(payload) {
		return nil, fmt.Errorf("graph payload is not valid JSON")
	}

	bindings := gjson.GetBytes(payload, "results.bindings")
	records := make([]GraphRecord, 0, len(bindings.Array()))
	bindings.ForEach(func(_, row gjson.Result) bool {
		link := row.Get("link.value").String()
		if link == "" {
			return true
		}
		records = append(records, GraphRecord{
			Link:           link,
			Title:          bindingValue(row, "title"),
			Content:        bindingValue(row, "content"),
			Email:          bindingValue(row, "email"),
			CreationTime:   bindingValue(row, "creationTime"),
			LastUpdateTime: bindingValue(row, "lastUpdateTime"),
			Types:          splitTypes(row.Get("types.value").String()),
			Ancestors: pairAncestors(
				firstBinding(row, "ancestor_titles", "ancestorTitles"),
				firstBinding(row, "ancestor_links", "ancestorLinks"),
			),
		})
		return true
	})
	return records, nil
}

// DecodeDocument reads a wiki search response. The returned base URL is the
// one reported by the payload, empty when absent.
func DecodeDocument(payload []byte) (string, []DocumentRecord, error) {
	if !gjson.ValidBytes(payload) {
		return "", nil, fmt.Errorf("document payload is not valid JSON")
	}

	base := gjson.GetBytes(payload, "_links.base").String()
	items := gjson.GetBytes(payload, "results")
	records := make([]DocumentRecord, 0, len(items.Array()))
	items.ForEach(func(_, item gjson.Result) bool {
		rec := DocumentRecord{
			ContentType:  item.Get("content.type").String(),
			Path:         item.Get("url").String(),
			Title:        optionalString(item, "title"),
			Excerpt:      optionalString(item, "excerpt"),
			LastModified: optionalString(item, "lastModified"),
		}
		item.Get("content.ancestors").ForEach(func(_, a gjson.Result) bool {
			rec.Ancestors = append(rec.Ancestors, domain.Ancestor{
				Title: a.Get("title").String(),
				Link:  a.Get("_links.webui").String(),
			})
			return true
		})
		records = append(records, rec)
		return true
	})
	return base, records, nil
}

func bindingValue(row gjson.Result, name string) *string {
	v := row.Get(name + ".value")
	if !v.Exists() {
		return nil
	}
	s := v.String()
	return &s
}

func firstBinding(row gjson.Result, names ...string) string {
	for _, name := range names {
		if v := row.Get(name + ".value"); v.Exists() {
			return v.String()
		}
	}
	return ""
}

func optionalString(item gjson.Result, path string) *string {
	v := item.Get(path)
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}
	s := v.String()
	return &s
}

func splitTypes(joined string) []string {
	if joined == "" {
		return nil
	}
	parts := strings.Split(joined, ",")
	types := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			types = append(types, p)
		}
	}
	return types
}

// pairAncestors zips the two joined strings into root-first pairs. The graph
// source lists the immediate parent first, so the pairs are reversed.
func pairAncestors(titles, links string) []domain.Ancestor {
	if titles == "" || links == "" {
		return nil
	}
	t := strings.Split(titles, AncestorSeparator)
	l := strings.Split(links, AncestorSeparator)
	if len(t) != len(l) {
		return nil
	}
	ancestors := make([]domain.Ancestor, len(t))
	for i := range t {
		ancestors[len(t)-1-i] = domain.Ancestor{Title: t[i], Link: l[i]}
	}
	return ancestors
}
