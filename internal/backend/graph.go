package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/cloo-solutions/khub/internal/domain"
	"github.com/cloo-solutions/khub/internal/normalize"
)

const (
	sparqlQueryType   = "application/sparql-query"
	sparqlResultsType = "application/sparql-results+json"
)

// GraphClient posts SPARQL queries to the triple store.
type GraphClient struct {
	url        string
	template   string
	httpClient *http.Client
	normalizer *normalize.Normalizer
}

// NewGraphClient creates a GraphClient. Every $QUERY in template is
// replaced by the submitted query.
func NewGraphClient(url, template string, httpClient *http.Client, normalizer *normalize.Normalizer) *GraphClient {
	return &GraphClient{
		url:        url,
		template:   template,
		httpClient: httpClient,
		normalizer: normalizer,
	}
}

func (c *GraphClient) Source() domain.Source {
	return domain.SourceGraph
}

// BuildQuery substitutes the user's query into the template. The text is
// inserted verbatim.
func (c *GraphClient) BuildQuery(query string) string {
	return strings.ReplaceAll(c.template, "$QUERY", query)
}

func (c *GraphClient) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(c.BuildQuery(query)))
	if err != nil {
		return nil, fmt.Errorf("failed to create graph request: %w", err)
	}
	req.Header.Set("Content-Type", sparqlQueryType)
	req.Header.Set("Accept", sparqlResultsType)

	body, err := fetch(c.httpClient, req, domain.SourceGraph)
	if err != nil {
		return nil, err
	}

	results, err := c.normalizer.GraphPayload(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode graph response: %w", err)
	}
	return results, nil
}
