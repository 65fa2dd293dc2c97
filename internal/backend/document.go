package backend

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cloo-solutions/khub/internal/domain"
	"github.com/cloo-solutions/khub/internal/normalize"
)

// DocumentConfig configures the wiki search transport.
type DocumentConfig struct {
	BaseURL    string
	SearchPath string
	Email      string
	Token      string
	Limit      int
}

// DocumentClient queries the wiki REST search API with CQL.
type DocumentClient struct {
	cfg        DocumentConfig
	auth       string
	httpClient *http.Client
	normalizer *normalize.Normalizer
}

func NewDocumentClient(cfg DocumentConfig, httpClient *http.Client, normalizer *normalize.Normalizer) *DocumentClient {
	return &DocumentClient{
		cfg:        cfg,
		auth:       BasicAuth(cfg.Email, cfg.Token),
		httpClient: httpClient,
		normalizer: normalizer,
	}
}

// BasicAuth builds the Authorization header value for an account email and
// API token.
func BasicAuth(email, token string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(email+":"+token))
}

// CQL returns the full-text CQL expression for query.
func CQL(query string) string {
	escaped := strings.ReplaceAll(query, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `text ~ "` + escaped + `"`
}

func (c *DocumentClient) Source() domain.Source {
	return domain.SourceDocument
}

// SearchURL builds the request URL for query.
func (c *DocumentClient) SearchURL(query string) string {
	params := url.Values{}
	params.Set("cql", CQL(query))
	params.Set("limit", strconv.Itoa(c.cfg.Limit))
	params.Set("expand", "content.ancestors")

	base := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/" + strings.TrimPrefix(c.cfg.SearchPath, "/")
	return base + "?" + params.Encode()
}

func (c *DocumentClient) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.SearchURL(query), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create document request: %w", err)
	}
	req.Header.Set("Authorization", c.auth)
	req.Header.Set("Accept", "application/json")

	body, err := fetch(c.httpClient, req, domain.SourceDocument)
	if err != nil {
		return nil, err
	}

	results, err := c.normalizer.DocumentPayload(body, c.cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to decode document response: %w", err)
	}
	return results, nil
}
