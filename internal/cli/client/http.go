package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	envAPIURL       = "KHUB_API_URL"
	defaultAPIURL   = "http://localhost:8080"
	sessionIDHeader = "X-Session-ID"
)

type APIClient struct {
	baseURL    string
	sessionID  string
	httpClient *http.Client
	// persist is called when the daemon hands out a new session id.
	persist func(id string) error
}

// NewAPIClientWithCmd resolves the API URL from flag, environment, config
// file, then the default, and resumes the stored explorer session.
func NewAPIClientWithCmd(cmd *cobra.Command) (*APIClient, error) {
	_ = godotenv.Load()

	cfg, err := LoadGlobalConfig()
	if err != nil {
		return nil, err
	}

	var baseURL string
	if cmd != nil {
		if flagURL, err := cmd.Flags().GetString("api-url"); err == nil && flagURL != "" {
			baseURL = flagURL
		}
	}
	if baseURL == "" {
		baseURL = os.Getenv(envAPIURL)
	}
	if baseURL == "" {
		baseURL = cfg.APIURL
	}
	if baseURL == "" {
		baseURL = defaultAPIURL
	}

	c := NewAPIClientWithConfig(baseURL, cfg.SessionID)
	c.persist = func(id string) error {
		cfg.SessionID = id
		return SaveGlobalConfig(cfg)
	}
	return c, nil
}

// NewAPIClientWithConfig creates a client that does not persist its session.
func NewAPIClientWithConfig(baseURL, sessionID string) *APIClient {
	return &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		sessionID:  sessionID,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// SessionID returns the explorer session the client is bound to.
func (c *APIClient) SessionID() string {
	return c.sessionID
}

// APIResponse represents the standard API response format.
type APIResponse struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// APIError represents an error from the API. Data holds the session state
// when the daemon sent one along.
type APIError struct {
	StatusCode int
	Message    string
	Data       json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// Get performs a GET request.
func (c *APIClient) Get(path string) (*APIResponse, error) {
	return c.do(http.MethodGet, path, nil)
}

// Post performs a POST request with JSON body.
func (c *APIClient) Post(path string, body interface{}) (*APIResponse, error) {
	return c.do(http.MethodPost, path, body)
}

func (c *APIClient) do(method, path string, body interface{}) (*APIResponse, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.sessionID != "" {
		req.Header.Set(sessionIDHeader, c.sessionID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if id := resp.Header.Get(sessionIDHeader); id != "" && id != c.sessionID {
		c.sessionID = id
		if c.persist != nil {
			if err := c.persist(id); err != nil {
				fmt.Fprintf(os.Stderr, "warning: could not save session id: %v\n", err)
			}
		}
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
		}
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: apiResp.Error, Data: apiResp.Data}
	}

	return &apiResp, nil
}
