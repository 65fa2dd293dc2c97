package backend

import (
	"context"
	"io"
	"net/http"

	"github.com/cloo-solutions/khub/internal/domain"
)

// Probe checks whether the graph service answers its ping endpoint.
type Probe struct {
	url        string
	httpClient *http.Client
}

func NewProbe(url string, httpClient *http.Client) *Probe {
	return &Probe{url: url, httpClient: httpClient}
}

// Check performs one unauthenticated GET. Any 2xx is reachable; everything
// else, transport errors included, is unreachable.
func (p *Probe) Check(ctx context.Context) domain.Reachability {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return domain.ReachabilityUnreachable
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return domain.ReachabilityUnreachable
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return domain.ReachabilityReachable
	}
	return domain.ReachabilityUnreachable
}
