package health

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Probe performs the container health check: one HTTP GET against the
// application's health route.
type Probe struct {
	URL     string
	Timeout time.Duration

	// Client is injectable for tests; nil means a fresh client per check.
	Client *http.Client
}

// NewProbe creates a probe for the given URL.
func NewProbe(url string, timeout time.Duration) *Probe {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Probe{URL: url, Timeout: timeout}
}

// Check returns nil when the endpoint answers with a non-error status.
// A network error or a 4xx/5xx response means the server is not (yet)
// serving traffic.
func (p *Probe) Check(ctx context.Context) error {
	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: p.Timeout}
	}

	reqCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, p.URL, nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("health request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("health endpoint returned %d", resp.StatusCode)
	}
	return nil
}
