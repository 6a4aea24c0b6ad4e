// Package filter talks to the optional remote content-filtering service.
// The service is an external collaborator with its own availability story;
// every failure here maps to common.ErrUpstreamUnavailable so the decision
// engine can fall back to local policy instead of surfacing the error.
package filter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hearthgate/hearthgate/internal/common"
)

// DefaultTimeout bounds each remote call. The engine treats a timeout the
// same as an outage.
const DefaultTimeout = 2 * time.Second

// Verdict is the filter's answer: an allow/deny decision, a human-readable
// reason, and a threat score in [0,1].
type Verdict struct {
	Allowed bool    `json:"allowed"`
	Reason  string  `json:"reason"`
	Score   float64 `json:"score"`
}

// Client is a thin JSON-over-HTTP client for the filter service.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// CheckURL asks the service whether url should be allowed.
func (c *Client) CheckURL(ctx context.Context, url string) (*Verdict, error) {
	return c.post(ctx, "/v1/check-url", map[string]string{"url": url})
}

// CheckText asks the service whether a block of text should be allowed.
func (c *Client) CheckText(ctx context.Context, text string) (*Verdict, error) {
	return c.post(ctx, "/v1/check-text", map[string]string{"text": text})
}

func (c *Client) post(ctx context.Context, path string, payload map[string]string) (*Verdict, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding request: %v", common.ErrUpstreamUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUpstreamUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", common.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var verdict Verdict
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", common.ErrUpstreamUnavailable, err)
	}
	return &verdict, nil
}
