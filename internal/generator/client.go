package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/cafecanastra/conteudo/internal/logger"
	"github.com/cafecanastra/conteudo/internal/models"
)

// Endpoint labels used in aggregate errors and logs.
const (
	endpointProduction = "production"
	endpointTest       = "test"
)

// ErrMalformedResponse wraps a 2xx response body that is neither a JSON
// object nor a JSON array of objects.
type ErrMalformedResponse struct {
	Endpoint string
	Cause    error
}

func (e *ErrMalformedResponse) Error() string {
	return fmt.Sprintf("malformed response from %s generator: %v", e.Endpoint, e.Cause)
}

func (e *ErrMalformedResponse) Unwrap() error { return e.Cause }

// Client calls the upstream content generators: a production endpoint and a
// test endpoint, fixed at construction. Both are called with the same body;
// production wins whenever it succeeds.
type Client struct {
	client  *resty.Client
	prodURL string
	testURL string
}

// NewClient builds a generator client. The timeout bounds each upstream call
// so a hung generator fails its cycle instead of stalling it forever.
func NewClient(prodURL, testURL string, timeout time.Duration) *Client {
	return &Client{
		client: resty.New().
			SetTimeout(timeout).
			SetRetryCount(0),
		prodURL: prodURL,
		testURL: testURL,
	}
}

type callResult struct {
	endpoint string
	status   int
	body     []byte
	err      error
}

// Generate posts the trigger to both endpoints concurrently, waits for both
// to settle, and picks the first success in fixed priority order: production,
// then test. When neither succeeds the aggregate error names both statuses.
func (c *Client) Generate(ctx context.Context, req models.ScheduledTrigger) ([]map[string]any, error) {
	results := make(chan callResult, 2)

	for _, target := range []struct {
		endpoint string
		url      string
	}{
		{endpointProduction, c.prodURL},
		{endpointTest, c.testURL},
	} {
		go func(endpoint, url string) {
			resp, err := c.client.R().
				SetContext(ctx).
				SetHeader("Content-Type", "application/json").
				SetBody(req).
				Post(url)
			if err != nil {
				results <- callResult{endpoint: endpoint, err: err}
				return
			}
			results <- callResult{
				endpoint: endpoint,
				status:   resp.StatusCode(),
				body:     resp.Body(),
			}
		}(target.endpoint, target.url)
	}

	// Join both calls, then select by priority. This is deliberately not a
	// first-to-complete race: production is preferred even when test answers
	// sooner.
	settled := make(map[string]callResult, 2)
	for i := 0; i < 2; i++ {
		res := <-results
		settled[res.endpoint] = res
	}

	for _, endpoint := range []string{endpointProduction, endpointTest} {
		res := settled[endpoint]
		if res.err != nil || res.status < 200 || res.status >= 300 {
			continue
		}

		logger.Get().Info().
			Str("endpoint", endpoint).
			Int("status", res.status).
			Msg("generator responded")

		payloads, err := parsePayloads(res.body)
		if err != nil {
			return nil, &ErrMalformedResponse{Endpoint: endpoint, Cause: err}
		}
		return payloads, nil
	}

	return nil, fmt.Errorf("both generators failed: %s %s, %s %s",
		endpointProduction, describe(settled[endpointProduction]),
		endpointTest, describe(settled[endpointTest]))
}

// parsePayloads accepts either a JSON array of post payloads or a single
// payload object, normalizing to a slice.
func parsePayloads(body []byte) ([]map[string]any, error) {
	var many []map[string]any
	if err := json.Unmarshal(body, &many); err == nil {
		return many, nil
	}

	var single map[string]any
	if err := json.Unmarshal(body, &single); err != nil {
		return nil, fmt.Errorf("response is neither an object nor an array of objects: %w", err)
	}
	return []map[string]any{single}, nil
}

func describe(res callResult) string {
	if res.err != nil {
		return fmt.Sprintf("(%v)", res.err)
	}
	return fmt.Sprintf("(status %d)", res.status)
}
