// Package stats is an HTTP client for the hit-counter service. Hits are
// posted on every public event read and aggregated counts are fetched
// when rendering event views.
package stats

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"explorewithme/internal/domain"
)

// timeLayout is the wire format the stats service expects for window
// bounds and hit timestamps.
const timeLayout = "2006-01-02 15:04:05"

type statsHTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient returns a StatsClient for the service at baseURL.
func NewHTTPClient(baseURL string, client *http.Client) domain.StatsClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &statsHTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

type hitPayload struct {
	App       string `json:"app"`
	URI       string `json:"uri"`
	IP        string `json:"ip"`
	Timestamp string `json:"timestamp"`
}

func (c *statsHTTPClient) RecordHit(ctx context.Context, hit domain.EndpointHit) error {
	payload := hitPayload{
		App:       hit.App,
		URI:       hit.URI,
		IP:        hit.IP,
		Timestamp: hit.Timestamp.UTC().Format(timeLayout),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal hit: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/hit", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create hit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("post hit: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stats service returned status: %d", resp.StatusCode)
	}
	return nil
}

func (c *statsHTTPClient) GetStats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]domain.ViewStats, error) {
	params := url.Values{}
	params.Set("start", start.UTC().Format(timeLayout))
	params.Set("end", end.UTC().Format(timeLayout))
	for _, uri := range uris {
		params.Add("uris", uri)
	}
	params.Set("unique", strconv.FormatBool(unique))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stats?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create stats request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch stats: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stats service returned status: %d", resp.StatusCode)
	}

	var data []domain.ViewStats
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode stats response: %w", err)
	}
	return data, nil
}
