package youbike

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultFetchTimeout = 30 * time.Second

// Client fetches raw station records from the YouBike realtime feed.
// It does no transformation; normalizing records is the pipeline's job.
type Client struct {
	httpClient *http.Client
	url        string
	userAgent  string
}

func NewClient(httpClient *http.Client, url, userAgent string) *Client {
	return &Client{
		httpClient: httpClient,
		url:        url,
		userAgent:  userAgent,
	}
}

// FetchData retrieves the full station set from the feed. A non-200
// response or transport error is returned to the caller unretried.
func (c *Client) FetchData(ctx context.Context) ([]Station, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, defaultFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch youbike feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var stations []Station
	if err := json.Unmarshal(body, &stations); err != nil {
		return nil, fmt.Errorf("failed to unmarshal feed response: %w", err)
	}

	return stations, nil
}
