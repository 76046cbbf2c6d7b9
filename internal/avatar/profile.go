package avatar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// HTTPProfileClient fetches custom avatar URLs from the platform's profile
// API. The endpoint returns {"snoovatarUrl": "..."} with an empty string when
// the user has none.
type HTTPProfileClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPProfileClient(baseURL string) *HTTPProfileClient {
	return &HTTPProfileClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *HTTPProfileClient) SnoovatarURL(ctx context.Context, username string) (string, error) {
	endpoint := c.baseURL + "/users/" + url.PathEscape(username) + "/avatar"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build profile request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch profile for %s: %w", username, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("profile API returned %d for %s", resp.StatusCode, username)
	}

	var body struct {
		SnoovatarURL string `json:"snoovatarUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode profile response: %w", err)
	}
	return body.SnoovatarURL, nil
}
