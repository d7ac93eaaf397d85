package clerk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrMissingSecretKey is returned when a backend API call is attempted
// without a configured secret key.
var ErrMissingSecretKey = errors.New("clerk: missing secret key")

// Client is a minimal client for the identity provider's backend API.
// It only covers what this service needs: fetching a single user's
// canonical profile by subject id.
type Client struct {
	apiURL    string
	secretKey string
	http      *http.Client
}

// NewClient builds a Client. apiURL defaults to the provider's public
// backend API when empty.
func NewClient(apiURL, secretKey string) *Client {
	if apiURL == "" {
		apiURL = "https://api.clerk.com/v1"
	}
	return &Client{
		apiURL:    apiURL,
		secretKey: secretKey,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
}

// GetUser fetches the raw profile object for a subject id. The result
// is returned undecoded so MapProviderUser stays the single
// normalization point for provider payloads.
func (c *Client) GetUser(ctx context.Context, userID string) (map[string]any, error) {
	if c.secretKey == "" {
		return nil, ErrMissingSecretKey
	}

	endpoint := c.apiURL + "/users/" + url.PathEscape(userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("clerk: get user %s: status %d: %s", userID, resp.StatusCode, body)
	}

	var raw map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}
