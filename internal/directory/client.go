package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sidrxo/burner-ticketing/internal/domain"
)

// Client resolves user identities against the identity provider. Transfers
// address recipients by email; the provider owns the email-to-user mapping.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type lookupResponse struct {
	UserID string `json:"user_id"`
}

func (c *Client) LookupUserByEmail(ctx context.Context, email string) (string, error) {
	endpoint := c.baseURL + "/v1/users/lookup?email=" + url.QueryEscape(email)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build lookup request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("lookup user: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", domain.ErrRecipientNotFound
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("user lookup returned %d", resp.StatusCode)
	}

	var payload lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode lookup response: %w", err)
	}
	if payload.UserID == "" {
		return "", domain.ErrRecipientNotFound
	}
	return payload.UserID, nil
}
