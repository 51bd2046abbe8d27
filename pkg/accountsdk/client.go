package accountsdk

import (
	"net/http"
	"strings"
	"time"
)

// Client talks to the accounts service. It covers the unauthenticated
// endpoints; the authenticated ones hang off a Session.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewSession wraps an existing bearer token.
func (c *Client) NewSession(s SessionResponse) *Session {
	return &Session{client: c, token: s.Token, expiresAt: s.ExpiresAt}
}
