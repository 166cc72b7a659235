// Package forge is a GitHub REST and GraphQL client for repository activity.
package forge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"devpulse-agent/src/provider"
)

const (
	defaultBaseURL = "https://api.github.com"
	perPage        = 100 // GitHub's max per page
	userAgent      = "devpulse-agent"
)

// Client is a GitHub API client. It implements provider.Forge.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	now        func() time.Time
}

var _ provider.Forge = (*Client)(nil)

// NewClient creates a new GitHub client. token may be empty for anonymous
// access.
func NewClient(token string) *Client {
	return NewClientWithBaseURL(token, defaultBaseURL)
}

// NewClientWithBaseURL creates a client for a GitHub Enterprise or test
// endpoint.
func NewClientWithBaseURL(token, baseURL string) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: baseURL,
		now:     time.Now,
	}
}

// authToken picks the per-call token over the default one.
func (c *Client) authToken(token string) string {
	if token != "" {
		return token
	}
	return c.token
}

func (c *Client) newRequest(ctx context.Context, method, url string, body io.Reader, token string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	if t := c.authToken(token); t != "" {
		req.Header.Set("Authorization", "Bearer "+t)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent)
	return req, nil
}

// getJSON fetches url and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, url, token string, out any) error {
	req, err := c.newRequest(ctx, "GET", url, nil, token)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// getRaw fetches url and returns the body as text.
func (c *Client) getRaw(ctx context.Context, url, token string) (string, error) {
	req, err := c.newRequest(ctx, "GET", url, nil, token)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// postJSON sends payload as JSON and decodes the response into out.
func (c *Client) postJSON(ctx context.Context, url, token string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := c.newRequest(ctx, "POST", url, bytes.NewReader(data), token)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// statusError maps GitHub status codes onto the provider error taxonomy.
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	apiErr := fmt.Errorf("GitHub API error %d: %s", resp.StatusCode, string(body))

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %v", provider.ErrAuthFailed, apiErr)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %v", provider.ErrNotFound, apiErr)
	case http.StatusForbidden, http.StatusTooManyRequests:
		return fmt.Errorf("%w: %v", provider.ErrRateLimited, apiErr)
	}
	return apiErr
}
