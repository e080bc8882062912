package rostercheck

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the activities API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Health checks that the service answers on /healthz.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/healthz")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}

// Activities fetches the activity listing.
func (c *Client) Activities(ctx context.Context) (map[string]Activity, error) {
	resp, err := c.do(ctx, http.MethodGet, "/activities")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing returned status %d", resp.StatusCode)
	}
	var out map[string]Activity
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode listing: %w", err)
	}
	return out, nil
}

// Signup signs email up for activity and classifies the outcome.
func (c *Client) Signup(ctx context.Context, activity, email string) (string, error) {
	return c.mutate(ctx, activity, "signup", email)
}

// Unregister removes email from activity and classifies the outcome.
func (c *Client) Unregister(ctx context.Context, activity, email string) (string, error) {
	return c.mutate(ctx, activity, "unregister", email)
}

func (c *Client) mutate(ctx context.Context, activity, action, email string) (string, error) {
	path := "/activities/" + url.PathEscape(activity) + "/" + action + "?" + url.Values{"email": {email}}.Encode()
	resp, err := c.do(ctx, http.MethodPost, path)
	if err != nil {
		return outcomeFailed, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		var msg messageResponse
		if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
			return outcomeFailed, fmt.Errorf("failed to decode %s response: %w", action, err)
		}
		return outcomeOK, nil
	}

	var problem errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&problem); err != nil {
		return outcomeFailed, fmt.Errorf("%s returned status %d", action, resp.StatusCode)
	}
	switch problem.Code {
	case codeAlreadySignedUp, codeNotRegistered:
		return outcomeDuplicate, nil
	case codeActivityFull:
		return outcomeFull, nil
	default:
		return outcomeFailed, fmt.Errorf("%s returned status %d: %s", action, resp.StatusCode, problem.Detail)
	}
}

func (c *Client) do(ctx context.Context, method, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach service: %w", err)
	}
	return resp, nil
}
