// Package client is the typed client service for the tank API. Each call
// is a thin RPC wrapper: any non-success status collapses into a single
// generic transport error carrying the HTTP status.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"bodega/internal/tank"
)

const tanksPath = "/api/tanks"

// Client wraps the tank API at a base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

// New creates a client for the API at baseURL (e.g. "http://localhost:8080").
func New(baseURL string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}
}

// ListTanks fetches the full record set.
func (c *Client) ListTanks(ctx context.Context) ([]tank.Tank, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+tanksPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var tanks []tank.Tank
	if err := json.NewDecoder(resp.Body).Decode(&tanks); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return tanks, nil
}

// CreateTank submits a full record. Duplicate-id detection is the store's
// job; a collision comes back as a server error like any other failure.
func (c *Client) CreateTank(ctx context.Context, t tank.Tank) error {
	return c.send(ctx, http.MethodPost, c.baseURL+tanksPath, t, http.StatusCreated)
}

// UpdateTank submits a full record keyed by its id.
func (c *Client) UpdateTank(ctx context.Context, t tank.Tank) error {
	return c.send(ctx, http.MethodPut, c.baseURL+tanksPath, t, http.StatusOK)
}

// DeleteTank removes the record with the given id.
func (c *Client) DeleteTank(ctx context.Context, id string) error {
	u := c.baseURL + tanksPath + "?id=" + url.QueryEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, url string, t tank.Tank, wantStatus int) error {
	body, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal tank: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != wantStatus {
		return statusError(resp)
	}
	return nil
}

func statusError(resp *http.Response) error {
	return fmt.Errorf("unexpected status %d", resp.StatusCode)
}
