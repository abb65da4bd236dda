// Package gitrello implements the boardapi port against the GITrello core API.
package gitrello

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gitrello/github-integration/internal/domain"
	"github.com/gitrello/github-integration/internal/port/boardapi"
)

const userAgent = "GITrello GitHub Integration Service"

// Client calls the GITrello core API. The access token is the service
// credential used for work-item creation; permission lookups are
// unauthenticated on the wire and scoped by the queried user id.
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

// NewClient creates a GITrello API client.
func NewClient(baseURL, accessToken string, timeout time.Duration) *Client {
	return &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// GetBoardPermissions returns the capability set for (user, board).
// Fails closed: any failure surfaces as domain.ErrInternal so the caller
// aborts the operation rather than proceeding with unknown permissions.
func (c *Client) GetBoardPermissions(ctx context.Context, userID, boardID int64) (*boardapi.Permissions, error) {
	url := fmt.Sprintf("%s/api/v1/board-permissions?user_id=%d&board_id=%d", c.baseURL, userID, boardID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("board permissions: %w", domain.ErrInternal)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("board permissions: %v: %w", err, domain.ErrInternal)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("board permissions: gitrello API %d: %s: %w",
			resp.StatusCode, strings.TrimSpace(string(body)), domain.ErrInternal)
	}

	var perms boardapi.Permissions
	if err := json.NewDecoder(resp.Body).Decode(&perms); err != nil {
		return nil, fmt.Errorf("board permissions: parse response: %w", domain.ErrInternal)
	}
	return &perms, nil
}

// CreateTicket creates one work item on the board.
func (c *Client) CreateTicket(ctx context.Context, boardID int64, title, body string) error {
	payload, err := json.Marshal(map[string]any{
		"board_id": boardID,
		"title":    title,
		"body":     body,
	})
	if err != nil {
		return fmt.Errorf("create ticket: marshal: %w", err)
	}

	url := c.baseURL + "/api/v1/tickets"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create ticket: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Authorization", "Token "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("create ticket: %v: %w", err, domain.ErrTransport)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("create ticket board %d: gitrello API %d: %s",
			boardID, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
