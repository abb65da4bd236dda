// Package github implements the gitprovider port against the GitHub REST API.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gitrello/github-integration/internal/domain"
	"github.com/gitrello/github-integration/internal/port/gitprovider"
)

const userAgent = "GITrello GitHub Integration Service"

// Factory builds per-token GitHub clients sharing one HTTP client.
type Factory struct {
	baseURL    string
	httpClient *http.Client
}

// NewFactory creates a Factory for the given API base URL. The timeout
// bounds every provider call issued by clients built from this factory.
func NewFactory(baseURL string, timeout time.Duration) *Factory {
	return &Factory{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Client returns a gitprovider.Client acting with the given access token.
func (f *Factory) Client(accessToken string) gitprovider.Client {
	return &Client{
		baseURL:    f.baseURL,
		token:      accessToken,
		httpClient: f.httpClient,
	}
}

// Client issues GitHub API calls on behalf of one credential.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// createWebhookRequest mirrors the GitHub webhook-creation payload.
type createWebhookRequest struct {
	Config createWebhookConfig `json:"config"`
	Events []string            `json:"events"`
}

type createWebhookConfig struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
}

// CreateWebhook registers an "issues" webhook on the repository and returns
// the provider-assigned webhook id.
func (c *Client) CreateWebhook(ctx context.Context, owner, name, callbackURL string) (int64, error) {
	payload := createWebhookRequest{
		Config: createWebhookConfig{URL: callbackURL, ContentType: "json"},
		Events: []string{"issues"},
	}

	url := fmt.Sprintf("%s/repos/%s/%s/hooks", c.baseURL, owner, name)
	body, err := c.doRequest(ctx, http.MethodPost, url, payload, http.StatusCreated)
	if err != nil {
		return 0, fmt.Errorf("github create webhook %s/%s: %w", owner, name, err)
	}

	var webhook struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(body, &webhook); err != nil {
		return 0, fmt.Errorf("github create webhook %s/%s: parse response: %w", owner, name, err)
	}
	return webhook.ID, nil
}

// DeleteWebhook removes the webhook. An already-gone webhook (404) counts
// as success; deletion is idempotent for the caller.
func (c *Client) DeleteWebhook(ctx context.Context, owner, name string, webhookID int64) error {
	url := fmt.Sprintf("%s/repos/%s/%s/hooks/%d", c.baseURL, owner, name, webhookID)
	_, err := c.doRequest(ctx, http.MethodDelete, url, nil, http.StatusNoContent, http.StatusNotFound)
	if err != nil {
		return fmt.Errorf("github delete webhook %s/%s/%d: %w", owner, name, webhookID, err)
	}
	return nil
}

// GetUser describes the account the access token belongs to.
func (c *Client) GetUser(ctx context.Context) (*gitprovider.User, error) {
	body, err := c.doRequest(ctx, http.MethodGet, c.baseURL+"/user", nil, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("github get user: %w", err)
	}

	var user gitprovider.User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("github get user: parse response: %w", err)
	}
	return &user, nil
}

// ListRepositories returns the repositories accessible to the token's user.
func (c *Client) ListRepositories(ctx context.Context) ([]gitprovider.Repository, error) {
	body, err := c.doRequest(ctx, http.MethodGet, c.baseURL+"/user/repos", nil, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("github list repositories: %w", err)
	}

	var raw []struct {
		Name  string `json:"name"`
		Owner struct {
			Login string `json:"login"`
		} `json:"owner"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("github list repositories: parse response: %w", err)
	}

	repos := make([]gitprovider.Repository, 0, len(raw))
	for _, r := range raw {
		repos = append(repos, gitprovider.Repository{Owner: r.Owner.Login, Name: r.Name})
	}
	return repos, nil
}

// doRequest issues one API call and maps the outcome into the domain error
// taxonomy: transport failures wrap domain.ErrTransport, non-success
// responses become *domain.ProviderError carrying the provider's message
// (or the raw body when the error payload is unstructured).
func (c *Client) doRequest(ctx context.Context, method, reqURL string, payload any, okStatuses ...int) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrTransport)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", domain.ErrTransport)
	}

	for _, status := range okStatuses {
		if resp.StatusCode == status {
			return respBody, nil
		}
	}

	var apiErr struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Message != "" {
		return nil, &domain.ProviderError{Message: apiErr.Message}
	}
	return nil, &domain.ProviderError{Message: string(respBody)}
}
