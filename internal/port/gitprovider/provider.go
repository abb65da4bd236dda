// Package gitprovider defines the source-control provider port (GitHub).
package gitprovider

import "context"

// User describes the provider account a token belongs to.
type User struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

// Repository identifies a repository by owner and name.
type Repository struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

// Client is the port interface for provider calls made with one credential.
//
// CreateWebhook returns the provider-assigned webhook id. DeleteWebhook is
// idempotent from the caller's point of view: deleting an already-gone
// webhook succeeds. Both translate failures into the domain taxonomy:
// domain.ErrTransport for failures before a response, *domain.ProviderError
// for non-success responses.
type Client interface {
	CreateWebhook(ctx context.Context, owner, name, callbackURL string) (int64, error)
	DeleteWebhook(ctx context.Context, owner, name string, webhookID int64) error
	GetUser(ctx context.Context) (*User, error)
	ListRepositories(ctx context.Context) ([]Repository, error)
}

// Factory builds a Client bound to a single access token. Every operation
// acts on behalf of one user, so clients are constructed per request.
type Factory interface {
	Client(accessToken string) Client
}
