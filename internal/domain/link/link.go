// Package link defines the board↔repository link and webhook bookkeeping entities.
package link

import (
	"errors"
	"time"
)

// BoardRepositoryLink associates a GITrello board with a GitHub repository.
// At most one live link exists per board; the store enforces this with a
// unique constraint on BoardID.
type BoardRepositoryLink struct {
	ID              string    `json:"id"`
	BoardID         int64     `json:"board_id"`
	RepositoryOwner string    `json:"repository_owner"`
	RepositoryName  string    `json:"repository_name"`
	GithubProfileID string    `json:"github_profile_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// SameRepository reports whether the link already points at (owner, name).
// Comparison is verbatim string equality: owner and name are passed through
// exactly as GitHub reports them, never normalized here.
func (l *BoardRepositoryLink) SameRepository(owner, name string) bool {
	return l.RepositoryOwner == owner && l.RepositoryName == name
}

// NewLink holds the fields needed to persist a new link row.
type NewLink struct {
	BoardID         int64
	RepositoryOwner string
	RepositoryName  string
	GithubProfileID string
}

// WebhookRecord is the local bookkeeping of a GitHub webhook, scoped to one
// link. Several records may carry the same WebhookID when their owning links
// point at the same physical repository; the provider-side webhook is shared,
// the record is not.
type WebhookRecord struct {
	ID                    string    `json:"id"`
	WebhookID             int64     `json:"webhook_id"`
	BoardRepositoryLinkID string    `json:"board_repository_link_id"`
	CallbackURL           string    `json:"callback_url"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// NewWebhookRecord holds the fields needed to persist a new webhook record.
type NewWebhookRecord struct {
	WebhookID             int64
	BoardRepositoryLinkID string
	CallbackURL           string
}

// CreateRequest is the API payload for creating or re-pointing a link.
type CreateRequest struct {
	BoardID         int64  `json:"board_id"`
	RepositoryOwner string `json:"repository_owner"`
	RepositoryName  string `json:"repository_name"`
}

// Validate checks the request for required fields.
func (r *CreateRequest) Validate() error {
	if r.BoardID == 0 {
		return errors.New("board_id is required")
	}
	if r.RepositoryOwner == "" {
		return errors.New("repository_owner is required")
	}
	if r.RepositoryName == "" {
		return errors.New("repository_name is required")
	}
	return nil
}
