// Package profile defines the GitHub profile entity: the stored association
// between a GITrello user and their GitHub identity plus access token.
package profile

import (
	"errors"
	"time"
)

// Profile links a GITrello user to a GitHub account. The access token is
// used for every webhook call made on the user's behalf and is never
// serialized into API responses.
type Profile struct {
	ID           string    `json:"id"`
	UserID       int64     `json:"user_id"`
	GithubUserID int64     `json:"github_user_id"`
	GithubLogin  string    `json:"github_login"`
	AccessToken  string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewProfile holds the fields needed to persist a new profile row.
type NewProfile struct {
	UserID       int64
	GithubUserID int64
	GithubLogin  string
	AccessToken  string
}

// CreateRequest is the API payload for registering a GitHub profile.
type CreateRequest struct {
	AccessToken string `json:"access_token"`
}

// Validate checks the request for required fields.
func (r *CreateRequest) Validate() error {
	if r.AccessToken == "" {
		return errors.New("access_token is required")
	}
	return nil
}
