package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gitrello/github-integration/internal/domain"
	"github.com/gitrello/github-integration/internal/domain/profile"
	"github.com/gitrello/github-integration/internal/port/database"
	"github.com/gitrello/github-integration/internal/port/gitprovider"
)

// ProfileService manages the stored GitHub identity of a GITrello user.
type ProfileService struct {
	store    database.Store
	provider gitprovider.Factory
	logger   *slog.Logger
}

// NewProfileService creates a ProfileService.
func NewProfileService(store database.Store, provider gitprovider.Factory, logger *slog.Logger) *ProfileService {
	return &ProfileService{store: store, provider: provider, logger: logger}
}

// Create registers a GitHub access token for the user. The token is
// validated by fetching the account it belongs to; a token GitHub rejects
// never reaches the store.
func (s *ProfileService) Create(ctx context.Context, userID int64, accessToken string) (*profile.Profile, error) {
	user, err := s.provider.Client(accessToken).GetUser(ctx)
	if err != nil {
		s.logger.Warn("github token validation failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("validate access token: %w", domain.ErrInternal)
	}

	prof, err := s.store.CreateProfile(ctx, profile.NewProfile{
		UserID:       userID,
		GithubUserID: user.ID,
		GithubLogin:  user.Login,
		AccessToken:  accessToken,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("github profile created", "user_id", userID, "github_login", user.Login)
	return prof, nil
}

// Get returns the user's GitHub profile.
func (s *ProfileService) Get(ctx context.Context, userID int64) (*profile.Profile, error) {
	return s.store.GetProfileByUserID(ctx, userID)
}

// ListRepositories lists the repositories the user's token can reach.
func (s *ProfileService) ListRepositories(ctx context.Context, userID int64) ([]gitprovider.Repository, error) {
	prof, err := s.store.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.provider.Client(prof.AccessToken).ListRepositories(ctx)
}
