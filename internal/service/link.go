package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gitrello/github-integration/internal/domain"
	"github.com/gitrello/github-integration/internal/domain/link"
	"github.com/gitrello/github-integration/internal/domain/profile"
	"github.com/gitrello/github-integration/internal/port/database"
	"github.com/gitrello/github-integration/internal/port/gitprovider"
)

// LinkService carries the user-facing link operations: each one checks the
// board permission gate, resolves the caller's GitHub credential, and hands
// the webhook work to the reconciler.
type LinkService struct {
	store      database.Store
	provider   gitprovider.Factory
	reconciler *WebhookReconciler
	perms      *PermissionService
	logger     *slog.Logger
}

// NewLinkService creates a LinkService.
func NewLinkService(store database.Store, provider gitprovider.Factory, reconciler *WebhookReconciler, perms *PermissionService, logger *slog.Logger) *LinkService {
	return &LinkService{
		store:      store,
		provider:   provider,
		reconciler: reconciler,
		perms:      perms,
		logger:     logger,
	}
}

// CreateOrUpdate links a board to a repository. A board without a link gets
// a new one (created=true); a board already linked is repointed
// (created=false). Requires can_mutate on the board.
func (s *LinkService) CreateOrUpdate(ctx context.Context, userID int64, req link.CreateRequest) (*link.BoardRepositoryLink, bool, error) {
	p, err := s.perms.Get(ctx, userID, req.BoardID)
	if err != nil {
		return nil, false, err
	}
	if !p.CanMutate {
		return nil, false, fmt.Errorf("mutate board %d: %w", req.BoardID, domain.ErrPermissionDenied)
	}

	prof, err := s.profileFor(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	client := s.provider.Client(prof.AccessToken)

	existing, err := s.store.GetLinkByBoardID(ctx, req.BoardID)
	switch {
	case err == nil:
		updated, err := s.reconciler.Repoint(ctx, client, existing, req.RepositoryOwner, req.RepositoryName)
		return updated, false, err
	case errors.Is(err, domain.ErrNotFound):
		created, err := s.reconciler.Create(ctx, client, link.NewLink{
			BoardID:         req.BoardID,
			RepositoryOwner: req.RepositoryOwner,
			RepositoryName:  req.RepositoryName,
			GithubProfileID: prof.ID,
		})
		return created, true, err
	default:
		return nil, false, err
	}
}

// Get returns the link for a board. Requires can_read on the board.
func (s *LinkService) Get(ctx context.Context, userID, boardID int64) (*link.BoardRepositoryLink, error) {
	p, err := s.perms.Get(ctx, userID, boardID)
	if err != nil {
		return nil, err
	}
	if !p.CanRead {
		return nil, fmt.Errorf("read board %d: %w", boardID, domain.ErrPermissionDenied)
	}
	return s.store.GetLinkByBoardID(ctx, boardID)
}

// Delete removes a link by id. Requires can_delete on the linked board.
func (s *LinkService) Delete(ctx context.Context, userID int64, linkID string) error {
	l, err := s.store.GetLinkByID(ctx, linkID)
	if err != nil {
		return err
	}

	p, err := s.perms.Get(ctx, userID, l.BoardID)
	if err != nil {
		return err
	}
	if !p.CanDelete {
		return fmt.Errorf("delete link on board %d: %w", l.BoardID, domain.ErrPermissionDenied)
	}

	prof, err := s.profileFor(ctx, userID)
	if err != nil {
		return err
	}
	return s.reconciler.Delete(ctx, s.provider.Client(prof.AccessToken), l)
}

func (s *LinkService) profileFor(ctx context.Context, userID int64) (*profile.Profile, error) {
	prof, err := s.store.GetProfileByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("github profile for user %d: %w", userID, domain.ErrNotFound)
		}
		return nil, err
	}
	return prof, nil
}
