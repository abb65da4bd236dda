// Package database defines the persistence port for links, webhook records
// and GitHub profiles.
package database

import (
	"context"

	"github.com/gitrello/github-integration/internal/domain/link"
	"github.com/gitrello/github-integration/internal/domain/profile"
)

// Store is the port interface for durable storage. All writes are
// single-row and atomic; every "get by X" returns domain.ErrNotFound
// (wrapped with a context string) when no row matches, and CreateLink /
// CreateProfile return domain.ErrAlreadyExists on unique violations.
type Store interface {
	// --- Board↔repository links ---

	CreateLink(ctx context.Context, n link.NewLink) (*link.BoardRepositoryLink, error)
	GetLinkByID(ctx context.Context, id string) (*link.BoardRepositoryLink, error)
	GetLinkByBoardID(ctx context.Context, boardID int64) (*link.BoardRepositoryLink, error)
	GetLinksByRepository(ctx context.Context, owner, name string) ([]link.BoardRepositoryLink, error)
	UpdateLinkRepository(ctx context.Context, id, owner, name string) (*link.BoardRepositoryLink, error)
	// DeleteLink removes the link and, by cascade, its webhook record.
	DeleteLink(ctx context.Context, id string) error

	// --- Webhook records ---

	CreateWebhookRecord(ctx context.Context, n link.NewWebhookRecord) (*link.WebhookRecord, error)
	GetWebhookRecordByLinkID(ctx context.Context, linkID string) (*link.WebhookRecord, error)
	// GetWebhookRecordsByRepository resolves records through their owning
	// links: every record whose link currently points at (owner, name).
	GetWebhookRecordsByRepository(ctx context.Context, owner, name string) ([]link.WebhookRecord, error)
	UpdateWebhookRecordID(ctx context.Context, id string, webhookID int64) (*link.WebhookRecord, error)

	// --- GitHub profiles ---

	CreateProfile(ctx context.Context, n profile.NewProfile) (*profile.Profile, error)
	GetProfileByUserID(ctx context.Context, userID int64) (*profile.Profile, error)
}
