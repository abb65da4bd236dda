package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/gitrello/github-integration/internal/adapter/otel"
	"github.com/gitrello/github-integration/internal/domain"
	"github.com/gitrello/github-integration/internal/domain/link"
	"github.com/gitrello/github-integration/internal/port/database"
	"github.com/gitrello/github-integration/internal/port/gitprovider"
)

// WebhookReconciler keeps the provider-side webhook state consistent with
// the stored links: a repository carries exactly one webhook while at least
// one link points at it, and records of links sharing a repository share the
// provider webhook id.
//
// All operations on the same repository key (owner/name) are serialized with
// an in-process keyed mutex, so two concurrent mutations cannot race on the
// "is this the last reference" check.
type WebhookReconciler struct {
	store       database.Store
	callbackURL string
	locks       *keyMutex
	metrics     *otel.Metrics
	logger      *slog.Logger
}

// NewWebhookReconciler creates a reconciler. metrics may be nil.
func NewWebhookReconciler(store database.Store, callbackURL string, metrics *otel.Metrics, logger *slog.Logger) *WebhookReconciler {
	return &WebhookReconciler{
		store:       store,
		callbackURL: callbackURL,
		locks:       newKeyMutex(),
		metrics:     metrics,
		logger:      logger,
	}
}

func repoKey(owner, name string) string {
	return owner + "/" + name
}

// Create establishes a new link for boardID pointing at (owner, name) and
// ensures a provider webhook exists for the repository. When other links
// already point at the same repository their webhook id is reused without a
// provider call. The provider call, when needed, happens before any store
// write, so a rejected webhook creation leaves no partial state behind.
func (r *WebhookReconciler) Create(ctx context.Context, client gitprovider.Client, n link.NewLink) (*link.BoardRepositoryLink, error) {
	ctx, span := otel.StartReconcileSpan(ctx, "create", n.RepositoryOwner, n.RepositoryName)
	defer span.End()

	unlock := r.locks.Lock(repoKey(n.RepositoryOwner, n.RepositoryName))
	defer unlock()

	webhookID, reused, err := r.ensureWebhook(ctx, client, n.RepositoryOwner, n.RepositoryName, "")
	if err != nil {
		return nil, err
	}

	l, err := r.store.CreateLink(ctx, n)
	if err != nil {
		return nil, err
	}

	if _, err := r.store.CreateWebhookRecord(ctx, link.NewWebhookRecord{
		WebhookID:             webhookID,
		BoardRepositoryLinkID: l.ID,
		CallbackURL:           r.callbackURL,
	}); err != nil {
		return nil, fmt.Errorf("record webhook for link %s: %w", l.ID, err)
	}

	r.logger.Info("link created",
		"link_id", l.ID, "board_id", l.BoardID,
		"repository", repoKey(l.RepositoryOwner, l.RepositoryName),
		"webhook_id", webhookID, "webhook_reused", reused)
	return l, nil
}

// Repoint moves an existing link to (newOwner, newName). When the link was
// the sole user of the old repository's webhook, the old webhook is deleted
// at the provider; that deletion and the creation of the new webhook run
// concurrently, and only the creation's outcome gates success.
func (r *WebhookReconciler) Repoint(ctx context.Context, client gitprovider.Client, l *link.BoardRepositoryLink, newOwner, newName string) (*link.BoardRepositoryLink, error) {
	ctx, span := otel.StartReconcileSpan(ctx, "repoint", newOwner, newName)
	defer span.End()

	if l.SameRepository(newOwner, newName) {
		return l, nil
	}

	oldOwner, oldName := l.RepositoryOwner, l.RepositoryName
	unlock := r.locks.LockPair(repoKey(oldOwner, oldName), repoKey(newOwner, newName))
	defer unlock()

	record, err := r.store.GetWebhookRecordByLinkID(ctx, l.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	oldRefs, err := r.store.GetWebhookRecordsByRepository(ctx, oldOwner, oldName)
	if err != nil {
		return nil, err
	}

	var webhookID int64
	var reused bool
	g, gctx := errgroup.WithContext(ctx)

	// The old webhook is only removed when this link is its last reference.
	// Failure here orphans a remote webhook instead of failing the repoint.
	if record != nil && len(oldRefs) == 1 {
		oldWebhookID := record.WebhookID
		g.Go(func() error {
			if err := client.DeleteWebhook(gctx, oldOwner, oldName, oldWebhookID); err != nil {
				r.logger.Warn("webhook delete failed during repoint",
					"link_id", l.ID, "repository", repoKey(oldOwner, oldName),
					"webhook_id", oldWebhookID, "error", err)
				if r.metrics != nil {
					r.metrics.WebhookDeleteFailed.Add(gctx, 1)
				}
				return nil
			}
			if r.metrics != nil {
				r.metrics.WebhooksDeleted.Add(gctx, 1)
			}
			return nil
		})
	}

	g.Go(func() error {
		var err error
		webhookID, reused, err = r.ensureWebhook(gctx, client, newOwner, newName, l.ID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	updated, err := r.store.UpdateLinkRepository(ctx, l.ID, newOwner, newName)
	if err != nil {
		return nil, err
	}

	if record == nil {
		_, err = r.store.CreateWebhookRecord(ctx, link.NewWebhookRecord{
			WebhookID:             webhookID,
			BoardRepositoryLinkID: l.ID,
			CallbackURL:           r.callbackURL,
		})
	} else {
		_, err = r.store.UpdateWebhookRecordID(ctx, record.ID, webhookID)
	}
	if err != nil {
		return nil, fmt.Errorf("record webhook for link %s: %w", l.ID, err)
	}

	r.logger.Info("link repointed",
		"link_id", l.ID, "board_id", l.BoardID,
		"from", repoKey(oldOwner, oldName), "to", repoKey(newOwner, newName),
		"webhook_id", webhookID, "webhook_reused", reused)
	return updated, nil
}

// Delete removes a link. When the link is the last reference to its
// repository's webhook, the provider webhook is deleted first, best-effort;
// the link removal proceeds either way and cascades the webhook record.
func (r *WebhookReconciler) Delete(ctx context.Context, client gitprovider.Client, l *link.BoardRepositoryLink) error {
	ctx, span := otel.StartReconcileSpan(ctx, "delete", l.RepositoryOwner, l.RepositoryName)
	defer span.End()

	unlock := r.locks.Lock(repoKey(l.RepositoryOwner, l.RepositoryName))
	defer unlock()

	refs, err := r.store.GetWebhookRecordsByRepository(ctx, l.RepositoryOwner, l.RepositoryName)
	if err != nil {
		return err
	}

	if len(refs) == 1 {
		if err := client.DeleteWebhook(ctx, l.RepositoryOwner, l.RepositoryName, refs[0].WebhookID); err != nil {
			r.logger.Warn("webhook delete failed during link removal",
				"link_id", l.ID, "repository", repoKey(l.RepositoryOwner, l.RepositoryName),
				"webhook_id", refs[0].WebhookID, "error", err)
			if r.metrics != nil {
				r.metrics.WebhookDeleteFailed.Add(ctx, 1)
			}
		} else if r.metrics != nil {
			r.metrics.WebhooksDeleted.Add(ctx, 1)
		}
	}

	return r.store.DeleteLink(ctx, l.ID)
}

// ensureWebhook resolves the webhook id for (owner, name): reuse the id
// shared by other links pointing at the repository, or create a webhook at
// the provider when the repository carries none. excludeLinkID screens out
// the caller's own record during a repoint.
func (r *WebhookReconciler) ensureWebhook(ctx context.Context, client gitprovider.Client, owner, name, excludeLinkID string) (int64, bool, error) {
	records, err := r.store.GetWebhookRecordsByRepository(ctx, owner, name)
	if err != nil {
		return 0, false, err
	}
	for _, rec := range records {
		if rec.BoardRepositoryLinkID != excludeLinkID {
			if r.metrics != nil {
				r.metrics.WebhooksReused.Add(ctx, 1)
			}
			return rec.WebhookID, true, nil
		}
	}

	webhookID, err := client.CreateWebhook(ctx, owner, name, r.callbackURL)
	if err != nil {
		return 0, false, fmt.Errorf("create webhook for %s: %w", repoKey(owner, name), err)
	}
	if r.metrics != nil {
		r.metrics.WebhooksCreated.Add(ctx, 1)
	}
	return webhookID, false, nil
}
