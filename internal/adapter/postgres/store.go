package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gitrello/github-integration/internal/domain"
	"github.com/gitrello/github-integration/internal/domain/link"
	"github.com/gitrello/github-integration/internal/port/database"
)

// Store implements database.Store using PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

var _ database.Store = (*Store)(nil)

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// --- Board↔repository links ---

const linkColumns = `id, board_id, repository_owner, repository_name,
	COALESCE(github_profile_id::text, ''), created_at, updated_at`

func scanLink(row scannable) (link.BoardRepositoryLink, error) {
	var l link.BoardRepositoryLink
	err := row.Scan(&l.ID, &l.BoardID, &l.RepositoryOwner, &l.RepositoryName,
		&l.GithubProfileID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return link.BoardRepositoryLink{}, fmt.Errorf("scan link: %w", err)
	}
	return l, nil
}

func (s *Store) CreateLink(ctx context.Context, n link.NewLink) (*link.BoardRepositoryLink, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO board_repository_links (id, board_id, repository_owner, repository_name, github_profile_id)
		 VALUES ($1, $2, $3, $4, NULLIF($5, '')::uuid)
		 RETURNING `+linkColumns,
		uuid.NewString(), n.BoardID, n.RepositoryOwner, n.RepositoryName, n.GithubProfileID)
	l, err := scanLink(row)
	if err != nil {
		return nil, uniqueWrap(err, "create link for board %d", n.BoardID)
	}
	return &l, nil
}

func (s *Store) GetLinkByID(ctx context.Context, id string) (*link.BoardRepositoryLink, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+linkColumns+` FROM board_repository_links WHERE id = $1`, id)
	l, err := scanLink(row)
	if err != nil {
		return nil, notFoundWrap(err, "get link %s", id)
	}
	return &l, nil
}

func (s *Store) GetLinkByBoardID(ctx context.Context, boardID int64) (*link.BoardRepositoryLink, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+linkColumns+` FROM board_repository_links WHERE board_id = $1`, boardID)
	l, err := scanLink(row)
	if err != nil {
		return nil, notFoundWrap(err, "get link for board %d", boardID)
	}
	return &l, nil
}

func (s *Store) GetLinksByRepository(ctx context.Context, owner, name string) ([]link.BoardRepositoryLink, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+linkColumns+` FROM board_repository_links
		 WHERE repository_owner = $1 AND repository_name = $2
		 ORDER BY created_at ASC`, owner, name)
	if err != nil {
		return nil, fmt.Errorf("list links for %s/%s: %w", owner, name, err)
	}
	defer rows.Close()

	var links []link.BoardRepositoryLink
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func (s *Store) UpdateLinkRepository(ctx context.Context, id, owner, name string) (*link.BoardRepositoryLink, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE board_repository_links
		 SET repository_owner = $2, repository_name = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING `+linkColumns, id, owner, name)
	l, err := scanLink(row)
	if err != nil {
		return nil, notFoundWrap(err, "update link %s", id)
	}
	return &l, nil
}

func (s *Store) DeleteLink(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM board_repository_links WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete link %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete link %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// --- Webhook records ---

const webhookColumns = `id, webhook_id, board_repository_link_id, callback_url, created_at, updated_at`

func scanWebhookRecord(row scannable) (link.WebhookRecord, error) {
	var r link.WebhookRecord
	err := row.Scan(&r.ID, &r.WebhookID, &r.BoardRepositoryLinkID,
		&r.CallbackURL, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return link.WebhookRecord{}, fmt.Errorf("scan webhook record: %w", err)
	}
	return r, nil
}

func (s *Store) CreateWebhookRecord(ctx context.Context, n link.NewWebhookRecord) (*link.WebhookRecord, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO github_webhooks (id, webhook_id, board_repository_link_id, callback_url)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+webhookColumns,
		uuid.NewString(), n.WebhookID, n.BoardRepositoryLinkID, n.CallbackURL)
	r, err := scanWebhookRecord(row)
	if err != nil {
		return nil, uniqueWrap(err, "create webhook record for link %s", n.BoardRepositoryLinkID)
	}
	return &r, nil
}

func (s *Store) GetWebhookRecordByLinkID(ctx context.Context, linkID string) (*link.WebhookRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+webhookColumns+` FROM github_webhooks WHERE board_repository_link_id = $1`, linkID)
	r, err := scanWebhookRecord(row)
	if err != nil {
		return nil, notFoundWrap(err, "get webhook record for link %s", linkID)
	}
	return &r, nil
}

func (s *Store) GetWebhookRecordsByRepository(ctx context.Context, owner, name string) ([]link.WebhookRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT w.id, w.webhook_id, w.board_repository_link_id, w.callback_url, w.created_at, w.updated_at
		 FROM github_webhooks w
		 JOIN board_repository_links l ON l.id = w.board_repository_link_id
		 WHERE l.repository_owner = $1 AND l.repository_name = $2
		 ORDER BY w.created_at ASC`, owner, name)
	if err != nil {
		return nil, fmt.Errorf("list webhook records for %s/%s: %w", owner, name, err)
	}
	defer rows.Close()

	var records []link.WebhookRecord
	for rows.Next() {
		r, err := scanWebhookRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) UpdateWebhookRecordID(ctx context.Context, id string, webhookID int64) (*link.WebhookRecord, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE github_webhooks
		 SET webhook_id = $2, updated_at = now()
		 WHERE id = $1
		 RETURNING `+webhookColumns, id, webhookID)
	r, err := scanWebhookRecord(row)
	if err != nil {
		return nil, notFoundWrap(err, "update webhook record %s", id)
	}
	return &r, nil
}
