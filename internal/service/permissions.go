package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gitrello/github-integration/internal/port/boardapi"
	"github.com/gitrello/github-integration/internal/port/cache"
)

// PermissionService answers "what may this user do on this board" by asking
// the GITrello API, with a short-lived cache in front so a burst of
// mutations against one board does not re-query the gate every time.
//
// The gate fails closed: a cache miss followed by a failed API call fails
// the whole operation.
type PermissionService struct {
	client boardapi.Client
	cache  cache.Cache
	ttl    time.Duration
	logger *slog.Logger
}

// NewPermissionService creates a PermissionService. cache may be nil to
// disable caching.
func NewPermissionService(client boardapi.Client, c cache.Cache, ttl time.Duration, logger *slog.Logger) *PermissionService {
	return &PermissionService{client: client, cache: c, ttl: ttl, logger: logger}
}

// Get returns the permission set for (userID, boardID). Cache failures are
// logged and treated as misses.
func (s *PermissionService) Get(ctx context.Context, userID, boardID int64) (*boardapi.Permissions, error) {
	key := fmt.Sprintf("perm:%d:%d", userID, boardID)

	if s.cache != nil {
		if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			var p boardapi.Permissions
			if err := json.Unmarshal(data, &p); err == nil {
				return &p, nil
			}
			// A corrupt entry is dropped and refetched.
			_ = s.cache.Delete(ctx, key)
		}
	}

	p, err := s.client.GetBoardPermissions(ctx, userID, boardID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(p); err == nil {
			if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
				s.logger.Debug("permission cache set failed", "key", key, "error", err)
			}
		}
	}
	return p, nil
}
