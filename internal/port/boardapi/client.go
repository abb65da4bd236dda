// Package boardapi defines the port to the GITrello project-management API:
// the board permission gate and work-item (ticket) creation.
package boardapi

import "context"

// Permissions is the boolean capability set for one (user, board) pair.
type Permissions struct {
	CanRead   bool `json:"can_read"`
	CanMutate bool `json:"can_mutate"`
	CanDelete bool `json:"can_delete"`
}

// Client is the port interface to the GITrello API.
//
// GetBoardPermissions fails closed: any non-success outcome surfaces as
// domain.ErrInternal and the caller must treat the operation as failed.
type Client interface {
	GetBoardPermissions(ctx context.Context, userID, boardID int64) (*Permissions, error)
	CreateTicket(ctx context.Context, boardID int64, title, body string) error
}
