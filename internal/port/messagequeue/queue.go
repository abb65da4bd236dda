// Package messagequeue defines the port for publishing events to downstream
// consumers.
package messagequeue

import "context"

// Publisher sends a message to the given subject. Publishing is best-effort
// from the caller's point of view; delivery guarantees are the adapter's
// concern.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}
