package feed

import "context"

// SSEEvent is one feed record pushed on a live stream.
type SSEEvent struct {
	ID    string `json:"id"`
	Event string `json:"event"`
	Data  Record `json:"data"`
}

// DefaultListLimit caps ListSince when the caller passes no limit.
const DefaultListLimit = 500

// Service serves the update feed to clients.
type Service interface {
	// ListSince returns the uid's records at or after since, oldest first.
	ListSince(ctx context.Context, uid string, since int64, limit int) ([]Record, error)

	// Subscribe streams records committed after the call until ctx ends or
	// the returned cleanup runs.
	Subscribe(ctx context.Context, uid string) (<-chan SSEEvent, func())
}
