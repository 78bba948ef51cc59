package feed

import "context"

// FeedRepository stores update-feed records. Append is idempotent on
// (uid, event id, record id) so a redelivered event emits nothing new.
type FeedRepository interface {
	Append(ctx context.Context, rec Record) error

	// ListSince returns the uid's records with Timestamp >= since, oldest
	// first, capped at limit.
	ListSince(ctx context.Context, uid string, since int64, limit int) ([]Record, error)
}

// Publisher pushes committed records to live subscribers.
type Publisher interface {
	Publish(rec Record)
}
