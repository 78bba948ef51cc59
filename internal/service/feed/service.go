package feed

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/feed"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/pkg/sse"
)

// FeedServiceImpl reads the stored feed and relays committed records to live
// subscribers through the SSE hub.
type FeedServiceImpl struct {
	repo feed.FeedRepository
	hub  *sse.Hub
}

func NewFeedService(repo feed.FeedRepository, hub *sse.Hub) *FeedServiceImpl {
	return &FeedServiceImpl{repo: repo, hub: hub}
}

// Publish implements feed.Publisher.
func (s *FeedServiceImpl) Publish(rec feed.Record) {
	s.hub.Publish(rec.UID, sse.Event{
		UserID: rec.UID,
		ID:     rec.ID,
		Event:  rec.Type,
		Data:   rec,
	})
}

// ListSince implements feed.Service.
func (s *FeedServiceImpl) ListSince(ctx context.Context, uid string, since int64, limit int) ([]feed.Record, error) {
	if limit <= 0 || limit > feed.DefaultListLimit {
		limit = feed.DefaultListLimit
	}
	records, err := s.repo.ListSince(ctx, uid, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list feed records: %w", err)
	}
	if records == nil {
		records = []feed.Record{}
	}
	return records, nil
}

// Subscribe implements feed.Service.
func (s *FeedServiceImpl) Subscribe(ctx context.Context, uid string) (<-chan feed.SSEEvent, func()) {
	ch, cleanup := s.hub.Subscribe(uid)

	out := make(chan feed.SSEEvent, 10)

	go func() {
		defer close(out)
		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				rec, ok := event.Data.(feed.Record)
				if !ok {
					continue
				}
				select {
				case out <- feed.SSEEvent{ID: event.ID, Event: event.Event, Data: rec}:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cleanup
}

var (
	_ feed.Service   = (*FeedServiceImpl)(nil)
	_ feed.Publisher = (*FeedServiceImpl)(nil)
)
