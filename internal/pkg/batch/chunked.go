// Package batch splits large write sets into bounded sub-batches.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// DefaultChunkSize stays under the 500-write ceiling of a single batch.
const DefaultChunkSize = 450

// CommitFunc commits one sub-batch atomically.
type CommitFunc[T any] func(ctx context.Context, chunk []T) error

// ChunkedWriter collects writes and commits them in sequential sub-batches of
// at most Size items. A failed sub-batch does not roll back earlier ones and
// does not stop later ones.
type ChunkedWriter[T any] struct {
	name   string
	size   int
	commit CommitFunc[T]
	items  []T
}

// NewChunkedWriter returns a writer named for logging. size <= 0 uses
// DefaultChunkSize.
func NewChunkedWriter[T any](name string, size int, commit CommitFunc[T]) *ChunkedWriter[T] {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return &ChunkedWriter[T]{name: name, size: size, commit: commit}
}

// Add queues writes.
func (w *ChunkedWriter[T]) Add(items ...T) {
	w.items = append(w.items, items...)
}

// Len returns the number of queued writes.
func (w *ChunkedWriter[T]) Len() int {
	return len(w.items)
}

// ChunkError reports one failed sub-batch.
type ChunkError struct {
	Index int
	Start int
	Count int
	Err   error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("chunk %d (items %d-%d): %v", e.Index, e.Start, e.Start+e.Count-1, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}

// Result summarizes a CommitAll run.
type Result struct {
	Chunks    int
	Committed int
	Failed    int
	Errors    []*ChunkError
}

// Err joins the per-chunk failures, or returns nil when every chunk landed.
func (r Result) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Errors))
	for _, e := range r.Errors {
		errs = append(errs, e)
	}
	return errors.Join(errs...)
}

// CommitAll commits every queued write and clears the queue. Context
// cancellation stops before the next sub-batch; the remaining items are
// reported as one failed chunk.
func (w *ChunkedWriter[T]) CommitAll(ctx context.Context) Result {
	items := w.items
	w.items = nil

	var res Result
	for start, idx := 0, 0; start < len(items); start, idx = start+w.size, idx+1 {
		end := min(start+w.size, len(items))
		chunk := items[start:end]
		res.Chunks++

		if err := ctx.Err(); err != nil {
			res.Failed += len(items) - start
			res.Errors = append(res.Errors, &ChunkError{Index: idx, Start: start, Count: len(items) - start, Err: err})
			slog.Warn("Chunked write cancelled", "writer", w.name, "remaining", len(items)-start)
			return res
		}

		if err := w.commit(ctx, chunk); err != nil {
			res.Failed += len(chunk)
			res.Errors = append(res.Errors, &ChunkError{Index: idx, Start: start, Count: len(chunk), Err: err})
			slog.Error("Chunk commit failed", "writer", w.name, "chunk", idx, "size", len(chunk), "error", err)
			continue
		}
		res.Committed += len(chunk)
		slog.Debug("Chunk committed", "writer", w.name, "chunk", idx, "size", len(chunk))
	}
	return res
}
