// Package docstore is the shared persistence substrate: named, versioned
// documents with optimistic concurrency. Every record carries a monotonic
// version; subscribers and writers deduplicate and serialize on it.
package docstore

import (
	"context"
	"encoding/json"
	"errors"

	"wanderlink/backend/internal/logger"
)

var (
	// ErrNotFound is returned by Read for an absent record.
	ErrNotFound = errors.New("docstore: record not found")
	// ErrVersionMismatch is returned by CompareAndSwap when the record
	// changed since the expected version was read.
	ErrVersionMismatch = errors.New("docstore: version mismatch")
	// ErrTooManyConflicts is returned by Update after exhausting retries.
	ErrTooManyConflicts = errors.New("docstore: too many write conflicts")
	// ErrWatchUnsupported is returned by Watch on poll-only backends.
	ErrWatchUnsupported = errors.New("docstore: backend has no push feed")
)

// Document is one named record.
type Document struct {
	Value   []byte
	Version uint64
}

// Event signals that a record changed. Carries the new value so receivers
// do not need to re-read.
type Event struct {
	Name    string `json:"name"`
	Value   []byte `json:"value"`
	Version uint64 `json:"version"`
}

// Store is the document store contract. Absent records read as ErrNotFound;
// versions start at 1 and bump on every successful write.
type Store interface {
	Read(ctx context.Context, name string) (*Document, error)
	// Write stores value unconditionally and returns the new version.
	Write(ctx context.Context, name string, value []byte) (uint64, error)
	// CompareAndSwap stores value only if the current version equals
	// expect. expect == 0 means "create, must not exist yet".
	CompareAndSwap(ctx context.Context, name string, value []byte, expect uint64) (uint64, error)
	Remove(ctx context.Context, name string) error
	// List returns the names of all records starting with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// Watcher is implemented by backends with a push delivery path. Backends
// without one rely entirely on the change bus poll fallback.
type Watcher interface {
	Watch(ctx context.Context) (Feed, error)
}

// Feed streams change events until closed.
type Feed interface {
	Events() <-chan Event
	Close() error
}

const updateMaxRetries = 8

// Update performs a read-modify-write with optimistic concurrency. fn
// receives the current value (nil when absent) and returns the next value;
// returning nil skips the write and leaves the record untouched. Concurrent
// writers retry instead of silently losing each other's changes.
func Update(ctx context.Context, s Store, name string, fn func(current []byte) ([]byte, error)) (uint64, error) {
	for i := 0; i < updateMaxRetries; i++ {
		var current []byte
		var version uint64
		doc, err := s.Read(ctx, name)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return 0, err
		}
		if doc != nil {
			current, version = doc.Value, doc.Version
		}

		next, err := fn(current)
		if err != nil {
			return 0, err
		}
		if next == nil {
			return version, nil
		}

		newVersion, err := s.CompareAndSwap(ctx, name, next, version)
		if errors.Is(err, ErrVersionMismatch) {
			continue
		}
		if err != nil {
			return 0, err
		}
		return newVersion, nil
	}
	return 0, ErrTooManyConflicts
}

// DecodeList unmarshals a stored collection. A malformed record degrades to
// an empty collection with a warning, never an error.
func DecodeList[T any](name string, data []byte) []T {
	if len(data) == 0 {
		return nil
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		logger.Log.Warnw("malformed record, treating as empty", "name", name, "error", err)
		return nil
	}
	return out
}

// DecodeMap is DecodeList for map shaped records (room registries).
func DecodeMap[T any](name string, data []byte) map[string]T {
	if len(data) == 0 {
		return map[string]T{}
	}
	var out map[string]T
	if err := json.Unmarshal(data, &out); err != nil {
		logger.Log.Warnw("malformed record, treating as empty", "name", name, "error", err)
		return map[string]T{}
	}
	if out == nil {
		out = map[string]T{}
	}
	return out
}

// DecodeOne decodes a single-entity record. Returns nil on absence or parse
// failure.
func DecodeOne[T any](name string, data []byte) *T {
	if len(data) == 0 {
		return nil
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		logger.Log.Warnw("malformed record, treating as empty", "name", name, "error", err)
		return nil
	}
	return &out
}
