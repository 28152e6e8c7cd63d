package docstore

import (
	"context"
	"encoding/binary"
	"sync"

	"github.com/cockroachdb/pebble"

	"wanderlink/backend/internal/logger"
)

const pebbleKeyPrefix = "doc:"

// PebbleStore is an embedded backend. Values are stored as an 8-byte
// big-endian version followed by the payload. A process-wide mutex
// serializes compare-and-swap; cross-process coordination is not supported,
// which matches the single-writer-per-context model.
type PebbleStore struct {
	db *pebble.DB
	mu sync.Mutex
}

func OpenPebbleStore(path string) (*PebbleStore, error) {
	logger.Log.Infow("opening pebble store", "path", path)
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &PebbleStore{db: db}, nil
}

func pebbleKey(name string) []byte { return []byte(pebbleKeyPrefix + name) }

func encodeDoc(value []byte, version uint64) []byte {
	buf := make([]byte, 8+len(value))
	binary.BigEndian.PutUint64(buf, version)
	copy(buf[8:], value)
	return buf
}

func decodeDoc(raw []byte) *Document {
	if len(raw) < 8 {
		return &Document{Value: nil, Version: 0}
	}
	value := make([]byte, len(raw)-8)
	copy(value, raw[8:])
	return &Document{Value: value, Version: binary.BigEndian.Uint64(raw)}
}

func (s *PebbleStore) Read(_ context.Context, name string) (*Document, error) {
	raw, closer, err := s.db.Get(pebbleKey(name))
	if err == pebble.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	doc := decodeDoc(raw)
	_ = closer.Close()
	return doc, nil
}

func (s *PebbleStore) Write(ctx context.Context, name string, value []byte) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	version := uint64(1)
	if cur, err := s.Read(ctx, name); err == nil {
		version = cur.Version + 1
	}
	if err := s.db.Set(pebbleKey(name), encodeDoc(value, version), pebble.Sync); err != nil {
		return 0, err
	}
	return version, nil
}

func (s *PebbleStore) CompareAndSwap(ctx context.Context, name string, value []byte, expect uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var current uint64
	if cur, err := s.Read(ctx, name); err == nil {
		current = cur.Version
	}
	if current != expect {
		return 0, ErrVersionMismatch
	}
	version := expect + 1
	if err := s.db.Set(pebbleKey(name), encodeDoc(value, version), pebble.Sync); err != nil {
		return 0, err
	}
	return version, nil
}

func (s *PebbleStore) Remove(_ context.Context, name string) error {
	return s.db.Delete(pebbleKey(name), pebble.Sync)
}

func (s *PebbleStore) List(_ context.Context, prefix string) ([]string, error) {
	lower := pebbleKey(prefix)
	upper := append(append([]byte{}, lower...), 0xff)
	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var names []string
	for iter.First(); iter.Valid(); iter.Next() {
		names = append(names, string(iter.Key()[len(pebbleKeyPrefix):]))
	}
	return names, iter.Error()
}

func (s *PebbleStore) Close() error {
	return s.db.Close()
}
