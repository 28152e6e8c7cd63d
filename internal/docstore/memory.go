package docstore

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-process backend. It backs tests and single-binary
// development runs, and doubles as the reference implementation for the
// version semantics.
type MemoryStore struct {
	mu    sync.RWMutex
	docs  map[string]Document
	feeds map[int]*memoryFeed
	next  int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:  make(map[string]Document),
		feeds: make(map[int]*memoryFeed),
	}
}

func (m *MemoryStore) Read(_ context.Context, name string) (*Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[name]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(doc.Value))
	copy(cp, doc.Value)
	return &Document{Value: cp, Version: doc.Version}, nil
}

func (m *MemoryStore) Write(_ context.Context, name string, value []byte) (uint64, error) {
	m.mu.Lock()
	version := m.docs[name].Version + 1
	m.store(name, value, version)
	m.mu.Unlock()
	return version, nil
}

func (m *MemoryStore) CompareAndSwap(_ context.Context, name string, value []byte, expect uint64) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.docs[name].Version != expect {
		return 0, ErrVersionMismatch
	}
	version := expect + 1
	m.store(name, value, version)
	return version, nil
}

// store must be called with mu held.
func (m *MemoryStore) store(name string, value []byte, version uint64) {
	cp := make([]byte, len(value))
	copy(cp, value)
	m.docs[name] = Document{Value: cp, Version: version}
	ev := Event{Name: name, Value: cp, Version: version}
	for _, f := range m.feeds {
		f.deliver(ev)
	}
}

func (m *MemoryStore) Remove(_ context.Context, name string) error {
	m.mu.Lock()
	delete(m.docs, name)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var names []string
	for name := range m.docs {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	feeds := make([]*memoryFeed, 0, len(m.feeds))
	for id, f := range m.feeds {
		feeds = append(feeds, f)
		delete(m.feeds, id)
	}
	m.mu.Unlock()
	for _, f := range feeds {
		f.closed.Do(func() { close(f.ch) })
	}
	return nil
}

// Watch implements Watcher with an in-process fan-out.
func (m *MemoryStore) Watch(_ context.Context) (Feed, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f := &memoryFeed{store: m, id: m.next, ch: make(chan Event, 64)}
	m.feeds[m.next] = f
	m.next++
	return f, nil
}

type memoryFeed struct {
	store  *MemoryStore
	id     int
	ch     chan Event
	closed sync.Once
}

func (f *memoryFeed) deliver(ev Event) {
	select {
	case f.ch <- ev:
	default:
		// Slow consumer; the poll path will catch it up.
	}
}

func (f *memoryFeed) Events() <-chan Event { return f.ch }

func (f *memoryFeed) Close() error {
	f.store.mu.Lock()
	delete(f.store.feeds, f.id)
	f.store.mu.Unlock()
	f.closed.Do(func() { close(f.ch) })
	return nil
}
