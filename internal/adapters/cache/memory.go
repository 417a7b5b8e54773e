package cache

import (
	"context"
	"slices"
	"sync"
	"time"
)

const defaultMemoryEntries = 256

// MemoryOption configures a Memory cache.
type MemoryOption func(*Memory)

// WithMaxEntries bounds the number of cached dashboards. The oldest entry
// is evicted first.
func WithMaxEntries(n int) MemoryOption {
	return func(m *Memory) {
		if n > 0 {
			m.maxEntries = n
		}
	}
}

// WithMemoryTTL sets how long entries live. Zero keeps entries until evicted.
func WithMemoryTTL(ttl time.Duration) MemoryOption {
	return func(m *Memory) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// node is one entry in insertion order, newest at head.
type node struct {
	key     string
	panels  []string
	expires time.Time
	prev    *node
	next    *node
}

func (n *node) reset() {
	*n = node{}
}

// Memory is an in-process Cache for single-instance deployments.
type Memory struct {
	mu         sync.Mutex
	entries    map[string]*node
	head, tail *node
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
	nodePool   sync.Pool
}

var _ Cache = (*Memory)(nil)

// NewMemory creates a bounded in-memory cache.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		maxEntries: defaultMemoryEntries,
		now:        time.Now,
		nodePool:   sync.Pool{New: func() any { return &node{} }},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.entries = make(map[string]*node, m.maxEntries)
	return m
}

// Get implements Cache. Expired entries are dropped on read.
func (m *Memory) Get(_ context.Context, key string) ([]string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !n.expires.IsZero() && !m.now().Before(n.expires) {
		m.remove(n)
		return nil, false, nil
	}
	return slices.Clone(n.panels), true, nil
}

// Set implements Cache. Replacing a key moves it to the newest position.
func (m *Memory) Set(_ context.Context, key string, panels []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.entries[key]; ok {
		m.remove(old)
	}
	if len(m.entries) >= m.maxEntries {
		m.remove(m.tail)
	}

	n := m.nodePool.Get().(*node)
	n.key = key
	n.panels = slices.Clone(panels)
	if m.ttl > 0 {
		n.expires = m.now().Add(m.ttl)
	}
	n.next = m.head
	if m.head != nil {
		m.head.prev = n
	}
	m.head = n
	if m.tail == nil {
		m.tail = n
	}
	m.entries[key] = n
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Close implements Cache by dropping every entry.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for m.tail != nil {
		m.remove(m.tail)
	}
	return nil
}

// remove unlinks n. Must be called with m.mu held.
func (m *Memory) remove(n *node) {
	if n == nil {
		return
	}
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		m.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		m.tail = n.prev
	}
	delete(m.entries, n.key)
	n.reset()
	m.nodePool.Put(n)
}
