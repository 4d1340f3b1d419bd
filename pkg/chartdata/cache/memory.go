package cache

import (
	"sync"
	"time"

	"github.com/tradelens/chartdata/internal/types"
)

// DefaultTTL is how long a cached bar sequence is considered valid. After
// this the entry is logically absent regardless of physical presence.
const DefaultTTL = 24 * time.Hour

// TagOHLC groups all candle entries for bulk invalidation.
const TagOHLC = "ohlc"

// Entry is a memoized cascade outcome: the bar sequence, which market source
// produced it, and when it was written.
type Entry struct {
	Bars      []types.Bar
	Source    types.Source
	WrittenAt time.Time
}

type taggedEntry struct {
	Entry

	tag string
}

// Memory is the server-tier cache: a read-mostly in-process key-value store
// with overwrite-on-miss semantics. A write is a single atomic key/value set,
// so a lost race between two concurrent misses for the same key only costs
// one harmless duplicate upstream fetch.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]taggedEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory creates a server-tier cache. A non-positive ttl selects
// DefaultTTL.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Memory{
		entries: make(map[string]taggedEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the entry for key if present and not expired.
func (m *Memory) Get(key string) (Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]
	if !ok {
		return Entry{}, false
	}

	if m.now().Sub(e.WrittenAt) > m.ttl {
		return Entry{}, false
	}

	return e.Entry, true
}

// Set stores an entry under key with the given invalidation tag, stamping the
// write time. Entries are never updated in place; a later Set overwrites.
func (m *Memory) Set(key, tag string, entry Entry) {
	entry.WrittenAt = m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = taggedEntry{Entry: entry, tag: tag}
}

// InvalidateTag drops every entry carrying the given tag.
func (m *Memory) InvalidateTag(tag string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, e := range m.entries {
		if e.tag == tag {
			delete(m.entries, key)
		}
	}
}

// Len reports the number of physically present entries, expired or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}
