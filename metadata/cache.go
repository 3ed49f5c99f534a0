package metadata

import (
	"container/list"
	"crypto/sha256"
	"sync"
	"sync/atomic"
)

// Loader parses metadata documents and caches the parsed result by the
// SHA-256 of the raw bytes, so repeated calls with identical metadata
// skip parsing and share one immutable Metadata value.
type Loader struct {
	mu       sync.Mutex
	items    map[[sha256.Size]byte]*list.Element
	order    *list.List
	capacity int

	hits   atomic.Uint64
	misses atomic.Uint64
}

type cacheEntry struct {
	key  [sha256.Size]byte
	meta *Metadata
}

// NewLoader creates a Loader with the given cache capacity. When the
// cache is full the least recently used document is evicted.
func NewLoader(capacity int) *Loader {
	if capacity <= 0 {
		capacity = 16
	}
	return &Loader{
		items:    make(map[[sha256.Size]byte]*list.Element, capacity),
		order:    list.New(),
		capacity: capacity,
	}
}

// Load returns the parsed metadata for the given document, from cache
// when the content was seen before.
func (l *Loader) Load(data []byte) (*Metadata, error) {
	key := sha256.Sum256(data)

	l.mu.Lock()
	if el, ok := l.items[key]; ok {
		l.order.MoveToFront(el)
		m := el.Value.(*cacheEntry).meta
		l.mu.Unlock()
		l.hits.Add(1)
		return m, nil
	}
	l.mu.Unlock()
	l.misses.Add(1)

	m, err := Load(data)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.items[key]; !ok {
		if len(l.items) >= l.capacity {
			if oldest := l.order.Back(); oldest != nil {
				l.order.Remove(oldest)
				delete(l.items, oldest.Value.(*cacheEntry).key)
			}
		}
		l.items[key] = l.order.PushFront(&cacheEntry{key: key, meta: m})
	}
	return m, nil
}

// Stats returns cache hit and miss counts.
func (l *Loader) Stats() (hits, misses uint64) {
	return l.hits.Load(), l.misses.Load()
}

// Len returns the number of cached documents.
func (l *Loader) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}
