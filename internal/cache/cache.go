// Package cache provides the time-boxed response cache in front of the remote clients
package cache

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultTTL is how long a response stays fresh
const DefaultTTL = time.Hour

// Store keeps decoded responses keyed by source and exact request parameters.
// Entries only expire; there is no capacity bound.
type Store struct {
	items *gocache.Cache
	ttl   time.Duration
}

// New creates a cache whose entries expire after ttl.
// A non-positive ttl disables caching.
func New(ttl time.Duration) *Store {
	// no janitor goroutine: expired entries are swept on Write
	return &Store{
		items: gocache.New(ttl, 0),
		ttl:   ttl,
	}
}

// Key builds a cache key from a source name and the request parameters, in order
func Key(source string, params ...string) string {
	return source + "|" + strings.Join(params, "|")
}

// Enabled reports whether entries are retained at all
func (s *Store) Enabled() bool {
	return s != nil && s.ttl > 0
}

// Write stores a value under key
func (s *Store) Write(key string, value interface{}) {
	if !s.Enabled() {
		return
	}
	s.items.DeleteExpired()
	s.items.Set(key, value, s.ttl)
}

// Get returns the value stored under key if it has not expired
func (s *Store) Get(key string) (interface{}, bool) {
	if !s.Enabled() {
		return nil, false
	}
	return s.items.Get(key)
}

// Len returns the number of entries, including any not yet swept
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return s.items.ItemCount()
}

// Flush removes every entry
func (s *Store) Flush() {
	if s == nil {
		return
	}
	s.items.Flush()
}
