package cache

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Store is the key-value cache fronting the read paths. It is a pure
// performance optimization; callers must behave identically on a miss.
type Store interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, ttl time.Duration)
	Delete(key string)
	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(prefix string)
	Flush()
}

// MemoryStore implements Store on top of an in-process TTL cache.
type MemoryStore struct {
	backend *gocache.Cache
}

// NewMemoryStore creates a MemoryStore with the given default TTL.
func NewMemoryStore(defaultTTL time.Duration) *MemoryStore {
	return &MemoryStore{
		backend: gocache.New(defaultTTL, 2*defaultTTL),
	}
}

func (s *MemoryStore) Get(key string) (interface{}, bool) {
	return s.backend.Get(key)
}

func (s *MemoryStore) Set(key string, value interface{}, ttl time.Duration) {
	s.backend.Set(key, value, ttl)
}

func (s *MemoryStore) Delete(key string) {
	s.backend.Delete(key)
}

// DeletePrefix scopes invalidation to the affected keys instead of
// flushing the whole cache on every pattern delete.
func (s *MemoryStore) DeletePrefix(prefix string) {
	for key := range s.backend.Items() {
		if strings.HasPrefix(key, prefix) {
			s.backend.Delete(key)
		}
	}
}

func (s *MemoryStore) Flush() {
	s.backend.Flush()
}
