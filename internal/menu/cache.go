package menu

import (
	"log"
	"sync"
	"time"

	"github.com/gofiber/storage/redis/v3"
)

// Store is the daily cache: one raw menu document per (hall, calendar day).
// A lookup miss is not an error; backend failures are logged and treated as
// misses so that caching never affects matching results, only fetch volume.
type Store interface {
	Get(hall string, day time.Time) (string, bool)
	Put(hall string, day time.Time, doc string)
}

func cacheKey(hall string, day time.Time) string {
	return hall + "|" + day.Format("2006-01-02")
}

// MemoryStore is an in-process Store. Entries older than the retention
// window are pruned on write so storage stays bounded.
type MemoryStore struct {
	mu        sync.Mutex
	entries   map[string]memoryEntry
	retention time.Duration
}

type memoryEntry struct {
	doc string
	day time.Time
}

// NewMemoryStore creates a memory-backed cache retaining entries for the
// given number of days.
func NewMemoryStore(retentionDays int) *MemoryStore {
	return &MemoryStore{
		entries:   make(map[string]memoryEntry),
		retention: time.Duration(retentionDays) * 24 * time.Hour,
	}
}

func (s *MemoryStore) Get(hall string, day time.Time) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[cacheKey(hall, day)]
	if !ok {
		return "", false
	}
	return e.doc, true
}

func (s *MemoryStore) Put(hall string, day time.Time, doc string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[cacheKey(hall, day)] = memoryEntry{doc: doc, day: day}

	cutoff := day.Add(-s.retention)
	for key, e := range s.entries {
		if e.day.Before(cutoff) {
			delete(s.entries, key)
		}
	}
}

// Len returns the number of cached entries.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// RedisStore persists cached documents in Redis so cron-style dispatcher runs
// share one fetch per hall per day. Retention is enforced through TTL.
type RedisStore struct {
	storage   *redis.Storage
	retention time.Duration
}

// NewRedisStore connects to Redis at the given URL.
func NewRedisStore(url string, retentionDays int) *RedisStore {
	return &RedisStore{
		storage:   redis.New(redis.Config{URL: url}),
		retention: time.Duration(retentionDays) * 24 * time.Hour,
	}
}

func (s *RedisStore) Get(hall string, day time.Time) (string, bool) {
	val, err := s.storage.Get(cacheKey(hall, day))
	if err != nil {
		log.Printf("[WARN] cache get failed for %s: %v", hall, err)
		return "", false
	}
	if len(val) == 0 {
		return "", false
	}
	return string(val), true
}

func (s *RedisStore) Put(hall string, day time.Time, doc string) {
	if err := s.storage.Set(cacheKey(hall, day), []byte(doc), s.retention); err != nil {
		log.Printf("[WARN] cache put failed for %s: %v", hall, err)
	}
}

// Close releases the Redis connection.
func (s *RedisStore) Close() error {
	return s.storage.Close()
}

// NopStore disables caching: every lookup misses and writes are dropped.
type NopStore struct{}

func (NopStore) Get(string, time.Time) (string, bool) { return "", false }
func (NopStore) Put(string, time.Time, string)        {}
