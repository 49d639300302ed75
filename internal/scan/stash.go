package scan

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/chronos/internal/engine"
	"github.com/wonny/chronos/pkg/redis"
)

// stashTTL bounds how long an undelivered scan result survives. Delivery is
// expected on the very next render; anything older is stale by definition.
const stashTTL = redis.TTLShort

// ResultStash holds scan results between the action that produced them and
// the single render that displays them. Single-delivery: Take consumes the
// entry, so a reload without the token (or a second Take) finds nothing.
// Backed by Redis GETDEL when available, an in-process map otherwise.
type ResultStash struct {
	cache *redis.Cache

	mu      sync.Mutex
	entries map[string]stashEntry
}

type stashEntry struct {
	result  engine.ScanResult
	expires time.Time
}

// NewResultStash creates a stash. cache may be nil or disabled; the stash
// then keeps results in process memory.
func NewResultStash(cache *redis.Cache) *ResultStash {
	return &ResultStash{
		cache:   cache,
		entries: make(map[string]stashEntry),
	}
}

func (s *ResultStash) useRedis() bool {
	return s.cache != nil && s.cache.Enabled()
}

// Put stores a result and returns the one-time token that retrieves it
func (s *ResultStash) Put(ctx context.Context, result *engine.ScanResult) (string, error) {
	token := uuid.NewString()

	if s.useRedis() {
		if err := s.cache.Set(ctx, redis.ScanResultKey(token), result, stashTTL); err != nil {
			return "", err
		}
		return token, nil
	}

	s.mu.Lock()
	s.entries[token] = stashEntry{result: *result, expires: time.Now().Add(stashTTL)}
	s.prune()
	s.mu.Unlock()

	return token, nil
}

// Take retrieves and consumes the result for a token. Unknown, expired, or
// already-consumed tokens return (nil, false).
func (s *ResultStash) Take(ctx context.Context, token string) (*engine.ScanResult, bool) {
	if token == "" {
		return nil, false
	}

	if s.useRedis() {
		// GETDEL keeps single-delivery across processes
		var result engine.ScanResult
		if found, err := s.cache.TakeOnce(ctx, redis.ScanResultKey(token), &result); err == nil && found {
			return &result, true
		}
		return nil, false
	}

	s.mu.Lock()
	entry, ok := s.entries[token]
	if ok {
		delete(s.entries, token)
	}
	s.prune()
	s.mu.Unlock()

	if ok && time.Now().Before(entry.expires) {
		return &entry.result, true
	}

	return nil, false
}

// prune drops expired entries; callers hold s.mu
func (s *ResultStash) prune() {
	now := time.Now()
	for token, entry := range s.entries {
		if now.After(entry.expires) {
			delete(s.entries, token)
		}
	}
}
