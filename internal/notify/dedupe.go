package notify

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dedupeKeyPrefix  = "familyhub:invite-email:"
	defaultDedupeTTL = 24 * time.Hour
)

// Deduper claims a delivery key. Only the first claim within the TTL wins, so
// racing dispatchers never send the same invitation twice.
type Deduper interface {
	Claim(ctx context.Context, key string) (bool, error)
}

// RedisDeduper shares claims across processes with SET NX.
type RedisDeduper struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisDeduper(client redis.Cmdable, ttl time.Duration) *RedisDeduper {
	if ttl <= 0 {
		ttl = defaultDedupeTTL
	}
	return &RedisDeduper{client: client, ttl: ttl}
}

func (d *RedisDeduper) Claim(ctx context.Context, key string) (bool, error) {
	return d.client.SetNX(ctx, dedupeKeyPrefix+key, 1, d.ttl).Result()
}

// MemoryDeduper keeps claims in process memory.
type MemoryDeduper struct {
	mu     sync.Mutex
	ttl    time.Duration
	claims map[string]time.Time
	now    func() time.Time
}

func NewMemoryDeduper(ttl time.Duration) *MemoryDeduper {
	if ttl <= 0 {
		ttl = defaultDedupeTTL
	}
	return &MemoryDeduper{ttl: ttl, claims: make(map[string]time.Time), now: time.Now}
}

func (d *MemoryDeduper) Claim(_ context.Context, key string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if until, ok := d.claims[key]; ok && now.Before(until) {
		return false, nil
	}
	d.claims[key] = now.Add(d.ttl)
	// Expired entries are swept on write to bound the map.
	for k, until := range d.claims {
		if !now.Before(until) {
			delete(d.claims, k)
		}
	}
	return true, nil
}
