package directory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gogogo1024/accesskit"
	"github.com/gogogo1024/accesskit/acl"
)

type countingDirectory struct {
	mu    sync.Mutex
	inner accesskit.PrincipalDirectory
	calls int
}

func (d *countingDirectory) Resolve(ctx context.Context, ref acl.Ref) (accesskit.PrincipalInfo, error) {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()
	return d.inner.Resolve(ctx, ref)
}

func (d *countingDirectory) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

func TestRedisCache_DegradesToInnerWhenCacheUnreachable(t *testing.T) {
	// Nothing listens here; every cache operation fails fast.
	c := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer c.Close()

	inner := &countingDirectory{inner: seededStatic()}
	cache := NewRedisCache(c, "tstacc:", time.Minute, inner)

	info, err := cache.Resolve(context.Background(), acl.Ref{Type: acl.TypeUser, ID: "u1"})
	if err != nil {
		t.Fatalf("Resolve must survive a dead cache: %v", err)
	}
	if info.Name != "Ada Lovelace" {
		t.Fatalf("unexpected info: %+v", info)
	}
	if inner.count() != 1 {
		t.Fatalf("inner resolved %d times, want 1", inner.count())
	}
}

// Requires Redis on localhost:6379; skipped otherwise.
func TestRedisCache_SecondResolveHitsCache(t *testing.T) {
	c := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	if err := c.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() {
		c.FlushDB(context.Background())
		c.Close()
	})

	inner := &countingDirectory{inner: seededStatic()}
	cache := NewRedisCache(c, "tstacc:", time.Minute, inner)
	ref := acl.Ref{Type: acl.TypeGroup, ID: "g1"}

	for i := 0; i < 2; i++ {
		info, err := cache.Resolve(context.Background(), ref)
		if err != nil {
			t.Fatalf("Resolve #%d: %v", i+1, err)
		}
		if info.Description != "on-call rotation" {
			t.Fatalf("Resolve #%d info: %+v", i+1, info)
		}
	}
	if inner.count() != 1 {
		t.Fatalf("inner resolved %d times, want 1 (second hit from cache)", inner.count())
	}

	// Misses are not cached.
	if _, err := cache.Resolve(context.Background(), acl.Ref{Type: acl.TypeUser, ID: "nope"}); err == nil {
		t.Fatalf("expected not-found to propagate")
	}
}
