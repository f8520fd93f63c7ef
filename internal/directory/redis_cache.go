package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gogogo1024/accesskit"
	"github.com/gogogo1024/accesskit/acl"
)

const defaultCacheTTL = 10 * time.Minute

// RedisCache is a read-through cache in front of another directory.
// Cache failures degrade to the inner directory; a resolution never fails
// because the cache is down.
type RedisCache struct {
	c      *redis.Client
	prefix string
	ttl    time.Duration
	inner  accesskit.PrincipalDirectory
}

var _ accesskit.PrincipalDirectory = (*RedisCache)(nil)

func NewRedisCache(c *redis.Client, keyPrefix string, ttl time.Duration, inner accesskit.PrincipalDirectory) *RedisCache {
	if keyPrefix == "" {
		keyPrefix = "accesskit:"
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &RedisCache{c: c, prefix: keyPrefix, ttl: ttl, inner: inner}
}

func (rc *RedisCache) Resolve(ctx context.Context, ref acl.Ref) (accesskit.PrincipalInfo, error) {
	key := rc.key(ref)

	raw, err := rc.c.Get(ctx, key).Bytes()
	if err == nil {
		var info accesskit.PrincipalInfo
		if err := json.Unmarshal(raw, &info); err == nil {
			return info, nil
		}
		// Corrupt cache entry: fall through and overwrite.
	} else if !errors.Is(err, redis.Nil) {
		log.Printf("directory: cache read %s: %v", key, err)
	}

	info, err := rc.inner.Resolve(ctx, ref)
	if err != nil {
		return accesskit.PrincipalInfo{}, err
	}

	if raw, err := json.Marshal(info); err == nil {
		if err := rc.c.Set(ctx, key, raw, rc.ttl).Err(); err != nil {
			log.Printf("directory: cache write %s: %v", key, err)
		}
	}
	return info, nil
}

func (rc *RedisCache) key(ref acl.Ref) string {
	return fmt.Sprintf("%sp:%s:%s", rc.prefix, ref.Type, ref.ID)
}
