package resource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/gogogo1024/accesskit"
)

// RedisModel implements accesskit.ResourceModel on Redis. Access state is
// stored as JSON per resource, hierarchy as child-id sets. Recursive
// propagation is unconditional: ownership filtering needs principal
// membership data this model does not hold, so admission is the caller's
// responsibility when handing out handles.
type RedisModel struct {
	c      *redis.Client
	prefix string
	id     string

	mu       sync.Mutex
	resident *accesskit.AccessState
}

var _ accesskit.ResourceModel = (*RedisModel)(nil)

func NewRedisModel(c *redis.Client, keyPrefix, resourceID string) *RedisModel {
	if keyPrefix == "" {
		keyPrefix = "accesskit:"
	}
	return &RedisModel{c: c, prefix: keyPrefix, id: resourceID}
}

func (m *RedisModel) Access() (accesskit.AccessState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resident == nil {
		return accesskit.AccessState{}, false
	}
	return *m.resident, true
}

// FetchAccess loads the persisted state. A resource that was never saved
// reads back as the zero state (private, no grants).
func (m *RedisModel) FetchAccess(ctx context.Context) (accesskit.AccessState, error) {
	var state accesskit.AccessState
	raw, err := m.c.Get(ctx, m.keyState(m.id)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		// never persisted
	case err != nil:
		return accesskit.AccessState{}, fmt.Errorf("fetch access %q: %w", m.id, err)
	default:
		if err := json.Unmarshal(raw, &state); err != nil {
			return accesskit.AccessState{}, fmt.Errorf("decode access %q: %w", m.id, err)
		}
	}
	m.mu.Lock()
	m.resident = &state
	m.mu.Unlock()
	return state, nil
}

func (m *RedisModel) Set(state accesskit.AccessState) {
	m.mu.Lock()
	m.resident = &state
	m.mu.Unlock()
}

func (m *RedisModel) UpdateAccess(ctx context.Context, opts accesskit.UpdateOptions) error {
	m.mu.Lock()
	state := m.resident
	m.mu.Unlock()
	if state == nil {
		return errors.New("no access state set")
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode access: %w", err)
	}

	ids := []string{m.id}
	if opts.Recurse {
		ids, err = m.descendants(ctx)
		if err != nil {
			return err
		}
	}

	pipe := m.c.Pipeline()
	for _, id := range ids {
		pipe.Set(ctx, m.keyState(id), raw, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("persist access: %w", err)
	}
	if opts.Progress != nil {
		for _, id := range ids {
			opts.Progress(1, "Updating "+id)
		}
	}
	return nil
}

// AddChild records a parent/child edge in the hierarchy.
func (m *RedisModel) AddChild(ctx context.Context, parentID, childID string) error {
	return m.c.SAdd(ctx, m.keyChildren(parentID), childID).Err()
}

func (m *RedisModel) Children(ctx context.Context, id string) ([]string, error) {
	return m.c.SMembers(ctx, m.keyChildren(id)).Result()
}

// descendants returns the resource and every transitive child, breadth
// first. Cycles are tolerated by tracking visited ids.
func (m *RedisModel) descendants(ctx context.Context) ([]string, error) {
	seen := map[string]struct{}{m.id: {}}
	out := []string{m.id}
	queue := []string{m.id}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		children, err := m.Children(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("children of %q: %w", id, err)
		}
		for _, child := range children {
			if child == "" {
				continue
			}
			if _, ok := seen[child]; ok {
				continue
			}
			seen[child] = struct{}{}
			out = append(out, child)
			queue = append(queue, child)
		}
	}
	return out, nil
}

func (m *RedisModel) keyState(id string) string {
	return fmt.Sprintf("%sres:%s:state", m.prefix, id)
}

func (m *RedisModel) keyChildren(id string) string {
	return fmt.Sprintf("%sres:%s:children", m.prefix, id)
}
