package resource

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gogogo1024/accesskit"
	"github.com/gogogo1024/accesskit/acl"
)

var ErrUnknownResource = errors.New("unknown resource")

// Tree is an in-memory resource hierarchy for local dev and tests. Each
// resource carries its own access state; Model binds an editing handle to
// one resource.
type Tree struct {
	mu    sync.Mutex
	nodes map[string]*treeNode
}

type treeNode struct {
	id       string
	name     string
	parent   string
	children []string
	state    accesskit.AccessState
}

func NewTree() *Tree {
	return &Tree{nodes: make(map[string]*treeNode)}
}

// Add registers a resource. Parent may be empty for a root resource and
// must otherwise already exist.
func (t *Tree) Add(id, name, parent string) error {
	if id == "" {
		return errors.New("resource id is required")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.nodes[id]; ok {
		return fmt.Errorf("resource %q already exists", id)
	}
	if parent != "" {
		p, ok := t.nodes[parent]
		if !ok {
			return fmt.Errorf("parent %q: %w", parent, ErrUnknownResource)
		}
		p.children = append(p.children, id)
	}
	t.nodes[id] = &treeNode{id: id, name: name, parent: parent}
	return nil
}

// SetState overwrites a resource's persisted access state (seeding).
func (t *Tree) SetState(id string, state accesskit.AccessState) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("resource %q: %w", id, ErrUnknownResource)
	}
	n.state = state
	return nil
}

// State reads a resource's persisted access state.
func (t *Tree) State(id string) (accesskit.AccessState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.nodes[id]
	if !ok {
		return accesskit.AccessState{}, false
	}
	return n.state, true
}

// Model returns a resource-model handle bound to one resource. actingUser
// filters recursive propagation: descendants whose current ACL does not
// grant that user admin are skipped, subtree included. An empty actingUser
// disables the filter.
func (t *Tree) Model(resourceID, actingUser string) *InMemoryModel {
	return &InMemoryModel{tree: t, id: resourceID, user: actingUser}
}

// InMemoryModel implements accesskit.ResourceModel against a Tree.
type InMemoryModel struct {
	tree *Tree
	id   string
	user string

	mu       sync.Mutex
	resident *accesskit.AccessState
}

var _ accesskit.ResourceModel = (*InMemoryModel)(nil)

func (m *InMemoryModel) Access() (accesskit.AccessState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resident == nil {
		return accesskit.AccessState{}, false
	}
	return *m.resident, true
}

func (m *InMemoryModel) FetchAccess(ctx context.Context) (accesskit.AccessState, error) {
	if err := ctx.Err(); err != nil {
		return accesskit.AccessState{}, err
	}
	state, ok := m.tree.State(m.id)
	if !ok {
		return accesskit.AccessState{}, fmt.Errorf("resource %q: %w", m.id, ErrUnknownResource)
	}
	m.mu.Lock()
	m.resident = &state
	m.mu.Unlock()
	return state, nil
}

func (m *InMemoryModel) Set(state accesskit.AccessState) {
	m.mu.Lock()
	m.resident = &state
	m.mu.Unlock()
}

// UpdateAccess persists the last Set state. With Recurse it walks the
// descendants of the resource, overwriting each one the acting user
// administers; a descendant without an admin grant is skipped and its
// subtree is not entered.
func (m *InMemoryModel) UpdateAccess(ctx context.Context, opts accesskit.UpdateOptions) error {
	m.mu.Lock()
	state := m.resident
	m.mu.Unlock()
	if state == nil {
		return errors.New("no access state set")
	}

	m.tree.mu.Lock()
	defer m.tree.mu.Unlock()

	root, ok := m.tree.nodes[m.id]
	if !ok {
		return fmt.Errorf("resource %q: %w", m.id, ErrUnknownResource)
	}
	return m.applyLocked(ctx, root, *state, opts)
}

func (m *InMemoryModel) applyLocked(ctx context.Context, n *treeNode, state accesskit.AccessState, opts accesskit.UpdateOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.state = state
	if opts.Progress != nil {
		opts.Progress(1, "Updating "+n.name)
	}
	if !opts.Recurse {
		return nil
	}
	for _, childID := range n.children {
		child, ok := m.tree.nodes[childID]
		if !ok {
			continue
		}
		if m.user != "" && !adminOf(child.state.ACL, m.user) {
			continue
		}
		if err := m.applyLocked(ctx, child, state, opts); err != nil {
			return err
		}
	}
	return nil
}

// adminOf reports whether the user holds an explicit admin grant. Group
// membership is not modeled here, so group grants do not count.
func adminOf(snap acl.Snapshot, user string) bool {
	for _, u := range snap.Users {
		if u.ID == user && u.Level >= acl.LevelAdmin {
			return true
		}
	}
	return false
}
