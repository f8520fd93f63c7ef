package handler

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/gogogo1024/accesskit"
	"github.com/gogogo1024/accesskit/acl"
)

// ModelFactory builds a resource-model handle for one editing session.
// actingUser scopes recursive propagation and may be empty.
type ModelFactory func(resourceID, actingUser string) accesskit.ResourceModel

// Searcher is the vector-search half of the principal search endpoint.
type Searcher interface {
	Query(ctx context.Context, keyword string, topK int) ([]acl.Ref, error)
}

var (
	registry = newSessionRegistry()

	wiringMu       sync.RWMutex
	modelFor       ModelFactory
	principals     accesskit.PrincipalDirectory
	searchIndex    Searcher
	fallbackSearch func(keyword string, topK int) []acl.Ref
)

// SetModelFactory installs the resource-model source. Must be called
// before serving.
func SetModelFactory(f ModelFactory) {
	if f == nil {
		return
	}
	wiringMu.Lock()
	modelFor = f
	wiringMu.Unlock()
}

// SetDirectory installs the principal directory. Must be called before
// serving.
func SetDirectory(d accesskit.PrincipalDirectory) {
	if d == nil {
		return
	}
	wiringMu.Lock()
	principals = d
	wiringMu.Unlock()
}

// SetSearch installs the vector search index. Optional.
func SetSearch(s Searcher) {
	wiringMu.Lock()
	searchIndex = s
	wiringMu.Unlock()
}

// SetFallbackSearch installs the substring search used when no vector
// index is configured or the index errors.
func SetFallbackSearch(fn func(keyword string, topK int) []acl.Ref) {
	wiringMu.Lock()
	fallbackSearch = fn
	wiringMu.Unlock()
}

func wiring() (ModelFactory, accesskit.PrincipalDirectory) {
	wiringMu.RLock()
	defer wiringMu.RUnlock()
	return modelFor, principals
}

func searchWiring() (Searcher, func(string, int) []acl.Ref) {
	wiringMu.RLock()
	defer wiringMu.RUnlock()
	return searchIndex, fallbackSearch
}

type sessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*accesskit.Session
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: make(map[string]*accesskit.Session)}
}

func (r *sessionRegistry) add(s *accesskit.Session) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()
	return id
}

func (r *sessionRegistry) get(id string) (*accesskit.Session, bool) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	return s, ok
}

func (r *sessionRegistry) remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

func (r *sessionRegistry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
