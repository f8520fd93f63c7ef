// Package accesskit implements the editing session behind an access
// control dialog: pending grants for a single resource are collected in
// memory, deduplicated per principal, and reconciled into the canonical
// ACL payload when the operator saves, optionally propagating the result
// to descendant resources.
package accesskit

import (
	"context"
	"fmt"
	"sync"

	"github.com/gogogo1024/accesskit/acl"
)

// State is the lifecycle phase of a session.
type State int

const (
	StateLoading State = iota
	StateEditing
	StateSaving
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateEditing:
		return "editing"
	case StateSaving:
		return "saving"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session is one editing session over a single resource's access state.
//
// All mutation is serialized by an internal mutex; asynchronous principal
// resolutions re-enter through the same mutex, so callers observe the
// sequencing contract of a single control thread. It is safe for
// concurrent use.
type Session struct {
	mu    sync.Mutex
	model ResourceModel
	dir   PrincipalDirectory

	state   State
	store   *acl.Store
	public  bool
	pending map[acl.Ref]struct{}

	onChange   func()
	onSaved    func(recurse bool)
	onProgress ProgressFunc

	resolveWG sync.WaitGroup
}

func NewSession(model ResourceModel, dir PrincipalDirectory) *Session {
	return &Session{
		model:   model,
		dir:     dir,
		state:   StateLoading,
		store:   acl.NewStore(),
		pending: make(map[acl.Ref]struct{}),
	}
}

// OnEntriesChanged registers the hook fired after an entry is inserted or
// removed. The hook runs outside the session lock.
func (s *Session) OnEntriesChanged(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// OnSaved registers the hook fired once after a successful save, carrying
// the recurse flag of that save.
func (s *Session) OnSaved(fn func(recurse bool)) {
	s.mu.Lock()
	s.onSaved = fn
	s.mu.Unlock()
}

// OnProgress registers the hook receiving per-resource persistence
// progress during a save.
func (s *Session) OnProgress(fn ProgressFunc) {
	s.mu.Lock()
	s.onProgress = fn
	s.mu.Unlock()
}

// Open hydrates the session from the resource model and moves it to the
// editing state. When the model already holds the access state no fetch is
// issued; otherwise Open blocks on FetchAccess. A failed fetch leaves the
// session in the loading state and Open may be retried.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateClosed:
		s.mu.Unlock()
		return ErrSessionClosed
	case StateEditing, StateSaving:
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	state, ok := s.model.Access()
	if !ok {
		var err error
		state, err = s.model.FetchAccess(ctx)
		if err != nil {
			return fmt.Errorf("fetch access: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLoading {
		return nil
	}
	s.store = acl.FromSnapshot(state.ACL)
	s.public = state.Public
	s.state = StateEditing
	return nil
}

// RemovePrincipal drops the entry for ref. Removing an absent principal is
// a no-op.
func (s *Session) RemovePrincipal(ref acl.Ref) {
	s.mu.Lock()
	if s.state != StateEditing && s.state != StateSaving {
		s.mu.Unlock()
		return
	}
	removed := s.store.Remove(ref)
	changed := s.onChange
	s.mu.Unlock()

	if removed && changed != nil {
		changed()
	}
}

// SetLevel updates the grant level of an existing entry. Unknown refs are
// ignored. The value is not range-checked here; save rejects levels
// outside the enum.
func (s *Session) SetLevel(ref acl.Ref, level acl.Level) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateEditing && s.state != StateSaving {
		return
	}
	s.store.SetLevel(ref, level)
}

// SetPublic flips the resource between public and private. Explicit
// entries are unaffected.
func (s *Session) SetPublic(public bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateEditing && s.state != StateSaving {
		return
	}
	s.public = public
}

func (s *Session) Public() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.public
}

func (s *Session) Users() []acl.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Users()
}

func (s *Session) Groups() []acl.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Groups()
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close tears the session down. In-flight principal resolutions finish on
// their own and no-op when they observe the closed state.
func (s *Session) Close() {
	s.mu.Lock()
	s.state = StateClosed
	s.mu.Unlock()
}

// Wait blocks until every outstanding principal resolution has completed.
// Intended for orderly shutdown and tests.
func (s *Session) Wait() {
	s.resolveWG.Wait()
}
