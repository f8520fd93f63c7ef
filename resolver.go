package accesskit

import (
	"context"
	"log"
	"time"

	"github.com/gogogo1024/accesskit/acl"
)

const resolveTimeout = 10 * time.Second

// AddPrincipal requests insertion of a grant for ref with the default
// level. The call returns immediately; display metadata is resolved
// against the directory in the background and the entry is inserted when
// the fetch completes.
//
// Dedup happens synchronously, against both stored entries and
// resolutions still in flight, so rapid repeated additions of the same
// (type, id) converge to a single entry: the first resolution to commit
// wins and later ones are dropped. A failed resolution leaves the store
// unchanged; an invalid ref is ignored.
func (s *Session) AddPrincipal(ref acl.Ref) {
	s.mu.Lock()
	if s.state != StateEditing && s.state != StateSaving {
		s.mu.Unlock()
		return
	}
	if !ref.Valid() {
		s.mu.Unlock()
		return
	}
	if _, ok := s.store.Get(ref); ok {
		s.mu.Unlock()
		return
	}
	if _, ok := s.pending[ref]; ok {
		s.mu.Unlock()
		return
	}
	s.pending[ref] = struct{}{}
	s.resolveWG.Add(1)
	s.mu.Unlock()

	go s.resolve(ref)
}

func (s *Session) resolve(ref acl.Ref) {
	defer s.resolveWG.Done()

	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()
	info, err := s.dir.Resolve(ctx, ref)

	s.mu.Lock()
	delete(s.pending, ref)
	if s.state == StateClosed {
		// Late completion against a torn-down session.
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.mu.Unlock()
		log.Printf("accesskit: resolve %s %s: %v", ref.Type, ref.ID, err)
		return
	}
	inserted := s.store.Add(acl.Entry{
		Ref:      ref,
		Title:    info.Name,
		Subtitle: subtitleFor(ref.Type, info),
		Level:    acl.DefaultLevel,
	})
	changed := s.onChange
	s.mu.Unlock()

	if inserted && changed != nil {
		changed()
	}
}

func subtitleFor(t acl.PrincipalType, info PrincipalInfo) string {
	if t == acl.TypeGroup {
		return info.Description
	}
	return info.Login
}
