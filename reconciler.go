package accesskit

import (
	"context"
	"fmt"

	"github.com/gogogo1024/accesskit/acl"
)

// Save reconciles the session into a snapshot and persists it through the
// resource model, recursing into descendant resources when recurse is set.
//
// The snapshot is projected under the session lock at the moment of the
// call, so entry mutations racing with an in-flight save affect only later
// saves. At most one save is in flight; a second call during that window
// returns ErrSaveInFlight without touching the model. On failure the store
// and visibility state are left as they were and the session returns to
// editing so the save can be retried. On success the saved hook fires once
// and the session closes.
func (s *Session) Save(ctx context.Context, recurse bool) error {
	s.mu.Lock()
	switch s.state {
	case StateSaving:
		s.mu.Unlock()
		return ErrSaveInFlight
	case StateClosed:
		s.mu.Unlock()
		return ErrSessionClosed
	case StateLoading:
		s.mu.Unlock()
		return ErrNotEditing
	}
	snap := s.store.Snapshot()
	public := s.public
	if err := validateSnapshot(snap); err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = StateSaving
	progress := s.onProgress
	s.mu.Unlock()

	s.model.Set(AccessState{ACL: snap, Public: public})
	err := s.model.UpdateAccess(ctx, UpdateOptions{Recurse: recurse, Progress: progress})

	s.mu.Lock()
	if err != nil {
		if s.state == StateSaving {
			s.state = StateEditing
		}
		s.mu.Unlock()
		return fmt.Errorf("update access: %w", err)
	}
	s.state = StateClosed
	saved := s.onSaved
	s.mu.Unlock()

	if saved != nil {
		saved(recurse)
	}
	return nil
}

// validateSnapshot rejects levels outside the enum range before anything
// is handed to the model. Clamping silently would persist a corrupt grant.
func validateSnapshot(snap acl.Snapshot) error {
	for _, u := range snap.Users {
		if !u.Level.Valid() {
			return fmt.Errorf("user %q level %d: %w", u.ID, u.Level, acl.ErrInvalidLevel)
		}
	}
	for _, g := range snap.Groups {
		if !g.Level.Valid() {
			return fmt.Errorf("group %q level %d: %w", g.ID, g.Level, acl.ErrInvalidLevel)
		}
	}
	return nil
}
