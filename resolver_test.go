package accesskit

import (
	"errors"
	"testing"

	"github.com/gogogo1024/accesskit/acl"
)

func TestAddPrincipal_InsertsWithDefaultLevel(t *testing.T) {
	u1 := acl.Ref{Type: acl.TypeUser, ID: "u1"}
	dir := &fakeDirectory{infos: map[acl.Ref]PrincipalInfo{
		u1: {Name: "Ada Lovelace", Login: "ada"},
	}}
	s := newEditingSession(t, &fakeModel{}, dir)

	changed := 0
	s.OnEntriesChanged(func() { changed++ })

	s.AddPrincipal(u1)
	s.Wait()

	users := s.Users()
	if len(users) != 1 {
		t.Fatalf("expected one entry, got %+v", users)
	}
	e := users[0]
	if e.Title != "Ada Lovelace" || e.Subtitle != "ada" || e.Level != acl.DefaultLevel {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if changed != 1 {
		t.Fatalf("entries-changed fired %d times, want 1", changed)
	}
}

func TestAddPrincipal_GroupSubtitleIsDescription(t *testing.T) {
	g1 := acl.Ref{Type: acl.TypeGroup, ID: "g1"}
	dir := &fakeDirectory{infos: map[acl.Ref]PrincipalInfo{
		g1: {Name: "Operators", Description: "on-call rotation"},
	}}
	s := newEditingSession(t, &fakeModel{}, dir)

	s.AddPrincipal(g1)
	s.Wait()

	groups := s.Groups()
	if len(groups) != 1 || groups[0].Subtitle != "on-call rotation" {
		t.Fatalf("group subtitle should come from the description: %+v", groups)
	}
}

func TestAddPrincipal_DuplicateWhileResolutionInFlight(t *testing.T) {
	u1 := acl.Ref{Type: acl.TypeUser, ID: "u1"}
	gate := make(chan struct{})
	dir := &fakeDirectory{
		infos: map[acl.Ref]PrincipalInfo{u1: {Name: "Ada", Login: "ada"}},
		gate:  gate,
	}
	s := newEditingSession(t, &fakeModel{}, dir)

	s.AddPrincipal(u1)
	s.AddPrincipal(u1) // still resolving; must not start a second fetch
	close(gate)
	s.Wait()

	if got := dir.resolveCount(); got != 1 {
		t.Fatalf("directory resolved %d times, want 1", got)
	}
	if users := s.Users(); len(users) != 1 {
		t.Fatalf("expected exactly one entry after duplicate add, got %+v", users)
	}
}

func TestAddPrincipal_DuplicateAfterCommitIsSilentlyIgnored(t *testing.T) {
	u1 := acl.Ref{Type: acl.TypeUser, ID: "u1"}
	dir := &fakeDirectory{infos: map[acl.Ref]PrincipalInfo{u1: {Name: "Ada", Login: "ada"}}}
	s := newEditingSession(t, &fakeModel{}, dir)

	s.AddPrincipal(u1)
	s.Wait()
	s.AddPrincipal(u1)
	s.Wait()

	if got := dir.resolveCount(); got != 1 {
		t.Fatalf("stored duplicate should not hit the directory, got %d calls", got)
	}
	if users := s.Users(); len(users) != 1 {
		t.Fatalf("expected one entry, got %+v", users)
	}
}

func TestAddPrincipal_ResolutionFailureLeavesStoreUnchanged(t *testing.T) {
	u1 := acl.Ref{Type: acl.TypeUser, ID: "u1"}
	u2 := acl.Ref{Type: acl.TypeUser, ID: "u2"}
	dir := &fakeDirectory{
		infos: map[acl.Ref]PrincipalInfo{u2: {Name: "Grace", Login: "grace"}},
		errs:  map[acl.Ref]error{u1: errors.New("directory unavailable")},
	}
	s := newEditingSession(t, &fakeModel{}, dir)

	changed := 0
	s.OnEntriesChanged(func() { changed++ })

	s.AddPrincipal(u1)
	s.AddPrincipal(u2)
	s.Wait()

	users := s.Users()
	if len(users) != 1 || users[0].Ref != u2 {
		t.Fatalf("failed resolution must not insert: %+v", users)
	}
	if changed != 1 {
		t.Fatalf("entries-changed fired %d times, want 1", changed)
	}

	// The failed ref is addable again once the directory recovers.
	dir.mu.Lock()
	delete(dir.errs, u1)
	dir.infos[u1] = PrincipalInfo{Name: "Ada", Login: "ada"}
	dir.mu.Unlock()
	s.AddPrincipal(u1)
	s.Wait()
	if users := s.Users(); len(users) != 2 {
		t.Fatalf("expected retryable add after failure, got %+v", users)
	}
}

func TestAddPrincipal_LateResolutionAfterCloseIsNoOp(t *testing.T) {
	u1 := acl.Ref{Type: acl.TypeUser, ID: "u1"}
	gate := make(chan struct{})
	dir := &fakeDirectory{
		infos: map[acl.Ref]PrincipalInfo{u1: {Name: "Ada", Login: "ada"}},
		gate:  gate,
	}
	s := newEditingSession(t, &fakeModel{}, dir)

	s.AddPrincipal(u1)
	s.Close()
	close(gate)
	s.Wait()

	if users := s.Users(); len(users) != 0 {
		t.Fatalf("late resolution mutated a closed session: %+v", users)
	}
}

func TestAddPrincipal_InvalidRefIgnored(t *testing.T) {
	dir := &fakeDirectory{}
	s := newEditingSession(t, &fakeModel{}, dir)

	s.AddPrincipal(acl.Ref{Type: "robot", ID: "r1"})
	s.AddPrincipal(acl.Ref{Type: acl.TypeUser, ID: ""})
	s.Wait()

	if dir.resolveCount() != 0 {
		t.Fatalf("invalid refs must not reach the directory")
	}
}
