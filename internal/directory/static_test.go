package directory

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/gogogo1024/accesskit/acl"
)

func seededStatic() *Static {
	s := NewStatic()
	s.AddUser("u1", "Ada Lovelace", "ada")
	s.AddUser("u2", "Grace Hopper", "grace")
	s.AddGroup("g1", "Operators", "on-call rotation")
	return s
}

func TestStatic_Resolve(t *testing.T) {
	s := seededStatic()
	ctx := context.Background()

	info, err := s.Resolve(ctx, acl.Ref{Type: acl.TypeUser, ID: "u1"})
	if err != nil {
		t.Fatalf("Resolve user: %v", err)
	}
	if info.Name != "Ada Lovelace" || info.Login != "ada" {
		t.Fatalf("unexpected user info: %+v", info)
	}

	info, err = s.Resolve(ctx, acl.Ref{Type: acl.TypeGroup, ID: "g1"})
	if err != nil {
		t.Fatalf("Resolve group: %v", err)
	}
	if info.Name != "Operators" || info.Description != "on-call rotation" {
		t.Fatalf("unexpected group info: %+v", info)
	}

	// A user id does not resolve as a group.
	if _, err := s.Resolve(ctx, acl.Ref{Type: acl.TypeGroup, ID: "u1"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-type resolve: got %v, want ErrNotFound", err)
	}
	if _, err := s.Resolve(ctx, acl.Ref{Type: acl.TypeUser, ID: "nope"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown id: got %v, want ErrNotFound", err)
	}
}

func TestStatic_Search(t *testing.T) {
	s := seededStatic()

	got := s.Search("opera", 10)
	want := []acl.Ref{{Type: acl.TypeGroup, ID: "g1"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("search 'opera': got %v want %v", got, want)
	}

	// Matches logins, case-insensitive, users before groups.
	got = s.Search("A", 10)
	if len(got) != 3 || got[0].Type != acl.TypeUser {
		t.Fatalf("search 'A': got %v", got)
	}

	if got := s.Search("ada", 0); got != nil {
		t.Fatalf("topK=0 should return nothing, got %v", got)
	}
	if got := s.Search("  ", 10); got != nil {
		t.Fatalf("blank keyword should return nothing, got %v", got)
	}
	if got := s.Search("a", 1); len(got) != 1 {
		t.Fatalf("topK must cap results, got %v", got)
	}
}
