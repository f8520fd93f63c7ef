package directory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/gogogo1024/accesskit"
	"github.com/gogogo1024/accesskit/acl"
)

var ErrNotFound = errors.New("principal not found")

// Static is a map-backed principal directory, suitable for local dev and
// as the fallback behind the search index.
type Static struct {
	mu     sync.RWMutex
	users  map[string]accesskit.PrincipalInfo
	groups map[string]accesskit.PrincipalInfo
}

var _ accesskit.PrincipalDirectory = (*Static)(nil)

func NewStatic() *Static {
	return &Static{
		users:  make(map[string]accesskit.PrincipalInfo),
		groups: make(map[string]accesskit.PrincipalInfo),
	}
}

func (s *Static) AddUser(id, name, login string) {
	s.mu.Lock()
	s.users[id] = accesskit.PrincipalInfo{Name: name, Login: login}
	s.mu.Unlock()
}

func (s *Static) AddGroup(id, name, description string) {
	s.mu.Lock()
	s.groups[id] = accesskit.PrincipalInfo{Name: name, Description: description}
	s.mu.Unlock()
}

func (s *Static) Resolve(ctx context.Context, ref acl.Ref) (accesskit.PrincipalInfo, error) {
	if err := ctx.Err(); err != nil {
		return accesskit.PrincipalInfo{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	table := s.users
	if ref.Type == acl.TypeGroup {
		table = s.groups
	}
	info, ok := table[ref.ID]
	if !ok {
		return accesskit.PrincipalInfo{}, fmt.Errorf("%s %q: %w", ref.Type, ref.ID, ErrNotFound)
	}
	return info, nil
}

// Search does case-insensitive substring matching over names, logins and
// ids, deterministically ordered. It backs the search endpoint when no
// vector index is configured.
func (s *Static) Search(keyword string, topK int) []acl.Ref {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" || topK <= 0 {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var refs []acl.Ref
	for id, info := range s.users {
		if matches(keyword, id, info.Name, info.Login) {
			refs = append(refs, acl.Ref{Type: acl.TypeUser, ID: id})
		}
	}
	for id, info := range s.groups {
		if matches(keyword, id, info.Name, info.Description) {
			refs = append(refs, acl.Ref{Type: acl.TypeGroup, ID: id})
		}
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Type != refs[j].Type {
			return refs[i].Type == acl.TypeUser
		}
		return refs[i].ID < refs[j].ID
	})
	if len(refs) > topK {
		refs = refs[:topK]
	}
	return refs
}

func matches(keyword string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), keyword) {
			return true
		}
	}
	return false
}
