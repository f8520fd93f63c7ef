package accesskit

import (
	"context"

	"github.com/gogogo1024/accesskit/acl"
)

// AccessState is a resource's access control state: the explicit grant list
// plus the public flag. The two are persisted together; toggling public
// never clears explicit grants.
type AccessState struct {
	ACL    acl.Snapshot `json:"access"`
	Public bool         `json:"public"`
}

// ProgressFunc receives persistence progress: one call per updated
// resource during a recursive save.
type ProgressFunc func(increment int, message string)

// UpdateOptions controls how a resource model persists its mutated state.
type UpdateOptions struct {
	Recurse  bool
	Progress ProgressFunc
}

// ResourceModel is the persistence collaborator for a single resource.
//
// Access returns the resident state without I/O; the second result is false
// until the state has been fetched or set. FetchAccess loads it. Set
// mutates the resident state locally; UpdateAccess persists whatever was
// last Set.
type ResourceModel interface {
	Access() (AccessState, bool)
	FetchAccess(ctx context.Context) (AccessState, error)
	Set(state AccessState)
	UpdateAccess(ctx context.Context, opts UpdateOptions) error
}

// PrincipalInfo is the display metadata a directory resolves for a
// principal. Login is set for users, Description for groups.
type PrincipalInfo struct {
	Name        string `json:"name"`
	Login       string `json:"login,omitempty"`
	Description string `json:"description,omitempty"`
}

// PrincipalDirectory resolves a principal reference to display metadata.
type PrincipalDirectory interface {
	Resolve(ctx context.Context, ref acl.Ref) (PrincipalInfo, error)
}
