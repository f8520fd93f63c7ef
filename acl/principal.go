package acl

// PrincipalType partitions principals into the two grantable kinds.
type PrincipalType string

const (
	TypeUser  PrincipalType = "user"
	TypeGroup PrincipalType = "group"
)

func (t PrincipalType) Valid() bool {
	return t == TypeUser || t == TypeGroup
}

// Ref identifies a principal. Two refs with the same (Type, ID) name the
// same logical grant; a store never holds more than one entry per ref.
type Ref struct {
	Type PrincipalType
	ID   string
}

func (r Ref) Valid() bool {
	return r.Type.Valid() && r.ID != ""
}
