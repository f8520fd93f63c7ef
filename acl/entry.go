package acl

// Entry is a pending grant held by a store during an editing session.
// Title and Subtitle are display metadata cached when the principal was
// resolved (name plus login for users, description for groups). Level is
// mutable until the session saves.
type Entry struct {
	Ref      Ref
	Title    string
	Subtitle string
	Level    Level
}

// UserGrant is the persisted shape of a user entry.
type UserGrant struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Login string `json:"login"`
	Level Level  `json:"level"`
}

// GroupGrant is the persisted shape of a group entry.
type GroupGrant struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Level Level  `json:"level"`
}

// Snapshot is the canonical ACL payload: a flattened projection of a store.
// Slice order carries no meaning.
type Snapshot struct {
	Users  []UserGrant  `json:"users"`
	Groups []GroupGrant `json:"groups"`
}
