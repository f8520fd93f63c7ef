package acl

// Store holds the pending grants of one editing session, partitioned by
// principal type. Views preserve insertion order. A store is owned by a
// single session which serializes all access; there is no internal locking.
type Store struct {
	users  []Entry
	groups []Entry
}

func NewStore() *Store {
	return &Store{}
}

// FromSnapshot hydrates a store from a persisted snapshot. Group subtitles
// are not carried on the wire and come back empty.
func FromSnapshot(snap Snapshot) *Store {
	s := NewStore()
	for _, u := range snap.Users {
		s.Add(Entry{
			Ref:      Ref{Type: TypeUser, ID: u.ID},
			Title:    u.Name,
			Subtitle: u.Login,
			Level:    u.Level,
		})
	}
	for _, g := range snap.Groups {
		s.Add(Entry{
			Ref:   Ref{Type: TypeGroup, ID: g.ID},
			Title: g.Name,
			Level: g.Level,
		})
	}
	return s
}

// Add inserts an entry and reports whether it was inserted. An entry whose
// (type, id) is already present is silently ignored; duplicate additions
// are a normal outcome of the dedup policy, not an error.
func (s *Store) Add(e Entry) bool {
	if !e.Ref.Valid() {
		return false
	}
	bucket := s.bucket(e.Ref.Type)
	for _, have := range *bucket {
		if have.Ref.ID == e.Ref.ID {
			return false
		}
	}
	*bucket = append(*bucket, e)
	return true
}

// Remove deletes the entry for ref, reporting whether one existed.
// Removing an absent ref is a no-op.
func (s *Store) Remove(ref Ref) bool {
	if !ref.Type.Valid() {
		return false
	}
	bucket := s.bucket(ref.Type)
	for i, have := range *bucket {
		if have.Ref.ID == ref.ID {
			*bucket = append((*bucket)[:i], (*bucket)[i+1:]...)
			return true
		}
	}
	return false
}

// SetLevel changes the level of an existing entry. The store performs no
// range validation; out-of-range values are caught at save time.
func (s *Store) SetLevel(ref Ref, level Level) bool {
	if !ref.Type.Valid() {
		return false
	}
	bucket := s.bucket(ref.Type)
	for i, have := range *bucket {
		if have.Ref.ID == ref.ID {
			(*bucket)[i].Level = level
			return true
		}
	}
	return false
}

func (s *Store) Get(ref Ref) (Entry, bool) {
	if !ref.Type.Valid() {
		return Entry{}, false
	}
	for _, have := range *s.bucket(ref.Type) {
		if have.Ref.ID == ref.ID {
			return have, true
		}
	}
	return Entry{}, false
}

func (s *Store) Users() []Entry {
	out := make([]Entry, len(s.users))
	copy(out, s.users)
	return out
}

func (s *Store) Groups() []Entry {
	out := make([]Entry, len(s.groups))
	copy(out, s.groups)
	return out
}

func (s *Store) Len() int {
	return len(s.users) + len(s.groups)
}

// Snapshot projects the store into the persisted shape, reading each
// entry's current level and display fields.
func (s *Store) Snapshot() Snapshot {
	snap := Snapshot{
		Users:  make([]UserGrant, 0, len(s.users)),
		Groups: make([]GroupGrant, 0, len(s.groups)),
	}
	for _, e := range s.users {
		snap.Users = append(snap.Users, UserGrant{
			ID:    e.Ref.ID,
			Name:  e.Title,
			Login: e.Subtitle,
			Level: e.Level,
		})
	}
	for _, e := range s.groups {
		snap.Groups = append(snap.Groups, GroupGrant{
			ID:    e.Ref.ID,
			Name:  e.Title,
			Level: e.Level,
		})
	}
	return snap
}

func (s *Store) bucket(t PrincipalType) *[]Entry {
	if t == TypeGroup {
		return &s.groups
	}
	return &s.users
}
