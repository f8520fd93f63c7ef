package acl

import (
	"errors"
	"fmt"
)

// Level is an ordered permission grant level. Higher values include every
// capability of the lower ones.
type Level int

const (
	LevelNone Level = iota
	LevelRead
	LevelWrite
	LevelAdmin
)

// DefaultLevel is the grant assigned to a newly added principal.
const DefaultLevel = LevelRead

var ErrInvalidLevel = errors.New("invalid permission level")

func (l Level) Valid() bool {
	return l >= LevelNone && l <= LevelAdmin
}

func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelRead:
		return "read"
	case LevelWrite:
		return "write"
	case LevelAdmin:
		return "admin"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

func ParseLevel(s string) (Level, error) {
	switch s {
	case "none":
		return LevelNone, nil
	case "read":
		return LevelRead, nil
	case "write":
		return LevelWrite, nil
	case "admin":
		return LevelAdmin, nil
	}
	return LevelNone, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
}
