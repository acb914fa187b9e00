package pathtree

import (
	"errors"
	"strconv"
	"strings"
)

// Path errors.
var (
	ErrEmptyPath          = errors.New("empty path")
	ErrInvalidPath        = errors.New("invalid path format")
	ErrStructuralMismatch = errors.New("tree shape does not match path")
)

// Separator is the segment separator used by Parse and String.
const Separator = "/"

// Path locates a value inside a tree. A nil or empty Path is the root.
type Path []string

// Parse parses a separator-delimited path such as "user/profile/name".
//
// "" and "/" denote the root. A single leading separator is accepted.
// Empty segments ("a//b", "a/") are rejected.
func Parse(input string) (Path, error) {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, Separator)
	if input == "" {
		return Path{}, nil
	}

	parts := strings.Split(input, Separator)
	for _, part := range parts {
		if part == "" {
			return nil, ErrInvalidPath
		}
	}
	return Path(parts), nil
}

// String renders the path with Separator between segments. The root
// renders as "/".
func (p Path) String() string {
	if len(p) == 0 {
		return Separator
	}
	return strings.Join(p, Separator)
}

// Key returns a string that identifies the segment sequence exactly.
//
// Each segment is length-prefixed, so paths whose joined forms coincide
// (["a-b","c"] and ["a","b-c"], or ["a/b"] and ["a","b"]) still map to
// different keys.
func (p Path) Key() string {
	var b strings.Builder
	for _, segment := range p {
		b.WriteString(strconv.Itoa(len(segment)))
		b.WriteByte(':')
		b.WriteString(segment)
	}
	return b.String()
}

// Equal reports whether p and other have the same segments.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of p that shares no storage with it.
func (p Path) Clone() Path {
	if p == nil {
		return Path{}
	}
	out := make(Path, len(p))
	copy(out, p)
	return out
}
