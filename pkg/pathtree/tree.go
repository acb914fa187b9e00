package pathtree

import (
	"fmt"
)

// Read returns the value at path inside tree.
//
// The boolean is false when any segment is missing or when an intermediate
// value is not a node. An empty path returns tree itself.
func Read(tree map[string]any, path Path) (any, bool) {
	value, found, _ := pluck(tree, path, 0, nil, false)
	return value, found
}

// Write replaces the value at path inside tree and returns the new value.
//
// All intermediate segments must already exist as nodes; otherwise the
// error wraps ErrStructuralMismatch. An empty path returns ErrEmptyPath.
func Write(tree map[string]any, path Path, value any) (any, error) {
	if len(path) == 0 {
		return nil, ErrEmptyPath
	}
	written, _, err := pluck(tree, path, 0, value, true)
	if err != nil {
		return nil, err
	}
	return written, nil
}

// Merge assigns every key of patch onto the node at path and returns that
// node. Keys absent from patch are left untouched.
//
// When the target is missing but its parent is a node, a new node holding
// a copy of patch is written there. A target that exists but is not a
// node, or a missing intermediate, wraps ErrStructuralMismatch.
func Merge(tree map[string]any, path Path, patch map[string]any) (map[string]any, error) {
	current, found := Read(tree, path)
	if !found {
		fresh := make(map[string]any, len(patch))
		for k, v := range patch {
			fresh[k] = v
		}
		if _, err := Write(tree, path, fresh); err != nil {
			return nil, err
		}
		return fresh, nil
	}

	node, ok := current.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s holds %T, not a node", ErrStructuralMismatch, path, current)
	}
	for k, v := range patch {
		node[k] = v
	}
	return node, nil
}

// Clone returns a deep copy of value. Nodes (map[string]any) and lists
// ([]any) are copied recursively; every other value is returned as is.
func Clone(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, child := range v {
			out[k] = Clone(child)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, child := range v {
			out[i] = Clone(child)
		}
		return out
	default:
		return value
	}
}

// pluck walks node one segment at a time starting at depth. With set it
// replaces the value at the last segment; without it only reads, and
// structural problems are reported as not found instead of as errors.
func pluck(node map[string]any, path Path, depth int, value any, set bool) (any, bool, error) {
	if len(path) == depth {
		return node, true, nil
	}

	key := path[depth]
	if depth == len(path)-1 {
		if set {
			node[key] = value
			return value, true, nil
		}
		child, found := node[key]
		return child, found, nil
	}

	child, found := node[key]
	if !found {
		if set {
			return nil, false, fmt.Errorf("%w: %s is missing", ErrStructuralMismatch, path[:depth+1])
		}
		return nil, false, nil
	}
	next, ok := child.(map[string]any)
	if !ok {
		if set {
			return nil, false, fmt.Errorf("%w: %s holds %T, not a node", ErrStructuralMismatch, path[:depth+1], child)
		}
		return nil, false, nil
	}
	return pluck(next, path, depth+1, value, set)
}

// NormalizeTree converts decoded data into tree form: maps with non-string
// keys (as some decoders produce) become map[string]any with keys rendered
// by fmt, recursively, including inside lists. A nil tree becomes an empty
// one.
func NormalizeTree(tree map[string]any) map[string]any {
	if tree == nil {
		return make(map[string]any)
	}
	return normalize(tree).(map[string]any)
}

func normalize(value any) any {
	switch v := value.(type) {
	case map[string]any:
		for k, child := range v {
			v[k] = normalize(child)
		}
		return v
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, child := range v {
			out[fmt.Sprint(k)] = normalize(child)
		}
		return out
	case []any:
		for i, child := range v {
			v[i] = normalize(child)
		}
		return v
	default:
		return value
	}
}
