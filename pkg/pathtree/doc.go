// Package pathtree provides path-addressed access to a nested data tree.
//
// A tree is a map[string]any whose inner nodes are themselves
// map[string]any. Any other value is a leaf. A Path is an ordered list of
// keys that locates a value inside the tree.
//
// # Reading
//
// Read never fails. A missing key, or a leaf where a node was expected,
// yields (nil, false). An empty path yields the tree itself.
//
// # Writing
//
// Write and Merge require every intermediate segment to exist as a node.
// Addressing through a missing or non-node intermediate returns
// ErrStructuralMismatch, because it means the shape of the tree does not
// match the path. The root itself is never replaced.
//
// # Merging
//
// Merge is a shallow, key-preserving assignment: each key of the patch
// overwrites the same key at the target node, all other keys stay.
package pathtree
