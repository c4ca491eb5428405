package filesystem

import (
	"sort"
	"strings"
)

// splitPath returns the non-empty segments of p, so "//a//b/" and "/a/b"
// (and the relative "a/b") are the same path.
func splitPath(p string) []string {
	parts := strings.Split(p, "/")
	segs := parts[:0]
	for _, part := range parts {
		if part != "" {
			segs = append(segs, part)
		}
	}
	return segs
}

// Canonical returns the slash-normalised absolute form of p
func Canonical(p string) string {
	segs := splitPath(p)
	if len(segs) == 0 {
		return RootPath
	}
	return RootPath + strings.Join(segs, "/")
}

// ParentPath returns the canonical path of p's parent directory.
// The parent of the root is the root.
func ParentPath(p string) string {
	segs := splitPath(p)
	if len(segs) <= 1 {
		return RootPath
	}
	return RootPath + strings.Join(segs[:len(segs)-1], "/")
}

func joinPath(dir, name string) string {
	if dir == RootPath {
		return RootPath + name
	}
	return dir + "/" + name
}

// resolution is the outcome of walking a path. target is nil when the
// parent exists but has no entry named targetName.
type resolution struct {
	parent     *Node
	target     *Node
	targetName string
}

// resolve locates the node at p and its parent without mutating anything.
// A missing or non-directory intermediate segment fails with
// ErrNotFoundOrNotDirectory; a missing final segment is not an error.
func resolve(root *Node, op, p string) (resolution, error) {
	segs := splitPath(p)
	if len(segs) == 0 {
		return resolution{parent: nil, target: root, targetName: RootPath}, nil
	}

	cur := root
	for _, seg := range segs[:len(segs)-1] {
		child, ok := cur.GetChild(seg)
		if !ok || !child.IsDir() {
			return resolution{}, &PathError{Op: op, Path: p, Segment: seg, Err: ErrNotFoundOrNotDirectory}
		}
		cur = child
	}

	name := segs[len(segs)-1]
	target, _ := cur.GetChild(name)
	return resolution{parent: cur, target: target, targetName: name}, nil
}

// SortEntries orders entries for display: directories first, then by name.
func SortEntries(entries []NodeInfo) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir() != entries[j].IsDir() {
			return entries[i].IsDir()
		}
		return entries[i].Name < entries[j].Name
	})
}
