package filesystem

import (
	"fmt"
	"strings"
)

// NodeKind tags the two node variants
type NodeKind string

const (
	FileKind NodeKind = "file"
	DirKind  NodeKind = "directory"
)

// RootPath is the canonical path of the namespace root
const RootPath = "/"

// Node is either a file (content) or a directory (children by name).
// Nodes keep no parent reference; ownership is expressed only by the
// parent's children map.
type Node struct {
	kind     NodeKind
	name     string // last path component; "/" for root
	path     string // canonical absolute path, maintained by AddChild
	content  string
	children map[string]*Node // nil for files
}

// NewRootNode returns an empty root directory
func NewRootNode() *Node {
	return &Node{
		kind:     DirKind,
		name:     RootPath,
		path:     RootPath,
		children: make(map[string]*Node),
	}
}

// NewFileNode creates a detached file. Its path is set when attached
// to a parent with [Node.AddChild].
func NewFileNode(name, content string) *Node {
	return &Node{kind: FileKind, name: name, path: name, content: content}
}

// NewDirNode creates a detached, empty directory.
func NewDirNode(name string) *Node {
	return &Node{kind: DirKind, name: name, path: name, children: make(map[string]*Node)}
}

func (n *Node) Kind() NodeKind { return n.kind }
func (n *Node) Name() string { return n.name }
func (n *Node) Path() string { return n.path }
func (n *Node) IsDir() bool { return n.kind == DirKind }
func (n *Node) IsFile() bool { return n.kind == FileKind }
func (n *Node) Content() string { return n.content }

// Size is the content length for files and the child count for directories
func (n *Node) Size() int {
	if n.IsDir() {
		return len(n.children)
	}
	return len(n.content)
}

// GetChild returns a direct child by name
func (n *Node) GetChild(name string) (child *Node, ok bool) {
	child, ok = n.children[name]
	return child, ok
}

// ChildNames returns the child names in no particular order
func (n *Node) ChildNames() []string {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	return names
}

// Children returns the direct children in no particular order
func (n *Node) Children() []*Node {
	children := make([]*Node, 0, len(n.children))
	for _, ch := range n.children {
		children = append(children, ch)
	}
	return children
}

// ValidName reports whether name can be used as a path segment
func ValidName(name string) bool {
	return name != "" && !strings.Contains(name, "/")
}

// AddChild attaches child under n and rewrites the paths of child's subtree.
// The child must be detached; n must be a directory without an entry of the
// same name.
func (n *Node) AddChild(child *Node) error {
	if !n.IsDir() {
		return fmt.Errorf("cannot add %q to file %s", child.name, n.path)
	}
	if !ValidName(child.name) {
		return fmt.Errorf("invalid node name %q", child.name)
	}
	if _, exists := n.children[child.name]; exists {
		return fmt.Errorf("%s already has a child named %q", n.path, child.name)
	}
	n.children[child.name] = child
	child.setPath(joinPath(n.path, child.name))
	return nil
}

// RemoveChild detaches the named child. Returns false when absent.
func (n *Node) RemoveChild(name string) bool {
	if _, exists := n.children[name]; !exists {
		return false
	}
	delete(n.children, name)
	return true
}

func (n *Node) setPath(p string) {
	n.path = p
	for name, ch := range n.children {
		ch.setPath(joinPath(p, name))
	}
}

// Clone returns a deep copy of the subtree rooted at n
func (n *Node) Clone() *Node {
	cp := &Node{kind: n.kind, name: n.name, path: n.path, content: n.content}
	if n.children != nil {
		cp.children = make(map[string]*Node, len(n.children))
		for name, ch := range n.children {
			cp.children[name] = ch.Clone()
		}
	}
	return cp
}

// Info returns a value snapshot of the node's metadata
func (n *Node) Info() NodeInfo {
	return NodeInfo{Name: n.name, Path: n.path, Kind: n.kind, Size: n.Size()}
}

// NodeInfo is a read-only description of a node handed to presentation code
type NodeInfo struct {
	Name string
	Path string
	Kind NodeKind
	Size int // content bytes for files, entries for directories
}

func (i NodeInfo) IsDir() bool { return i.Kind == DirKind }
