package filesystem

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/brettbedarf/chatfs/internal/util"
)

// Operation names used in errors and logs
const (
	OpCreateFile      = "create file"
	OpCreateDirectory = "create directory"
	OpReadFile        = "read file"
	OpUpdateFile      = "update file"
	OpDeleteFile      = "delete file"
	OpDeleteDirectory = "delete directory"
	OpList            = "list"
	OpStat            = "stat"
)

// Saver persists a full snapshot of the tree. It is called synchronously
// after every successful mutation while the namespace is locked, so it
// must not call back into the Namespace.
type Saver interface {
	Save(ctx context.Context, root *Node) error
}

// ChangeNotifier is told which directory's listing changed after a
// successful mutation. It runs after the namespace lock is released.
type ChangeNotifier func(dirPath string)

type Option func(*Namespace)

// WithRoot installs a previously restored tree. Anything that is not a
// root directory is ignored.
func WithRoot(root *Node) Option {
	return func(ns *Namespace) {
		if root != nil && root.IsDir() && root.Path() == RootPath {
			ns.root = root
		}
	}
}

// WithSaver enables write-through persistence
func WithSaver(s Saver) Option {
	return func(ns *Namespace) {
		ns.saver = s
	}
}

// WithChangeNotifier registers the presentation re-render hook
func WithChangeNotifier(fn ChangeNotifier) Option {
	return func(ns *Namespace) {
		ns.notify = fn
	}
}

// Namespace owns the tree and is the only way to mutate it. Every
// operation re-walks from the root; a single mutex serialises operations.
type Namespace struct {
	mu          sync.Mutex
	root        *Node
	saver       Saver
	notify      ChangeNotifier
	lastSaveErr error
	logger      util.Logger
}

// NewNamespace returns a namespace holding an empty root unless
// [WithRoot] supplies one.
func NewNamespace(opts ...Option) *Namespace {
	ns := &Namespace{
		root:   NewRootNode(),
		logger: util.GetLogger("Namespace"),
	}
	for _, opt := range opts {
		opt(ns)
	}
	return ns
}

// Root returns a deep copy of the current tree
func (ns *Namespace) Root() *Node {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	return ns.root.Clone()
}

// LastSaveError returns the most recent persistence failure, or nil once a
// later save succeeded. A failed save never rolls back the mutation.
func (ns *Namespace) LastSaveError() error {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	return ns.lastSaveErr
}

// CreateFile creates a file, auto-creating missing intermediate directories.
func (ns *Namespace) CreateFile(p, content string) error {
	return ns.mutate(OpCreateFile, p, func() error {
		return ns.create(OpCreateFile, p, func(name string) *Node {
			return NewFileNode(name, content)
		})
	})
}

// CreateDirectory creates a directory, auto-creating missing intermediate
// directories. An existing final entry is an error.
func (ns *Namespace) CreateDirectory(p string) error {
	return ns.mutate(OpCreateDirectory, p, func() error {
		return ns.create(OpCreateDirectory, p, NewDirNode)
	})
}

// ReadFile returns the content of the file at p
func (ns *Namespace) ReadFile(p string) (string, error) {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	node, err := ns.lookup(OpReadFile, p)
	if err != nil {
		return "", err
	}
	if !node.IsFile() {
		return "", newPathError(OpReadFile, p, ErrNotAFile)
	}
	return node.content, nil
}

// UpdateFile overwrites the content of an existing file
func (ns *Namespace) UpdateFile(p, content string) error {
	return ns.mutate(OpUpdateFile, p, func() error {
		node, err := ns.lookup(OpUpdateFile, p)
		if err != nil {
			return err
		}
		if !node.IsFile() {
			return newPathError(OpUpdateFile, p, ErrNotAFile)
		}
		node.content = content
		return nil
	})
}

// DeleteFile detaches the file at p from its parent
func (ns *Namespace) DeleteFile(p string) error {
	return ns.mutate(OpDeleteFile, p, func() error {
		res, err := ns.resolveMutable(OpDeleteFile, p)
		if err != nil {
			return err
		}
		if res.target == nil {
			return newPathError(OpDeleteFile, p, ErrNotFound)
		}
		if !res.target.IsFile() {
			return newPathError(OpDeleteFile, p, ErrNotAFile)
		}
		res.parent.RemoveChild(res.targetName)
		return nil
	})
}

// DeleteDirectory detaches an empty directory. Deletion is never recursive.
func (ns *Namespace) DeleteDirectory(p string) error {
	return ns.mutate(OpDeleteDirectory, p, func() error {
		res, err := ns.resolveMutable(OpDeleteDirectory, p)
		if err != nil {
			return err
		}
		if res.target == nil {
			return newPathError(OpDeleteDirectory, p, ErrNotFound)
		}
		if !res.target.IsDir() {
			return newPathError(OpDeleteDirectory, p, ErrNotADirectory)
		}
		if len(res.target.children) > 0 {
			return newPathError(OpDeleteDirectory, p, ErrDirectoryNotEmpty)
		}
		res.parent.RemoveChild(res.targetName)
		return nil
	})
}

// List returns the names of the directory's children, unordered.
func (ns *Namespace) List(p string) ([]string, error) {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	node, err := ns.lookup(OpList, p)
	if err != nil {
		return nil, err
	}
	if !node.IsDir() {
		return nil, newPathError(OpList, p, ErrNotADirectory)
	}
	return node.ChildNames(), nil
}

// Stat describes the node at p
func (ns *Namespace) Stat(p string) (NodeInfo, error) {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	node, err := ns.lookup(OpStat, p)
	if err != nil {
		return NodeInfo{}, err
	}
	return node.Info(), nil
}

// FilePaths returns the path of every file in the tree, sorted.
func (ns *Namespace) FilePaths() []string {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	var paths []string
	var walk func(n *Node)
	walk = func(n *Node) {
		for _, ch := range n.children {
			if ch.IsFile() {
				paths = append(paths, ch.path)
			} else {
				walk(ch)
			}
		}
	}
	walk(ns.root)
	sort.Strings(paths)
	return paths
}

// lookup resolves p and requires the target to exist. Caller holds mu.
func (ns *Namespace) lookup(op, p string) (*Node, error) {
	res, err := resolve(ns.root, op, p)
	if err != nil {
		return nil, err
	}
	if res.target == nil {
		return nil, newPathError(op, p, ErrNotFound)
	}
	return res.target, nil
}

// resolveMutable is resolve for operations that detach the target, which is
// never allowed for the root. Caller holds mu.
func (ns *Namespace) resolveMutable(op, p string) (resolution, error) {
	if len(splitPath(p)) == 0 {
		return resolution{}, newPathError(op, p, ErrInvalidOperation)
	}
	return resolve(ns.root, op, p)
}

// create walks the existing prefix of p without mutating, then attaches the
// missing chain of directories plus the new leaf in a single step, so a
// failing create leaves the tree untouched. Caller holds mu.
func (ns *Namespace) create(op, p string, newLeaf func(name string) *Node) error {
	segs := splitPath(p)
	if len(segs) == 0 {
		return newPathError(op, p, ErrInvalidOperation)
	}

	cur := ns.root
	i := 0
	for ; i < len(segs)-1; i++ {
		child, ok := cur.GetChild(segs[i])
		if !ok {
			break
		}
		if !child.IsDir() {
			return &PathError{Op: op, Path: p, Segment: segs[i], Err: ErrPathComponentIsFile}
		}
		cur = child
	}

	last := segs[len(segs)-1]
	if i == len(segs)-1 {
		if _, exists := cur.GetChild(last); exists {
			return newPathError(op, p, ErrAlreadyExists)
		}
	}

	top := newLeaf(last)
	for j := len(segs) - 2; j >= i; j-- {
		dir := NewDirNode(segs[j])
		if err := dir.AddChild(top); err != nil {
			return fmt.Errorf("%s %s: %w", op, p, err)
		}
		top = dir
	}
	if err := cur.AddChild(top); err != nil {
		return fmt.Errorf("%s %s: %w", op, p, err)
	}

	if newDirs := len(segs) - 1 - i; newDirs > 0 {
		ns.logger.Debug().Str("path", p).Msgf("Created %d new dir(s)", newDirs)
	}
	return nil
}

// mutate runs fn under the lock, persists on success and then notifies the
// presentation layer about the parent directory of p.
func (ns *Namespace) mutate(op, p string, fn func() error) error {
	ns.mu.Lock()
	if err := fn(); err != nil {
		ns.mu.Unlock()
		ns.logger.Debug().Err(err).Str("op", op).Str("path", p).Msg("Operation rejected")
		return err
	}
	ns.persistLocked(op, p)
	notify := ns.notify
	ns.mu.Unlock()

	ns.logger.Debug().Str("op", op).Str("path", p).Msg("Operation applied")
	if notify != nil {
		notify(ParentPath(p))
	}
	return nil
}

// persistLocked writes the whole tree through the saver. Failures are
// logged and remembered but the in-memory mutation stands.
func (ns *Namespace) persistLocked(op, p string) {
	if ns.saver == nil {
		return
	}
	if err := ns.saver.Save(context.Background(), ns.root); err != nil {
		ns.lastSaveErr = &PathError{Op: op, Path: p, Err: fmt.Errorf("%w: %w", ErrPersistenceFailure, err)}
		ns.logger.Error().Err(err).Str("op", op).Str("path", p).Msg("Failed to persist namespace; continuing in memory")
		return
	}
	ns.lastSaveErr = nil
}
