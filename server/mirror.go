package server

import (
	"context"
	"errors"
	"syscall"
	"time"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/brettbedarf/chatfs/filesystem"
)

// Reader is the read side of the namespace the mount is built on
type Reader interface {
	Stat(p string) (filesystem.NodeInfo, error)
	List(p string) ([]string, error)
	ReadFile(p string) (string, error)
}

// mirror is shared by every inode of one mount. Inodes only remember a
// path and re-resolve it on each call, so edits made through the
// interpreter show up without invalidation.
type mirror struct {
	ns      Reader
	started time.Time
}

type dirNode struct {
	fs.Inode
	m    *mirror
	path string
}

var _ = (fs.NodeLookuper)((*dirNode)(nil))
var _ = (fs.NodeReaddirer)((*dirNode)(nil))
var _ = (fs.NodeGetattrer)((*dirNode)(nil))

func newRootNode(ns Reader) *dirNode {
	return &dirNode{m: &mirror{ns: ns, started: time.Now()}, path: filesystem.RootPath}
}

func (d *dirNode) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	p := filesystem.Canonical(d.path + "/" + name)
	info, err := d.m.ns.Stat(p)
	if err != nil {
		return nil, syscall.ENOENT
	}
	d.m.fillAttr(info, &out.Attr)

	if info.IsDir() {
		return d.NewInode(ctx, &dirNode{m: d.m, path: p}, fs.StableAttr{Mode: fuse.S_IFDIR}), 0
	}
	return d.NewInode(ctx, &fileNode{m: d.m, path: p}, fs.StableAttr{Mode: fuse.S_IFREG}), 0
}

func (d *dirNode) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	entries, errno := d.m.entries(d.path)
	if errno != 0 {
		return nil, errno
	}
	list := make([]fuse.DirEntry, 0, len(entries))
	for _, e := range entries {
		mode := uint32(fuse.S_IFREG)
		if e.IsDir() {
			mode = fuse.S_IFDIR
		}
		list = append(list, fuse.DirEntry{Name: e.Name, Mode: mode})
	}
	return fs.NewListDirStream(list), 0
}

func (d *dirNode) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	info, err := d.m.ns.Stat(d.path)
	if err != nil {
		return toErrno(err)
	}
	d.m.fillAttr(info, &out.Attr)
	return 0
}

type fileNode struct {
	fs.Inode
	m    *mirror
	path string
}

var _ = (fs.NodeOpener)((*fileNode)(nil))
var _ = (fs.NodeReader)((*fileNode)(nil))
var _ = (fs.NodeGetattrer)((*fileNode)(nil))

func (f *fileNode) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	if flags&(syscall.O_WRONLY|syscall.O_RDWR|syscall.O_TRUNC|syscall.O_APPEND) != 0 {
		return nil, 0, syscall.EROFS
	}
	// content can change between reads; skip the page cache
	return nil, fuse.FOPEN_DIRECT_IO, 0
}

func (f *fileNode) Read(ctx context.Context, fh fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	content, err := f.m.ns.ReadFile(f.path)
	if err != nil {
		return nil, toErrno(err)
	}
	return fuse.ReadResultData(readAt([]byte(content), dest, off)), 0
}

func (f *fileNode) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	info, err := f.m.ns.Stat(f.path)
	if err != nil {
		return toErrno(err)
	}
	f.m.fillAttr(info, &out.Attr)
	return 0
}

// entries lists a directory with kinds, directories first
func (m *mirror) entries(p string) ([]filesystem.NodeInfo, syscall.Errno) {
	names, err := m.ns.List(p)
	if err != nil {
		return nil, toErrno(err)
	}
	entries := make([]filesystem.NodeInfo, 0, len(names))
	for _, name := range names {
		// entries removed since List are skipped
		if info, err := m.ns.Stat(filesystem.Canonical(p + "/" + name)); err == nil {
			entries = append(entries, info)
		}
	}
	filesystem.SortEntries(entries)
	return entries, 0
}

func (m *mirror) fillAttr(info filesystem.NodeInfo, out *fuse.Attr) {
	if info.IsDir() {
		out.Mode = fuse.S_IFDIR | 0555
		out.Nlink = 2
	} else {
		out.Mode = fuse.S_IFREG | 0444
		out.Nlink = 1
		out.Size = uint64(info.Size)
	}
	out.SetTimes(&m.started, &m.started, &m.started)
}

func toErrno(err error) syscall.Errno {
	switch {
	case errors.Is(err, filesystem.ErrNotFound), errors.Is(err, filesystem.ErrNotFoundOrNotDirectory):
		return syscall.ENOENT
	case errors.Is(err, filesystem.ErrNotAFile):
		return syscall.EISDIR
	case errors.Is(err, filesystem.ErrNotADirectory):
		return syscall.ENOTDIR
	default:
		return syscall.EIO
	}
}

func readAt(data, dest []byte, off int64) []byte {
	if off >= int64(len(data)) {
		return []byte{}
	}
	end := int64(len(data))
	if int64(len(dest)) < end-off {
		end = off + int64(len(dest))
	}
	return data[off:end]
}
