package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/brettbedarf/chatfs/filesystem"
)

// SnapshotVersion is bumped whenever the on-disk layout changes
// incompatibly. Older or newer snapshots are discarded on load.
const SnapshotVersion = 1

var (
	ErrCorruptSnapshot     = errors.New("corrupt snapshot")
	ErrIncompatibleVersion = errors.New("incompatible snapshot version")
)

// SnapshotDTO is the JSON envelope written under the store key
type SnapshotDTO struct {
	Version int       `json:"version"`
	ID      string    `json:"id"`
	SavedAt time.Time `json:"saved_at"`
	Root    *NodeDTO  `json:"root"`
}

// NodeDTO is the JSON representation of [filesystem.Node]
type NodeDTO struct {
	Type     filesystem.NodeKind `json:"type"`
	Name     string              `json:"name"`
	Path     string              `json:"path"`
	Content  *string             `json:"content,omitempty"`  // files only
	Children map[string]*NodeDTO `json:"children,omitempty"` // directories only
}

// EncodeNode converts a subtree to its DTO form
func EncodeNode(n *filesystem.Node) *NodeDTO {
	dto := &NodeDTO{Type: n.Kind(), Name: n.Name(), Path: n.Path()}
	if n.IsFile() {
		content := n.Content()
		dto.Content = &content
		return dto
	}
	children := n.Children()
	if len(children) > 0 {
		dto.Children = make(map[string]*NodeDTO, len(children))
		for _, ch := range children {
			dto.Children[ch.Name()] = EncodeNode(ch)
		}
	}
	return dto
}

// UnmarshalSnapshot parses and validates a snapshot, returning the rebuilt
// tree. Any structural inconsistency fails the whole snapshot.
func UnmarshalSnapshot(data []byte) (*filesystem.Node, *SnapshotDTO, error) {
	var snap SnapshotDTO
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}
	if snap.Version != SnapshotVersion {
		return nil, &snap, fmt.Errorf("%w: got %d, want %d", ErrIncompatibleVersion, snap.Version, SnapshotVersion)
	}
	if snap.Root == nil {
		return nil, &snap, fmt.Errorf("%w: missing root", ErrCorruptSnapshot)
	}
	if snap.Root.Type != filesystem.DirKind || snap.Root.Path != filesystem.RootPath {
		return nil, &snap, fmt.Errorf("%w: root must be a directory at %q", ErrCorruptSnapshot, filesystem.RootPath)
	}

	root := filesystem.NewRootNode()
	if err := decodeChildren(root, snap.Root.Children); err != nil {
		return nil, &snap, err
	}
	return root, &snap, nil
}

func decodeChildren(parent *filesystem.Node, children map[string]*NodeDTO) error {
	for key, dto := range children {
		if dto == nil {
			return fmt.Errorf("%w: null entry %q under %s", ErrCorruptSnapshot, key, parent.Path())
		}
		if key != dto.Name {
			return fmt.Errorf("%w: entry %q under %s is named %q", ErrCorruptSnapshot, key, parent.Path(), dto.Name)
		}

		var child *filesystem.Node
		switch dto.Type {
		case filesystem.FileKind:
			if len(dto.Children) > 0 {
				return fmt.Errorf("%w: file %q has children", ErrCorruptSnapshot, dto.Path)
			}
			var content string
			if dto.Content != nil {
				content = *dto.Content
			}
			child = filesystem.NewFileNode(dto.Name, content)
		case filesystem.DirKind:
			if dto.Content != nil {
				return fmt.Errorf("%w: directory %q has content", ErrCorruptSnapshot, dto.Path)
			}
			child = filesystem.NewDirNode(dto.Name)
		default:
			return fmt.Errorf("%w: unknown node type %q at %q", ErrCorruptSnapshot, dto.Type, dto.Path)
		}

		if err := parent.AddChild(child); err != nil {
			return fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
		}
		if child.Path() != dto.Path {
			return fmt.Errorf("%w: recorded path %q does not match %q", ErrCorruptSnapshot, dto.Path, child.Path())
		}
		if child.IsDir() {
			if err := decodeChildren(child, dto.Children); err != nil {
				return err
			}
		}
	}
	return nil
}
