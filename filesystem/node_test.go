package filesystem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootNode(t *testing.T) {
	t.Parallel()

	root := NewRootNode()

	assert.Equal(t, RootPath, root.Path())
	assert.Equal(t, RootPath, root.Name())
	assert.True(t, root.IsDir())
	assert.Equal(t, 0, root.Size())
}

func TestNode_AddChild(t *testing.T) {
	t.Parallel()

	root := NewRootNode()
	dir := NewDirNode("docs")
	file := NewFileNode("a.txt", "hello")

	require.NoError(t, dir.AddChild(file))
	require.NoError(t, root.AddChild(dir))

	got, ok := root.GetChild("docs")
	require.True(t, ok)
	assert.Equal(t, dir, got)
	assert.Equal(t, "/docs", dir.Path())
	assert.Equal(t, "/docs/a.txt", file.Path(), "attaching must rewrite the whole subtree's paths")
}

func TestNode_AddChild_Rejects(t *testing.T) {
	t.Parallel()

	t.Run("ToFile", func(t *testing.T) {
		t.Parallel()
		f := NewFileNode("f", "")
		assert.Error(t, f.AddChild(NewFileNode("g", "")))
	})

	t.Run("Duplicate", func(t *testing.T) {
		t.Parallel()
		root := NewRootNode()
		require.NoError(t, root.AddChild(NewFileNode("x", "1")))
		err := root.AddChild(NewDirNode("x"))
		assert.Error(t, err)
		ch, _ := root.GetChild("x")
		assert.True(t, ch.IsFile(), "existing entry must be kept")
	})

	t.Run("InvalidName", func(t *testing.T) {
		t.Parallel()
		root := NewRootNode()
		assert.Error(t, root.AddChild(NewFileNode("", "")))
		assert.Error(t, root.AddChild(NewFileNode("a/b", "")))
	})
}

func TestNode_RemoveChild(t *testing.T) {
	t.Parallel()

	root := NewRootNode()
	require.NoError(t, root.AddChild(NewFileNode("a", "")))

	assert.True(t, root.RemoveChild("a"))
	assert.False(t, root.RemoveChild("a"))
	_, ok := root.GetChild("a")
	assert.False(t, ok)
}

func TestNode_Clone(t *testing.T) {
	t.Parallel()

	root := NewRootNode()
	dir := NewDirNode("d")
	require.NoError(t, root.AddChild(dir))
	require.NoError(t, dir.AddChild(NewFileNode("f", "v1")))

	cp := root.Clone()
	cpDir, _ := cp.GetChild("d")
	cpFile, _ := cpDir.GetChild("f")
	cpFile.content = "v2"

	orig, _ := dir.GetChild("f")
	assert.Equal(t, "v1", orig.Content(), "clone must not share nodes")
	assert.Equal(t, "/d/f", cpFile.Path())
}

func TestNode_Size(t *testing.T) {
	t.Parallel()

	dir := NewDirNode("d")
	require.NoError(t, dir.AddChild(NewFileNode("a", "")))
	require.NoError(t, dir.AddChild(NewFileNode("b", "")))

	assert.Equal(t, 2, dir.Size())
	assert.Equal(t, 5, NewFileNode("f", "hello").Size())
}

func TestCanonical(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"/":          "/",
		"":           "/",
		"///":        "/",
		"/a/b":       "/a/b",
		"//a//b/":    "/a/b",
		"a/b":        "/a/b",
		"/docs/":     "/docs",
		"/x.txt":     "/x.txt",
		"/a/./b//c/": "/a/./b/c",
	}
	for in, exp := range tests {
		assert.Equal(t, exp, Canonical(in), "Canonical(%q)", in)
	}
}

func TestParentPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/", ParentPath("/"))
	assert.Equal(t, "/", ParentPath("/readme.txt"))
	assert.Equal(t, "/a/b", ParentPath("/a/b/c.txt"))
	assert.Equal(t, "/a", ParentPath("//a//b/"))
}

func TestSortEntries(t *testing.T) {
	t.Parallel()

	entries := []NodeInfo{
		{Name: "zeta.txt", Kind: FileKind},
		{Name: "beta", Kind: DirKind},
		{Name: "alpha.txt", Kind: FileKind},
		{Name: "alpha", Kind: DirKind},
	}

	SortEntries(entries)

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	assert.Equal(t, []string{"alpha", "beta", "alpha.txt", "zeta.txt"}, names)
}
