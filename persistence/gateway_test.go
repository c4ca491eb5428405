package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/brettbedarf/chatfs"
	"github.com/brettbedarf/chatfs/adapters"
	"github.com/brettbedarf/chatfs/config"
	"github.com/brettbedarf/chatfs/filesystem"
	"github.com/brettbedarf/chatfs/internal/metrics"
	"github.com/brettbedarf/chatfs/internal/mocks"
)

const testKey = "chatfs:test"

func sampleTree(t *testing.T) *filesystem.Node {
	t.Helper()
	ns := filesystem.NewNamespace()
	require.NoError(t, ns.CreateFile("/documents/notes.txt", "This is a note."))
	require.NoError(t, ns.CreateFile("/documents/work/report.docx", "Work report content."))
	require.NoError(t, ns.CreateFile("/readme.txt", ""))
	require.NoError(t, ns.CreateDirectory("/empty_folder"))
	return ns.Root()
}

// flatten maps every path to its kind and content for comparison
func flatten(n *filesystem.Node) map[string]string {
	out := map[string]string{}
	var walk func(*filesystem.Node)
	walk = func(n *filesystem.Node) {
		if n.IsFile() {
			out[n.Path()] = "file:" + n.Content()
			return
		}
		out[n.Path()] = "dir"
		for _, ch := range n.Children() {
			walk(ch)
		}
	}
	walk(n)
	return out
}

func TestGateway_RoundTrip(t *testing.T) {
	t.Parallel()

	store := adapters.NewMemoryStore()
	saved := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	g := New(store, testKey, WithClock(func() time.Time { return saved }))
	tree := sampleTree(t)

	require.NoError(t, g.Save(context.Background(), tree))

	got, status := g.Load(context.Background())
	assert.Equal(t, Restored, status)
	assert.Equal(t, flatten(tree), flatten(got))

	raw, err := store.Get(context.Background(), testKey)
	require.NoError(t, err)
	var snap SnapshotDTO
	require.NoError(t, json.Unmarshal(raw, &snap))
	assert.Equal(t, SnapshotVersion, snap.Version)
	assert.True(t, saved.Equal(snap.SavedAt))
	assert.NotEmpty(t, snap.ID)
}

func TestGateway_SaveUsesFreshID(t *testing.T) {
	t.Parallel()

	store := adapters.NewMemoryStore()
	g := New(store, testKey)
	ctx := context.Background()

	ids := map[string]bool{}
	for range 3 {
		require.NoError(t, g.Save(ctx, filesystem.NewRootNode()))
		raw, err := store.Get(ctx, testKey)
		require.NoError(t, err)
		var snap SnapshotDTO
		require.NoError(t, json.Unmarshal(raw, &snap))
		ids[snap.ID] = true
	}
	assert.Len(t, ids, 3)
}

func TestGateway_LoadFresh(t *testing.T) {
	t.Parallel()

	g := New(adapters.NewMemoryStore(), testKey)
	root, status := g.Load(context.Background())

	assert.Equal(t, Fresh, status)
	assert.Equal(t, map[string]string{"/": "dir"}, flatten(root))
}

func TestGateway_LoadReset(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{"not json", `{"version":1,"root":`},
		{"wrong version", `{"version":99,"root":{"type":"directory","name":"/","path":"/"}}`},
		{"missing root", `{"version":1}`},
		{"root is a file", `{"version":1,"root":{"type":"file","name":"/","path":"/"}}`},
		{"unknown type", `{"version":1,"root":{"type":"directory","name":"/","path":"/","children":{"a":{"type":"link","name":"a","path":"/a"}}}}`},
		{"name mismatch", `{"version":1,"root":{"type":"directory","name":"/","path":"/","children":{"a":{"type":"file","name":"b","path":"/b"}}}}`},
		{"path mismatch", `{"version":1,"root":{"type":"directory","name":"/","path":"/","children":{"a":{"type":"file","name":"a","path":"/x/a"}}}}`},
		{"file with children", `{"version":1,"root":{"type":"directory","name":"/","path":"/","children":{"a":{"type":"file","name":"a","path":"/a","children":{"b":{"type":"file","name":"b","path":"/a/b"}}}}}}`},
		{"invalid name", `{"version":1,"root":{"type":"directory","name":"/","path":"/","children":{"a/b":{"type":"file","name":"a/b","path":"/a/b"}}}}`},
		{"null child", `{"version":1,"root":{"type":"directory","name":"/","path":"/","children":{"a":null}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := adapters.NewMemoryStore()
			require.NoError(t, store.Put(context.Background(), testKey, []byte(tt.data)))

			root, status := New(store, testKey).Load(context.Background())
			assert.Equal(t, Reset, status)
			assert.Equal(t, map[string]string{"/": "dir"}, flatten(root))
		})
	}
}

func TestUnmarshalSnapshot_Errors(t *testing.T) {
	t.Parallel()

	_, _, err := UnmarshalSnapshot([]byte(`nope`))
	assert.ErrorIs(t, err, ErrCorruptSnapshot)

	_, snap, err := UnmarshalSnapshot([]byte(`{"version":2}`))
	assert.ErrorIs(t, err, ErrIncompatibleVersion)
	require.NotNil(t, snap)
	assert.Equal(t, 2, snap.Version)
}

func TestEncodeNode_EmptyFileKeepsContent(t *testing.T) {
	t.Parallel()

	dto := EncodeNode(filesystem.NewFileNode("a", ""))
	require.NotNil(t, dto.Content)
	assert.Empty(t, *dto.Content)
	assert.Nil(t, dto.Children)
}

func TestGateway_StoreFailures(t *testing.T) {
	t.Parallel()

	store := &mocks.MockStore{}
	storeErr := errors.New("disk full")
	store.On("Put", mock.Anything, testKey, mock.Anything).Return(storeErr)
	store.On("Get", mock.Anything, testKey).Return(nil, storeErr)

	m := metrics.New(nil)
	g := New(store, testKey, WithMetrics(m))

	err := g.Save(context.Background(), filesystem.NewRootNode())
	assert.ErrorIs(t, err, storeErr)

	root, status := g.Load(context.Background())
	assert.Equal(t, Unavailable, status)
	assert.True(t, root.IsDir())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Saves.WithLabelValues(metrics.OutcomeFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Loads.WithLabelValues("unavailable")))
	store.AssertExpectations(t)
}

func TestGateway_NotFoundFromStore(t *testing.T) {
	t.Parallel()

	store := &mocks.MockStore{}
	store.On("Get", mock.Anything, testKey).Return(nil, chatfs.ErrKeyNotFound)

	_, status := New(store, testKey).Load(context.Background())
	assert.Equal(t, Fresh, status)
}

func TestGateway_AsNamespaceSaver(t *testing.T) {
	t.Parallel()

	srv := miniredis.RunT(t)
	store, err := adapters.NewRedisStore(config.StoreOptions{RedisAddr: srv.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() }) // nolint:errcheck

	m := metrics.New(nil)
	g := New(store, testKey, WithMetrics(m))
	ns := filesystem.NewNamespace(filesystem.WithSaver(g))

	require.NoError(t, ns.CreateFile("/a/b.txt", "hello"))
	require.NoError(t, ns.CreateDirectory("/c"))
	assert.NoError(t, ns.LastSaveError())
	assert.True(t, srv.Exists(testKey))

	restored, status := New(store, testKey).Load(context.Background())
	require.Equal(t, Restored, status)
	assert.Equal(t, flatten(ns.Root()), flatten(restored))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Saves.WithLabelValues(metrics.OutcomeSuccess)))
}

func TestLoadStatus_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "fresh", Fresh.String())
	assert.Equal(t, "restored", Restored.String())
	assert.Equal(t, "reset", Reset.String())
	assert.Equal(t, "unavailable", Unavailable.String())
	assert.Equal(t, "LoadStatus(9)", LoadStatus(9).String())
}
