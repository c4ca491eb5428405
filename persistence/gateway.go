// Package persistence stores namespace snapshots in a [chatfs.Store].
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brettbedarf/chatfs"
	"github.com/brettbedarf/chatfs/filesystem"
	"github.com/brettbedarf/chatfs/internal/metrics"
	"github.com/brettbedarf/chatfs/internal/util"
)

// LoadStatus tells the caller where the startup tree came from
type LoadStatus int

const (
	// Fresh means no snapshot existed
	Fresh LoadStatus = iota
	// Restored means the stored snapshot was loaded
	Restored
	// Reset means a snapshot existed but was corrupt or incompatible
	Reset
	// Unavailable means the store could not be read at all
	Unavailable
)

func (s LoadStatus) String() string {
	switch s {
	case Fresh:
		return "fresh"
	case Restored:
		return "restored"
	case Reset:
		return "reset"
	case Unavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("LoadStatus(%d)", int(s))
	}
}

// Gateway serialises the whole tree under a single store key
type Gateway struct {
	store   chatfs.Store
	key     string
	metrics *metrics.Metrics
	now     func() time.Time
	logger  util.Logger
}

type Option func(*Gateway)

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gateway) {
		g.metrics = m
	}
}

// WithClock overrides the timestamp source for saved_at
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		g.now = now
	}
}

func New(store chatfs.Store, key string, opts ...Option) *Gateway {
	g := &Gateway{
		store:  store,
		key:    key,
		now:    time.Now,
		logger: util.GetLogger("Persistence"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Save writes the full tree. Every call replaces the previous snapshot.
func (g *Gateway) Save(ctx context.Context, root *filesystem.Node) error {
	snap := SnapshotDTO{
		Version: SnapshotVersion,
		ID:      uuid.NewString(),
		SavedAt: g.now().UTC(),
		Root:    EncodeNode(root),
	}
	data, err := json.Marshal(&snap)
	if err != nil {
		g.metrics.ObserveSave(err, 0)
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := g.store.Put(ctx, g.key, data); err != nil {
		g.metrics.ObserveSave(err, 0)
		return fmt.Errorf("failed to write snapshot %q: %w", g.key, err)
	}
	g.metrics.ObserveSave(nil, len(data))
	g.logger.Trace().Str("id", snap.ID).Int("bytes", len(data)).Msg("Snapshot saved")
	return nil
}

// Load returns the stored tree, or a root-only tree when nothing usable is
// stored. It never fails; the status says which case applied.
func (g *Gateway) Load(ctx context.Context) (*filesystem.Node, LoadStatus) {
	root, status := g.load(ctx)
	g.metrics.ObserveLoad(status.String())
	return root, status
}

func (g *Gateway) load(ctx context.Context) (*filesystem.Node, LoadStatus) {
	data, err := g.store.Get(ctx, g.key)
	if errors.Is(err, chatfs.ErrKeyNotFound) {
		g.logger.Info().Str("key", g.key).Msg("No snapshot found; starting empty")
		return filesystem.NewRootNode(), Fresh
	}
	if err != nil {
		g.logger.Error().Err(err).Str("key", g.key).Msg("Failed to read snapshot; starting empty")
		return filesystem.NewRootNode(), Unavailable
	}

	root, snap, err := UnmarshalSnapshot(data)
	if err != nil {
		g.logger.Warn().Err(err).Str("key", g.key).Msg("Discarding unusable snapshot")
		return filesystem.NewRootNode(), Reset
	}
	g.logger.Info().
		Str("id", snap.ID).
		Time("saved_at", snap.SavedAt).
		Msg("Snapshot restored")
	return root, Restored
}

var _ filesystem.Saver = (*Gateway)(nil)
