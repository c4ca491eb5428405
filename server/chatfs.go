// Package server assembles a ready to use namespace from configuration and
// optionally exposes it as a read-only FUSE mount.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/brettbedarf/chatfs"
	"github.com/brettbedarf/chatfs/adapters"
	"github.com/brettbedarf/chatfs/commands"
	"github.com/brettbedarf/chatfs/config"
	"github.com/brettbedarf/chatfs/filesystem"
	"github.com/brettbedarf/chatfs/internal/metrics"
	"github.com/brettbedarf/chatfs/internal/util"
	"github.com/brettbedarf/chatfs/persistence"
)

// ChatFs wires the namespace to its store, metrics and mount
type ChatFs struct {
	*filesystem.Namespace
	cfg      *config.Config
	store    chatfs.Store
	status   persistence.LoadStatus
	metrics  *metrics.Metrics
	registry *prometheus.Registry
	logger   util.Logger

	mu     sync.Mutex // guards server
	server *fuse.Server
}

type options struct {
	store    chatfs.Store
	notifier filesystem.ChangeNotifier
}

type Option func(*options)

// WithStore uses s instead of building a store from the config
func WithStore(s chatfs.Store) Option {
	return func(o *options) {
		o.store = s
	}
}

// WithChangeNotifier forwards namespace change notifications
func WithChangeNotifier(fn filesystem.ChangeNotifier) Option {
	return func(o *options) {
		o.notifier = fn
	}
}

// New opens the configured store, restores the last snapshot and seeds the
// sample entries when nothing was restored.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*ChatFs, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	logger := util.GetLogger("ChatFs")

	store := o.store
	if store == nil {
		stores := adapters.NewRegistry()
		stores.RegisterBuiltins()
		var err error
		if store, err = stores.NewStore(cfg.Store); err != nil {
			return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Type, err)
		}
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	gateway := persistence.New(store, cfg.Store.Key, persistence.WithMetrics(m))
	root, status := gateway.Load(ctx)

	nsOpts := []filesystem.Option{filesystem.WithRoot(root), filesystem.WithSaver(gateway)}
	if o.notifier != nil {
		nsOpts = append(nsOpts, filesystem.WithChangeNotifier(o.notifier))
	}
	ns := filesystem.NewNamespace(nsOpts...)

	// an unreadable store may still hold data; seeding would overwrite it
	if cfg.SeedSamples && (status == persistence.Fresh || status == persistence.Reset) {
		n := chatfs.SeedSamples(ns)
		logger.Debug().Int("created", n).Msg("Seeded sample entries")
	}

	logger.Info().
		Str("store", cfg.Store.Type).
		Stringer("snapshot", status).
		Msg("Namespace ready")

	return &ChatFs{
		Namespace: ns,
		cfg:       cfg,
		store:     store,
		status:    status,
		metrics:   m,
		registry:  registry,
		logger:    logger,
	}, nil
}

// LoadStatus reports how the namespace was initialised
func (c *ChatFs) LoadStatus() persistence.LoadStatus {
	return c.status
}

func (c *ChatFs) Metrics() *metrics.Metrics {
	return c.metrics
}

// MetricsHandler serves this instance's prometheus registry
func (c *ChatFs) MetricsHandler() http.Handler {
	return metrics.Handler(c.registry)
}

// NewInterpreter returns a command interpreter bound to the namespace that
// reports to this instance's metrics.
func (c *ChatFs) NewInterpreter(opts ...commands.Option) *commands.Interpreter {
	return commands.New(c.Namespace, append([]commands.Option{commands.WithMetrics(c.metrics)}, opts...)...)
}

// Serve mounts a read-only view of the namespace at mountPoint and returns
// once the kernel has the mount.
func (c *ChatFs) Serve(mountPoint string) error {
	attrTimeout := secondsToDuration(c.cfg.AttrTimeout)
	entryTimeout := secondsToDuration(c.cfg.EntryTimeout)
	fuseLogger := util.NewLogLogger("FuseServer", util.TraceLevel)

	srv, err := fs.Mount(mountPoint, newRootNode(c.Namespace), &fs.Options{
		AttrTimeout:  &attrTimeout,
		EntryTimeout: &entryTimeout,
		Logger:       fuseLogger,
		MountOptions: fuse.MountOptions{
			Name:    c.cfg.Name,
			FsName:  c.cfg.FsName,
			Debug:   c.cfg.Debug || c.cfg.LogLvl == util.TraceLevel,
			Logger:  fuseLogger,
			Options: []string{"ro"},
		},
	})
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.server = srv
	c.mu.Unlock()
	c.logger.Info().Str("mountpoint", mountPoint).Msg("Filesystem mounted")
	return nil
}

// Unmount cleanly unmounts the filesystem if it was mounted.
func (c *ChatFs) Unmount() error {
	c.mu.Lock()
	srv := c.server
	c.server = nil
	c.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Unmount()
}

// Close unmounts and releases the store
func (c *ChatFs) Close() error {
	if err := c.Unmount(); err != nil {
		c.logger.Error().Err(err).Msg("Failed to unmount filesystem")
	}
	return c.store.Close()
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
