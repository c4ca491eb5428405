package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/brettbedarf/chatfs/config"
	"github.com/brettbedarf/chatfs/internal/util"
	"github.com/brettbedarf/chatfs/server"
)

func main() {
	// Parse command line arguments
	var (
		configPath  string
		verbose     int
		storeType   string
		storeDir    string
		mnt         string
		metricsAddr string
		umount      bool
	)
	flag.StringVar(&configPath, "config", "", "Path to a YAML or JSON config file")
	flag.StringVar(&configPath, "c", "", "--config (shorthand)")
	flag.IntVar(&verbose, "verbose", config.InfoVerbose, "Log verbosity level between 1 (error) and 5 (trace). Default is 3 (info).")
	flag.IntVar(&verbose, "v", config.InfoVerbose, "--verbose (shorthand)")
	flag.StringVar(&storeType, "store", "", "Snapshot store type: memory, file or redis")
	flag.StringVar(&storeType, "s", "", "--store (shorthand)")
	flag.StringVar(&storeDir, "dir", "", "Directory for the file store")
	flag.StringVar(&mnt, "mount", "", "Optional mount point for a read-only FUSE view")
	flag.StringVar(&mnt, "m", "", "--mount (shorthand)")
	flag.StringVar(&metricsAddr, "metrics", "", "Address to serve prometheus metrics on, e.g. :9090")
	flag.BoolVar(&umount, "umount", false,
		"Unmount the mount point first if needed. Useful after a crash left it mounted.")
	flag.BoolVar(&umount, "u", false, "--umount (shorthand)")
	flag.Parse()

	// Flags only override values that were set explicitly
	flagOverride := &config.ConfigOverride{}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "verbose", "v":
			flagOverride.LogLvl = &verbose
		case "store", "s":
			flagOverride.StoreType = &storeType
		case "dir":
			flagOverride.StoreDir = &storeDir
		case "metrics":
			flagOverride.MetricsAddr = &metricsAddr
		}
	})

	cfg, err := loadConfig(configPath, flagOverride)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chatfs: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	util.InitializeLogger(cfg.LogLvl)
	logger := util.GetLogger("main")
	logger.Debug().
		Str("store", cfg.Store.Type).
		Str("mnt", mnt).
		Str("metrics", cfg.MetricsAddr).
		Msg("chatfs initializing")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	sess := newSession(os.Stdout)
	cfs, err := server.New(ctx, cfg, server.WithChangeNotifier(sess.onChange))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize namespace")
	}
	sess.attach(cfs, cfs.NewInterpreter(sess.interpreterOptions()...))

	if cfg.MetricsAddr != "" {
		srv := serveMetrics(cfg.MetricsAddr, cfs.MetricsHandler())
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx) // nolint:errcheck
		}()
	}

	if mnt != "" {
		// Try unmount if requested
		if umount {
			cmd := exec.Command("fusermount", "-u", mnt)
			// we ignore error here if not already mounted
			cmd.Run() // nolint:errcheck
		}
		if err := cfs.Serve(mnt); err != nil {
			logger.Fatal().Err(err).Str("mountpoint", mnt).Msg("Failed to mount filesystem")
		}
	}

	done := make(chan error, 1)
	go func() {
		done <- sess.run(ctx, os.Stdin)
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.Error().Err(err).Msg("Failed to read input")
		}
	case <-ctx.Done():
		logger.Info().Msg("Received signal, shutting down")
	}

	if err := cfs.Close(); err != nil {
		logger.Error().Err(err).Msg("Failed to close store")
	}
}

// loadConfig layers defaults, the config file, CHATFS_* environment
// variables and explicit flags, in that order.
func loadConfig(path string, flags *config.ConfigOverride) (*config.Config, error) {
	cfg := config.NewDefaultConfig()
	if path != "" {
		fileOverride, err := config.LoadConfigOverrideFile(path)
		if err != nil {
			return nil, err
		}
		cfg.Merge(fileOverride)
	}
	envOverride, err := config.LoadConfigOverrideEnv()
	if err != nil {
		return nil, err
	}
	cfg.Merge(envOverride)
	cfg.Merge(flags)
	return cfg, nil
}

func serveMetrics(addr string, handler http.Handler) *http.Server {
	logger := util.GetLogger("Metrics")
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info().Str("addr", addr).Msg("Serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Metrics server stopped")
		}
	}()
	return srv
}
