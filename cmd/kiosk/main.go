// Copyright 2026 The Kiosk Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/kiosk/lib/config"
	"github.com/bureau-foundation/kiosk/lib/manifest"
	"github.com/bureau-foundation/kiosk/lib/provider"
	"github.com/bureau-foundation/kiosk/lib/resource"
	"github.com/bureau-foundation/kiosk/lib/tileset"
	"github.com/bureau-foundation/kiosk/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath   string
		manifestPath string
		address      string
		proxyPrefix  string
		origins      []string
		blockSize    int
		quiet        bool
	)

	flagSet := pflag.NewFlagSet("kiosk", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "YAML config file (default: $KIOSK_CONFIG when set)")
	flagSet.StringVar(&manifestPath, "manifest", "", "JSONC manifest of resources to serve")
	flagSet.StringVar(&address, "address", "", "listen address (default 127.0.0.1:0)")
	flagSet.StringVar(&proxyPrefix, "proxy-prefix", "", "advertised base URL template, {port} expands to the bound port")
	flagSet.StringSliceVar(&origins, "origin", nil, "allowed CORS origin (repeatable, default *)")
	flagSet.IntVar(&blockSize, "block-size", 0, "streaming block size in bytes")
	flagSet.BoolVar(&quiet, "quiet", false, "only log warnings and errors")
	flagSet.BoolP("help", "h", false, "show help")

	// Handle --version before flag parsing so it works regardless of
	// the rest of the command line.
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("kiosk")
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}

	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	// Explicit flags override the config file.
	if flagSet.Changed("manifest") {
		cfg.Resources.Manifest = manifestPath
	}
	if flagSet.Changed("address") {
		cfg.Server.Address = address
	}
	if flagSet.Changed("proxy-prefix") {
		cfg.Server.ProxyPrefix = proxyPrefix
	}
	if flagSet.Changed("origin") {
		cfg.Server.AllowedOrigins = origins
	}
	if flagSet.Changed("block-size") {
		cfg.Resources.BlockSize = blockSize
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	shutdownTimeout, err := cfg.ShutdownTimeout()
	if err != nil {
		return err
	}

	var declared *manifest.Manifest
	if cfg.Resources.Manifest != "" {
		declared, err = manifest.ReadFile(cfg.Resources.Manifest)
		if err != nil {
			return err
		}
		if issues := declared.Validate(); len(issues) > 0 {
			return fmt.Errorf("invalid manifest %s:\n  %s",
				cfg.Resources.Manifest, strings.Join(issues, "\n  "))
		}
	}

	paths := flagSet.Args()
	if len(paths) == 0 && (declared == nil || declared.Total() == 0) {
		return fmt.Errorf("nothing to serve: pass file or directory paths, or --manifest")
	}

	logger := newLogger(quiet)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := provider.New(provider.Config{
		Logger:          logger,
		Address:         cfg.Server.Address,
		ProxyPrefix:     cfg.Server.ProxyPrefix,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		BlockSize:       cfg.Resources.BlockSize,
		ShutdownTimeout: shutdownTimeout,
		Mounts:          []provider.Mount{tileset.NewMount()},
	})

	if err := p.Start(); err != nil {
		return err
	}
	defer func() {
		if err := p.Shutdown(context.Background()); err != nil {
			logger.Error("transport shutdown error", "error", err)
		}
	}()

	// LIFO defer order releases registrations and backing stores
	// before the transport stops serving.
	closers, count, err := registerAll(ctx, p, declared, paths, os.Stdout, logger)
	defer closeAll(closers, logger)
	if err != nil {
		return err
	}

	base, err := p.BaseURL()
	if err != nil {
		return err
	}
	logger.Info("kiosk running", "base_url", base, "resources", count)

	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}

// loadConfig resolves the configuration: an explicit --config path
// wins, then the KIOSK_CONFIG environment variable, then built-in
// defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	if os.Getenv("KIOSK_CONFIG") != "" {
		return config.Load()
	}
	return config.Default(), nil
}

// registerAll registers the positional paths and the manifest's
// entries, printing one "id<TAB>url" line per resource to out. The
// returned closers release everything opened so far, in reverse
// order, even when registration stops at an error.
func registerAll(ctx context.Context, p *provider.Provider, declared *manifest.Manifest, paths []string, out io.Writer, logger *slog.Logger) ([]io.Closer, int, error) {
	var closers []io.Closer
	count := 0

	register := func(obj any, options resource.Options) error {
		res, err := p.Create(obj, options)
		if err != nil {
			return err
		}
		closers = append(closers, res)
		url, err := res.URL()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\t%s\n", res.ID(), url)
		count++
		return nil
	}

	// The mounts reject absent paths structurally; checking here
	// first turns that into a readable error naming the path.
	registerPath := func(path string, headers map[string]string) error {
		if _, err := os.Stat(path); err != nil {
			return err
		}
		return register(provider.Path(path), resource.Options{Headers: headers})
	}

	for _, path := range paths {
		if err := registerPath(path, nil); err != nil {
			return closers, count, fmt.Errorf("registering %s: %w", path, err)
		}
	}

	if declared == nil {
		return closers, count, nil
	}

	for _, entry := range declared.Files {
		if err := registerPath(entry.Path, entry.Headers); err != nil {
			return closers, count, fmt.Errorf("registering file: %w", err)
		}
	}
	for _, entry := range declared.Directories {
		if err := registerPath(entry.Path, entry.Headers); err != nil {
			return closers, count, fmt.Errorf("registering directory: %w", err)
		}
	}
	for _, entry := range declared.Contents {
		options := resource.Options{Extension: entry.Extension, Headers: entry.Headers}
		if err := register(entry.Text, options); err != nil {
			return closers, count, fmt.Errorf("registering inline content: %w", err)
		}
	}
	for _, entry := range declared.Tilesets {
		ts, backing, err := openTileset(ctx, entry, logger)
		if err != nil {
			return closers, count, fmt.Errorf("opening tileset: %w", err)
		}
		if backing != nil {
			closers = append(closers, backing)
		}
		if err := register(ts, resource.Options{UID: entry.UID}); err != nil {
			return closers, count, fmt.Errorf("registering tileset: %w", err)
		}
	}

	return closers, count, nil
}

// openTileset opens the entry's backing store. The returned closer,
// when non-nil, releases the store itself (the sqlite pool) and is
// distinct from the registration handle register hands back.
func openTileset(ctx context.Context, entry manifest.TilesetEntry, logger *slog.Logger) (tileset.Tileset, io.Closer, error) {
	if entry.Archive != "" {
		archive, err := tileset.OpenArchive(entry.Archive)
		if err != nil {
			return nil, nil, err
		}
		return archive, nil, nil
	}

	db, err := tileset.OpenSQLite(ctx, entry.SQLite, logger)
	if err != nil {
		return nil, nil, err
	}
	return db, db, nil
}

// closeAll closes in reverse order of creation, so registrations
// release before the stores backing them.
func closeAll(closers []io.Closer, logger *slog.Logger) {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			logger.Error("close failed", "error", err)
		}
	}
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `Kiosk — serve local files, directories, and tilesets over HTTP.

Every registered resource gets a deterministic content-addressed URL,
printed to stdout as "id<TAB>url". The server runs until interrupted;
resources disappear when the process exits.

Usage:
  kiosk [flags] [path ...]

Positional paths register as file or directory resources. A manifest
adds files, directories, inline contents, and tile archives or
tileset databases.

Examples:
  # Serve a single file on a random loopback port
  kiosk results.csv

  # Serve a directory tree plus everything a manifest declares
  kiosk --manifest resources.jsonc ./public

  # Fixed port behind a JupyterHub proxy
  kiosk --address 127.0.0.1:8008 --proxy-prefix "${JUPYTERHUB_SERVICE_PREFIX}proxy/{port}" data/

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
