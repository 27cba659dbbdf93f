// Copyright 2026 The Kiosk Authors
// SPDX-License-Identifier: Apache-2.0

// Package provider dispatches arbitrary objects to resource handlers
// and serves them over a background HTTP transport.
//
// A Provider holds an ordered list of mounts. Create walks the list
// and the first mount whose Handles accepts the object builds and
// registers the resource; custom mounts from Config.Mounts are
// consulted before the built-in file, directory, and content mounts.
// The transport starts lazily on the first Create, so constructing a
// provider is free until something is actually served.
//
// Registration returns a *Resource owning the table entry. The entry
// lives until every owner closes its handle; after that, requests for
// the id answer 404 exactly as if it had never been registered.
package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/bureau-foundation/kiosk/lib/httprange"
	"github.com/bureau-foundation/kiosk/lib/resource"
	"github.com/bureau-foundation/kiosk/lib/server"
)

// ErrNoHandler reports a Create input no mount accepts. This is a
// caller error surfaced synchronously, never retried.
var ErrNoHandler = errors.New("no mount handles object")

// Provider routes objects to mounts and serves the results.
type Provider struct {
	logger    *slog.Logger
	mounts    []Mount
	server    *server.Server
	proxy     string
	blockSize int
}

// Config configures a Provider.
type Config struct {
	// Logger is the structured logger. Required.
	Logger *slog.Logger

	// Address is the transport listen address. Defaults to
	// "127.0.0.1:0".
	Address string

	// AllowedOrigins configures CORS. Defaults to allowing any
	// origin, matching the local-visualization use case where the
	// front-end is served from a different local port.
	AllowedOrigins []string

	// ProxyPrefix, when set, is the advertised base URL with an
	// optional "{port}" placeholder, for deployments behind a
	// notebook proxy. Takes priority over the JUPYTERHUB_SERVICE_PREFIX
	// environment fallback.
	ProxyPrefix string

	// BlockSize caps streamed read chunks for file-backed resources.
	// Zero selects httprange.DefaultBlockSize.
	BlockSize int

	// ShutdownTimeout bounds graceful transport shutdown.
	ShutdownTimeout time.Duration

	// Mounts are custom handler variants consulted before the
	// built-in mounts, in order. First match wins.
	Mounts []Mount
}

// New builds a Provider. The transport is not started; it binds on
// the first Create (or an explicit Start).
func New(config Config) *Provider {
	if config.Logger == nil {
		panic("provider.Provider: Logger is required")
	}

	mounts := slices.Clone(config.Mounts)
	mounts = append(mounts, NewFileMount(), NewDirectoryMount(), NewContentMount())

	mux := http.NewServeMux()
	for _, mount := range mounts {
		mount.Routes(mux)
	}

	origins := config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	blockSize := config.BlockSize
	if blockSize <= 0 {
		blockSize = httprange.DefaultBlockSize
	}

	return &Provider{
		logger:    config.Logger,
		mounts:    mounts,
		proxy:     config.ProxyPrefix,
		blockSize: blockSize,
		server: server.New(server.Config{
			Address:         config.Address,
			Handler:         server.AllowCORS(mux, origins),
			ShutdownTimeout: config.ShutdownTimeout,
			Logger:          config.Logger,
		}),
	}
}

// Create dispatches obj to the first mount that handles it, registers
// the resulting resource, and returns the caller's ownership handle.
// The transport is started first so the resource's URL is immediately
// fetchable.
func (p *Provider) Create(obj any, options resource.Options) (*Resource, error) {
	if options.BlockSize == 0 {
		options.BlockSize = p.blockSize
	}

	for _, mount := range p.mounts {
		if !mount.Handles(obj) {
			continue
		}
		if err := p.server.Start(); err != nil {
			return nil, fmt.Errorf("starting transport: %w", err)
		}
		id, owner, err := mount.Create(obj, options)
		if err != nil {
			return nil, err
		}
		p.logger.Info("resource registered", "id", id, "mount", mount.Prefix())
		return &Resource{provider: p, mount: mount, id: id, owner: owner}, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrNoHandler, obj)
}

// Start binds the transport eagerly. Create does this on demand;
// Start exists for callers that want the port before registering
// anything.
func (p *Provider) Start() error {
	return p.server.Start()
}

// Shutdown stops the transport gracefully. Registered resources keep
// their table entries; a later Start serves them again (on a new
// port).
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.server.Stop(ctx)
}

// Ready reports transport readiness; see server.Server.Ready.
func (p *Provider) Ready() <-chan struct{} {
	return p.server.Ready()
}

// Port returns the transport's bound TCP port.
func (p *Provider) Port() (int, error) {
	return p.server.Port()
}

// BaseURL returns the advertised URL prefix for registered resources.
// Computed per call, never cached: the port exists only once the
// transport is running, and proxy configuration may address the
// provider through an external prefix.
//
// Precedence: the configured ProxyPrefix (with "{port}" expanded),
// then the JUPYTERHUB_SERVICE_PREFIX environment variable in the form
// used by jupyter-server-proxy, then plain localhost.
func (p *Provider) BaseURL() (string, error) {
	port, err := p.server.Port()
	if err != nil {
		return "", err
	}
	if p.proxy != "" {
		return strings.TrimSuffix(strings.ReplaceAll(p.proxy, "{port}", strconv.Itoa(port)), "/"), nil
	}
	if prefix := os.Getenv("JUPYTERHUB_SERVICE_PREFIX"); prefix != "" {
		return fmt.Sprintf("%sproxy/%d", prefix, port), nil
	}
	return fmt.Sprintf("http://localhost:%d", port), nil
}
