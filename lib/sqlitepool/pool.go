// Copyright 2026 The Kiosk Authors
// SPDX-License-Identifier: Apache-2.0

package sqlitepool

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// Config holds the parameters for opening a SQLite connection pool.
// Path is required; everything else has defaults.
type Config struct {
	// Path is the filesystem path of the database file. In read-write
	// mode the file is created if absent (the parent directory must
	// exist). ":memory:" gives an in-memory database, useful in tests;
	// pair it with PoolSize 1, each in-memory connection is its own
	// database.
	Path string

	// ReadOnly opens the pool for serving an existing database: the
	// file must already exist, and statements that modify it are
	// rejected per connection (query_only). Serving pools are always
	// read-only so a mistyped path surfaces as an open error instead
	// of a fresh empty database.
	ReadOnly bool

	// PoolSize is the number of connections. Zero or negative means
	// max(runtime.NumCPU(), 4). Tile reads are the dominant workload;
	// extra connections directly serve concurrent tile requests.
	PoolSize int

	// Logger receives operational messages (pool open/close). Nil
	// means silent.
	Logger *slog.Logger

	// OnConnect runs once per connection after the standard pragmas.
	// Writers use it for schema creation. An OnConnect error discards
	// the connection and surfaces from Take.
	OnConnect func(conn *sqlite.Conn) error
}

// Pool is a fixed-size pool of SQLite connections with uniform
// pragmas, wrapping sqlitex.Pool with its Take/Put API.
//
// The Pool itself is concurrency-safe. A borrowed connection is not:
// it belongs to one goroutine from Take until Put hands it back.
type Pool struct {
	inner  *sqlitex.Pool
	logger *slog.Logger
	path   string
}

// Open creates the pool. Connections are initialized lazily, so a
// problem with the file itself (missing in read-only mode, bad
// permissions) may only surface from the first Take. The caller must
// Close the pool when done.
func Open(cfg Config) (*Pool, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlitepool: Path is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = runtime.NumCPU()
		if poolSize < 4 {
			poolSize = 4
		}
	}

	// Zero flags mean the sqlitex default (read-write, create if
	// absent, WAL). Read-only mode keeps the descriptor writable so
	// the WAL upgrade pragma still works on databases created without
	// it; write protection comes from query_only instead.
	var flags sqlite.OpenFlags
	if cfg.ReadOnly {
		flags = sqlite.OpenReadWrite | sqlite.OpenWAL | sqlite.OpenURI | sqlite.OpenNoMutex
	}

	inner, err := sqlitex.NewPool(cfg.Path, sqlitex.PoolOptions{
		Flags:    flags,
		PoolSize: poolSize,
		PrepareConn: func(conn *sqlite.Conn) error {
			return prepareConnection(conn, cfg.ReadOnly, cfg.OnConnect)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sqlitepool: opening %s: %w", cfg.Path, err)
	}

	logger.Info("sqlite pool opened",
		"path", cfg.Path,
		"pool_size", poolSize,
		"read_only", cfg.ReadOnly,
	)

	return &Pool{
		inner:  inner,
		logger: logger,
		path:   cfg.Path,
	}, nil
}

// Take borrows a connection, blocking until one is available or ctx
// is cancelled. Every Take needs a matching Put:
//
//	conn, err := pool.Take(ctx)
//	if err != nil {
//	    return err
//	}
//	defer pool.Put(conn)
func (p *Pool) Take(ctx context.Context) (*sqlite.Conn, error) {
	conn, err := p.inner.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("sqlitepool: take: %w", err)
	}
	return conn, nil
}

// Put returns a connection to the pool. Nil is a no-op. The caller
// must not touch the connection afterwards.
func (p *Pool) Put(conn *sqlite.Conn) {
	p.inner.Put(conn)
}

// Close closes the pool, blocking until all borrowed connections are
// returned. After Close, Take fails.
func (p *Pool) Close() error {
	err := p.inner.Close()
	if err != nil {
		p.logger.Error("sqlite pool close error",
			"path", p.path,
			"error", err,
		)
		return fmt.Errorf("sqlitepool: closing %s: %w", p.path, err)
	}
	p.logger.Info("sqlite pool closed", "path", p.path)
	return nil
}

// prepareConnection applies the standard pragmas, the read-only guard
// when requested, and finally the caller's OnConnect. Runs once per
// connection, on first use.
func prepareConnection(conn *sqlite.Conn, readOnly bool, onConnect func(*sqlite.Conn) error) error {
	// WAL so readers never block the writer populating a database
	// that is being served. synchronous=NORMAL is safe for derived
	// files regenerated by tooling.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=OFF",
		"PRAGMA cache_size=-8192",
		"PRAGMA mmap_size=268435456",
		"PRAGMA temp_store=MEMORY",
	}
	if readOnly {
		// Last, after the WAL upgrade above, which is itself a write.
		pragmas = append(pragmas, "PRAGMA query_only=ON")
	}

	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("sqlitepool: %s: %w", pragma, err)
		}
	}

	if onConnect != nil {
		if err := onConnect(conn); err != nil {
			return fmt.Errorf("sqlitepool: OnConnect: %w", err)
		}
	}

	return nil
}
