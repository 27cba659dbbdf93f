// Copyright 2026 The Kiosk Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool provides a SQLite connection pool with uniform
// pragmas.
//
// Kiosk uses SQLite for database-backed tilesets, where many
// concurrent HTTP requests read tiles from the same file. The pool
// wraps zombiezen.com/go/sqlite with defaults suited to that shape:
// WAL journal mode, NORMAL synchronous, memory-mapped I/O for read
// performance, and a busy timeout to absorb write contention from
// tooling that populates a database while it is being served.
//
// The pool is built on zombiezen's sqlitex.Pool, which manages a
// fixed-size set of connections. Callers [Pool.Take] a connection,
// perform work, and [Pool.Put] it back. Connections are NOT safe for
// concurrent use — each goroutine must hold its own connection for the
// duration of its work.
//
// # Pragmas
//
// Every connection in the pool is initialized with these pragmas:
//
//   - journal_mode=WAL: write-ahead logging, so tile reads proceed
//     while tooling writes and neither blocks the other.
//   - synchronous=NORMAL: transactions survive process crashes. Not
//     durable across OS crashes or power failure — acceptable here
//     because tileset databases are derived files regenerated by
//     tooling, never a source of truth.
//   - busy_timeout=5000: wait up to 5 seconds for a write lock instead
//     of returning SQLITE_BUSY immediately.
//   - foreign_keys=OFF: the tileset schema is two independent tables;
//     referential integrity is the writer's concern.
//   - cache_size=-8192: 8 MB page cache per connection.
//   - mmap_size=268435456: 256 MB memory-mapped I/O for reads. On Linux
//     this avoids read(2) syscall overhead by letting the OS page cache
//     serve reads directly.
//   - temp_store=MEMORY: temporary tables and indexes in memory.
//
// Pools opened with [Config.ReadOnly] additionally set query_only=ON,
// rejecting any statement that would modify the database, and refuse
// to create a missing file. Serving pools use this mode; the only
// writer is tooling that populates a database through a read-write
// pool of its own.
//
// # Usage
//
//	pool, err := sqlitepool.Open(sqlitepool.Config{
//	    Path:     "/data/genes.tiles.db",
//	    PoolSize: 8,
//	    Logger:   logger,
//	    OnConnect: func(conn *sqlite.Conn) error {
//	        // Create tables, register functions, etc.
//	        return sqlitex.ExecuteScript(conn, schema, nil)
//	    },
//	})
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	conn, err := pool.Take(ctx)
//	if err != nil {
//	    return err
//	}
//	defer pool.Put(conn)
//
// # Design
//
// The package stays thin on purpose: pragmas plus the zombiezen types,
// nothing else. No query builder, no hiding of the connection model.
// Callers write SQL against sqlitex.Execute and get one dependency,
// one set of pragmas, and one pool pattern shared between the serving
// path and the tooling that builds databases for it.
package sqlitepool
