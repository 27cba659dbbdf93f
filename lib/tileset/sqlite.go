// Copyright 2026 The Kiosk Authors
// SPDX-License-Identifier: Apache-2.0

package tileset

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/kiosk/lib/sqlitepool"
)

// sqliteSchema stores the info document and tiles as JSON text. The
// info table is small and loaded once at open; tiles are queried per
// request on pooled connections.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS tileset_info (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS tiles (
	tile_id TEXT PRIMARY KEY,
	data    TEXT NOT NULL
);
`

// SQLite is a tileset backed by a SQLite database file. Concurrent
// tile requests read on independent pooled connections.
type SQLite struct {
	pool   *sqlitepool.Pool
	logger *slog.Logger
	info   map[string]any
}

// OpenSQLite opens a tileset database created by CreateSQLite. The
// pool is read-only: a missing or mistyped path is an open error, not
// a fresh empty database. The info document is loaded eagerly; tiles
// are queried per request. The caller must Close the tileset when
// done serving it.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLite, error) {
	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:     path,
		ReadOnly: true,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	info, err := loadInfo(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("opening tileset %s: %w", path, err)
	}

	return &SQLite{pool: pool, logger: logger, info: info}, nil
}

func loadInfo(ctx context.Context, pool *sqlitepool.Pool) (map[string]any, error) {
	conn, err := pool.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer pool.Put(conn)

	info := make(map[string]any)
	err = sqlitex.Execute(conn, `SELECT key, value FROM tileset_info`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			var value any
			if err := json.Unmarshal([]byte(stmt.ColumnText(1)), &value); err != nil {
				return fmt.Errorf("info key %q: %w", stmt.ColumnText(0), err)
			}
			info[stmt.ColumnText(0)] = value
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

// Info returns the info document loaded at open.
func (t *SQLite) Info() map[string]any {
	return t.info
}

// Tiles queries the requested tiles. Ids without a stored row are
// omitted; query failures are logged and treated as absent.
func (t *SQLite) Tiles(ctx context.Context, ids []string) []Tile {
	conn, err := t.pool.Take(ctx)
	if err != nil {
		t.logger.Error("tile connection unavailable", "error", err)
		return nil
	}
	defer t.pool.Put(conn)

	var tiles []Tile
	for _, tid := range ids {
		coordinates, ok := tileCoordinates(tid)
		if !ok {
			continue
		}

		var data any
		found := false
		err := sqlitex.Execute(conn, `SELECT data FROM tiles WHERE tile_id = ?`, &sqlitex.ExecOptions{
			Args: []any{coordinates},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				found = true
				return json.Unmarshal([]byte(stmt.ColumnText(0)), &data)
			},
		})
		if err != nil {
			t.logger.Error("tile query failed", "tile", tid, "error", err)
			continue
		}
		if found {
			tiles = append(tiles, Tile{ID: tid, Data: data})
		}
	}
	return tiles
}

// Close releases the connection pool.
func (t *SQLite) Close() error {
	return t.pool.Close()
}

// CreateSQLite writes a tileset database at path holding info and
// tiles (keyed by coordinate suffix). Values are stored as JSON text.
// Existing keys are replaced, so it can also extend a database in
// place.
func CreateSQLite(ctx context.Context, path string, info map[string]any, tiles map[string]any, logger *slog.Logger) error {
	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:     path,
		PoolSize: 1,
		Logger:   logger,
		OnConnect: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteScript(conn, sqliteSchema, nil)
		},
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	conn, err := pool.Take(ctx)
	if err != nil {
		return err
	}
	defer pool.Put(conn)

	for key, value := range info {
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encoding info key %q: %w", key, err)
		}
		err = sqlitex.Execute(conn, `INSERT OR REPLACE INTO tileset_info (key, value) VALUES (?, ?)`, &sqlitex.ExecOptions{
			Args: []any{key, string(encoded)},
		})
		if err != nil {
			return fmt.Errorf("storing info key %q: %w", key, err)
		}
	}

	for coordinates, data := range tiles {
		encoded, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("encoding tile %q: %w", coordinates, err)
		}
		err = sqlitex.Execute(conn, `INSERT OR REPLACE INTO tiles (tile_id, data) VALUES (?, ?)`, &sqlitex.ExecOptions{
			Args: []any{coordinates, string(encoded)},
		})
		if err != nil {
			return fmt.Errorf("storing tile %q: %w", coordinates, err)
		}
	}
	return nil
}
