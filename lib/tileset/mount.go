// Copyright 2026 The Kiosk Authors
// SPDX-License-Identifier: Apache-2.0

package tileset

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/bureau-foundation/kiosk/lib/ident"
	"github.com/bureau-foundation/kiosk/lib/resource"
)

// Mount is the provider mount serving the tileset API. Pass it via
// provider.Config.Mounts; it accepts any object implementing Tileset.
//
// Endpoints under the prefix:
//
//	GET tileset_info/?d={uid}   info documents, one entry per uid
//	GET tiles/?d={tileID}       tile payloads, ids grouped by uid
//	GET chrom-sizes/?id={uid}   chromosome sizes as name<TAB>size text
type Mount struct {
	table   *resource.Table[Tileset]
	counter atomic.Uint64
}

// NewMount returns an empty tileset mount.
func NewMount() *Mount {
	return &Mount{table: resource.NewTable[Tileset]()}
}

// Prefix returns the mount's URL prefix.
func (m *Mount) Prefix() string { return "/tilesets/api/v1" }

// Handles reports whether obj is a Tileset.
func (m *Mount) Handles(obj any) bool {
	_, ok := obj.(Tileset)
	return ok
}

// Create registers the tileset under a uid derived from options.UID,
// or from a synthesized name when no UID is given. Uids never contain
// ".", which separates the uid from tile coordinates in tile ids.
func (m *Mount) Create(obj any, options resource.Options) (string, io.Closer, error) {
	ts, ok := obj.(Tileset)
	if !ok {
		return "", nil, fmt.Errorf("tileset mount cannot represent %T", obj)
	}

	name := options.UID
	if name == "" {
		name = "tileset-" + strconv.FormatUint(m.counter.Add(1), 10)
	}
	uid := ident.ResourceID([]byte(name), strings.ReplaceAll(name, ".", "-"))
	return uid, m.table.Register(uid, ts), nil
}

// URLPath returns the tileset_info query for the uid, the address a
// viewer starts from.
func (m *Mount) URLPath(id string) string {
	return m.Prefix() + "/tileset_info/?d=" + url.QueryEscape(id)
}

// Routes installs the API handlers on mux.
func (m *Mount) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /tilesets/api/v1/tileset_info/{$}", m.handleInfo)
	mux.HandleFunc("GET /tilesets/api/v1/tiles/{$}", m.handleTiles)
	mux.HandleFunc("GET /tilesets/api/v1/chrom-sizes/{$}", m.handleChromSizes)
}

// handleInfo answers with one entry per requested uid. Unknown uids
// get an inline error entry rather than failing the whole response,
// so a viewer showing several datasets renders the ones that exist.
func (m *Mount) handleInfo(w http.ResponseWriter, r *http.Request) {
	uids := r.URL.Query()["d"]
	body := make(map[string]any, len(uids))
	for _, uid := range uids {
		if ts, ok := m.table.Lookup(uid); ok {
			body[uid] = ts.Info()
		} else {
			body[uid] = map[string]string{"error": "No such tileset with uid: " + uid}
		}
	}
	writeJSON(w, http.StatusOK, body)
}

// handleTiles resolves tile ids, grouping them by uid (the id prefix
// before the first dot) so each tileset sees one batched request.
func (m *Mount) handleTiles(w http.ResponseWriter, r *http.Request) {
	requested := r.URL.Query()["d"]
	if len(requested) == 0 {
		resource.WriteError(w, http.StatusBadRequest, "No tiles requested")
		return
	}

	// Deduplicate and group, preserving first-seen order.
	groups := make(map[string][]string)
	var order []string
	seen := make(map[string]bool)
	for _, tid := range requested {
		if seen[tid] {
			continue
		}
		seen[tid] = true
		uid, _, _ := strings.Cut(tid, ".")
		if _, ok := groups[uid]; !ok {
			order = append(order, uid)
		}
		groups[uid] = append(groups[uid], tid)
	}

	body := make(map[string]any, len(requested))
	for _, uid := range order {
		ts, ok := m.table.Lookup(uid)
		if !ok {
			resource.WriteError(w, http.StatusBadRequest, "No tileset found for requested uid: "+uid)
			return
		}
		for _, tile := range ts.Tiles(r.Context(), groups[uid]) {
			body[tile.ID] = tile.Data
		}
	}
	writeJSON(w, http.StatusOK, body)
}

// handleChromSizes renders the tileset's "chromsizes" info entry as
// tab-separated name/size lines.
func (m *Mount) handleChromSizes(w http.ResponseWriter, r *http.Request) {
	uid := r.URL.Query().Get("id")
	if uid == "" {
		resource.WriteError(w, http.StatusBadRequest, "No uid provided.")
		return
	}
	ts, ok := m.table.Lookup(uid)
	if !ok {
		resource.WriteError(w, http.StatusNotFound, "No such tileset with uid: "+uid)
		return
	}
	body, ok := renderChromSizes(ts.Info()["chromsizes"])
	if !ok {
		resource.WriteError(w, http.StatusNotFound, "No chromsizes in tileset info")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// renderChromSizes formats a "chromsizes" info value as TSV lines.
// Accepts the native []ChromSize shape and the decoded-document shape
// ([]any of [name, size] pairs, as CBOR and JSON decoding produce).
func renderChromSizes(value any) (string, bool) {
	var lines []string
	switch entries := value.(type) {
	case []ChromSize:
		for _, entry := range entries {
			lines = append(lines, entry.Name+"\t"+strconv.FormatInt(entry.Size, 10))
		}
	case []any:
		for _, entry := range entries {
			pair, ok := entry.([]any)
			if !ok || len(pair) != 2 {
				return "", false
			}
			name, ok := pair[0].(string)
			if !ok {
				return "", false
			}
			size, ok := formatChromSize(pair[1])
			if !ok {
				return "", false
			}
			lines = append(lines, name+"\t"+size)
		}
	default:
		return "", false
	}
	return strings.Join(lines, "\n"), true
}

// formatChromSize renders a size under any numeric type a decoded
// document may carry (uint64/int64 from CBOR, float64 from JSON).
func formatChromSize(value any) (string, bool) {
	switch size := value.(type) {
	case int:
		return strconv.Itoa(size), true
	case int64:
		return strconv.FormatInt(size, 10), true
	case uint64:
		return strconv.FormatUint(size, 10), true
	case float64:
		return strconv.FormatFloat(size, 'f', -1, 64), true
	default:
		return "", false
	}
}
