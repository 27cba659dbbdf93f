// Copyright 2026 The Kiosk Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"net/http"
	"slices"
)

// AllowCORS wraps a handler with cross-origin response headers so
// browser front-ends served from other origins (notebook UIs, dev
// servers) can fetch resources. origins lists the Origin values to
// accept; the single entry "*" accepts any origin. The allowed origin
// is echoed back rather than wildcarded so credentialed requests keep
// working. Preflight OPTIONS requests are answered without reaching
// the wrapped handler.
func AllowCORS(next http.Handler, origins []string) http.Handler {
	allowAny := slices.Contains(origins, "*")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" || (!allowAny && !slices.Contains(origins, origin)) {
			next.ServeHTTP(w, r)
			return
		}

		headers := w.Header()
		headers.Set("Access-Control-Allow-Origin", origin)
		headers.Set("Access-Control-Allow-Credentials", "true")
		headers.Add("Vary", "Origin")

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			headers.Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
			if requested := r.Header.Get("Access-Control-Request-Headers"); requested != "" {
				headers.Set("Access-Control-Allow-Headers", requested)
			}
			headers.Set("Access-Control-Max-Age", "600")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
