// Copyright 2026 The Kiosk Authors
// SPDX-License-Identifier: Apache-2.0

package provider

import "io"

// Resource is a live registration returned by Create: the resource's
// address plus the caller's ownership claim on it. The registration
// stays resolvable as long as at least one owner has not closed; when
// the last owner closes, requests for the id answer 404.
type Resource struct {
	provider *Provider
	mount    Mount
	id       string
	owner    io.Closer
}

// ID returns the content-addressed id, the final path segment of the
// resource's URL.
func (r *Resource) ID() string {
	return r.id
}

// URL returns the resource's full URL under the provider's current
// base URL. Fails when the transport is not running.
func (r *Resource) URL() (string, error) {
	base, err := r.provider.BaseURL()
	if err != nil {
		return "", err
	}
	return base + r.mount.URLPath(r.id), nil
}

// Close releases this owner's claim. Idempotent. After the last
// owner for the id closes, the id behaves as never registered.
func (r *Resource) Close() error {
	return r.owner.Close()
}
