// Copyright 2026 The Kiosk Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// Core Deterministic Encoding (RFC 8949 §4.2): sorted map keys,
// smallest integer encoding, no indefinite-length items. Writing the
// same tiles twice therefore produces byte-identical archive files.
var encMode = func() cbor.EncMode {
	mode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder: " + err.Error())
	}
	return mode
}()

// The decoder accepts standard CBOR with one adjustment: any-typed
// targets decode maps as map[string]any instead of the CBOR default
// map[any]any. Info documents and tile payloads decode into any and
// are re-encoded as JSON for HTTP clients, and encoding/json rejects
// non-string map keys. Struct field decoding is unaffected.
var decMode = func() cbor.DecMode {
	mode, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder: " + err.Error())
	}
	return mode
}()

// Marshal encodes v deterministically.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}
