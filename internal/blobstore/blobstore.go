// Copyright 2025 The flicker Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package blobstore implements the Blob Store (C2): adapters that persist
// opaque byte content under a storage-chosen reference and retrieve it by
// that reference. Every adapter here satisfies core.BlobStore.
package blobstore

import (
	"context"

	"github.com/flicker-io/flicker/internal/core"
)

// keyedStore is the extra contract Dual needs between two adapters that
// each mint their own opaque core.BlobRef: a caller-supplied key lets Dual
// ask both the primary and the secondary to store the same bytes under a
// correlated identity, and later recover that shared key from the
// primary's own reference to query the secondary as a fallback. It is not
// part of the core.BlobStore contract and never crosses into internal/core
// — C4/C5 only ever see core.BlobStore.
type keyedStore interface {
	core.BlobStore
	// saveWithKey persists data under a specific key instead of letting
	// the adapter generate one.
	saveWithKey(ctx context.Context, key string, data []byte, opts core.SaveOptions) (core.BlobRef, error)
	// getByKey fetches bytes directly by the shared key, bypassing this
	// adapter's own BlobRef formatting.
	getByKey(ctx context.Context, key string) ([]byte, error)
	// keyOf extracts the shared key from one of this adapter's own
	// references. ok is false if ref is not in this adapter's format.
	keyOf(ref core.BlobRef) (key string, ok bool)
}
