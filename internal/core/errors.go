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

package core

import "errors"

// Fault kinds raised by the upload coordinator and access arbiter, and by
// the blobstore/metaindex/token adapters they compose. All propagate
// unchanged to the caller; the HTTP adapter is responsible for mapping
// them onto a wire response.
var (
	// ErrInvalidInput is raised by C4 when the payload is empty or no
	// content type was declared.
	ErrInvalidInput = errors.New("flicker: invalid input")
	// ErrUnsupportedType is raised by C4 when the declared content type
	// is not in the configured accepted set.
	ErrUnsupportedType = errors.New("flicker: unsupported content type")
	// ErrTooLarge is raised by C4 when the payload exceeds the
	// configured size cap.
	ErrTooLarge = errors.New("flicker: payload too large")

	// ErrEntropy is raised by C1 when the RNG is unavailable.
	ErrEntropy = errors.New("flicker: entropy source unavailable")

	// ErrBlobIO is raised by a BlobStore adapter on an I/O fault.
	ErrBlobIO = errors.New("flicker: blob store i/o error")
	// ErrBlobTooLarge is raised by a BlobStore adapter enforcing its own,
	// possibly lower, size limit.
	ErrBlobTooLarge = errors.New("flicker: blob exceeds adapter limit")
	// ErrBlobNotFound is raised by a BlobStore adapter when a reference
	// is unknown to it.
	ErrBlobNotFound = errors.New("flicker: blob not found")

	// ErrIndexUnavailable is raised by a MetadataIndex adapter when the
	// backing store cannot be reached.
	ErrIndexUnavailable = errors.New("flicker: metadata index unavailable")
	// ErrIndexIO is raised by a MetadataIndex adapter on any other I/O
	// fault.
	ErrIndexIO = errors.New("flicker: metadata index i/o error")

	// ErrInternal marks an invariant violation: metadata named a blob
	// reference the store can no longer produce. Never surfaced as
	// Denied(missing) — the token was valid, the storage layer broke its
	// own contract.
	ErrInternal = errors.New("flicker: internal invariant violation")
)
