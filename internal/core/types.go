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

// Package core is flicker's tokenized, deny-by-default access-control
// core: the Upload Coordinator (C4) and Access Arbiter (C5) that compose
// the Token Generator (C1), Blob Store (C2), and Metadata Index (C3)
// capability interfaces defined here. Nothing in this package imports an
// HTTP, multipart, or transport package — those are adapters built on top
// of this package, never the other way around.
package core

import "context"

// Token is an opaque, URL-safe identifier binding a caller-visible URL to
// a Record. It carries no embedded semantics.
type Token string

// BlobRef is an opaque handle returned by a BlobStore. Only the adapter
// that issued it can interpret its contents; the core treats it as a
// black-box string.
type BlobRef string

// Record is the durable tuple a MetadataIndex stores, keyed by Token.
// Immutable after Put.
type Record struct {
	Token            Token
	Blob             BlobRef
	ExpiresAtEpochMs int64
	ContentType      string
}

// Clock is an injected capability returning the current instant in
// milliseconds since the Unix epoch, so tests can pin time.
type Clock func() int64

// SaveOptions carries the declared content type and optional filename a
// caller passes to BlobStore.Save.
type SaveOptions struct {
	ContentType string
	Filename    string
}

// BlobStore persists and retrieves opaque byte content. Adapters decide
// what a BlobRef looks like; the core never parses one.
type BlobStore interface {
	// Save persists data and returns an opaque reference to it.
	Save(ctx context.Context, data []byte, opts SaveOptions) (BlobRef, error)
	// Get returns the bytes previously associated with ref, or
	// ErrBlobNotFound if ref is unknown to this store.
	Get(ctx context.Context, ref BlobRef) ([]byte, error)
	// ContentTypeOf returns the content type declared at Save time, if
	// the adapter retains it. ok is false when the adapter has no
	// opinion (the caller should fall back to Record.ContentType).
	ContentTypeOf(ctx context.Context, ref BlobRef) (contentType string, ok bool, err error)
}

// MetadataIndex durably maps Token to Record, shared across replicas.
type MetadataIndex interface {
	// Put upserts the record keyed by rec.Token.
	Put(ctx context.Context, rec Record) error
	// Get returns (nil, nil) when no record exists for token, a non-nil
	// record on success, or a non-nil error when the index itself could
	// not answer.
	Get(ctx context.Context, token Token) (*Record, error)
	// Close releases resources held by the adapter.
	Close() error
}

// TokenGenerator mints opaque, high-entropy tokens.
type TokenGenerator interface {
	Mint() (Token, error)
}
