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

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/flicker-io/flicker/internal/fwlog"
)

// Coordinator is the Upload Coordinator (C4). It is HTTP-agnostic: given
// raw bytes, a declared content type, and an optional filename, it
// produces a Token and its absolute expiry, or a typed failure.
type Coordinator struct {
	Blobs  BlobStore
	Index  MetadataIndex
	Tokens TokenGenerator
	Clock  Clock

	// AcceptedTypes is the closed set of accepted MIME types, resolved
	// from configuration at startup.
	AcceptedTypes map[string]struct{}
	// MaxUploadBytes is evaluated against decoded byte length.
	MaxUploadBytes int64
	// URLTTLMs is the fixed lifetime granted to every minted token.
	URLTTLMs int64

	Logger fwlog.Logger
}

func (c *Coordinator) logger() fwlog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return fwlog.DefaultLogger()
}

// UploadInput is the transient request context for one upload.
type UploadInput struct {
	Bytes       []byte
	ContentType string
	Filename    string
}

// UploadResult is returned to the caller on a successful upload.
type UploadResult struct {
	Token            Token
	ExpiresAtEpochMs int64
}

// Upload runs the five-step algorithm from spec.md §4.4: validate, persist
// blob, mint token, compute expiry, persist metadata. A failure at any step
// aborts without writing metadata; a blob already written by step 2 is
// never cleaned up (orphaned blobs are tolerated, see DESIGN.md).
func (c *Coordinator) Upload(ctx context.Context, in UploadInput) (UploadResult, error) {
	if err := c.validate(in); err != nil {
		return UploadResult{}, err
	}

	blobRef, err := c.Blobs.Save(ctx, in.Bytes, SaveOptions{
		ContentType: in.ContentType,
		Filename:    in.Filename,
	})
	if err != nil {
		c.logger().Errorf("upload: blob save failed: %v", err)
		return UploadResult{}, err
	}

	token, err := c.Tokens.Mint()
	if err != nil {
		c.logger().Errorf("upload: token mint failed: %v", err)
		return UploadResult{}, err
	}

	now := c.Clock()
	expiresAt := now + c.URLTTLMs

	rec := Record{
		Token:            token,
		Blob:             blobRef,
		ExpiresAtEpochMs: expiresAt,
		ContentType:      in.ContentType,
	}
	if err := c.Index.Put(ctx, rec); err != nil {
		c.logger().Errorf("upload: metadata put failed for minted token: %v", err)
		return UploadResult{}, err
	}

	c.logger().Infof("upload: minted token, expires in %dms", c.URLTTLMs)
	return UploadResult{Token: token, ExpiresAtEpochMs: expiresAt}, nil
}

func (c *Coordinator) validate(in UploadInput) error {
	if len(in.Bytes) == 0 {
		return ErrInvalidInput
	}
	if in.ContentType == "" {
		return ErrInvalidInput
	}
	if int64(len(in.Bytes)) > c.MaxUploadBytes {
		c.logger().Warnf("upload: rejected %s payload over %s cap",
			humanize.Bytes(uint64(len(in.Bytes))), humanize.Bytes(uint64(c.MaxUploadBytes)))
		return ErrTooLarge
	}
	if _, ok := c.AcceptedTypes[in.ContentType]; !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, in.ContentType)
	}
	return nil
}
