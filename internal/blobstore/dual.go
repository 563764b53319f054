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

package blobstore

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/flicker-io/flicker/internal/core"
	"github.com/flicker-io/flicker/internal/fwlog"
)

// DualStore writes every blob to a primary adapter synchronously and to a
// secondary adapter best-effort in the background, and reads from the
// primary first, falling back to the secondary when the primary cannot
// produce the blob. The reference it returns is always the primary's
// reference, per the Blob Store's dual-adapter contract; a shared key lets
// the secondary be queried by the same identity without exposing that key
// to callers.
type DualStore struct {
	primary   keyedStore
	secondary keyedStore
	logger    fwlog.Logger
}

// NewDual composes primary and secondary into a DualStore. logger receives
// warnings about secondary-write failures; if nil, fwlog.DefaultLogger is
// used.
func NewDual(primary, secondary keyedStore, logger fwlog.Logger) *DualStore {
	if logger == nil {
		logger = fwlog.DefaultLogger()
	}
	return &DualStore{primary: primary, secondary: secondary, logger: logger}
}

func (d *DualStore) Save(ctx context.Context, data []byte, opts core.SaveOptions) (core.BlobRef, error) {
	key := uuid.NewString()

	ref, err := d.primary.saveWithKey(ctx, key, data, opts)
	if err != nil {
		return "", err
	}

	go func() {
		bgCtx := context.WithoutCancel(ctx)
		if _, err := d.secondary.saveWithKey(bgCtx, key, data, opts); err != nil {
			d.logger.Warnf("blobstore: secondary write failed for key %s: %v", key, err)
		}
	}()

	return ref, nil
}

func (d *DualStore) Get(ctx context.Context, ref core.BlobRef) ([]byte, error) {
	data, err := d.primary.Get(ctx, ref)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, core.ErrBlobNotFound) && !errors.Is(err, core.ErrBlobIO) {
		return nil, err
	}

	key, ok := d.primary.keyOf(ref)
	if !ok {
		return nil, err
	}

	data, secErr := d.secondary.getByKey(ctx, key)
	if secErr != nil {
		d.logger.Warnf("blobstore: secondary read failed for key %s after primary error %v: %v", key, err, secErr)
		return nil, err
	}
	return data, nil
}

// ContentTypeOf only consults the primary: the secondary exists for
// read-path resilience on blob bytes, and ok=false here simply tells the
// caller to fall back to the Record's own ContentType.
func (d *DualStore) ContentTypeOf(ctx context.Context, ref core.BlobRef) (string, bool, error) {
	return d.primary.ContentTypeOf(ctx, ref)
}
