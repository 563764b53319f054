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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicker-io/flicker/internal/core"
	"github.com/flicker-io/flicker/internal/fwlog"
)

// fakeKeyedStore is an in-memory keyedStore used to assert dual-store
// behavior without touching the filesystem or a network.
type fakeKeyedStore struct {
	mu      sync.Mutex
	byKey   map[string][]byte
	getErr  error
	saveErr error
}

func newFakeKeyedStore() *fakeKeyedStore {
	return &fakeKeyedStore{byKey: make(map[string][]byte)}
}

func (f *fakeKeyedStore) Save(ctx context.Context, data []byte, opts core.SaveOptions) (core.BlobRef, error) {
	return f.saveWithKey(ctx, "generated", data, opts)
}

func (f *fakeKeyedStore) saveWithKey(_ context.Context, key string, data []byte, _ core.SaveOptions) (core.BlobRef, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.mu.Lock()
	f.byKey[key] = data
	f.mu.Unlock()
	return core.BlobRef("fake:" + key), nil
}

func (f *fakeKeyedStore) Get(ctx context.Context, ref core.BlobRef) ([]byte, error) {
	key, ok := f.keyOf(ref)
	if !ok {
		return nil, core.ErrBlobNotFound
	}
	return f.getByKey(ctx, key)
}

func (f *fakeKeyedStore) getByKey(_ context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.byKey[key]
	if !ok {
		return nil, core.ErrBlobNotFound
	}
	return data, nil
}

func (f *fakeKeyedStore) ContentTypeOf(context.Context, core.BlobRef) (string, bool, error) {
	return "", false, nil
}

func (f *fakeKeyedStore) keyOf(ref core.BlobRef) (string, bool) {
	raw := string(ref)
	if len(raw) < 5 || raw[:5] != "fake:" {
		return "", false
	}
	return raw[5:], true
}

func (f *fakeKeyedStore) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byKey[key]
	return ok
}

func TestDualStore_SaveReturnsPrimaryReference(t *testing.T) {
	primary := newFakeKeyedStore()
	secondary := newFakeKeyedStore()
	d := NewDual(primary, secondary, fwlog.DefaultLogger())

	ref, err := d.Save(context.Background(), []byte("payload"), core.SaveOptions{ContentType: "image/png"})
	require.NoError(t, err)

	_, ok := primary.keyOf(ref)
	assert.True(t, ok, "returned reference must be interpretable by the primary")
}

func TestDualStore_Get_PrimaryHit(t *testing.T) {
	primary := newFakeKeyedStore()
	secondary := newFakeKeyedStore()
	d := NewDual(primary, secondary, fwlog.DefaultLogger())

	ref, err := d.Save(context.Background(), []byte("payload"), core.SaveOptions{ContentType: "image/png"})
	require.NoError(t, err)

	got, err := d.Get(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)
}

func TestDualStore_Get_FallsBackToSecondaryOnPrimaryMiss(t *testing.T) {
	primary := newFakeKeyedStore()
	secondary := newFakeKeyedStore()
	d := NewDual(primary, secondary, fwlog.DefaultLogger())

	_, err := secondary.saveWithKey(context.Background(), "shared", []byte("fallback"), core.SaveOptions{})
	require.NoError(t, err)

	primary.getErr = core.ErrBlobNotFound

	got, err := d.Get(context.Background(), core.BlobRef("fake:shared"))
	require.NoError(t, err)
	assert.Equal(t, []byte("fallback"), got)
}

func TestDualStore_Get_ReturnsPrimaryErrorWhenSecondaryAlsoMisses(t *testing.T) {
	primary := newFakeKeyedStore()
	secondary := newFakeKeyedStore()
	d := NewDual(primary, secondary, fwlog.DefaultLogger())
	primary.getErr = core.ErrBlobNotFound

	_, err := d.Get(context.Background(), core.BlobRef("fake:missing"))
	assert.ErrorIs(t, err, core.ErrBlobNotFound)
}

// The secondary write happens in the background; give it a moment to land
// before asserting on it, matching how the example pack tests fire-and-log
// background writes.
func TestDualStore_SecondaryWriteIsBestEffortAsync(t *testing.T) {
	primary := newFakeKeyedStore()
	secondary := newFakeKeyedStore()
	d := NewDual(primary, secondary, fwlog.DefaultLogger())

	_, err := d.Save(context.Background(), []byte("payload"), core.SaveOptions{ContentType: "image/png"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		secondary.mu.Lock()
		defer secondary.mu.Unlock()
		return len(secondary.byKey) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestDualStore_SaveFailsWhenPrimaryFails(t *testing.T) {
	primary := newFakeKeyedStore()
	secondary := newFakeKeyedStore()
	primary.saveErr = core.ErrBlobIO
	d := NewDual(primary, secondary, fwlog.DefaultLogger())

	_, err := d.Save(context.Background(), []byte("payload"), core.SaveOptions{ContentType: "image/png"})
	assert.ErrorIs(t, err, core.ErrBlobIO)
}
