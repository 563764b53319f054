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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicker-io/flicker/internal/core"
)

func TestLocalStore_SaveGetRoundTrip(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	payload := []byte("hello blob")
	ref, err := s.Save(context.Background(), payload, core.SaveOptions{ContentType: "image/png", Filename: "a.png"})
	require.NoError(t, err)
	assert.Contains(t, string(ref), localRefPrefix)

	got, err := s.Get(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	ct, ok, err := s.ContentTypeOf(context.Background(), ref)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "image/png", ct)
}

func TestLocalStore_GetUnknownRefNotFound(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = s.Get(context.Background(), core.BlobRef("fs:does-not-exist"))
	assert.ErrorIs(t, err, core.ErrBlobNotFound)
}

func TestLocalStore_GetMalformedRefNotFound(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = s.Get(context.Background(), core.BlobRef("s3:wrong-adapter/key"))
	assert.ErrorIs(t, err, core.ErrBlobNotFound)
}

func TestLocalStore_ContentTypeOfUnknownRef(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, ok, err := s.ContentTypeOf(context.Background(), core.BlobRef("fs:nope"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalStore_DistinctSavesGetDistinctRefs(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	ref1, err := s.Save(context.Background(), []byte("one"), core.SaveOptions{ContentType: "text/plain"})
	require.NoError(t, err)
	ref2, err := s.Save(context.Background(), []byte("two"), core.SaveOptions{ContentType: "text/plain"})
	require.NoError(t, err)
	assert.NotEqual(t, ref1, ref2)

	got1, err := s.Get(context.Background(), ref1)
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), got1)

	got2, err := s.Get(context.Background(), ref2)
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), got2)
}

func TestLocalStore_SaveWithKeyIsRecoverableByKeyOf(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	ref, err := s.saveWithKey(context.Background(), "shared-key-123", []byte("payload"), core.SaveOptions{ContentType: "image/gif"})
	require.NoError(t, err)

	key, ok := s.keyOf(ref)
	require.True(t, ok)
	assert.Equal(t, "shared-key-123", key)

	data, err := s.getByKey(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)
}
