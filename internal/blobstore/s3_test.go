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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flicker-io/flicker/internal/core"
)

func TestS3Store_KeyOf(t *testing.T) {
	s := &S3Store{bucket: "flicker-blobs"}

	key, ok := s.keyOf(core.BlobRef("s3:flicker-blobs/abc-123"))
	assert.True(t, ok)
	assert.Equal(t, "abc-123", key)
}

func TestS3Store_KeyOfRejectsOtherBucket(t *testing.T) {
	s := &S3Store{bucket: "flicker-blobs"}

	_, ok := s.keyOf(core.BlobRef("s3:other-bucket/abc-123"))
	assert.False(t, ok)
}

func TestS3Store_KeyOfRejectsForeignFormat(t *testing.T) {
	s := &S3Store{bucket: "flicker-blobs"}

	_, ok := s.keyOf(core.BlobRef("fs:abc-123"))
	assert.False(t, ok)
}

func TestS3Store_KeyOfRejectsEmptyKey(t *testing.T) {
	s := &S3Store{bucket: "flicker-blobs"}

	_, ok := s.keyOf(core.BlobRef("s3:flicker-blobs/"))
	assert.False(t, ok)
}
