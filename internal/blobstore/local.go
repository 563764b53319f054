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
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/flicker-io/flicker/internal/core"
)

const (
	localRefPrefix = "fs:"
	blobFileName   = "blob"
	metaFileName   = "meta.json"
	dirMode        = 0o755
	fileMode       = 0o644
)

// localMeta is the sidecar JSON recorded next to every blob so
// ContentTypeOf can answer without a side index, mirroring the blobfs
// pattern of metadata colocated with the blob it describes.
type localMeta struct {
	ContentType string `json:"contentType"`
	Filename    string `json:"filename,omitempty"`
}

// LocalStore is a filesystem-backed BlobStore. Blobs are addressed by a
// generated id (not derived from their content) and written via a
// temp-file-then-rename so a reader never observes a partially-written blob.
type LocalStore struct {
	root string
}

// NewLocal creates (if needed) root and returns a LocalStore rooted there.
func NewLocal(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, dirMode); err != nil {
		return nil, fmt.Errorf("%w: creating blob root %s: %v", core.ErrBlobIO, root, err)
	}
	return &LocalStore{root: root}, nil
}

// shardDir returns the two-level hex-sharded directory for key, matching
// the default sharding strategy used across the example pack's local blob
// stores: distribute keys across 65,536 directories to avoid a single huge
// directory.
func (s *LocalStore) shardDir(key string) string {
	sum := sha256.Sum256([]byte(key))
	hexSum := hex.EncodeToString(sum[:])
	return filepath.Join(s.root, hexSum[:2], hexSum[2:4], key)
}

func (s *LocalStore) Save(ctx context.Context, data []byte, opts core.SaveOptions) (core.BlobRef, error) {
	return s.saveWithKey(ctx, uuid.NewString(), data, opts)
}

func (s *LocalStore) saveWithKey(_ context.Context, key string, data []byte, opts core.SaveOptions) (core.BlobRef, error) {
	dir := s.shardDir(key)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrBlobIO, err)
	}

	tmp, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrBlobIO, err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("%w: %v", core.ErrBlobIO, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("%w: %v", core.ErrBlobIO, err)
	}

	dataPath := filepath.Join(dir, blobFileName)
	if err := os.Rename(tmpPath, dataPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("%w: committing blob: %v", core.ErrBlobIO, err)
	}
	if err := os.Chmod(dataPath, fileMode); err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrBlobIO, err)
	}

	meta := localMeta{ContentType: opts.ContentType, Filename: opts.Filename}
	metaBytes, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrBlobIO, err)
	}
	if err := os.WriteFile(filepath.Join(dir, metaFileName), metaBytes, fileMode); err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrBlobIO, err)
	}

	return core.BlobRef(localRefPrefix + key), nil
}

func (s *LocalStore) Get(ctx context.Context, ref core.BlobRef) ([]byte, error) {
	key, ok := s.keyOf(ref)
	if !ok {
		return nil, core.ErrBlobNotFound
	}
	return s.getByKey(ctx, key)
}

func (s *LocalStore) getByKey(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.shardDir(key), blobFileName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, core.ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrBlobIO, err)
	}
	return data, nil
}

func (s *LocalStore) ContentTypeOf(_ context.Context, ref core.BlobRef) (string, bool, error) {
	key, ok := s.keyOf(ref)
	if !ok {
		return "", false, nil
	}
	raw, err := os.ReadFile(filepath.Join(s.shardDir(key), metaFileName))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", core.ErrBlobIO, err)
	}
	var meta localMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return "", false, fmt.Errorf("%w: %v", core.ErrBlobIO, err)
	}
	return meta.ContentType, meta.ContentType != "", nil
}

func (s *LocalStore) keyOf(ref core.BlobRef) (string, bool) {
	raw := string(ref)
	if !strings.HasPrefix(raw, localRefPrefix) {
		return "", false
	}
	key := strings.TrimPrefix(raw, localRefPrefix)
	if key == "" {
		return "", false
	}
	return key, true
}
