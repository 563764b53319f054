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
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/flicker-io/flicker/internal/core"
)

const s3RefPrefix = "s3:"

// S3Config configures an S3Store against any S3-compatible endpoint,
// including MinIO.
type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
}

// S3Store is an S3-compatible BlobStore. References are formatted
// "s3:<bucket>/<key>" so keyOf can recover the key without a side index.
type S3Store struct {
	client *minio.Client
	bucket string
}

// NewS3 connects to the configured endpoint and ensures the bucket exists,
// creating it on first run.
func NewS3(ctx context.Context, cfg S3Config) (*S3Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to %s: %v", core.ErrBlobIO, cfg.Endpoint, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%w: checking bucket %s: %v", core.ErrBlobIO, cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("%w: creating bucket %s: %v", core.ErrBlobIO, cfg.Bucket, err)
		}
	}

	return &S3Store{client: client, bucket: cfg.Bucket}, nil
}

func (s *S3Store) Save(ctx context.Context, data []byte, opts core.SaveOptions) (core.BlobRef, error) {
	return s.saveWithKey(ctx, uuid.NewString(), data, opts)
}

func (s *S3Store) saveWithKey(ctx context.Context, key string, data []byte, opts core.SaveOptions) (core.BlobRef, error) {
	contentType := opts.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("%w: putting object %s: %v", core.ErrBlobIO, key, err)
	}

	return core.BlobRef(s3RefPrefix + s.bucket + "/" + key), nil
}

func (s *S3Store) Get(ctx context.Context, ref core.BlobRef) ([]byte, error) {
	key, ok := s.keyOf(ref)
	if !ok {
		return nil, core.ErrBlobNotFound
	}
	return s.getByKey(ctx, key)
}

func (s *S3Store) getByKey(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.translateErr(err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, s.translateErr(err)
	}
	return data, nil
}

func (s *S3Store) ContentTypeOf(ctx context.Context, ref core.BlobRef) (string, bool, error) {
	key, ok := s.keyOf(ref)
	if !ok {
		return "", false, nil
	}
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		var errResp minio.ErrorResponse
		if errors.As(err, &errResp) && errResp.Code == "NoSuchKey" {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: statting object %s: %v", core.ErrBlobIO, key, err)
	}
	return info.ContentType, info.ContentType != "", nil
}

func (s *S3Store) keyOf(ref core.BlobRef) (string, bool) {
	raw := string(ref)
	if !strings.HasPrefix(raw, s3RefPrefix) {
		return "", false
	}
	rest := strings.TrimPrefix(raw, s3RefPrefix)
	bucket, key, found := strings.Cut(rest, "/")
	if !found || bucket != s.bucket || key == "" {
		return "", false
	}
	return key, true
}

func (s *S3Store) translateErr(err error) error {
	var errResp minio.ErrorResponse
	if errors.As(err, &errResp) && errResp.Code == "NoSuchKey" {
		return core.ErrBlobNotFound
	}
	return fmt.Errorf("%w: %v", core.ErrBlobIO, err)
}
