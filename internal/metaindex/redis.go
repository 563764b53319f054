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

// Package metaindex implements the Metadata Index (C3): adapters mapping a
// Token to its Record. RedisIndex is durable and shared across replicas;
// MemoryIndex is process-local and neither.
package metaindex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/flicker-io/flicker/internal/core"
)

const keyPrefix = "flicker:meta:"

// RedisIndex is a Redis/Dragonfly-backed MetadataIndex. Records are
// JSON-encoded and stored with an expiry set past the record's own
// ExpiresAtEpochMs by skewToleranceMs, so Redis's own eviction is a
// storage-reclamation backstop and never preempts the Access Arbiter's own
// policy decision.
type RedisIndex struct {
	client          redis.Cmdable
	clock           core.Clock
	skewToleranceMs int64
}

// jsonRecord mirrors core.Record for wire encoding; kept distinct so a
// field rename in core.Record doesn't silently change the wire format.
type jsonRecord struct {
	Token            string `json:"token"`
	Blob             string `json:"blob"`
	ExpiresAtEpochMs int64  `json:"expiresAtEpochMs"`
	ContentType      string `json:"contentType"`
}

// RedisConfig configures a RedisIndex.
type RedisConfig struct {
	Addr            string
	Password        string
	DB              int
	SkewToleranceMs int64
}

// NewRedis dials addr and verifies connectivity before returning.
func NewRedis(ctx context.Context, cfg RedisConfig, clock core.Clock) (*RedisIndex, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: connecting to %s: %v", core.ErrIndexUnavailable, cfg.Addr, err)
	}
	return &RedisIndex{client: client, clock: clock, skewToleranceMs: cfg.SkewToleranceMs}, nil
}

func (r *RedisIndex) Put(ctx context.Context, rec core.Record) error {
	payload, err := json.Marshal(jsonRecord{
		Token:            string(rec.Token),
		Blob:             string(rec.Blob),
		ExpiresAtEpochMs: rec.ExpiresAtEpochMs,
		ContentType:      rec.ContentType,
	})
	if err != nil {
		return fmt.Errorf("%w: encoding record: %v", core.ErrIndexIO, err)
	}

	remaining := rec.ExpiresAtEpochMs - r.clock()
	if remaining < 0 {
		remaining = 0
	}
	redisTTL := time.Duration(remaining+r.skewToleranceMs) * time.Millisecond

	key := keyPrefix + string(rec.Token)
	if err := r.client.Set(ctx, key, payload, redisTTL).Err(); err != nil {
		return fmt.Errorf("%w: %v", core.ErrIndexIO, err)
	}
	return nil
}

func (r *RedisIndex) Get(ctx context.Context, token core.Token) (*core.Record, error) {
	key := keyPrefix + string(token)
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrIndexUnavailable, err)
	}

	var jr jsonRecord
	if err := json.Unmarshal([]byte(val), &jr); err != nil {
		return nil, fmt.Errorf("%w: decoding record: %v", core.ErrIndexIO, err)
	}

	return &core.Record{
		Token:            core.Token(jr.Token),
		Blob:             core.BlobRef(jr.Blob),
		ExpiresAtEpochMs: jr.ExpiresAtEpochMs,
		ContentType:      jr.ContentType,
	}, nil
}

func (r *RedisIndex) Close() error {
	if closer, ok := r.client.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
