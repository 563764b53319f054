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
	"errors"
	"strings"

	"github.com/flicker-io/flicker/internal/fwlog"
)

// Arbiter is the Access Arbiter (C5). Given a token, it resolves metadata,
// applies the centralized expiry policy, and fetches the blob only when
// access is allowed. It never leaks which of {missing, expired, invalid}
// applied to an external caller — callers of this package see the full
// AccessOutcome, but the HTTP adapter must conflate denial reasons before
// they reach the wire.
type Arbiter struct {
	Blobs BlobStore
	Index MetadataIndex
	Clock Clock

	// SkewToleranceMs is the grace window beyond ExpiresAtEpochMs during
	// which a nominally expired token is still allowed.
	SkewToleranceMs int64

	Logger fwlog.Logger
}

func (a *Arbiter) logger() fwlog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return fwlog.DefaultLogger()
}

// Access runs the four-step algorithm from spec.md §4.5. Blob retrieval
// MUST NOT occur for a denied decision — this is an observable invariant,
// not an optimization.
func (a *Arbiter) Access(ctx context.Context, token Token) (AccessOutcome, error) {
	if strings.TrimSpace(string(token)) == "" {
		return Denied(DenyInvalid), nil
	}

	rec, err := a.Index.Get(ctx, token)
	if err != nil {
		return AccessOutcome{}, err
	}
	if rec == nil {
		return Denied(DenyMissing), nil
	}

	now := a.Clock()
	if now > rec.ExpiresAtEpochMs+a.SkewToleranceMs {
		return Denied(DenyExpired), nil
	}

	bytes, err := a.Blobs.Get(ctx, rec.Blob)
	if err != nil {
		if errors.Is(err, ErrBlobNotFound) {
			a.logger().Errorf("access: metadata for token pointed at missing blob: %v", err)
			return AccessOutcome{}, ErrInternal
		}
		a.logger().Errorf("access: blob store fault: %v", err)
		return AccessOutcome{}, err
	}

	return Allowed(bytes, rec), nil
}
