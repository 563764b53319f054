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

package metaindex

import (
	"context"
	"sync"

	"github.com/flicker-io/flicker/internal/core"
)

// MemoryIndex is a process-local MetadataIndex guarded by a mutex. It is
// not durable across restarts and not shared across replicas; callers must
// only select it when running a single replica.
type MemoryIndex struct {
	mu      sync.RWMutex
	records map[core.Token]core.Record
}

// NewMemory returns a ready-to-use MemoryIndex.
func NewMemory() *MemoryIndex {
	return &MemoryIndex{records: make(map[core.Token]core.Record)}
}

func (m *MemoryIndex) Put(_ context.Context, rec core.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.Token] = rec
	return nil
}

func (m *MemoryIndex) Get(_ context.Context, token core.Token) (*core.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[token]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *MemoryIndex) Close() error {
	return nil
}
