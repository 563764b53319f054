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
	"sync"
)

// recorder captures the order in which fakes below are invoked, so tests
// can assert the cross-component ordering invariant from spec.md §8.5
// without reaching for a mocking framework.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) record(ev string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) indexOf(ev string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.events {
		if e == ev {
			return i
		}
	}
	return -1
}

func (r *recorder) count(ev string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e == ev {
			n++
		}
	}
	return n
}

type fakeBlobStore struct {
	mu      sync.Mutex
	rec     *recorder
	store   map[BlobRef][]byte
	saveErr error
	getErr  error
	next    int
}

func newFakeBlobStore(rec *recorder) *fakeBlobStore {
	return &fakeBlobStore{rec: rec, store: make(map[BlobRef][]byte)}
}

func (f *fakeBlobStore) Save(_ context.Context, data []byte, _ SaveOptions) (BlobRef, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.mu.Lock()
	f.next++
	ref := BlobRef(fmt.Sprintf("blob-%d", f.next))
	cp := append([]byte(nil), data...)
	f.store[ref] = cp
	f.mu.Unlock()
	f.rec.record("blob.save")
	return ref, nil
}

func (f *fakeBlobStore) Get(_ context.Context, ref BlobRef) ([]byte, error) {
	f.rec.record("blob.get")
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.store[ref]
	if !ok {
		return nil, ErrBlobNotFound
	}
	return b, nil
}

func (f *fakeBlobStore) ContentTypeOf(context.Context, BlobRef) (string, bool, error) {
	return "", false, nil
}

type fakeMetadataIndex struct {
	mu     sync.Mutex
	rec    *recorder
	recs   map[Token]Record
	putErr error
	getErr error
}

func newFakeMetadataIndex(rec *recorder) *fakeMetadataIndex {
	return &fakeMetadataIndex{rec: rec, recs: make(map[Token]Record)}
}

func (f *fakeMetadataIndex) Put(_ context.Context, r Record) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.mu.Lock()
	f.recs[r.Token] = r
	f.mu.Unlock()
	f.rec.record("index.put")
	return nil
}

func (f *fakeMetadataIndex) Get(_ context.Context, token Token) (*Record, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.recs[token]
	if !ok {
		return nil, nil
	}
	cp := r
	return &cp, nil
}

func (f *fakeMetadataIndex) Close() error { return nil }

type fakeTokenGenerator struct {
	mu      sync.Mutex
	rec     *recorder
	mintErr error
	next    int
}

func newFakeTokenGenerator(rec *recorder) *fakeTokenGenerator {
	return &fakeTokenGenerator{rec: rec}
}

func (f *fakeTokenGenerator) Mint() (Token, error) {
	if f.mintErr != nil {
		return "", f.mintErr
	}
	f.mu.Lock()
	f.next++
	t := Token(fmt.Sprintf("token-%d", f.next))
	f.mu.Unlock()
	f.rec.record("token.mint")
	return t, nil
}

func fixedClock(ms int64) Clock {
	return func() int64 { return ms }
}
