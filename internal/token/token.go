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

// Package token is the Token Generator (C1): it mints opaque, high-entropy,
// URL-safe identifiers. It takes no inputs and carries no state beyond the
// process's entropy source.
package token

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/flicker-io/flicker/internal/core"
)

// byteLength is 32 bytes (256 bits), the entropy the spec recommends over
// the 128-bit minimum.
const byteLength = 32

// Generator mints tokens from crypto/rand. The zero value is ready to use.
type Generator struct{}

// New returns a ready-to-use Generator.
func New() *Generator {
	return &Generator{}
}

// Mint draws byteLength bytes from the operating system's CSPRNG and
// encodes them with unpadded URL-safe base64, producing a 43-character
// token over the alphabet [A-Za-z0-9_-]. It never blocks in steady state;
// a read failure surfaces as core.ErrEntropy.
func (g *Generator) Mint() (core.Token, error) {
	var buf [byteLength]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", core.ErrEntropy
	}
	return core.Token(base64.RawURLEncoding.EncodeToString(buf[:])), nil
}
