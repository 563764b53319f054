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

package fwlog

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	lv, err := ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, LevelWarn, lv)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}

func TestLevelFiltering(t *testing.T) {
	buf := new(bytes.Buffer)
	l := newZapLogger(LevelWarn, buf)

	l.Info("should not appear")
	assert.Empty(t, buf.String())

	l.Warn("should appear")
	assert.Contains(t, buf.String(), "should appear")
	assert.Contains(t, buf.String(), "WARN")
}

func TestSetLevelRebuildsLogger(t *testing.T) {
	buf := new(bytes.Buffer)
	l := newZapLogger(LevelInfo, buf)
	l.SetLevel(LevelError)

	l.Warnf("warn %d", 1)
	assert.Empty(t, buf.String())

	l.Errorf("boom %d", 2)
	assert.Contains(t, buf.String(), "boom 2")
}
