// Copyright 2025 The Rivaas Authors
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

package uri

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePattern_StaticPath(t *testing.T) {
	segs, err := ParsePattern("/users/all", PartPath)
	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.Equal(t, Static, segs[0].Kind)
	assert.Equal(t, "users", segs[0].Text)
	assert.Equal(t, Static, segs[1].Kind)
	assert.Equal(t, "all", segs[1].Text)
	assert.Equal(t, 1, segs[1].Index)
}

func TestParsePattern_RootPath(t *testing.T) {
	segs, err := ParsePattern("/", PartPath)
	require.NoError(t, err)
	assert.Empty(t, segs)
}

func TestParsePattern_DynamicAndTrailing(t *testing.T) {
	segs, err := ParsePattern("/static/<id>/<rest..>", PartPath)
	require.NoError(t, err)
	require.Len(t, segs, 3)
	assert.Equal(t, Static, segs[0].Kind)
	assert.Equal(t, Dynamic, segs[1].Kind)
	assert.Equal(t, "id", segs[1].Text)
	assert.Equal(t, DynamicTrailing, segs[2].Kind)
	assert.Equal(t, "rest", segs[2].Text)
	assert.True(t, segs[2].IsTrailing())
}

func TestParsePattern_Ignored(t *testing.T) {
	segs, err := ParsePattern("/a/<_>/<_..>", PartPath)
	require.NoError(t, err)
	require.Len(t, segs, 3)
	assert.Equal(t, Ignored, segs[1].Kind)
	assert.Empty(t, segs[1].Text)
	assert.Equal(t, IgnoredTrailing, segs[2].Kind)
}

func TestParsePattern_TrailingMustBeLast(t *testing.T) {
	_, err := ParsePattern("/a/<rest..>/b", PartPath)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTrailingNotLast)
}

func TestParsePattern_EmptyDynamicName(t *testing.T) {
	for _, pattern := range []string{"/<>", "/<..>"} {
		_, err := ParsePattern(pattern, PartPath)
		assert.ErrorIs(t, err, ErrEmptyDynamicName, "pattern %q", pattern)
	}
}

func TestParsePattern_MalformedDynamic(t *testing.T) {
	_, err := ParsePattern("/<a<b>>", PartPath)
	assert.ErrorIs(t, err, ErrMalformedDynamic)
}

func TestParsePattern_ReservedCharactersInStatic(t *testing.T) {
	for _, pattern := range []string{"/a b", "/a?b", "/a#b", "/half<open"} {
		_, err := ParsePattern(pattern, PartPath)
		assert.ErrorIs(t, err, ErrReservedCharacter, "pattern %q", pattern)
	}
}

// Percent-encoded statics are legal: the matcher compares raw encoded
// components, so "/a%20b" must be declarable to be routable.
func TestParsePattern_PercentEncodedStatic(t *testing.T) {
	segs, err := ParsePattern("/a%20b/c", PartPath)
	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.Equal(t, Static, segs[0].Kind)
	assert.Equal(t, "a%20b", segs[0].Text)
}

// Static query segments may carry "=", which is reserved in path statics.
func TestParsePattern_QueryStaticPair(t *testing.T) {
	segs, err := ParsePattern("kind=user&<page>", PartQuery)
	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.Equal(t, Static, segs[0].Kind)
	assert.Equal(t, "kind=user", segs[0].Text)
	assert.Equal(t, Dynamic, segs[1].Kind)
}

func TestParsePattern_QueryTrailing(t *testing.T) {
	segs, err := ParsePattern("<id>&<rest..>", PartQuery)
	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.Equal(t, DynamicTrailing, segs[1].Kind)
}

// Parsing is pure: identical text always yields identical segment lists.
func TestParsePattern_Deterministic(t *testing.T) {
	first, err := ParsePattern("/a/<b>/<c..>", PartPath)
	require.NoError(t, err)
	second, err := ParsePattern("/a/<b>/<c..>", PartPath)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSplitPath(t *testing.T) {
	assert.Nil(t, SplitPath("/"))
	assert.Nil(t, SplitPath(""))
	assert.Equal(t, []string{"a"}, SplitPath("/a"))
	assert.Equal(t, []string{"a", "b", "c"}, SplitPath("/a/b/c"))
}

func TestDynamicCountAndHasTrailing(t *testing.T) {
	segs, err := ParsePattern("/a/<b>/<_>/<c..>", PartPath)
	require.NoError(t, err)
	assert.Equal(t, 3, DynamicCount(segs))
	assert.True(t, HasTrailing(segs))

	static, err := ParsePattern("/a/b", PartPath)
	require.NoError(t, err)
	assert.Zero(t, DynamicCount(static))
	assert.False(t, HasTrailing(static))
}
