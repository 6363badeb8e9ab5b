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

package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FullForm(t *testing.T) {
	typ, err := Parse("application/json")
	require.NoError(t, err)
	assert.Equal(t, JSON, typ)
}

func TestParse_DropsParameters(t *testing.T) {
	typ, err := Parse("text/html; charset=utf-8")
	require.NoError(t, err)
	assert.Equal(t, HTML, typ)
}

func TestParse_ShortNames(t *testing.T) {
	for name, want := range map[string]Type{
		"json": JSON, "html": HTML, "text": Text, "form": Form, "any": Any,
	} {
		typ, err := Parse(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, typ, name)
	}
}

func TestParse_CaseInsensitive(t *testing.T) {
	typ, err := Parse("Application/JSON")
	require.NoError(t, err)
	assert.Equal(t, JSON, typ)
}

func TestParse_Malformed(t *testing.T) {
	for _, text := range []string{"", "application", "/json", "application/"} {
		_, err := Parse(text)
		assert.ErrorIs(t, err, ErrMalformedType, "text %q", text)
	}
}

func TestType_IsConcrete(t *testing.T) {
	assert.True(t, JSON.IsConcrete())
	assert.False(t, Any.IsConcrete())
	assert.False(t, Type{Top: "text", Sub: "*"}.IsConcrete())
}

func TestType_Accepts(t *testing.T) {
	assert.True(t, Any.Accepts(JSON))
	assert.True(t, Type{Top: "text", Sub: "*"}.Accepts(HTML))
	assert.False(t, Type{Top: "text", Sub: "*"}.Accepts(JSON))
	assert.True(t, JSON.Accepts(JSON))
	assert.False(t, JSON.Accepts(HTML))
}

func TestParseAccept_QualityAndOrder(t *testing.T) {
	entries := ParseAccept("text/html, application/json;q=0.8, */*;q=0.1")
	require.Len(t, entries, 3)
	assert.Equal(t, HTML, entries[0].Type)
	assert.InDelta(t, 1.0, entries[0].Quality, 1e-9)
	assert.Equal(t, JSON, entries[1].Type)
	assert.InDelta(t, 0.8, entries[1].Quality, 1e-9)
	assert.Equal(t, Any, entries[2].Type)
	assert.InDelta(t, 0.1, entries[2].Quality, 1e-9)
}

func TestParseAccept_SkipsMalformedMembers(t *testing.T) {
	entries := ParseAccept("garbage, application/json")
	require.Len(t, entries, 1)
	assert.Equal(t, JSON, entries[0].Type)
}

func TestPreference_NoHeaderMeansNoPreference(t *testing.T) {
	assert.InDelta(t, 1.0, Preference("", JSON), 1e-9)
}

func TestPreference_ExactBeatsWildcard(t *testing.T) {
	header := "*/*;q=0.1, application/json;q=0.8"
	assert.InDelta(t, 0.8, Preference(header, JSON), 1e-9)
	assert.InDelta(t, 0.1, Preference(header, HTML), 1e-9)
}

func TestPreference_UnmentionedIsZero(t *testing.T) {
	assert.Zero(t, Preference("application/json", HTML))
}

func TestPreference_ExplicitRefusal(t *testing.T) {
	// q=0 on the exact type wins over a permissive wildcard.
	assert.Zero(t, Preference("*/*;q=0.5, text/html;q=0", HTML))
}
