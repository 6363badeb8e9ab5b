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

package dispatch

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcome_States(t *testing.T) {
	s := Success(42)
	assert.True(t, s.IsSuccess())
	assert.Equal(t, 42, s.Value())

	errBoom := errors.New("boom")
	f := Failure[int](http.StatusBadRequest, errBoom)
	assert.True(t, f.IsFailure())
	assert.Equal(t, http.StatusBadRequest, f.Status())
	assert.ErrorIs(t, f.Err(), errBoom)

	d := DataFromBytes([]byte("rest"))
	fw := Forward[int](d)
	assert.True(t, fw.IsForward())
	assert.Same(t, d, fw.ForwardedData())
}

func TestOutcome_Map(t *testing.T) {
	doubled := Map(Success(21), func(n int) int { return n * 2 })
	assert.Equal(t, 42, doubled.Value())

	failed := Map(Failure[int](http.StatusTeapot, errors.New("no")), func(n int) int { return n })
	assert.True(t, failed.IsFailure())
	assert.Equal(t, http.StatusTeapot, failed.Status())
}

func TestOutcome_AndThen(t *testing.T) {
	out := AndThen(Success("5"), func(s string) Outcome[int] {
		return Success(len(s) + 4)
	})
	require.True(t, out.IsSuccess())
	assert.Equal(t, 5, out.Value())

	// Forward short-circuits: fn must not run.
	ran := false
	fw := AndThen(Forward[string](nil), func(string) Outcome[int] {
		ran = true
		return Success(0)
	})
	assert.True(t, fw.IsForward())
	assert.False(t, ran)
}

func TestOutcome_OrForward(t *testing.T) {
	d := DataFromBytes(nil)

	demoted := Failure[int](http.StatusUnauthorized, errors.New("no token")).OrForward(d)
	assert.True(t, demoted.IsForward())
	assert.Same(t, d, demoted.ForwardedData())

	kept := Success(1).OrForward(d)
	assert.True(t, kept.IsSuccess())
}

func TestOutcome_ValueOr(t *testing.T) {
	assert.Equal(t, 7, Success(7).ValueOr(9))
	assert.Equal(t, 9, Forward[int](nil).ValueOr(9))
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "success", Success(1).String())
	assert.Equal(t, "failure(422)", Failure[int](422, nil).String())
	assert.Equal(t, "forward", Forward[int](nil).String())
}
