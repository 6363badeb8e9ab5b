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
	"bytes"
	"io"
)

// Data is the opaque handle over a request body. A data guard may open it
// at most once; whatever the guard leaves unread travels inside a Forward
// outcome so a later candidate can still consume it, and is drained by
// the engine when dispatch ends so leftover bytes never bleed into the
// next request on a reused connection.
type Data struct {
	reader io.Reader
	opened bool
}

// NewData wraps a body reader. A nil reader yields an empty body.
func NewData(r io.Reader) *Data {
	if r == nil {
		r = bytes.NewReader(nil)
	}
	return &Data{reader: r}
}

// DataFromBytes wraps an in-memory body, mostly for tests.
func DataFromBytes(b []byte) *Data {
	return &Data{reader: bytes.NewReader(b)}
}

// Open returns the body reader. A second open fails with ErrDataConsumed:
// within one guard's tenure the body is consumed at most once. When a
// guard forwards, the engine reopens the handle for the next candidate,
// which then reads from wherever the previous guard stopped.
func (d *Data) Open() (io.Reader, error) {
	if d.opened {
		return nil, ErrDataConsumed
	}
	d.opened = true
	return d.reader, nil
}

// reopen clears the consumed flag after a Forward so the next candidate's
// data guard can pick up the remaining bytes.
func (d *Data) reopen() *Data {
	d.opened = false
	return d
}

// Drain reads and discards everything left in the body. It is safe to
// call at any point, opened or not, and is idempotent.
func (d *Data) Drain() error {
	d.opened = true
	_, err := io.Copy(io.Discard, d.reader)
	return err
}
