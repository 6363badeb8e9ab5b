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
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"rivaas.dev/dispatch/media"
)

// CatcherHandler produces the response for a terminal failure. It sees
// only the status and the original request: by the time a catcher runs,
// route matching has already failed or a handler has already consumed (or
// forfeited) the body, so there are no data guards here.
type CatcherHandler interface {
	Catch(ctx context.Context, status int, req *Request) Outcome[*Response]
}

// CatcherFunc adapts a function into a CatcherHandler.
type CatcherFunc func(ctx context.Context, status int, req *Request) Outcome[*Response]

// Catch calls fn.
func (fn CatcherFunc) Catch(ctx context.Context, status int, req *Request) Outcome[*Response] {
	return fn(ctx, status, req)
}

// Catcher is a registered error handler for a status code under a base
// path. A zero status is the default catcher, matching any status at its
// base. Per base, at most one catcher per concrete status and at most one
// default may be registered; Ignite rejects duplicates the same way it
// rejects route collisions.
type Catcher struct {
	base    string
	status  int
	name    string
	handler CatcherHandler
	index   int
}

// CatcherOption configures a catcher under construction.
type CatcherOption func(*Catcher)

// WithCatcherName names the catcher for introspection and logs.
func WithCatcherName(name string) CatcherOption {
	return func(c *Catcher) {
		c.name = name
	}
}

// NewCatcher builds a catcher for one status code. Use NewDefaultCatcher
// for a catcher matching every status.
func NewCatcher(status int, handler CatcherHandler, opts ...CatcherOption) *Catcher {
	c := &Catcher{status: status, handler: handler}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewDefaultCatcher builds a catcher matching any status at its base.
func NewDefaultCatcher(handler CatcherHandler, opts ...CatcherOption) *Catcher {
	return NewCatcher(0, handler, opts...)
}

// finalize records the mount base and declaration order.
func (c *Catcher) finalize(base string, index int) error {
	if c.handler == nil {
		return fmt.Errorf("%w: catcher for status %d", ErrNilHandler, c.status)
	}
	c.base = normalizeBase(base)
	c.index = index
	if c.name == "" {
		if c.status == 0 {
			c.name = "default"
		} else {
			c.name = fmt.Sprintf("status-%d", c.status)
		}
	}
	return nil
}

// CatcherInfo is the read-only introspection record for one catcher.
type CatcherInfo struct {
	Base    string
	Status  int // 0 means default
	Name    string
	Default bool
}

// info builds the introspection record.
func (c *Catcher) info() CatcherInfo {
	return CatcherInfo{Base: c.base, Status: c.status, Name: c.name, Default: c.status == 0}
}

// baseMatches reports whether the catcher's base is a prefix of path on a
// segment boundary: "/api" covers "/api" and "/api/x" but not "/apix".
func (c *Catcher) baseMatches(path string) bool {
	if c.base == "/" {
		return true
	}
	if !strings.HasPrefix(path, c.base) {
		return false
	}
	return len(path) == len(c.base) || path[len(c.base)] == '/'
}

// selectCatchers returns the catchers eligible for (status, path) in
// precedence order. Specificity is base-length-first: an exact-status
// catcher at the longest matching base wins, then the default catcher at
// that base, and only then catchers at shorter bases: a default catcher
// at "/api" beats an exact 404 catcher at "/". Status exactness
// breaks ties only within one base. Declaration order is the final,
// purely stabilizing dimension.
func selectCatchers(catchers []*Catcher, status int, path string) []*Catcher {
	eligible := make([]*Catcher, 0, len(catchers))
	for _, c := range catchers {
		if c.status != 0 && c.status != status {
			continue
		}
		if !c.baseMatches(path) {
			continue
		}
		eligible = append(eligible, c)
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if len(a.base) != len(b.base) {
			return len(a.base) > len(b.base)
		}
		if (a.status != 0) != (b.status != 0) {
			return a.status != 0
		}
		return a.index < b.index
	})
	return eligible
}

// defaultCatch renders the built-in minimal response used when no
// registered catcher produces one. The body is JSON when the client
// prefers it, plain text otherwise.
func defaultCatch(status int, req *Request) *Response {
	reason := http.StatusText(status)
	if reason == "" {
		reason = "Unknown Error"
	}

	if media.Preference(req.Accept(), media.JSON) >= media.Preference(req.Accept(), media.Text) {
		return JSONResponse(status, map[string]any{
			"error": map[string]any{"code": status, "reason": reason},
		})
	}
	return TextResponse(status, fmt.Sprintf("%d %s", status, reason))
}
