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
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingFairing participates in every phase and appends phase labels
// to a shared trace, so tests can assert execution order.
type recordingFairing struct {
	name  string
	trace *[]string
}

func (f *recordingFairing) Info() FairingInfo {
	return FairingInfo{
		Name: f.name,
		Kind: KindIgnite | KindRequest | KindResponse | KindLiftoff | KindShutdown,
	}
}

func (f *recordingFairing) OnIgnite(context.Context, *Engine) error {
	*f.trace = append(*f.trace, f.name+":ignite")
	return nil
}

func (f *recordingFairing) OnRequest(_ context.Context, _ *Request, _ *Data) {
	*f.trace = append(*f.trace, f.name+":request")
}

func (f *recordingFairing) OnResponse(_ context.Context, _ *Request, _ *Response) {
	*f.trace = append(*f.trace, f.name+":response")
}

func (f *recordingFairing) OnLiftoff(context.Context, *Engine) {
	*f.trace = append(*f.trace, f.name+":liftoff")
}

func (f *recordingFairing) OnShutdown(context.Context) {
	*f.trace = append(*f.trace, f.name+":shutdown")
}

// Attachment order is execution order in every phase, response included.
func TestFairings_RunInAttachmentOrder(t *testing.T) {
	var trace []string
	e := New()
	require.NoError(t, e.Attach(&recordingFairing{name: "f1", trace: &trace}))
	require.NoError(t, e.Attach(&recordingFairing{name: "f2", trace: &trace}))
	require.NoError(t, e.Mount("/", NewRoute(http.MethodGet, "/x", replyWith("ok"))))
	require.NoError(t, e.Ignite(context.Background()))

	e.Liftoff(context.Background())
	dispatchPath(e, http.MethodGet, "/x")
	e.Shutdown(context.Background())

	assert.Equal(t, []string{
		"f1:ignite", "f2:ignite",
		"f1:liftoff", "f2:liftoff",
		"f1:request", "f2:request",
		"f1:response", "f2:response",
		"f1:shutdown", "f2:shutdown",
	}, trace)
}

// Response fairings run for catcher-produced responses too.
func TestFairings_ResponseRunsOnCatcherOutput(t *testing.T) {
	var trace []string
	e := New()
	require.NoError(t, e.Attach(&recordingFairing{name: "f", trace: &trace}))
	require.NoError(t, e.Ignite(context.Background()))

	resp := dispatchPath(e, http.MethodGet, "/missing")
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.Contains(t, trace, "f:response")
}

// rewriteFairing redirects every request to a fixed path before matching.
type rewriteFairing struct {
	to string
}

func (f *rewriteFairing) Info() FairingInfo {
	return FairingInfo{Name: "rewrite", Kind: KindRequest}
}

func (f *rewriteFairing) OnRequest(_ context.Context, req *Request, _ *Data) {
	req.Path = f.to
}

func TestFairings_RequestMayRewritePath(t *testing.T) {
	e := New()
	require.NoError(t, e.Attach(&rewriteFairing{to: "/real"}))
	require.NoError(t, e.Mount("/", NewRoute(http.MethodGet, "/real", replyWith("rewritten"))))
	require.NoError(t, e.Ignite(context.Background()))

	resp := dispatchPath(e, http.MethodGet, "/decoy")
	assert.Equal(t, "rewritten", string(resp.Body))
}

// vetoFairing aborts ignition.
type vetoFairing struct{ err error }

func (f *vetoFairing) Info() FairingInfo {
	return FairingInfo{Name: "veto", Kind: KindIgnite}
}

func (f *vetoFairing) OnIgnite(context.Context, *Engine) error { return f.err }

func TestFairings_IgniteErrorAbortsStartup(t *testing.T) {
	errVeto := errors.New("not ready")
	e := New()
	require.NoError(t, e.Attach(&vetoFairing{err: errVeto}))

	err := e.Ignite(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errVeto)
	assert.Panics(t, func() { dispatchPath(e, http.MethodGet, "/") }, "a vetoed engine must not dispatch")
}

// mutatingIgniteFairing tries to register a route from inside OnIgnite.
type mutatingIgniteFairing struct{ mountErr error }

func (f *mutatingIgniteFairing) Info() FairingInfo {
	return FairingInfo{Name: "mutator", Kind: KindIgnite}
}

func (f *mutatingIgniteFairing) OnIgnite(_ context.Context, e *Engine) error {
	f.mountErr = e.Mount("/", NewRoute(http.MethodGet, "/late", okHandler))
	return nil
}

// A fairing that mutates the engine during ignition gets ErrIgnited
// back instead of deadlocking on the registration lock.
func TestFairings_IgniteMutationFailsWithErrIgnited(t *testing.T) {
	f := &mutatingIgniteFairing{}
	e := New()
	require.NoError(t, e.Attach(f))
	require.NoError(t, e.Ignite(context.Background()))
	assert.ErrorIs(t, f.mountErr, ErrIgnited)
}

// singletonFairing declares the singleton kind with no phase work.
type singletonFairing struct{}

func (singletonFairing) Info() FairingInfo {
	return FairingInfo{Name: "single", Kind: KindSingleton}
}

func TestFairings_SingletonRejectsDuplicate(t *testing.T) {
	e := New()
	require.NoError(t, e.Attach(singletonFairing{}))
	err := e.Attach(singletonFairing{})
	assert.ErrorIs(t, err, ErrDuplicateSingleton)
}

// liarFairing declares a phase its type does not implement.
type liarFairing struct{}

func (liarFairing) Info() FairingInfo {
	return FairingInfo{Name: "liar", Kind: KindResponse}
}

func TestFairings_KindMustBeImplemented(t *testing.T) {
	err := New().Attach(liarFairing{})
	assert.ErrorIs(t, err, ErrFairingKindUnhandled)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "none", Kind(0).String())
	assert.Equal(t, "request|response", (KindRequest | KindResponse).String())
	assert.Equal(t, "ignite|singleton", (KindIgnite | KindSingleton).String())
}

func TestKind_Has(t *testing.T) {
	k := KindRequest | KindResponse
	assert.True(t, k.Has(KindRequest))
	assert.True(t, k.Has(KindRequest|KindResponse))
	assert.False(t, k.Has(KindShutdown))
}
