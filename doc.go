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

// Package dispatch is a request-routing and dispatch engine: given a
// registered set of route declarations and an incoming request, it
// deterministically selects (or fails to select) the handler that
// produces the response.
//
// The engine consumes an abstract Request (method, normalized path,
// ordered query pairs, negotiation headers, opaque body handle) and an
// ordered collection of Route and Catcher records, and calls out to
// pluggable guard and handler capabilities. How requests arrive (HTTP/1
// vs HTTP/2 framing, TLS, connection pooling) and how bodies render
// (templates) belong to the surrounding transport, not here.
//
// Matching is collision-free by construction: at Ignite, any two routes
// with the same method and effective rank whose patterns could both match
// one concrete request abort startup. At request time routes are tried in
// ascending rank order; each candidate's guards produce a tri-state
// Outcome (Success, Failure, or Forward), and a Forward sends the loop
// on to the next candidate rather than erroring. When every candidate is
// exhausted, registered catchers are selected by base-path specificity to
// render the terminal status.
//
// A minimal engine:
//
//	engine := dispatch.MustNew()
//	engine.Mount("/", dispatch.NewRoute(http.MethodGet, "/hello/<name>",
//	    dispatch.HandlerFunc(func(ctx context.Context, req *dispatch.Request, _ *dispatch.Data) dispatch.Outcome[*dispatch.Response] {
//	        name, _ := req.Param("name")
//	        return dispatch.Success(dispatch.TextResponse(http.StatusOK, "hello "+name))
//	    })))
//	if err := engine.Ignite(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//	resp := engine.Dispatch(context.Background(), dispatch.NewRequest(http.MethodGet, "/hello/world"), nil)
package dispatch
