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
	"encoding/json"
	"net/http"

	"rivaas.dev/dispatch/media"
)

// Response is the fully formed dispatch result: status, headers, body.
// Body streaming belongs to the transport layer; the engine deals in
// materialized bodies.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// NewResponse returns an empty response with the given status.
func NewResponse(status int) *Response {
	return &Response{Status: status, Header: make(http.Header)}
}

// SetHeader sets a header, replacing existing values.
func (r *Response) SetHeader(key, value string) *Response {
	r.Header.Set(key, value)
	return r
}

// TextResponse returns a text/plain response.
func TextResponse(status int, body string) *Response {
	r := NewResponse(status)
	r.Header.Set("Content-Type", media.Text.String())
	r.Body = []byte(body)
	return r
}

// JSONResponse returns an application/json response. Marshal errors
// surface as a 500 with an empty body rather than a panic.
func JSONResponse(status int, v any) *Response {
	r := NewResponse(status)
	r.Header.Set("Content-Type", media.JSON.String())
	b, err := json.Marshal(v)
	if err != nil {
		r.Status = http.StatusInternalServerError
		return r
	}
	r.Body = b
	return r
}

// textResponder and jsonResponder are small built-in Responders.

// Text returns a Responder producing a plain-text response.
func Text(status int, body string) Responder {
	return textResponder{status: status, body: body}
}

type textResponder struct {
	status int
	body   string
}

func (t textResponder) Respond(*Request) Outcome[*Response] {
	return Success(TextResponse(t.status, t.body))
}

// JSON returns a Responder producing a JSON response.
func JSON(status int, v any) Responder {
	return jsonResponder{status: status, value: v}
}

type jsonResponder struct {
	status int
	value  any
}

func (j jsonResponder) Respond(*Request) Outcome[*Response] {
	return Success(JSONResponse(j.status, j.value))
}
