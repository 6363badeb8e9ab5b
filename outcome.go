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

import "fmt"

// outcomeKind discriminates the three Outcome states.
type outcomeKind uint8

const (
	outcomeSuccess outcomeKind = iota
	outcomeFailure
	outcomeForward
)

// Outcome is the tri-state result that every guard and handler step
// produces:
//
//   - Success carries a value: the step claimed the request and produced
//     its result.
//   - Failure carries a status code and error: the step claimed the
//     request and rejected it.
//   - Forward carries the unconsumed request body: the step declines to
//     claim the request, and the dispatch loop should try the next
//     candidate route.
//
// Forward is normal control flow, not an error. Collapsing Outcome into a
// two-state result would lose the ability to express "try the next
// route", so every call site in the engine threads all three states
// explicitly.
type Outcome[T any] struct {
	kind   outcomeKind
	value  T
	status int
	err    error
	data   *Data
}

// Success returns a successful outcome carrying value.
func Success[T any](value T) Outcome[T] {
	return Outcome[T]{kind: outcomeSuccess, value: value}
}

// Failure returns a failed outcome with the given status code and cause.
func Failure[T any](status int, err error) Outcome[T] {
	return Outcome[T]{kind: outcomeFailure, status: status, err: err}
}

// Forward returns a forwarding outcome. The data handle carries whatever
// remains of the request body so a later candidate can still consume it.
func Forward[T any](data *Data) Outcome[T] {
	return Outcome[T]{kind: outcomeForward, data: data}
}

// IsSuccess reports whether the outcome is Success.
func (o Outcome[T]) IsSuccess() bool { return o.kind == outcomeSuccess }

// IsFailure reports whether the outcome is Failure.
func (o Outcome[T]) IsFailure() bool { return o.kind == outcomeFailure }

// IsForward reports whether the outcome is Forward.
func (o Outcome[T]) IsForward() bool { return o.kind == outcomeForward }

// Value returns the Success value, or the zero value otherwise.
func (o Outcome[T]) Value() T { return o.value }

// Status returns the Failure status code, or 0 otherwise.
func (o Outcome[T]) Status() int { return o.status }

// Err returns the Failure cause, or nil otherwise.
func (o Outcome[T]) Err() error { return o.err }

// ForwardedData returns the body handle carried by a Forward, or nil.
func (o Outcome[T]) ForwardedData() *Data { return o.data }

// String renders the outcome state for logs and diagnostics.
func (o Outcome[T]) String() string {
	switch o.kind {
	case outcomeSuccess:
		return "success"
	case outcomeFailure:
		return fmt.Sprintf("failure(%d)", o.status)
	default:
		return "forward"
	}
}

// OrForward converts a Failure into a Forward carrying data, leaving
// Success and Forward untouched. Guards use it to decline instead of
// rejecting when a later route may still serve the request.
func (o Outcome[T]) OrForward(data *Data) Outcome[T] {
	if o.kind == outcomeFailure {
		return Forward[T](data)
	}
	return o
}

// ValueOr returns the Success value, or fallback for the other states.
func (o Outcome[T]) ValueOr(fallback T) T {
	if o.kind == outcomeSuccess {
		return o.value
	}
	return fallback
}

// Map applies fn to a Success value, passing Failure and Forward through
// with their state intact.
func Map[T, U any](o Outcome[T], fn func(T) U) Outcome[U] {
	if o.kind == outcomeSuccess {
		return Success(fn(o.value))
	}
	return carry[T, U](o)
}

// AndThen chains a dependent step: fn runs only on Success, and its own
// tri-state result becomes the final outcome.
func AndThen[T, U any](o Outcome[T], fn func(T) Outcome[U]) Outcome[U] {
	if o.kind == outcomeSuccess {
		return fn(o.value)
	}
	return carry[T, U](o)
}

// carry transfers a non-success state across value types.
func carry[T, U any](o Outcome[T]) Outcome[U] {
	return Outcome[U]{kind: o.kind, status: o.status, err: o.err, data: o.data}
}
