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

// Package uri models route path and query patterns as typed segments and
// matches live request URIs against them.
//
// A pattern is a sequence of segments separated by "/" (path patterns) or
// "&" (query patterns). A segment wrapped in angle brackets is dynamic:
//
//	/users/<id>          one dynamic segment, bound as "id"
//	/static/<path..>     trailing segment, consumes the rest of the path
//	/health/<_>          ignored segment, matched but never bound
//	/files/<_..>         ignored trailing segment
//
// Everything else is static and must match a live component exactly.
// Patterns are parsed once at route registration; parsing is total and
// pure, so identical pattern text always yields identical segment lists.
package uri

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyDynamicName indicates a dynamic segment with no name, such as "<>".
	ErrEmptyDynamicName = errors.New("dynamic segment name is empty")

	// ErrTrailingNotLast indicates a trailing segment followed by more segments.
	ErrTrailingNotLast = errors.New("trailing segment must be the last segment of its part")

	// ErrMalformedDynamic indicates unbalanced or embedded angle brackets.
	ErrMalformedDynamic = errors.New("malformed dynamic segment")

	// ErrReservedCharacter indicates a static segment containing a character
	// that must be percent-encoded in pattern text.
	ErrReservedCharacter = errors.New("static segment contains reserved character")
)

// Kind classifies a pattern segment.
type Kind uint8

const (
	// Static matches one live component byte-for-byte.
	Static Kind = iota

	// Dynamic matches exactly one live component and binds it under the
	// segment's name.
	Dynamic

	// DynamicTrailing matches all remaining live components (possibly zero)
	// as a single multi-component binding.
	DynamicTrailing

	// Ignored matches exactly one live component and discards it.
	Ignored

	// IgnoredTrailing matches all remaining live components and discards them.
	IgnoredTrailing
)

// String returns the kind name for diagnostics.
func (k Kind) String() string {
	switch k {
	case Static:
		return "static"
	case Dynamic:
		return "dynamic"
	case DynamicTrailing:
		return "dynamic-trailing"
	case Ignored:
		return "ignored"
	case IgnoredTrailing:
		return "ignored-trailing"
	default:
		return "unknown"
	}
}

// Part identifies which half of a route pattern a segment list belongs to.
type Part uint8

const (
	// PartPath is the path half of a pattern, delimited by "/".
	PartPath Part = iota

	// PartQuery is the query half of a pattern, delimited by "&".
	PartQuery
)

// delimiter returns the separator character for the part.
func (p Part) delimiter() string {
	if p == PartQuery {
		return "&"
	}
	return "/"
}

// Segment is one parsed token of a route pattern. Segments are built once
// at registration time and are immutable afterward.
type Segment struct {
	// Kind classifies how the segment consumes live components.
	Kind Kind

	// Text holds the literal text for Static segments and the binding name
	// for Dynamic and DynamicTrailing segments. It is empty for ignored
	// segments.
	Text string

	// Index is the position of the segment within its declared part.
	Index int
}

// IsDynamic reports whether the segment binds or consumes a live value
// (anything other than Static).
func (s Segment) IsDynamic() bool {
	return s.Kind != Static
}

// IsTrailing reports whether the segment consumes all remaining components.
func (s Segment) IsTrailing() bool {
	return s.Kind == DynamicTrailing || s.Kind == IgnoredTrailing
}

// reservedStatic are characters that may not appear unencoded in a static
// pattern segment. They are either pattern metacharacters or URI component
// delimiters; percent-encoded forms are fine and match the raw components
// the matcher compares.
const reservedStatic = "<>?#&= "

// ParsePattern parses pattern text into its segment list. The part selects
// the delimiter: "/" for paths, "&" for queries. Parsing is pure; all
// malformed patterns are rejected here, at registration time, never at
// request time.
//
// Examples:
//
//	uri.ParsePattern("/users/<id>", uri.PartPath)
//	uri.ParsePattern("limit=10&<page>", uri.PartQuery)
func ParsePattern(text string, part Part) ([]Segment, error) {
	if part == PartPath {
		text = strings.TrimPrefix(text, "/")
	}

	// An empty pattern ("/" for paths, "" for queries) has no segments.
	if text == "" {
		return nil, nil
	}

	raw := strings.Split(text, part.delimiter())
	segments := make([]Segment, 0, len(raw))

	for i, token := range raw {
		seg, err := parseSegment(token, part)
		if err != nil {
			return nil, fmt.Errorf("segment %d (%q): %w", i, token, err)
		}
		seg.Index = i
		if seg.IsTrailing() && i != len(raw)-1 {
			return nil, fmt.Errorf("segment %d (%q): %w", i, token, ErrTrailingNotLast)
		}
		segments = append(segments, seg)
	}

	return segments, nil
}

// parseSegment classifies a single pattern token.
func parseSegment(token string, part Part) (Segment, error) {
	if strings.HasPrefix(token, "<") && strings.HasSuffix(token, ">") {
		name := token[1 : len(token)-1]
		if name == "" || name == ".." {
			return Segment{}, ErrEmptyDynamicName
		}
		if strings.ContainsAny(name, "<>") {
			return Segment{}, ErrMalformedDynamic
		}

		trailing := strings.HasSuffix(name, "..")
		name = strings.TrimSuffix(name, "..")

		switch {
		case name == "_" && trailing:
			return Segment{Kind: IgnoredTrailing}, nil
		case name == "_":
			return Segment{Kind: Ignored}, nil
		case trailing:
			return Segment{Kind: DynamicTrailing, Text: name}, nil
		default:
			return Segment{Kind: Dynamic, Text: name}, nil
		}
	}

	// Static query segments are "key=value" pairs; the "=" is structural
	// there, so only reject it inside path statics.
	reserved := reservedStatic
	if part == PartQuery {
		reserved = strings.ReplaceAll(reserved, "=", "")
	}
	if strings.ContainsAny(token, reserved) {
		return Segment{}, ErrReservedCharacter
	}
	if token == "" {
		return Segment{}, fmt.Errorf("%w: empty static segment", ErrReservedCharacter)
	}

	return Segment{Kind: Static, Text: token}, nil
}

// HasTrailing reports whether the segment list ends in a trailing segment.
func HasTrailing(segments []Segment) bool {
	n := len(segments)
	return n > 0 && segments[n-1].IsTrailing()
}

// DynamicCount returns the number of non-static segments.
func DynamicCount(segments []Segment) int {
	count := 0
	for _, s := range segments {
		if s.IsDynamic() {
			count++
		}
	}
	return count
}

// SplitPath splits a normalized request path into its components. The
// leading slash is dropped; "/" yields no components. Components are left
// percent-encoded: decoding is the guard's job, not the matcher's.
func SplitPath(path string) []string {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
