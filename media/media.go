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

// Package media provides media type parsing and content negotiation for
// the dispatch engine: exact Content-Type matching for payload-bearing
// requests and Accept header preference ordering for the rest.
package media

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedType indicates media type text that is not "top/sub".
var ErrMalformedType = errors.New("malformed media type")

// Type is a parsed media type. Either half may be the "*" wildcard; a
// type with no wildcards is concrete.
type Type struct {
	Top string
	Sub string
}

// Well-known media types.
var (
	Any    = Type{Top: "*", Sub: "*"}
	JSON   = Type{Top: "application", Sub: "json"}
	XML    = Type{Top: "application", Sub: "xml"}
	Form   = Type{Top: "application", Sub: "x-www-form-urlencoded"}
	Binary = Type{Top: "application", Sub: "octet-stream"}
	Text   = Type{Top: "text", Sub: "plain"}
	HTML   = Type{Top: "text", Sub: "html"}
	CSV    = Type{Top: "text", Sub: "csv"}
)

// shortNames maps convenience names accepted by Parse to full types.
var shortNames = map[string]Type{
	"json":   JSON,
	"xml":    XML,
	"form":   Form,
	"binary": Binary,
	"text":   Text,
	"plain":  Text,
	"html":   HTML,
	"csv":    CSV,
	"any":    Any,
}

// Parse parses media type text, accepting full "top/sub" form with
// optional parameters (which are dropped) and a handful of short names
// such as "json" and "html".
func Parse(text string) (Type, error) {
	text = strings.TrimSpace(text)
	if t, ok := shortNames[strings.ToLower(text)]; ok {
		return t, nil
	}

	// Drop parameters: "application/json; charset=utf-8" -> "application/json".
	if semi := strings.IndexByte(text, ';'); semi >= 0 {
		text = strings.TrimSpace(text[:semi])
	}

	top, sub, ok := strings.Cut(text, "/")
	top = strings.TrimSpace(top)
	sub = strings.TrimSpace(sub)
	if !ok || top == "" || sub == "" {
		return Type{}, fmt.Errorf("%w: %q", ErrMalformedType, text)
	}
	return Type{Top: strings.ToLower(top), Sub: strings.ToLower(sub)}, nil
}

// MustParse is Parse panicking on error, for static declarations.
func MustParse(text string) Type {
	t, err := Parse(text)
	if err != nil {
		panic(fmt.Sprintf("media.MustParse: %v", err))
	}
	return t
}

// String returns the "top/sub" form.
func (t Type) String() string {
	return t.Top + "/" + t.Sub
}

// IsZero reports whether the type is unset.
func (t Type) IsZero() bool {
	return t.Top == "" && t.Sub == ""
}

// IsConcrete reports whether neither half is a wildcard.
func (t Type) IsConcrete() bool {
	return t.Top != "*" && t.Sub != "*"
}

// Accepts reports whether t, which may contain client-supplied wildcards,
// accepts the concrete type other. "*/*" accepts everything, "text/*"
// accepts any text type, and a concrete t accepts only an equal type.
func (t Type) Accepts(other Type) bool {
	if t.Top != "*" && t.Top != other.Top {
		return false
	}
	if t.Sub != "*" && t.Sub != other.Sub {
		return false
	}
	return true
}

// Equal reports exact top/sub equality.
func (t Type) Equal(other Type) bool {
	return t.Top == other.Top && t.Sub == other.Sub
}

// AcceptEntry is one parsed member of an Accept header, with its quality
// weight and original position for stable tie-breaking.
type AcceptEntry struct {
	Type    Type
	Quality float64
	pos     int
}

// ParseAccept parses an Accept header into its entries, in header order.
// Malformed members are skipped rather than failing the whole header,
// since Accept is client-supplied. Entries with q=0 are kept so callers
// can distinguish "explicitly refused" from "not mentioned".
func ParseAccept(header string) []AcceptEntry {
	if header == "" {
		return nil
	}

	members := strings.Split(header, ",")
	entries := make([]AcceptEntry, 0, len(members))
	for i, member := range members {
		member = strings.TrimSpace(member)
		if member == "" {
			continue
		}

		quality := 1.0
		typeText := member
		if semi := strings.IndexByte(member, ';'); semi >= 0 {
			typeText = member[:semi]
			quality = parseQuality(member[semi+1:])
		}

		t, err := Parse(typeText)
		if err != nil {
			continue
		}
		entries = append(entries, AcceptEntry{Type: t, Quality: quality, pos: i})
	}
	return entries
}

// parseQuality extracts the q parameter from a parameter list, defaulting
// to 1.0 when absent or malformed.
func parseQuality(params string) float64 {
	for _, param := range strings.Split(params, ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
		if !ok || strings.TrimSpace(key) != "q" {
			continue
		}
		q, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || q < 0 || q > 1 {
			return 1.0
		}
		return q
	}
	return 1.0
}

// Preference returns the client's quality weight for the concrete type t
// under the given Accept header. An empty header expresses no preference
// and weighs every type at 1.0. When several entries accept t, the most
// specific one wins (concrete over "top/*" over "*/*"); among equally
// specific entries the earliest wins.
func Preference(header string, t Type) float64 {
	entries := ParseAccept(header)
	if len(entries) == 0 {
		return 1.0
	}

	best := -1.0
	bestSpecificity := -1
	for _, e := range entries {
		if !e.Type.Accepts(t) {
			continue
		}
		spec := specificity(e.Type)
		if spec > bestSpecificity {
			bestSpecificity = spec
			best = e.Quality
		}
	}
	if best < 0 {
		return 0
	}
	return best
}

// specificity orders accept entries: concrete > top/* > */*.
func specificity(t Type) int {
	switch {
	case t.IsConcrete():
		return 2
	case t.Top != "*":
		return 1
	default:
		return 0
	}
}
