// Copyright 2025 Agentic World, LLC (Sherin Thomas)
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

package hounds

import (
	"strings"
)

// EventKind distinguishes the two event shapes a hunt emits
type EventKind string

const (
	// KindError is an uncaught script error
	KindError EventKind = "error"
	// KindConsole is a console message at or above the configured level
	KindConsole EventKind = "console"
)

// Event is one item delivered by a Hunt: *ErrorEvent or *ConsoleEvent.
type Event interface {
	Kind() EventKind
	PageURL() string
}

// ErrorEvent is an uncaught JavaScript error raised on the page being crawled.
//
// URL is the page the hunt considered current when the error arrived. Errors
// are reported asynchronously, so an error thrown late by page N may be tagged
// with page N+1 if navigation has already moved on.
type ErrorEvent struct {
	URL        string   `json:"url"`
	Message    string   `json:"message"`
	StackTrace []string `json:"stackTrace"`
}

// Kind implements Event
func (e *ErrorEvent) Kind() EventKind { return KindError }

// PageURL implements Event
func (e *ErrorEvent) PageURL() string { return e.URL }

// ConsoleEvent is a console message whose level passed the hunt's threshold.
type ConsoleEvent struct {
	URL     string       `json:"url"`
	Type    ConsoleLevel `json:"type"`
	Message string       `json:"message"`
}

// Kind implements Event
func (e *ConsoleEvent) Kind() EventKind { return KindConsole }

// PageURL implements Event
func (e *ConsoleEvent) PageURL() string { return e.URL }

// splitStack turns raw stack text into trimmed, non-empty lines.
func splitStack(stack string) []string {
	lines := []string{}
	for _, l := range strings.Split(stack, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
