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

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/agentberlin/hounds"
	"github.com/agentberlin/hounds/internal/store"
	"github.com/agentberlin/hounds/internal/types"
)

// printer writes findings either human readable or as JSON lines.
type printer struct {
	mu   sync.Mutex
	w    io.Writer
	json bool
	enc  *json.Encoder
}

func newPrinter(w io.Writer, jsonOutput bool) *printer {
	return &printer{w: w, json: jsonOutput, enc: json.NewEncoder(w)}
}

func (p *printer) finding(f types.FindingInfo) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.json {
		return p.enc.Encode(f)
	}

	label := f.Kind
	if f.Kind == store.FindingConsole {
		label = "console." + f.Type
	}
	if _, err := fmt.Fprintf(p.w, "%-14s %s\n  %s\n", label, f.URL, f.Message); err != nil {
		return err
	}
	for _, line := range f.StackTrace {
		// The first stack line repeats the message
		if strings.HasSuffix(f.Message, line) {
			continue
		}
		if _, err := fmt.Fprintf(p.w, "    %s\n", line); err != nil {
			return err
		}
	}
	return nil
}

// findingFromEvent converts a hunt event into its printable form.
func findingFromEvent(ev hounds.Event) types.FindingInfo {
	switch e := ev.(type) {
	case *hounds.ErrorEvent:
		return types.FindingInfo{
			Kind:       string(hounds.KindError),
			URL:        e.URL,
			Message:    e.Message,
			StackTrace: e.StackTrace,
		}
	case *hounds.ConsoleEvent:
		return types.FindingInfo{
			Kind:    string(hounds.KindConsole),
			URL:     e.URL,
			Message: e.Message,
			Type:    string(e.Type),
		}
	}
	return types.FindingInfo{Kind: string(ev.Kind()), URL: ev.PageURL()}
}

// summary counts what a hunt found.
type summary struct {
	HuntID      string
	Visited     int
	Errors      int
	Console     int
	Interrupted bool
}

func (s *summary) add(f types.FindingInfo) {
	if f.Kind == string(hounds.KindError) {
		s.Errors++
	} else {
		s.Console++
	}
}

func (s summary) print(w io.Writer) {
	status := "Done"
	if s.Interrupted {
		status = "Interrupted"
	}
	fmt.Fprintf(w, "%s: %d %s visited, %d %s, %d console %s\n",
		status,
		s.Visited, plural(s.Visited, "page", "pages"),
		s.Errors, plural(s.Errors, "error", "errors"),
		s.Console, plural(s.Console, "message", "messages"))
	if s.HuntID != "" {
		fmt.Fprintf(w, "Recorded as hunt %s (hounds findings %s)\n", s.HuntID, s.HuntID)
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
