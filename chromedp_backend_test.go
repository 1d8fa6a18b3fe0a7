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
	"testing"

	"github.com/chromedp/cdproto/runtime"
)

func TestExceptionMessageAndStack(t *testing.T) {
	d := &runtime.ExceptionDetails{
		Text: "Uncaught",
		Exception: &runtime.RemoteObject{
			Description: "Error: boom\n    at explode (http://a.test/error:3:28)\n    at http://a.test/error:4:1",
		},
	}
	if got := exceptionMessage(d); got != "Uncaught Error: boom" {
		t.Errorf("message = %q", got)
	}
	if got := exceptionStack(d); got != d.Exception.Description {
		t.Errorf("stack = %q", got)
	}

	// Thrown primitives carry no description stack
	d = &runtime.ExceptionDetails{
		Text: "Uncaught 42",
		StackTrace: &runtime.StackTrace{CallFrames: []*runtime.CallFrame{
			{URL: "http://a.test/x.js", LineNumber: 0, ColumnNumber: 4},
		}},
	}
	if got := exceptionMessage(d); got != "Uncaught 42" {
		t.Errorf("message = %q", got)
	}
	if got := exceptionStack(d); got != "at <anonymous> (http://a.test/x.js:1:5)\n" {
		t.Errorf("stack = %q", got)
	}
}

func TestStringifyArgs(t *testing.T) {
	args := []*runtime.RemoteObject{
		{Type: "string", Value: []byte(`"hello"`)},
		{Type: "number", Value: []byte(`3`)},
		{Type: "object", Subtype: "null", Value: []byte(`null`)},
		{Type: "object", Description: "Array(2)"},
		{Type: "number", UnserializableValue: "NaN"},
		nil,
	}
	if got := stringifyArgs(args); got != "hello 3 null Array(2) NaN" {
		t.Fatalf("got %q", got)
	}
}

func TestConsoleKind(t *testing.T) {
	if consoleKind("warning") != ConsoleWarn || consoleKind("error") != ConsoleError || consoleKind("info") != "info" {
		t.Fatal("unexpected mapping")
	}
}

func TestBrowserOptions_AllocatorOptions(t *testing.T) {
	o := DefaultBrowserOptions()
	base := len(o.allocatorOptions())
	o.ExecPath = "/usr/bin/chromium"
	o.UserAgent = "hounds"
	o.Flags = map[string]any{"lang": "en"}
	if got := len(o.allocatorOptions()); got != base+3 {
		t.Fatalf("got %d options, want %d", got, base+3)
	}
}
