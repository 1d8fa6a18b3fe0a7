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

import "testing"

func TestConsoleLevel_Admits(t *testing.T) {
	cases := []struct {
		threshold ConsoleLevel
		kind      ConsoleLevel
		want      bool
	}{
		{ConsoleError, ConsoleError, true},
		{ConsoleError, ConsoleWarn, false},
		{ConsoleWarn, ConsoleError, true},
		{ConsoleWarn, ConsoleWarn, true},
		{ConsoleWarn, ConsoleLog, false},
		{ConsoleLog, ConsoleLog, true},
		{ConsoleLog, "info", false},
		{ConsoleLog, "debug", false},
		{"", ConsoleError, true},
		{"", ConsoleWarn, false},
	}
	for _, c := range cases {
		if got := c.threshold.Admits(c.kind); got != c.want {
			t.Errorf("%q admits %q = %v, want %v", c.threshold, c.kind, got, c.want)
		}
	}
}

func TestParseConsoleLevel(t *testing.T) {
	for in, want := range map[string]ConsoleLevel{
		"":        ConsoleError,
		"error":   ConsoleError,
		" WARN ":  ConsoleWarn,
		"warning": ConsoleWarn,
		"log":     ConsoleLog,
	} {
		got, err := ParseConsoleLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseConsoleLevel(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseConsoleLevel("info"); err == nil {
		t.Error("info must be rejected")
	}
}
