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
	"fmt"
	"strings"
)

// ConsoleLevel is a console message kind as reported by the browser.
// Only the kinds listed in consoleRanks take part in threshold filtering.
type ConsoleLevel string

const (
	// ConsoleError is console.error, the most severe kind
	ConsoleError ConsoleLevel = "error"
	// ConsoleWarn is console.warn
	ConsoleWarn ConsoleLevel = "warn"
	// ConsoleLog is console.log
	ConsoleLog ConsoleLevel = "log"
)

// consoleRanks orders console kinds by severity. Lower is more severe.
var consoleRanks = map[ConsoleLevel]int{
	ConsoleError: 0,
	ConsoleWarn:  1,
	ConsoleLog:   2,
}

// Rank returns the severity rank of the level and whether the level is known.
func (l ConsoleLevel) Rank() (int, bool) {
	r, ok := consoleRanks[l]
	return r, ok
}

// Admits reports whether a message of the given kind passes a threshold of l.
// Unknown kinds (info, debug, table, ...) never pass.
func (l ConsoleLevel) Admits(kind ConsoleLevel) bool {
	threshold, ok := l.Rank()
	if !ok {
		threshold = consoleRanks[ConsoleError]
	}
	rank, ok := kind.Rank()
	return ok && rank <= threshold
}

// ParseConsoleLevel parses a level name. The empty string yields ConsoleError.
func ParseConsoleLevel(s string) (ConsoleLevel, error) {
	switch l := ConsoleLevel(strings.ToLower(strings.TrimSpace(s))); l {
	case "":
		return ConsoleError, nil
	case ConsoleError, ConsoleWarn, ConsoleLog:
		return l, nil
	case "warning":
		return ConsoleWarn, nil
	default:
		return "", fmt.Errorf("invalid console level %q (must be error, warn or log)", s)
	}
}
