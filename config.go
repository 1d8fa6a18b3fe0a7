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
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/agentberlin/hounds/storage"
)

// Config contains all options of a single hunt. A Config must not be
// modified after it has been passed to Release.
type Config struct {
	// URL is the seed page. Required.
	URL string
	// URLFilter decides which discovered links are followed.
	// Default: follow same-origin links only.
	URLFilter URLFilterFunc
	// MaxFollows limits how many pages besides the seed are visited.
	// nil means unbounded. 0 visits the seed only, N the seed plus N follows.
	MaxFollows *int
	// Timeout stops following new links once elapsed. The page in flight is
	// finished; no further page is visited. 0 disables the timeout.
	Timeout time.Duration
	// ConsoleLevel is the least severe console kind reported.
	// Default: ConsoleError
	ConsoleLevel ConsoleLevel
	// Before runs once before the first navigation (sign-in, cookie setup)
	Before Hook
	// After runs once after the last navigation (sign-out). With KeepAlive it
	// may keep driving the session; its events are still delivered.
	After Hook
	// KeepAlive leaves the browser session and the hunt open after the queue is
	// exhausted. The caller ends the hunt with Close.
	KeepAlive bool
	// WaitAfterLoadedFor is the settle delay between page load and link extraction
	WaitAfterLoadedFor time.Duration
	// Screenshot returns the file path for a capture of each visited page.
	// nil disables screenshots.
	Screenshot func(url string) string
	// LogTo receives every URL as it is visited, one per line. It fires whether
	// or not the hunt is being drained at that moment.
	LogTo io.Writer
	// Launcher starts the browser session. Default: a headless Chrome.
	Launcher Launcher
	// Storage keeps the visited set. Default: in memory.
	Storage storage.Storage
	// Logger receives engine diagnostics. Default: slog.Default()
	Logger *slog.Logger
}

// Follows returns a pointer to n, for Config.MaxFollows.
func Follows(n int) *int {
	return &n
}

// DefaultConfig returns a Config for url with default values.
func DefaultConfig(url string) *Config {
	return &Config{
		URL:          url,
		ConsoleLevel: ConsoleError,
	}
}

// Validate checks the configuration and returns a *ConfigurationError.
func (c *Config) Validate() error {
	if c == nil || strings.TrimSpace(c.URL) == "" {
		return &ConfigurationError{Field: "url", Err: ErrNoURL}
	}
	if c.ConsoleLevel != "" {
		if _, err := ParseConsoleLevel(string(c.ConsoleLevel)); err != nil {
			return &ConfigurationError{Field: "consoleLevel", Err: err}
		}
	}
	if c.MaxFollows != nil && *c.MaxFollows < 0 {
		return &ConfigurationError{Field: "maxFollows", Err: errNegative}
	}
	if c.Timeout < 0 {
		return &ConfigurationError{Field: "timeout", Err: errNegative}
	}
	if c.WaitAfterLoadedFor < 0 {
		return &ConfigurationError{Field: "waitAfterLoadedFor", Err: errNegative}
	}
	return nil
}

// normalized returns a copy of c with defaults filled in. c must be valid.
func (c *Config) normalized() Config {
	n := *c
	n.ConsoleLevel, _ = ParseConsoleLevel(string(c.ConsoleLevel))
	if n.Launcher == nil {
		n.Launcher = &ChromeLauncher{}
	}
	if n.Storage == nil {
		n.Storage = &storage.InMemoryStorage{}
	}
	if n.Logger == nil {
		n.Logger = slog.Default()
	}
	return n
}
