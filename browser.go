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
	"context"
	"time"
)

// PageErrorHandler receives uncaught page errors: the message and the raw
// stack trace text.
type PageErrorHandler func(message, stack string)

// ConsoleMessageHandler receives console messages with their kind.
type ConsoleMessageHandler func(kind ConsoleLevel, message string)

// BrowserSession is one controllable browser tab. A hunt drives exactly one
// session and never issues a second navigation before the first (and its link
// evaluation) returns.
type BrowserSession interface {
	// Navigate loads url and returns once the page has loaded
	Navigate(ctx context.Context, url string) error
	// EvaluateLinks returns the absolute href of every anchor on the current page
	EvaluateLinks(ctx context.Context) ([]string, error)
	// Wait pauses for d, letting asynchronous page activity happen
	Wait(ctx context.Context, d time.Duration) error
	// Screenshot captures the current page into the file at path
	Screenshot(ctx context.Context, path string) error
	// OnPageError registers the handler for uncaught page errors.
	// Handlers may be called from another goroutine at any time.
	OnPageError(h PageErrorHandler)
	// OnConsoleMessage registers the handler for console messages.
	// Handlers may be called from another goroutine at any time.
	OnConsoleMessage(h ConsoleMessageHandler)
	// End releases the session's browser resources. It is safe to call more than once.
	End(ctx context.Context) error
}

// Launcher starts a BrowserSession for one hunt. It carries the
// engine-specific launch configuration.
type Launcher interface {
	Launch(ctx context.Context) (BrowserSession, error)
}

// LauncherFunc adapts a function to Launcher.
type LauncherFunc func(ctx context.Context) (BrowserSession, error)

// Launch implements Launcher
func (f LauncherFunc) Launch(ctx context.Context) (BrowserSession, error) {
	return f(ctx)
}

// Hook runs against the raw session before the first navigation or after the
// last one. The hunt waits for it to return.
type Hook func(ctx context.Context, s BrowserSession) error
