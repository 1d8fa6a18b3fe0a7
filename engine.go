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
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"
)

// State is the lifecycle position of a hunt's engine.
type State int32

const (
	StateIdle State = iota
	StateAwaitingFirstDemand
	StateRunningBefore
	StateNavigating
	StateRunningAfter
	StateDraining
	StateEnded
	StateErrored
)

var stateNames = [...]string{
	StateIdle:                "idle",
	StateAwaitingFirstDemand: "awaiting-first-demand",
	StateRunningBefore:       "running-before",
	StateNavigating:          "navigating",
	StateRunningAfter:        "running-after",
	StateDraining:            "draining",
	StateEnded:               "ended",
	StateErrored:             "errored",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int32(s))
	}
	return stateNames[s]
}

// engine sequences one hunt: a single goroutine visits one page at a time.
// Only the page error and console handlers run concurrently with it.
type engine struct {
	hunt *Hunt
	raw  *Config

	cfg     Config
	queue   *CrawlQueue
	matcher *URLMatcher
	session BrowserSession
	log     *slog.Logger

	// budget is the highest visited count that still allows another page.
	budget  atomic.Int64
	current atomic.Value
}

func newEngine(h *Hunt, cfg *Config) *engine {
	return &engine{hunt: h, raw: cfg}
}

func (e *engine) run(ctx context.Context) {
	if err := e.raw.Validate(); err != nil {
		e.abort(ctx, err)
		return
	}
	e.cfg = e.raw.normalized()
	e.log = e.cfg.Logger.With("seed", e.cfg.URL)

	queue, err := NewCrawlQueue(e.cfg.URL, e.cfg.Storage)
	if err != nil {
		e.abort(ctx, fmt.Errorf("failed to initialize visited storage: %w", err))
		return
	}
	e.queue = queue
	e.matcher = NewURLMatcher(e.cfg.URL, e.cfg.URLFilter)

	e.budget.Store(math.MaxInt64)
	if e.cfg.MaxFollows != nil {
		e.budget.Store(int64(*e.cfg.MaxFollows))
	}
	e.current.Store(e.cfg.URL)

	session, err := e.cfg.Launcher.Launch(ctx)
	if err != nil {
		e.abort(ctx, fmt.Errorf("failed to launch browser: %w", err))
		return
	}
	e.session = session
	e.hunt.setSession(session)
	if ctx.Err() != nil {
		// Closed while launching
		_ = e.hunt.endSession()
		return
	}
	session.OnPageError(e.onPageError)
	session.OnConsoleMessage(e.onConsoleMessage)

	if e.cfg.Timeout > 0 {
		timer := time.AfterFunc(e.cfg.Timeout, func() {
			e.log.Info("timeout reached, no further pages will be visited", "timeout", e.cfg.Timeout)
			e.budget.Store(-1)
		})
		defer timer.Stop()
	}

	if e.cfg.Before != nil {
		e.hunt.setState(StateRunningBefore)
		if err := e.cfg.Before(ctx, session); err != nil {
			e.abort(ctx, &HookError{Stage: "before", Err: err})
			return
		}
	}

	for {
		if ctx.Err() != nil {
			return
		}
		if e.queue.Len() == 0 || int64(e.queue.VisitedCount()) > e.budget.Load() {
			break
		}
		url, _ := e.queue.Dequeue()
		if url == "" {
			e.abort(ctx, &ConfigurationError{Field: "url", Err: ErrNoURL})
			return
		}
		if err := e.visit(ctx, url); err != nil {
			e.abort(ctx, err)
			return
		}
	}

	e.hunt.setState(StateDraining)
	if e.cfg.After != nil {
		e.hunt.setState(StateRunningAfter)
		if err := e.cfg.After(ctx, session); err != nil {
			e.abort(ctx, &HookError{Stage: "after", Err: err})
			return
		}
		e.hunt.setState(StateDraining)
	}

	e.log.Info("hunt complete", "visited", e.queue.VisitedCount(), "keepAlive", e.cfg.KeepAlive)
	if e.cfg.KeepAlive {
		return
	}

	err = e.hunt.endSession()
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		e.hunt.setState(StateErrored)
		e.hunt.finish(fmt.Errorf("failed to end browser session: %w", err))
		return
	}
	e.hunt.setState(StateEnded)
	e.hunt.finish(nil)
}

// visit loads one page and enqueues the links it accepts.
func (e *engine) visit(ctx context.Context, url string) error {
	e.hunt.setState(StateNavigating)
	e.queue.MarkVisited(url)
	e.hunt.visited.Store(int64(e.queue.VisitedCount()))
	e.current.Store(url)

	e.log.Info("visiting", "url", url, "visited", e.queue.VisitedCount())
	if e.cfg.LogTo != nil {
		fmt.Fprintln(e.cfg.LogTo, url)
	}

	if err := e.session.Navigate(ctx, url); err != nil {
		return &NavigationError{URL: url, Err: err}
	}
	if e.cfg.WaitAfterLoadedFor > 0 {
		if err := e.session.Wait(ctx, e.cfg.WaitAfterLoadedFor); err != nil {
			return &NavigationError{URL: url, Err: err}
		}
	}
	if e.cfg.Screenshot != nil {
		if path := e.cfg.Screenshot(url); path != "" {
			if err := e.session.Screenshot(ctx, path); err != nil {
				return &NavigationError{URL: url, Err: fmt.Errorf("screenshot: %w", err)}
			}
		}
	}

	links, err := e.session.EvaluateLinks(ctx)
	if err != nil {
		return &EvaluationError{URL: url, Err: err}
	}

	seen := make(map[string]struct{}, len(links))
	added := 0
	for _, link := range links {
		if _, ok := seen[link]; ok {
			continue
		}
		seen[link] = struct{}{}
		if e.queue.Known(link) || !e.matcher.Accept(link) {
			continue
		}
		e.queue.Enqueue(link)
		added++
	}
	e.log.Debug("links evaluated", "url", url, "found", len(seen), "queued", added)
	return nil
}

// abort ends the hunt with err. A hunt closed from outside is already
// finished, so failures caused by that close are not reported.
func (e *engine) abort(ctx context.Context, err error) {
	if ctx.Err() != nil {
		return
	}
	if e.log != nil {
		e.log.Error("hunt failed", "error", err)
	}
	e.hunt.setState(StateErrored)
	if endErr := e.hunt.endSession(); endErr != nil && e.log != nil {
		e.log.Warn("failed to end browser session", "error", endErr)
	}
	e.hunt.finish(err)
}

func (e *engine) currentURL() string {
	url, _ := e.current.Load().(string)
	return url
}

func (e *engine) onPageError(message, stack string) {
	e.hunt.push(&ErrorEvent{
		URL:        e.currentURL(),
		Message:    message,
		StackTrace: splitStack(stack),
	})
}

func (e *engine) onConsoleMessage(kind ConsoleLevel, message string) {
	if !e.cfg.ConsoleLevel.Admits(kind) {
		return
	}
	e.hunt.push(&ConsoleEvent{
		URL:     e.currentURL(),
		Type:    kind,
		Message: message,
	})
}
