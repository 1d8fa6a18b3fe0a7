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
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	cdplog "github.com/chromedp/cdproto/log"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// linksScript collects the resolved href of every anchor on the page.
const linksScript = `Array.from(document.querySelectorAll('a[href]')).map(a => a.href)`

// BrowserOptions configures the Chrome process started by NewBrowser.
type BrowserOptions struct {
	// Headless runs Chrome without a window. Default: true (see DefaultBrowserOptions)
	Headless bool
	// ExecPath overrides the Chrome binary. Empty means auto-detect.
	ExecPath string
	// UserAgent overrides the browser's user agent
	UserAgent string
	// WindowWidth and WindowHeight set the viewport, which also sizes screenshots
	WindowWidth  int
	WindowHeight int
	// Flags are extra command line switches, passed as --name=value
	Flags map[string]any
	// ReportNetworkErrors delivers Chrome's own log entries (failed resource
	// loads and similar) as console errors.
	ReportNetworkErrors bool
	// NavigationTimeout bounds a single page load. 0 means 30 seconds.
	NavigationTimeout time.Duration
}

// DefaultBrowserOptions returns headless options with a 1280x800 window.
func DefaultBrowserOptions() BrowserOptions {
	return BrowserOptions{
		Headless:     true,
		WindowWidth:  1280,
		WindowHeight: 800,
	}
}

func (o BrowserOptions) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", o.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if o.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(o.ExecPath))
	}
	if o.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(o.UserAgent))
	}
	if o.WindowWidth > 0 && o.WindowHeight > 0 {
		opts = append(opts, chromedp.WindowSize(o.WindowWidth, o.WindowHeight))
	}
	for name, value := range o.Flags {
		opts = append(opts, chromedp.Flag(name, value))
	}
	return opts
}

// Browser is one Chrome process. Tabs opened with Launch share it. A Browser
// is owned by whoever created it and must be closed by them.
type Browser struct {
	opts BrowserOptions

	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	closeOnce sync.Once
}

// NewBrowser starts Chrome with opts and waits for it to come up.
func NewBrowser(ctx context.Context, opts BrowserOptions) (*Browser, error) {
	b := &Browser{opts: opts}
	b.allocCtx, b.allocCancel = chromedp.NewExecAllocator(context.Background(), opts.allocatorOptions()...)
	b.browserCtx, b.browserCancel = chromedp.NewContext(b.allocCtx)

	// The first Run starts the process
	started := make(chan error, 1)
	go func() { started <- chromedp.Run(b.browserCtx) }()
	select {
	case err := <-started:
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("failed to start chrome: %w", err)
		}
	case <-ctx.Done():
		b.Close()
		return nil, ctx.Err()
	}
	return b, nil
}

// Close shuts the browser down. It is safe to call more than once and from
// several goroutines, including during process shutdown.
func (b *Browser) Close() {
	b.closeOnce.Do(func() {
		if b.browserCancel != nil {
			b.browserCancel()
		}
		if b.allocCancel != nil {
			b.allocCancel()
		}
	})
}

// Launch opens a new tab and returns it as a session. Ending the session
// closes the tab only.
func (b *Browser) Launch(ctx context.Context) (BrowserSession, error) {
	return b.newSession(ctx, nil)
}

func (b *Browser) newSession(ctx context.Context, onEnd func()) (*ChromeSession, error) {
	if err := b.browserCtx.Err(); err != nil {
		return nil, fmt.Errorf("browser is closed: %w", err)
	}
	tabCtx, tabCancel := chromedp.NewContext(b.browserCtx)
	s := &ChromeSession{
		ctx:        tabCtx,
		cancel:     tabCancel,
		onEnd:      onEnd,
		navTimeout: b.opts.NavigationTimeout,
	}
	if s.navTimeout <= 0 {
		s.navTimeout = 30 * time.Second
	}

	chromedp.ListenTarget(tabCtx, s.listen(b.opts.ReportNetworkErrors))

	actions := []chromedp.Action{runtime.Enable()}
	if b.opts.ReportNetworkErrors {
		actions = append(actions, cdplog.Enable())
	}
	// The first Run creates the tab and must use the tab's own context, or the
	// tab is bound to the caller's deadline.
	stop := context.AfterFunc(ctx, tabCancel)
	err := chromedp.Run(tabCtx, actions...)
	stop()
	if err != nil {
		tabCancel()
		return nil, fmt.Errorf("failed to open tab: %w", err)
	}
	return s, nil
}

// ChromeLauncher launches hunts in Chrome. With Browser set, every hunt opens
// a tab in that shared browser. Otherwise each hunt starts a private browser
// which is shut down when the hunt's session ends.
type ChromeLauncher struct {
	Browser *Browser
	// Options is used for private browsers. nil means DefaultBrowserOptions.
	Options *BrowserOptions
}

// Launch implements Launcher
func (l *ChromeLauncher) Launch(ctx context.Context) (BrowserSession, error) {
	if l.Browser != nil {
		return l.Browser.Launch(ctx)
	}
	opts := DefaultBrowserOptions()
	if l.Options != nil {
		opts = *l.Options
	}
	b, err := NewBrowser(ctx, opts)
	if err != nil {
		return nil, err
	}
	s, err := b.newSession(ctx, b.Close)
	if err != nil {
		b.Close()
		return nil, err
	}
	return s, nil
}

// ChromeSession is a single Chrome tab driven through the DevTools protocol.
type ChromeSession struct {
	ctx        context.Context
	cancel     context.CancelFunc
	onEnd      func()
	navTimeout time.Duration

	mu        sync.RWMutex
	onError   PageErrorHandler
	onConsole ConsoleMessageHandler

	endOnce sync.Once
}

// Run executes chromedp actions in the tab. Hooks use it for anything the
// BrowserSession interface does not cover, such as filling in a login form.
func (s *ChromeSession) Run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// Navigate implements BrowserSession
func (s *ChromeSession) Navigate(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, s.navTimeout)
	defer cancel()
	return s.Run(ctx, chromedp.Navigate(url))
}

// EvaluateLinks implements BrowserSession
func (s *ChromeSession) EvaluateLinks(ctx context.Context) ([]string, error) {
	var links []string
	if err := s.Run(ctx, chromedp.Evaluate(linksScript, &links)); err != nil {
		return nil, err
	}
	return links, nil
}

// Wait implements BrowserSession
func (s *ChromeSession) Wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ctx.Done():
		return errors.New("browser session ended")
	}
}

// Screenshot implements BrowserSession. The capture covers the whole page.
func (s *ChromeSession) Screenshot(ctx context.Context, path string) error {
	var buf []byte
	if err := s.Run(ctx, chromedp.FullScreenshot(&buf, 100)); err != nil {
		return err
	}
	return writeScreenshot(path, buf)
}

// OnPageError implements BrowserSession
func (s *ChromeSession) OnPageError(h PageErrorHandler) {
	s.mu.Lock()
	s.onError = h
	s.mu.Unlock()
}

// OnConsoleMessage implements BrowserSession
func (s *ChromeSession) OnConsoleMessage(h ConsoleMessageHandler) {
	s.mu.Lock()
	s.onConsole = h
	s.mu.Unlock()
}

// End implements BrowserSession
func (s *ChromeSession) End(ctx context.Context) error {
	var err error
	s.endOnce.Do(func() {
		closed := make(chan error, 1)
		go func() { closed <- chromedp.Cancel(s.ctx) }()
		select {
		case err = <-closed:
		case <-ctx.Done():
			err = ctx.Err()
		}
		s.cancel()
		if s.onEnd != nil {
			s.onEnd()
		}
		// A tab that is already gone is ended
		if errors.Is(err, context.Canceled) {
			err = nil
		}
	})
	return err
}

func (s *ChromeSession) listen(networkErrors bool) func(ev any) {
	return func(ev any) {
		switch ev := ev.(type) {
		case *runtime.EventExceptionThrown:
			s.mu.RLock()
			h := s.onError
			s.mu.RUnlock()
			if h != nil && ev.ExceptionDetails != nil {
				h(exceptionMessage(ev.ExceptionDetails), exceptionStack(ev.ExceptionDetails))
			}
		case *runtime.EventConsoleAPICalled:
			s.mu.RLock()
			h := s.onConsole
			s.mu.RUnlock()
			if h != nil {
				h(consoleKind(string(ev.Type)), stringifyArgs(ev.Args))
			}
		case *cdplog.EventEntryAdded:
			if !networkErrors || ev.Entry == nil || ev.Entry.Level != cdplog.LevelError {
				return
			}
			s.mu.RLock()
			h := s.onConsole
			s.mu.RUnlock()
			if h != nil {
				h(ConsoleError, ev.Entry.Text)
			}
		}
	}
}

// exceptionMessage renders an exception the way the page sees it,
// e.g. "Uncaught Error: boom".
func exceptionMessage(d *runtime.ExceptionDetails) string {
	msg := d.Text
	if d.Exception != nil && d.Exception.Description != "" {
		first, _, _ := strings.Cut(d.Exception.Description, "\n")
		if !strings.HasSuffix(msg, first) {
			msg = strings.TrimSpace(msg + " " + first)
		}
	}
	return msg
}

func exceptionStack(d *runtime.ExceptionDetails) string {
	if d.Exception != nil && strings.Contains(d.Exception.Description, "\n") {
		return d.Exception.Description
	}
	if d.StackTrace == nil {
		return ""
	}
	var b strings.Builder
	for _, f := range d.StackTrace.CallFrames {
		name := f.FunctionName
		if name == "" {
			name = "<anonymous>"
		}
		fmt.Fprintf(&b, "at %s (%s:%d:%d)\n", name, f.URL, f.LineNumber+1, f.ColumnNumber+1)
	}
	return b.String()
}

func consoleKind(t string) ConsoleLevel {
	if t == "warning" {
		return ConsoleWarn
	}
	return ConsoleLevel(t)
}

func stringifyArgs(args []*runtime.RemoteObject) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		if a == nil {
			continue
		}
		if raw := []byte(a.Value); len(raw) > 0 {
			var v any
			if err := json.Unmarshal(raw, &v); err == nil {
				if v == nil {
					parts = append(parts, "null")
				} else {
					parts = append(parts, fmt.Sprint(v))
				}
				continue
			}
			parts = append(parts, string(raw))
			continue
		}
		if a.Description != "" {
			parts = append(parts, a.Description)
		} else if a.UnserializableValue != "" {
			parts = append(parts, string(a.UnserializableValue))
		}
	}
	return strings.Join(parts, " ")
}

func writeScreenshot(path string, buf []byte) error {
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("failed to write screenshot: %w", err)
	}
	return nil
}
