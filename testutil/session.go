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

package testutil

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/agentberlin/hounds"
)

// PageError is an uncaught error raised by a scripted page.
type PageError struct {
	Message string
	Stack   string
}

// ConsoleMessage is a console call made by a scripted page.
type ConsoleMessage struct {
	Kind    hounds.ConsoleLevel
	Message string
}

// Page describes what a scripted page does when it is loaded.
type Page struct {
	Links   []string
	Errors  []PageError
	Console []ConsoleMessage
	// LoadTime delays Navigate
	LoadTime time.Duration
	// NavigateErr fails the navigation
	NavigateErr error
	// LinksErr fails link evaluation
	LinksErr error
}

// Site is a scripted website that implements hounds.Launcher. Pages that are
// not listed load fine and have no links.
type Site struct {
	Pages map[string]Page
	// LaunchErr fails every Launch
	LaunchErr error
	// EndErr is returned by End
	EndErr error

	mu          sync.Mutex
	visits      []string
	screenshots []string
	launches    int
	ends        int
	sessions    []*Session
}

// Launch implements hounds.Launcher
func (s *Site) Launch(ctx context.Context) (hounds.BrowserSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.launches++
	if s.LaunchErr != nil {
		return nil, s.LaunchErr
	}
	sess := &Session{site: s}
	s.sessions = append(s.sessions, sess)
	return sess, nil
}

// Visits returns the URLs navigated to, in order.
func (s *Site) Visits() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.visits...)
}

// Screenshots returns the paths screenshots were written to.
func (s *Site) Screenshots() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.screenshots...)
}

// Launches returns how many sessions were launched.
func (s *Site) Launches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.launches
}

// Ends returns how many times End released a session.
func (s *Site) Ends() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ends
}

// Session returns the most recently launched session, or nil.
func (s *Site) Session() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sessions) == 0 {
		return nil
	}
	return s.sessions[len(s.sessions)-1]
}

func (s *Site) page(url string) Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Pages[url]
}

// Session is a hounds.BrowserSession on a Site. Page errors and console
// messages are delivered synchronously during Navigate.
type Session struct {
	site *Site

	mu        sync.Mutex
	current   string
	onError   hounds.PageErrorHandler
	onConsole hounds.ConsoleMessageHandler
	ended     bool
}

// Navigate implements hounds.BrowserSession
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.site.mu.Lock()
	s.site.visits = append(s.site.visits, url)
	s.site.mu.Unlock()

	p := s.site.page(url)
	if p.LoadTime > 0 {
		if err := sleep(ctx, p.LoadTime); err != nil {
			return err
		}
	}
	if p.NavigateErr != nil {
		return p.NavigateErr
	}

	s.mu.Lock()
	s.current = url
	s.mu.Unlock()

	for _, e := range p.Errors {
		s.ThrowError(e.Message, e.Stack)
	}
	for _, c := range p.Console {
		s.Log(c.Kind, c.Message)
	}
	return nil
}

// EvaluateLinks implements hounds.BrowserSession
func (s *Session) EvaluateLinks(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	url := s.current
	s.mu.Unlock()
	p := s.site.page(url)
	if p.LinksErr != nil {
		return nil, p.LinksErr
	}
	return append([]string(nil), p.Links...), nil
}

// Wait implements hounds.BrowserSession
func (s *Session) Wait(ctx context.Context, d time.Duration) error {
	return sleep(ctx, d)
}

// Screenshot implements hounds.BrowserSession. It writes an empty file.
func (s *Session) Screenshot(ctx context.Context, path string) error {
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		return err
	}
	s.site.mu.Lock()
	s.site.screenshots = append(s.site.screenshots, path)
	s.site.mu.Unlock()
	return nil
}

// OnPageError implements hounds.BrowserSession
func (s *Session) OnPageError(h hounds.PageErrorHandler) {
	s.mu.Lock()
	s.onError = h
	s.mu.Unlock()
}

// OnConsoleMessage implements hounds.BrowserSession
func (s *Session) OnConsoleMessage(h hounds.ConsoleMessageHandler) {
	s.mu.Lock()
	s.onConsole = h
	s.mu.Unlock()
}

// End implements hounds.BrowserSession
func (s *Session) End(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return nil
	}
	s.ended = true
	s.site.mu.Lock()
	s.site.ends++
	s.site.mu.Unlock()
	return s.site.EndErr
}

// Ended reports whether End was called.
func (s *Session) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// ThrowError delivers an uncaught page error, as a page script would.
func (s *Session) ThrowError(message, stack string) {
	s.mu.Lock()
	h := s.onError
	s.mu.Unlock()
	if h != nil {
		h(message, stack)
	}
}

// Log delivers a console message, as a page script would.
func (s *Session) Log(kind hounds.ConsoleLevel, message string) {
	s.mu.Lock()
	h := s.onConsole
	s.mu.Unlock()
	if h != nil {
		h(kind, message)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
