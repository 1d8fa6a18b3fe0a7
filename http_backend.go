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
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/agentberlin/hounds/storage"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

// HTTPLauncher starts sessions that fetch pages over plain HTTP without
// executing scripts. It finds broken links and failing resources on sites
// where no browser is available, but never reports page errors.
type HTTPLauncher struct {
	// Client overrides the HTTP client. Its Jar is replaced per session unless set.
	Client *http.Client
	// UserAgent is sent with every request
	UserAgent string
	// ReportHTTPErrors delivers 4xx and 5xx responses as console errors, worded
	// like Chrome's "Failed to load resource" messages.
	ReportHTTPErrors bool
	// DetectCharset guesses the encoding of bodies without a declared charset
	DetectCharset bool
	// MaxBodySize limits how much of a page is read. 0 means 10 MiB.
	MaxBodySize int64
	// SendReferer sets the Referer header to the previously visited page
	SendReferer bool
	// Storage keeps the session's cookies. It may be shared with
	// Config.Storage. Default: in memory.
	Storage storage.Storage
}

// Launch implements Launcher
func (l *HTTPLauncher) Launch(ctx context.Context) (BrowserSession, error) {
	client := &http.Client{Timeout: 30 * time.Second}
	if l.Client != nil {
		c := *l.Client
		client = &c
	}
	if client.Jar == nil {
		store := l.Storage
		if store == nil {
			store = &storage.InMemoryStorage{}
		}
		if err := store.Init(); err != nil {
			return nil, fmt.Errorf("failed to initialize cookie storage: %w", err)
		}
		client.Jar = storage.NewJar(store)
	}
	maxBody := l.MaxBodySize
	if maxBody <= 0 {
		maxBody = 10 << 20
	}
	return &HTTPSession{
		client:        client,
		userAgent:     l.UserAgent,
		reportErrors:  l.ReportHTTPErrors,
		detectCharset: l.DetectCharset,
		maxBody:       maxBody,
		sendReferer:   l.SendReferer,
	}, nil
}

// HTTPSession is a BrowserSession backed by an http.Client.
type HTTPSession struct {
	client        *http.Client
	userAgent     string
	reportErrors  bool
	detectCharset bool
	maxBody       int64
	sendReferer   bool

	mu        sync.Mutex
	pageURL   string
	body      []byte
	onConsole ConsoleMessageHandler
	ended     bool
}

// Navigate implements BrowserSession. Error statuses do not fail navigation,
// just as a browser still renders a 404 page.
func (s *HTTPSession) Navigate(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	if s.sendReferer {
		s.mu.Lock()
		if s.pageURL != "" {
			req.Header.Set("Referer", s.pageURL)
		}
		s.mu.Unlock()
	}
	res, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, s.maxBody))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	body, err = decodeBody(body, res.Header.Get("Content-Type"), s.detectCharset)
	if err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}

	s.mu.Lock()
	s.pageURL = res.Request.URL.String()
	s.body = body
	h := s.onConsole
	s.mu.Unlock()

	if res.StatusCode >= 400 && s.reportErrors && h != nil {
		h(ConsoleError, fmt.Sprintf("Failed to load resource: the server responded with a status of %d (%s)",
			res.StatusCode, http.StatusText(res.StatusCode)))
	}
	return nil
}

// EvaluateLinks implements BrowserSession. Non-HTML pages have no links.
func (s *HTTPSession) EvaluateLinks(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	pageURL, body := s.pageURL, s.body
	s.mu.Unlock()
	if pageURL == "" {
		return nil, fmt.Errorf("no page loaded")
	}
	return ExtractLinks(pageURL, body)
}

// Wait implements BrowserSession
func (s *HTTPSession) Wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Screenshot implements BrowserSession. It always fails with ErrScreenshotUnsupported.
func (s *HTTPSession) Screenshot(ctx context.Context, path string) error {
	return ErrScreenshotUnsupported
}

// OnPageError implements BrowserSession. Scripts never run, so h is never called.
func (s *HTTPSession) OnPageError(h PageErrorHandler) {}

// OnConsoleMessage implements BrowserSession
func (s *HTTPSession) OnConsoleMessage(h ConsoleMessageHandler) {
	s.mu.Lock()
	s.onConsole = h
	s.mu.Unlock()
}

// End implements BrowserSession
func (s *HTTPSession) End(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ended {
		s.ended = true
		s.client.CloseIdleConnections()
	}
	return nil
}

// decodeBody converts body to UTF-8 using the declared charset, or a guessed
// one when detect is set and nothing is declared.
func decodeBody(body []byte, contentType string, detect bool) ([]byte, error) {
	if len(body) == 0 {
		return body, nil
	}
	contentType = strings.ToLower(contentType)
	if strings.Contains(contentType, "image/") ||
		strings.Contains(contentType, "video/") ||
		strings.Contains(contentType, "audio/") ||
		strings.Contains(contentType, "font/") {
		return body, nil
	}
	if !strings.Contains(contentType, "charset") {
		if !detect {
			return body, nil
		}
		r, err := chardet.NewTextDetector().DetectBest(body)
		if err != nil {
			return nil, err
		}
		contentType = "text/plain; charset=" + r.Charset
	}
	if strings.Contains(contentType, "utf-8") || strings.Contains(contentType, "utf8") {
		return body, nil
	}
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}
