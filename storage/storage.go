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

package storage

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Storage holds the per-hunt state that outlives a single page load:
// the visited URL set and the cookies of the static HTTP backend.
// The default Storage is InMemoryStorage. Nothing is persisted across hunts.
type Storage interface {
	// Init initializes the storage
	Init() error
	// Visited records a URL hash as visited
	Visited(urlHash uint64) error
	// IsVisited returns true if the URL hash was recorded before
	IsVisited(urlHash uint64) (bool, error)
	// Cookies retrieves stored cookies for a given host
	Cookies(u *url.URL) string
	// SetCookies stores cookies for a given host
	SetCookies(u *url.URL, cookies string)
}

// InMemoryStorage keeps visited URLs and cookies in memory.
type InMemoryStorage struct {
	visitedURLs map[uint64]bool
	lock        *sync.RWMutex
	jar         *cookiejar.Jar
}

// Init initializes InMemoryStorage
func (s *InMemoryStorage) Init() error {
	if s.visitedURLs == nil {
		s.visitedURLs = make(map[uint64]bool)
	}
	if s.lock == nil {
		s.lock = &sync.RWMutex{}
	}
	if s.jar == nil {
		var err error
		s.jar, err = cookiejar.New(nil)
		return err
	}
	return nil
}

// Visited implements Storage.Visited()
func (s *InMemoryStorage) Visited(urlHash uint64) error {
	s.lock.Lock()
	s.visitedURLs[urlHash] = true
	s.lock.Unlock()
	return nil
}

// IsVisited implements Storage.IsVisited()
func (s *InMemoryStorage) IsVisited(urlHash uint64) (bool, error) {
	s.lock.RLock()
	visited := s.visitedURLs[urlHash]
	s.lock.RUnlock()
	return visited, nil
}

// Cookies implements Storage.Cookies()
func (s *InMemoryStorage) Cookies(u *url.URL) string {
	return StringifyCookies(s.jar.Cookies(u))
}

// SetCookies implements Storage.SetCookies()
func (s *InMemoryStorage) SetCookies(u *url.URL, cookies string) {
	s.jar.SetCookies(u, UnstringifyCookies(cookies))
}

// Close implements Storage.Close()
func (s *InMemoryStorage) Close() error {
	return nil
}

// StringifyCookies serializes list of http.Cookies to string
func StringifyCookies(cookies []*http.Cookie) string {
	cs := make([]string, len(cookies))
	for i, c := range cookies {
		cs[i] = c.String()
	}
	return strings.Join(cs, "\n")
}

// UnstringifyCookies deserializes a cookie string to http.Cookies
func UnstringifyCookies(s string) []*http.Cookie {
	h := http.Header{}
	for _, c := range strings.Split(s, "\n") {
		if c == "" {
			continue
		}
		h.Add("Set-Cookie", c)
	}
	r := http.Response{Header: h}
	return r.Cookies()
}

// ContainsCookie checks if a cookie name is represented in cookies
func ContainsCookie(cookies []*http.Cookie, name string) bool {
	for _, c := range cookies {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Jar adapts a Storage to http.CookieJar so an http.Client shares the
// hunt's cookie state.
type Jar struct {
	store Storage
	lock  sync.Mutex
}

// NewJar returns a cookie jar backed by s.
func NewJar(s Storage) *Jar {
	return &Jar{store: s}
}

// SetCookies implements http.CookieJar. New cookies take precedence.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.lock.Lock()
	defer j.lock.Unlock()
	merged := make([]*http.Cookie, len(cookies))
	copy(merged, cookies)
	for _, c := range UnstringifyCookies(j.store.Cookies(u)) {
		if !ContainsCookie(merged, c.Name) {
			merged = append(merged, c)
		}
	}
	j.store.SetCookies(u, StringifyCookies(merged))
}

// Cookies implements http.CookieJar, dropping expired cookies and secure
// cookies on plain http.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	now := time.Now()
	cookies := UnstringifyCookies(j.store.Cookies(u))
	out := make([]*http.Cookie, 0, len(cookies))
	for _, c := range cookies {
		if c.RawExpires != "" && c.Expires.Before(now) {
			continue
		}
		if c.Secure && u.Scheme != "https" {
			continue
		}
		out = append(out, c)
	}
	return out
}
