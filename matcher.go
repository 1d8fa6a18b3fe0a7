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
	"strings"

	whatwgUrl "github.com/nlnwa/whatwg-url/url"
)

var urlParser = whatwgUrl.NewParser(whatwgUrl.WithPercentEncodeSinglePercentSign())

// URLFilterFunc decides whether a discovered link should be followed.
// sameOrigin is a hint computed against the seed URL; the filter may ignore it.
type URLFilterFunc func(url string, sameOrigin bool) bool

// IsSameOrigin reports whether candidate and base share the same host
// (hostname and port). Scheme and path are ignored.
func IsSameOrigin(candidate, base string) bool {
	c := hostOf(candidate)
	return c != "" && c == hostOf(base)
}

// Hostname returns the lowercased hostname of u, or "" if u does not parse.
func Hostname(u string) string {
	parsed, err := urlParser.Parse(u)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}

// hostOf returns the lowercased host[:port] of u, or "" if u does not parse.
// Default ports are dropped by the parser, so https://a:443 and https://a match.
func hostOf(u string) string {
	parsed, err := urlParser.Parse(u)
	if err != nil {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	if port := parsed.Port(); port != "" {
		host += ":" + port
	}
	return host
}

// URLMatcher decides which discovered links enter the crawl queue.
type URLMatcher struct {
	base   string
	filter URLFilterFunc
}

// NewURLMatcher creates a matcher for links discovered while crawling base.
// A nil filter falls back to the same-origin check.
func NewURLMatcher(base string, filter URLFilterFunc) *URLMatcher {
	return &URLMatcher{base: base, filter: filter}
}

// Accept reports whether candidate should be queued. A configured filter
// fully overrides the default same-origin policy.
func (m *URLMatcher) Accept(candidate string) bool {
	sameOrigin := IsSameOrigin(candidate, m.base)
	if m.filter != nil {
		return m.filter(candidate, sameOrigin)
	}
	return sameOrigin
}
