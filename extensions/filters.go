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

// Package extensions contains ready-made link policies and launcher tweaks
// for hunts.
package extensions

import (
	"fmt"
	"strings"

	"github.com/agentberlin/hounds"
	"github.com/gobwas/glob"
	"golang.org/x/net/publicsuffix"
)

// restrict narrows the hunt's current link policy: a link is followed only if
// the existing filter (or the same-origin default) and keep both accept it.
func restrict(cfg *hounds.Config, keep func(url string) bool) {
	prev := cfg.URLFilter
	cfg.URLFilter = func(url string, sameOrigin bool) bool {
		if prev != nil {
			if !prev(url, sameOrigin) {
				return false
			}
		} else if !sameOrigin {
			return false
		}
		return keep(url)
	}
}

// ExternalOnly follows links to other hosts only. Useful to check that a
// site's outbound links do not land on broken pages.
func ExternalOnly(cfg *hounds.Config) {
	cfg.URLFilter = func(_ string, sameOrigin bool) bool {
		return !sameOrigin
	}
}

// SameOriginOr follows same-origin links plus any link matching one of the
// glob patterns, e.g. "https://cdn.example.com/**".
func SameOriginOr(cfg *hounds.Config, patterns ...string) error {
	globs, err := compileGlobs(patterns)
	if err != nil {
		return err
	}
	cfg.URLFilter = func(url string, sameOrigin bool) bool {
		return sameOrigin || matchAny(globs, url)
	}
	return nil
}

// GlobFilter restricts the hunt to links matching at least one include
// pattern (if any are given) and no exclude pattern. Patterns use '*' for a
// run of characters other than '/' and '**' for any run.
func GlobFilter(cfg *hounds.Config, include, exclude []string) error {
	inc, err := compileGlobs(include)
	if err != nil {
		return err
	}
	exc, err := compileGlobs(exclude)
	if err != nil {
		return err
	}
	restrict(cfg, func(url string) bool {
		if len(inc) > 0 && !matchAny(inc, url) {
			return false
		}
		return !matchAny(exc, url)
	})
	return nil
}

// SameSite follows links on any host sharing the seed's registrable domain,
// so www.example.com and blog.example.com are crawled together.
func SameSite(cfg *hounds.Config) error {
	site, err := registrableDomain(cfg.URL)
	if err != nil {
		return err
	}
	cfg.URLFilter = func(url string, sameOrigin bool) bool {
		if sameOrigin {
			return true
		}
		d, err := registrableDomain(url)
		return err == nil && d == site
	}
	return nil
}

// All combines filters; a link is followed only if every filter accepts it.
func All(filters ...hounds.URLFilterFunc) hounds.URLFilterFunc {
	return func(url string, sameOrigin bool) bool {
		for _, f := range filters {
			if !f(url, sameOrigin) {
				return false
			}
		}
		return true
	}
}

func registrableDomain(rawURL string) (string, error) {
	host := hounds.Hostname(rawURL)
	if host == "" {
		return "", fmt.Errorf("no host in %q", rawURL)
	}
	d, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		// localhost and bare IPs have no public suffix
		return host, nil
	}
	return strings.ToLower(d), nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

func matchAny(globs []glob.Glob, s string) bool {
	for _, g := range globs {
		if g.Match(s) {
			return true
		}
	}
	return false
}
