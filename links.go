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
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractLinks returns the absolute URL of every anchor in an HTML document,
// in document order, the way a browser resolves a.href: relative references
// are resolved against <base href> if present, else against pageURL.
// Anchors whose href cannot be resolved are skipped; fragments are kept.
func ExtractLinks(pageURL string, body []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	base := pageURL
	if href, found := doc.Find("base[href]").Attr("href"); found {
		if u, err := urlParser.ParseRef(pageURL, strings.TrimSpace(href)); err == nil {
			base = u.Href(false)
		}
	}

	links := []string{}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if link, ok := resolveLink(base, href); ok {
			links = append(links, link)
		}
	})
	return links, nil
}

// resolveLink resolves href against base like the DOM's a.href does.
func resolveLink(base, href string) (string, bool) {
	u, err := urlParser.ParseRef(base, strings.TrimSpace(href))
	if err != nil {
		return "", false
	}
	return u.Href(false), true
}
