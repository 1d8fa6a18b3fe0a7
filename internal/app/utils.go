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

package app

import (
	"fmt"
	"net/url"
	"strings"
)

// normalizeURL normalizes a seed URL and extracts the project's domain
// identifier. Unlike a plain host comparison, the path is kept: hunts may
// start anywhere on a site.
// Returns: (normalizedURL, domain, error)
func normalizeURL(input string) (string, string, error) {
	input = strings.TrimSpace(input)

	if input == "" {
		return "", "", fmt.Errorf("empty URL")
	}

	// Add https:// if no protocol is present
	if !strings.HasPrefix(input, "http://") && !strings.HasPrefix(input, "https://") {
		input = "https://" + input
	}

	parsedURL, err := url.Parse(input)
	if err != nil {
		return "", "", fmt.Errorf("invalid URL: %v", err)
	}

	hostname := strings.ToLower(parsedURL.Hostname())
	if hostname == "" {
		return "", "", fmt.Errorf("no hostname in URL")
	}

	host := hostname
	if port := parsedURL.Port(); port != "" {
		defaultPort := (parsedURL.Scheme == "https" && port == "443") || (parsedURL.Scheme == "http" && port == "80")
		if !defaultPort {
			host = hostname + ":" + port
		}
	}

	parsedURL.Host = host
	parsedURL.Fragment = ""
	if parsedURL.Path == "" {
		parsedURL.Path = "/"
	}

	return parsedURL.String(), host, nil
}
