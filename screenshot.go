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
	"os"
	"path/filepath"
	"strings"

	"github.com/kennygrant/sanitize"
)

// ScreenshotToDir returns a Config.Screenshot function that stores one PNG
// per visited page in dir, named after the page URL. dir is created on first
// use; if that fails, pages are not captured.
func ScreenshotToDir(dir string) func(url string) string {
	return func(url string) string {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return ""
		}
		return filepath.Join(dir, ScreenshotFileName(url))
	}
}

// ScreenshotFileName turns a page URL into a safe file name.
func ScreenshotFileName(url string) string {
	name := url
	if i := strings.Index(name, "://"); i >= 0 {
		name = name[i+3:]
	}
	name = strings.NewReplacer("/", "_", "?", "_", "&", "_", "=", "_", "#", "_", ":", "_").Replace(name)
	name = strings.Trim(sanitize.BaseName(name), "-_")
	if name == "" {
		name = "page"
	}
	return strings.ReplaceAll(name, "-", "_") + ".png"
}
