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
	"errors"
	"fmt"
)

var (
	// ErrNoURL is wrapped by the ConfigurationError raised for a hunt without a URL
	ErrNoURL = errors.New("no URL specified")
	// ErrScreenshotUnsupported is returned by backends that cannot capture pages
	ErrScreenshotUnsupported = errors.New("screenshots are not supported by this backend")
)

// ConfigurationError reports an invalid hunt configuration. It is raised
// before any browser is launched.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("configuration error: %v", e.Err)
	}
	return fmt.Sprintf("configuration error: %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// NavigationError reports a failed page load, settle wait or screenshot.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigating to %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// EvaluationError reports a failed in-page link extraction.
type EvaluationError struct {
	URL string
	Err error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluating links on %s: %v", e.URL, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// HookError reports a failing before or after hook.
type HookError struct {
	Stage string
	Err   error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("%s hook: %v", e.Stage, e.Err)
}

func (e *HookError) Unwrap() error { return e.Err }

var errNegative = errors.New("must not be negative")
