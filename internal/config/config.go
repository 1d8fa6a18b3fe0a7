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

// Package config loads hunt settings from YAML files.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/agentberlin/hounds"
	"github.com/agentberlin/hounds/extensions"
)

// AppName is used for XDG directory paths.
const AppName = "hounds"

// Backend names
const (
	BackendChrome = "chrome"
	BackendHTTP   = "http"
)

// DefaultUserAgent identifies hounds in the HTTP backend's requests.
const DefaultUserAgent = "hounds/" + hounds.Version

// Browser holds the Chrome launch settings.
type Browser struct {
	Headless     *bool          `yaml:"headless,omitempty"`
	ExecPath     string         `yaml:"exec_path,omitempty"`
	UserAgent    string         `yaml:"user_agent,omitempty"`
	WindowWidth  int            `yaml:"window_width,omitempty"`
	WindowHeight int            `yaml:"window_height,omitempty"`
	Flags        map[string]any `yaml:"flags,omitempty"`
	// NetworkErrors reports failed resource loads as console errors
	NetworkErrors bool `yaml:"network_errors,omitempty"`
}

// File is the content of a hounds configuration file. Every field is
// optional; flags given on the command line take precedence.
type File struct {
	URL                string   `yaml:"url,omitempty"`
	Backend            string   `yaml:"backend,omitempty"`
	KeepAlive          bool     `yaml:"keep_alive,omitempty"`
	WaitAfterLoadedFor Duration `yaml:"wait_after_loaded_for,omitempty"`
	MaxFollows         *int     `yaml:"max_follows,omitempty"`
	Timeout            Duration `yaml:"timeout,omitempty"`
	ConsoleLevel       string   `yaml:"console_level,omitempty"`
	Include            []string `yaml:"include,omitempty"`
	Exclude            []string `yaml:"exclude,omitempty"`
	ExternalOnly       bool     `yaml:"external_only,omitempty"`
	SameSite           bool     `yaml:"same_site,omitempty"`
	MaxURLLength       int      `yaml:"max_url_length,omitempty"`
	ScreenshotDir      string   `yaml:"screenshot_dir,omitempty"`
	Browser            Browser  `yaml:"browser,omitempty"`
}

// Default returns the settings used when nothing is configured.
func Default() *File {
	return &File{
		Backend:      BackendChrome,
		ConsoleLevel: string(hounds.ConsoleError),
	}
}

// Validate checks the values that cannot be checked by the hunt itself.
func (f *File) Validate() error {
	var errs []error
	switch f.Backend {
	case "", BackendChrome, BackendHTTP:
	default:
		errs = append(errs, fmt.Errorf("backend: unknown backend %q (must be chrome or http)", f.Backend))
	}
	if _, err := hounds.ParseConsoleLevel(f.ConsoleLevel); err != nil {
		errs = append(errs, fmt.Errorf("console_level: %w", err))
	}
	if f.ExternalOnly && f.SameSite {
		errs = append(errs, errors.New("external_only and same_site are mutually exclusive"))
	}
	if f.ScreenshotDir != "" && f.Backend == BackendHTTP {
		errs = append(errs, errors.New("screenshot_dir requires the chrome backend"))
	}
	return errors.Join(errs...)
}

// Options are the runtime pieces a File does not describe.
type Options struct {
	LogTo    io.Writer
	Logger   *slog.Logger
	Launcher hounds.Launcher // overrides the backend, e.g. a shared browser
	Before   hounds.Hook
	After    hounds.Hook
}

// HuntConfig builds the hounds.Config described by f.
func (f *File) HuntConfig(opts Options) (*hounds.Config, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	level, _ := hounds.ParseConsoleLevel(f.ConsoleLevel)

	cfg := &hounds.Config{
		URL:                strings.TrimSpace(f.URL),
		KeepAlive:          f.KeepAlive,
		WaitAfterLoadedFor: f.WaitAfterLoadedFor.Duration,
		MaxFollows:         f.MaxFollows,
		Timeout:            f.Timeout.Duration,
		ConsoleLevel:       level,
		LogTo:              opts.LogTo,
		Logger:             opts.Logger,
		Before:             opts.Before,
		After:              opts.After,
		Launcher:           opts.Launcher,
	}
	if cfg.Launcher == nil {
		cfg.Launcher = f.Launcher()
	}

	switch {
	case f.ExternalOnly:
		extensions.ExternalOnly(cfg)
	case f.SameSite:
		if err := extensions.SameSite(cfg); err != nil {
			return nil, fmt.Errorf("same_site: %w", err)
		}
	}
	if len(f.Include) > 0 || len(f.Exclude) > 0 {
		if err := extensions.GlobFilter(cfg, f.Include, f.Exclude); err != nil {
			return nil, err
		}
	}
	if f.MaxURLLength > 0 {
		extensions.URLLengthFilter(cfg, f.MaxURLLength)
	}
	if f.ScreenshotDir != "" {
		cfg.Screenshot = hounds.ScreenshotToDir(f.ScreenshotDir)
	}
	return cfg, nil
}

// Launcher returns the launcher for the configured backend.
func (f *File) Launcher() hounds.Launcher {
	if f.Backend == BackendHTTP {
		ua := f.Browser.UserAgent
		if ua == "" {
			ua = DefaultUserAgent
		}
		return &hounds.HTTPLauncher{
			UserAgent:        ua,
			ReportHTTPErrors: true,
			DetectCharset:    true,
			SendReferer:      true,
		}
	}
	opts := f.BrowserOptions()
	return &hounds.ChromeLauncher{Options: &opts}
}

// BrowserOptions returns the Chrome options described by f.Browser.
func (f *File) BrowserOptions() hounds.BrowserOptions {
	opts := hounds.DefaultBrowserOptions()
	if f.Browser.Headless != nil {
		opts.Headless = *f.Browser.Headless
	}
	opts.ExecPath = f.Browser.ExecPath
	opts.UserAgent = f.Browser.UserAgent
	if f.Browser.WindowWidth > 0 && f.Browser.WindowHeight > 0 {
		opts.WindowWidth = f.Browser.WindowWidth
		opts.WindowHeight = f.Browser.WindowHeight
	}
	opts.Flags = f.Browser.Flags
	opts.ReportNetworkErrors = f.Browser.NetworkErrors
	return opts
}
