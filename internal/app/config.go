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

	"github.com/agentberlin/hounds"
	"github.com/agentberlin/hounds/internal/config"
	"github.com/agentberlin/hounds/internal/store"
	"github.com/agentberlin/hounds/internal/types"
)

// GetConfigForDomain retrieves the hunt defaults for the site of urlStr
func (a *App) GetConfigForDomain(urlStr string) (*types.ConfigResponse, error) {
	normalizedURL, domain, err := normalizeURL(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %v", err)
	}

	project, err := a.store.GetOrCreateProject(normalizedURL, domain)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %v", err)
	}

	c, err := a.store.GetOrCreateConfig(project.ID, domain)
	if err != nil {
		return nil, err
	}

	return &types.ConfigResponse{
		Domain:               c.Domain,
		Backend:              c.Backend,
		ConsoleLevel:         c.ConsoleLevel,
		MaxFollows:           c.MaxFollows,
		TimeoutMs:            c.TimeoutMs,
		WaitAfterLoadedForMs: c.WaitAfterLoadedForMs,
		UserAgent:            c.UserAgent,
		Include:              c.GetIncludePatterns(),
		Exclude:              c.GetExcludePatterns(),
	}, nil
}

// UpdateConfigForDomain replaces the hunt defaults for the site of urlStr
func (a *App) UpdateConfigForDomain(urlStr string, cfg types.ConfigResponse) error {
	normalizedURL, domain, err := normalizeURL(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}

	switch cfg.Backend {
	case config.BackendChrome, config.BackendHTTP:
	case "":
		cfg.Backend = config.BackendChrome
	default:
		return fmt.Errorf("unknown backend %q", cfg.Backend)
	}
	level, err := hounds.ParseConsoleLevel(cfg.ConsoleLevel)
	if err != nil {
		return err
	}
	if cfg.MaxFollows < -1 {
		cfg.MaxFollows = -1
	}
	if cfg.TimeoutMs < 0 || cfg.WaitAfterLoadedForMs < 0 {
		return fmt.Errorf("durations must not be negative")
	}

	project, err := a.store.GetOrCreateProject(normalizedURL, domain)
	if err != nil {
		return fmt.Errorf("failed to get project: %v", err)
	}
	// Make sure the config row exists
	if _, err := a.store.GetOrCreateConfig(project.ID, domain); err != nil {
		return err
	}

	return a.store.UpdateConfig(project.ID, store.ConfigUpdate{
		Backend:              cfg.Backend,
		ConsoleLevel:         string(level),
		MaxFollows:           cfg.MaxFollows,
		TimeoutMs:            cfg.TimeoutMs,
		WaitAfterLoadedForMs: cfg.WaitAfterLoadedForMs,
		UserAgent:            cfg.UserAgent,
		Include:              cfg.Include,
		Exclude:              cfg.Exclude,
	})
}
