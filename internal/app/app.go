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
	"context"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"sync"

	"github.com/agentberlin/hounds"
	"github.com/agentberlin/hounds/internal/store"
	"github.com/agentberlin/hounds/internal/types"
)

// App represents the core application logic shared by the CLI, the HTTP
// server and the MCP server
type App struct {
	ctx         context.Context
	store       *store.Store
	emitter     EventEmitter
	logger      *slog.Logger
	launcher    hounds.Launcher
	activeHunts map[uint]*activeHunt // keyed by project ID
	huntsMutex  sync.RWMutex
	wg          sync.WaitGroup
}

// Option configures an App
type Option func(*App)

// WithLogger sets the logger used by the app and its hunts
func WithLogger(l *slog.Logger) Option {
	return func(a *App) { a.logger = l }
}

// WithLauncher makes every hunt use l instead of the backend stored in the
// project config, e.g. a browser shared by all hunts.
func WithLauncher(l hounds.Launcher) Option {
	return func(a *App) { a.launcher = l }
}

// NewApp creates a new App instance with dependencies injected
func NewApp(st *store.Store, emitter EventEmitter, opts ...Option) *App {
	if emitter == nil {
		emitter = &NoOpEmitter{}
	}

	a := &App{
		ctx:         context.Background(),
		store:       st,
		emitter:     emitter,
		logger:      slog.Default(),
		activeHunts: make(map[uint]*activeHunt),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Startup initializes the app with a context. Hunts left running by a
// previous process are marked as failed.
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx
	if n, err := a.store.MarkInterruptedHunts(); err != nil {
		a.logger.Warn("failed to mark interrupted hunts", "error", err)
	} else if n > 0 {
		a.logger.Info("marked interrupted hunts as failed", "count", n)
	}
}

// Shutdown stops all active hunts and waits for them to be recorded
func (a *App) Shutdown() {
	a.huntsMutex.RLock()
	for _, ah := range a.activeHunts {
		ah.stop()
	}
	a.huntsMutex.RUnlock()
	a.wg.Wait()
}

// CheckSystemHealth checks if all required dependencies are available
func (a *App) CheckSystemHealth() *types.SystemHealthCheck {
	if !isChromeBrowserAvailable() {
		return &types.SystemHealthCheck{
			IsHealthy:  false,
			ErrorTitle: "Chrome Browser Required",
			ErrorMsg:   "Google Chrome or Chromium is required to capture page errors but was not found on your system.",
			Suggestion: "Please install Google Chrome from https://www.google.com/chrome/\n\nAlternatively, you can set the CHROME_EXECUTABLE_PATH environment variable to point to your Chrome installation.\n\nNote: hunts using the http backend still work without Chrome, but they only report failing responses.",
		}
	}

	return &types.SystemHealthCheck{
		IsHealthy: true,
	}
}

// isChromeBrowserAvailable checks if Chrome or Chromium is available
func isChromeBrowserAvailable() bool {
	if customPath := os.Getenv("CHROME_EXECUTABLE_PATH"); customPath != "" {
		if _, err := os.Stat(customPath); err == nil {
			return true
		}
	}

	var chromePaths []string

	switch runtime.GOOS {
	case "darwin":
		chromePaths = []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
			os.Getenv("HOME") + "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		}
	case "windows":
		chromePaths = []string{
			os.Getenv("ProgramFiles") + "\\Google\\Chrome\\Application\\chrome.exe",
			os.Getenv("ProgramFiles(x86)") + "\\Google\\Chrome\\Application\\chrome.exe",
			os.Getenv("LocalAppData") + "\\Google\\Chrome\\Application\\chrome.exe",
		}
	case "linux":
		chromePaths = []string{
			"/usr/bin/google-chrome",
			"/usr/bin/chromium",
			"/usr/bin/chromium-browser",
			"/snap/bin/chromium",
		}
	}

	for _, path := range chromePaths {
		if _, err := os.Stat(path); err == nil {
			return true
		}
	}

	for _, name := range []string{"google-chrome", "chromium", "chromium-browser", "headless-shell"} {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}

	return false
}

// ChromeExecPath returns CHROME_EXECUTABLE_PATH if it points to a file.
func ChromeExecPath() string {
	if customPath := os.Getenv("CHROME_EXECUTABLE_PATH"); customPath != "" {
		if _, err := os.Stat(customPath); err == nil {
			return customPath
		}
	}
	return ""
}
