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

package types

// HuntProgress represents the progress of an active hunt
type HuntProgress struct {
	HuntID       string `json:"huntId"`
	ProjectID    uint   `json:"projectId"`
	Domain       string `json:"domain"`
	URL          string `json:"url"`
	State        string `json:"state"` // engine state, e.g. "navigating"
	PagesVisited int    `json:"pagesVisited"`
	ErrorCount   int    `json:"errorCount"`
	ConsoleCount int    `json:"consoleCount"`
	IsRunning    bool   `json:"isRunning"`
}

// HuntInfo represents a recorded hunt
type HuntInfo struct {
	ID           string `json:"id"`
	ProjectID    uint   `json:"projectId"`
	SeedURL      string `json:"seedUrl"`
	State        string `json:"state"` // running, completed, failed, stopped
	StartedAt    int64  `json:"startedAt"`
	Duration     int64  `json:"duration"` // milliseconds
	PagesVisited int    `json:"pagesVisited"`
	ErrorCount   int    `json:"errorCount"`
	ConsoleCount int    `json:"consoleCount"`
	Error        string `json:"error,omitempty"`
}

// FindingInfo is one page error or console message
type FindingInfo struct {
	Kind       string   `json:"kind"` // error or console
	URL        string   `json:"url"`
	Message    string   `json:"message"`
	Type       string   `json:"type,omitempty"`       // console level for console findings
	StackTrace []string `json:"stackTrace,omitempty"` // error findings only
}

// HuntResultDetailed represents a hunt with its findings
type HuntResultDetailed struct {
	HuntInfo HuntInfo      `json:"huntInfo"`
	Findings []FindingInfo `json:"findings"`
}

// ProjectInfo represents a hunted site
type ProjectInfo struct {
	ID           uint   `json:"id"`
	URL          string `json:"url"`
	Domain       string `json:"domain"`
	LatestHuntID string `json:"latestHuntId,omitempty"`
	LastHuntAt   int64  `json:"lastHuntAt,omitempty"`
	LastState    string `json:"lastState,omitempty"`
	ErrorCount   int    `json:"errorCount"`
}

// ConfigResponse represents the hunt defaults of a project
type ConfigResponse struct {
	Domain               string   `json:"domain"`
	Backend              string   `json:"backend"`
	ConsoleLevel         string   `json:"consoleLevel"`
	MaxFollows           int      `json:"maxFollows"` // -1 = unbounded
	TimeoutMs            int64    `json:"timeoutMs"`
	WaitAfterLoadedForMs int64    `json:"waitAfterLoadedForMs"`
	UserAgent            string   `json:"userAgent"`
	Include              []string `json:"include"`
	Exclude              []string `json:"exclude"`
}

// StartHuntRequest starts a hunt. Unset fields fall back to the project's
// stored defaults.
type StartHuntRequest struct {
	URL                  string   `json:"url"`
	Backend              string   `json:"backend,omitempty"`
	ConsoleLevel         string   `json:"consoleLevel,omitempty"`
	MaxFollows           *int     `json:"maxFollows,omitempty"`
	TimeoutMs            *int64   `json:"timeoutMs,omitempty"`
	WaitAfterLoadedForMs *int64   `json:"waitAfterLoadedForMs,omitempty"`
	Include              []string `json:"include,omitempty"`
	Exclude              []string `json:"exclude,omitempty"`
}

// SystemHealthCheck reports whether hunts can run on this machine
type SystemHealthCheck struct {
	IsHealthy  bool   `json:"isHealthy"`
	ErrorTitle string `json:"errorTitle,omitempty"`
	ErrorMsg   string `json:"errorMsg,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}
