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
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/agentberlin/hounds"
	"github.com/agentberlin/hounds/internal/config"
	"github.com/agentberlin/hounds/internal/store"
	"github.com/agentberlin/hounds/internal/types"
)

// activeHunt tracks a running hunt
type activeHunt struct {
	projectID uint
	huntID    uint
	publicID  string
	domain    string
	url       string
	hunt      *hounds.Hunt
	done      chan struct{}

	statusMutex  sync.RWMutex
	stopped      bool
	errorCount   int
	consoleCount int
}

func (ah *activeHunt) stop() {
	ah.statusMutex.Lock()
	ah.stopped = true
	ah.statusMutex.Unlock()
	ah.hunt.Close()
}

// StartHunt records and starts a hunt in the background
func (a *App) StartHunt(req types.StartHuntRequest) (*types.HuntInfo, error) {
	normalizedURL, domain, err := normalizeURL(req.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %v", err)
	}

	project, err := a.store.GetOrCreateProject(normalizedURL, domain)
	if err != nil {
		return nil, fmt.Errorf("failed to get/create project: %v", err)
	}

	storedConfig, err := a.store.GetOrCreateConfig(project.ID, domain)
	if err != nil {
		return nil, err
	}
	return a.startHunt(project, huntFile(normalizedURL, storedConfig, req), config.Options{})
}

// StartHuntFromFile records and starts a hunt described by a config file,
// ignoring the project's stored defaults. opts.Logger and opts.Launcher
// default to the app's. The hunt never keeps its session alive.
func (a *App) StartHuntFromFile(file *config.File, opts config.Options) (*types.HuntInfo, error) {
	normalizedURL, domain, err := normalizeURL(file.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %v", err)
	}

	project, err := a.store.GetOrCreateProject(normalizedURL, domain)
	if err != nil {
		return nil, fmt.Errorf("failed to get/create project: %v", err)
	}

	f := *file
	f.URL = normalizedURL
	return a.startHunt(project, &f, opts)
}

func (a *App) startHunt(project *store.Project, file *config.File, opts config.Options) (*types.HuntInfo, error) {
	if opts.Logger == nil {
		opts.Logger = a.logger
	}
	if opts.Launcher == nil {
		opts.Launcher = a.launcher
	}
	// Hunts run in the background; nobody would be left to Close them
	file.KeepAlive = false

	cfg, err := file.HuntConfig(opts)
	if err != nil {
		return nil, fmt.Errorf("invalid hunt settings: %w", err)
	}

	a.huntsMutex.Lock()
	if _, alreadyHunting := a.activeHunts[project.ID]; alreadyHunting {
		a.huntsMutex.Unlock()
		return nil, fmt.Errorf("hunt already in progress for this project")
	}

	record, err := a.store.CreateHunt(project.ID, file.URL, time.Now().Unix())
	if err != nil {
		a.huntsMutex.Unlock()
		return nil, err
	}

	ah := &activeHunt{
		projectID: project.ID,
		huntID:    record.ID,
		publicID:  record.PublicID,
		domain:    project.Domain,
		url:       file.URL,
		hunt:      hounds.Release(cfg),
		done:      make(chan struct{}),
	}
	a.activeHunts[project.ID] = ah
	a.wg.Add(1)
	a.huntsMutex.Unlock()

	info := huntInfo(record)
	a.emitter.Emit(EventHuntStarted, info)
	go a.runHunt(ah, time.Now())

	return &info, nil
}

// huntFile merges the stored project defaults with the request overrides
func huntFile(seedURL string, c *store.Config, req types.StartHuntRequest) *config.File {
	f := config.Default()
	f.URL = seedURL
	f.Backend = c.Backend
	f.ConsoleLevel = c.ConsoleLevel
	if c.MaxFollows >= 0 {
		f.MaxFollows = hounds.Follows(c.MaxFollows)
	}
	f.Timeout = config.DurationFrom(time.Duration(c.TimeoutMs) * time.Millisecond)
	f.WaitAfterLoadedFor = config.DurationFrom(time.Duration(c.WaitAfterLoadedForMs) * time.Millisecond)
	f.Include = c.GetIncludePatterns()
	f.Exclude = c.GetExcludePatterns()
	f.Browser.UserAgent = c.UserAgent
	f.Browser.ExecPath = ChromeExecPath()

	if req.Backend != "" {
		f.Backend = req.Backend
	}
	if req.ConsoleLevel != "" {
		f.ConsoleLevel = req.ConsoleLevel
	}
	if req.MaxFollows != nil {
		if *req.MaxFollows < 0 {
			f.MaxFollows = nil
		} else {
			f.MaxFollows = hounds.Follows(*req.MaxFollows)
		}
	}
	if req.TimeoutMs != nil {
		f.Timeout = config.DurationFrom(time.Duration(*req.TimeoutMs) * time.Millisecond)
	}
	if req.WaitAfterLoadedForMs != nil {
		f.WaitAfterLoadedFor = config.DurationFrom(time.Duration(*req.WaitAfterLoadedForMs) * time.Millisecond)
	}
	if req.Include != nil {
		f.Include = req.Include
	}
	if req.Exclude != nil {
		f.Exclude = req.Exclude
	}
	return f
}

func (a *App) runHunt(ah *activeHunt, started time.Time) {
	defer a.wg.Done()
	defer close(ah.done)
	defer func() {
		a.huntsMutex.Lock()
		delete(a.activeHunts, ah.projectID)
		a.huntsMutex.Unlock()
	}()

	log := a.logger.With("hunt", ah.publicID, "url", ah.url)
	log.Info("hunt started")

	seq := 0
	err := ah.hunt.Drain(a.ctx, func(ev hounds.Event) error {
		finding := toFinding(ev)
		finding.Seq = seq
		seq++
		if err := a.store.SaveFindings(ah.huntID, []store.Finding{finding}); err != nil {
			log.Warn("failed to save finding", "error", err)
		}

		ah.statusMutex.Lock()
		if finding.Kind == store.FindingError {
			ah.errorCount++
		} else {
			ah.consoleCount++
		}
		stats := a.stats(ah, started)
		ah.statusMutex.Unlock()

		if err := a.store.UpdateHuntStats(ah.huntID, stats); err != nil {
			log.Warn("failed to update hunt stats", "error", err)
		}
		a.emitter.Emit(EventHuntFinding, FindingEvent{HuntID: ah.publicID, Finding: findingInfo(finding)})
		return nil
	})
	if err == nil && a.ctx.Err() != nil {
		err = a.ctx.Err()
	}
	if errors.Is(err, context.Canceled) {
		// The app is shutting down
		ah.hunt.Close()
		ah.statusMutex.Lock()
		ah.stopped = true
		ah.statusMutex.Unlock()
		err = nil
	}

	ah.statusMutex.RLock()
	stats := a.stats(ah, started)
	stopped := ah.stopped
	ah.statusMutex.RUnlock()

	state, event, errMsg := store.HuntStateCompleted, EventHuntCompleted, ""
	switch {
	case err != nil:
		state, event, errMsg = store.HuntStateFailed, EventHuntFailed, err.Error()
		log.Error("hunt failed", "error", err)
	case stopped:
		state, event = store.HuntStateStopped, EventHuntStopped
		log.Info("hunt stopped", "visited", stats.PagesVisited)
	default:
		log.Info("hunt completed", "visited", stats.PagesVisited, "errors", stats.ErrorCount, "console", stats.ConsoleCount)
	}

	if err := a.store.FinishHunt(ah.huntID, state, stats, errMsg); err != nil {
		log.Error("failed to record hunt result", "error", err)
	}
	if record, err := a.store.GetHuntByID(ah.huntID); err == nil {
		a.emitter.Emit(event, huntInfo(record))
	}
}

// stats must be called with ah.statusMutex held
func (a *App) stats(ah *activeHunt, started time.Time) store.HuntStats {
	return store.HuntStats{
		Duration:     time.Since(started).Milliseconds(),
		PagesVisited: ah.hunt.Visited(),
		ErrorCount:   ah.errorCount,
		ConsoleCount: ah.consoleCount,
	}
}

// StopHunt stops the active hunt of a project
func (a *App) StopHunt(projectID uint) error {
	a.huntsMutex.RLock()
	ah, exists := a.activeHunts[projectID]
	a.huntsMutex.RUnlock()

	if !exists {
		return fmt.Errorf("no active hunt found for project %d", projectID)
	}

	ah.stop()
	a.logger.Info("stop signal sent", "project", projectID, "hunt", ah.publicID)
	return nil
}

// StopHuntByID stops an active hunt by its public ID
func (a *App) StopHuntByID(publicID string) error {
	a.huntsMutex.RLock()
	var found *activeHunt
	for _, ah := range a.activeHunts {
		if ah.publicID == publicID {
			found = ah
			break
		}
	}
	a.huntsMutex.RUnlock()

	if found == nil {
		return fmt.Errorf("no active hunt with ID %s", publicID)
	}
	found.stop()
	return nil
}

// WaitForHunt blocks until the hunt with publicID is no longer active
func (a *App) WaitForHunt(ctx context.Context, publicID string) error {
	a.huntsMutex.RLock()
	var done chan struct{}
	for _, ah := range a.activeHunts {
		if ah.publicID == publicID {
			done = ah.done
			break
		}
	}
	a.huntsMutex.RUnlock()

	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetActiveHunts returns the progress of all active hunts
func (a *App) GetActiveHunts() []types.HuntProgress {
	a.huntsMutex.RLock()
	defer a.huntsMutex.RUnlock()

	progress := make([]types.HuntProgress, 0, len(a.activeHunts))
	for _, ah := range a.activeHunts {
		ah.statusMutex.RLock()
		progress = append(progress, types.HuntProgress{
			HuntID:       ah.publicID,
			ProjectID:    ah.projectID,
			Domain:       ah.domain,
			URL:          ah.url,
			State:        ah.hunt.State().String(),
			PagesVisited: ah.hunt.Visited(),
			ErrorCount:   ah.errorCount,
			ConsoleCount: ah.consoleCount,
			IsRunning:    true,
		})
		ah.statusMutex.RUnlock()
	}
	return progress
}

// GetHunts returns all hunts of a project
func (a *App) GetHunts(projectID uint) ([]types.HuntInfo, error) {
	hunts, err := a.store.GetProjectHunts(projectID)
	if err != nil {
		return nil, err
	}
	return huntInfos(hunts), nil
}

// ListHunts returns the most recent hunts of all projects
func (a *App) ListHunts(limit int) ([]types.HuntInfo, error) {
	hunts, err := a.store.ListHunts(limit)
	if err != nil {
		return nil, err
	}
	return huntInfos(hunts), nil
}

// GetHunt returns a hunt with its findings
func (a *App) GetHunt(publicID string, filter store.FindingFilter) (*types.HuntResultDetailed, error) {
	hunt, err := a.store.GetHuntByPublicID(publicID)
	if err != nil {
		return nil, err
	}
	findings, err := a.store.GetFindings(hunt.ID, filter)
	if err != nil {
		return nil, err
	}

	infos := make([]types.FindingInfo, len(findings))
	for i := range findings {
		infos[i] = findingInfo(findings[i])
	}
	return &types.HuntResultDetailed{
		HuntInfo: huntInfo(hunt),
		Findings: infos,
	}, nil
}

// DeleteHuntByID deletes a finished hunt
func (a *App) DeleteHuntByID(publicID string) error {
	hunt, err := a.store.GetHuntByPublicID(publicID)
	if err != nil {
		return err
	}
	if hunt.State == store.HuntStateRunning {
		return fmt.Errorf("hunt %s is still running", publicID)
	}
	return a.store.DeleteHunt(hunt.ID)
}

func toFinding(ev hounds.Event) store.Finding {
	switch e := ev.(type) {
	case *hounds.ErrorEvent:
		return store.Finding{
			Kind:       store.FindingError,
			PageURL:    e.URL,
			Message:    e.Message,
			StackTrace: strings.Join(e.StackTrace, "\n"),
		}
	case *hounds.ConsoleEvent:
		return store.Finding{
			Kind:        store.FindingConsole,
			PageURL:     e.URL,
			Message:     e.Message,
			ConsoleType: string(e.Type),
		}
	}
	return store.Finding{Kind: string(ev.Kind()), PageURL: ev.PageURL()}
}

func findingInfo(f store.Finding) types.FindingInfo {
	info := types.FindingInfo{
		Kind:    f.Kind,
		URL:     f.PageURL,
		Message: f.Message,
		Type:    f.ConsoleType,
	}
	if f.Kind == store.FindingError {
		info.StackTrace = f.StackLines()
	}
	return info
}

func huntInfo(h *store.Hunt) types.HuntInfo {
	return types.HuntInfo{
		ID:           h.PublicID,
		ProjectID:    h.ProjectID,
		SeedURL:      h.SeedURL,
		State:        h.State,
		StartedAt:    h.StartedAt,
		Duration:     h.Duration,
		PagesVisited: h.PagesVisited,
		ErrorCount:   h.ErrorCount,
		ConsoleCount: h.ConsoleCount,
		Error:        h.Error,
	}
}

func huntInfos(hunts []store.Hunt) []types.HuntInfo {
	infos := make([]types.HuntInfo, len(hunts))
	for i := range hunts {
		infos[i] = huntInfo(&hunts[i])
	}
	return infos
}
