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
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentberlin/hounds"
	"github.com/agentberlin/hounds/internal/log"
	"github.com/agentberlin/hounds/internal/store"
	"github.com/agentberlin/hounds/internal/types"
	"github.com/agentberlin/hounds/testutil"
)

type recordingEmitter struct {
	mu     sync.Mutex
	events []EventType
}

func (r *recordingEmitter) Emit(eventType EventType, data interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, eventType)
}

func (r *recordingEmitter) Events() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]EventType(nil), r.events...)
}

func newTestApp(t *testing.T, site *testutil.Site) (*App, *recordingEmitter) {
	t.Helper()
	st, err := store.NewStoreForTesting(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	emitter := &recordingEmitter{}
	a := NewApp(st, emitter, WithLogger(log.Discard()), WithLauncher(site))
	a.Startup(context.Background())
	t.Cleanup(a.Shutdown)
	return a, emitter
}

func waitForHunt(t *testing.T, a *App, id string) *types.HuntResultDetailed {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, a.WaitForHunt(ctx, id))

	result, err := a.GetHunt(id, store.FindingFilter{})
	require.NoError(t, err)
	return result
}

func TestStartHunt_RecordsFindings(t *testing.T) {
	site := &testutil.Site{Pages: map[string]testutil.Page{
		"http://site.test/": {
			Links:   []string{"http://site.test/b", "https://elsewhere.test/"},
			Errors:  []testutil.PageError{{Message: "Uncaught Error: boom", Stack: "Error: boom\n    at http://site.test/:3:9"}},
			Console: []testutil.ConsoleMessage{{Kind: hounds.ConsoleWarn, Message: "ignored"}},
		},
		"http://site.test/b": {
			Console: []testutil.ConsoleMessage{{Kind: hounds.ConsoleError, Message: "bad"}},
		},
	}}
	a, emitter := newTestApp(t, site)

	info, err := a.StartHunt(types.StartHuntRequest{URL: "http://site.test"})
	require.NoError(t, err)
	assert.Equal(t, store.HuntStateRunning, info.State)
	assert.NotEmpty(t, info.ID)

	result := waitForHunt(t, a, info.ID)
	assert.Equal(t, store.HuntStateCompleted, result.HuntInfo.State)
	assert.Equal(t, 2, result.HuntInfo.PagesVisited)
	assert.Equal(t, 1, result.HuntInfo.ErrorCount)
	assert.Equal(t, 1, result.HuntInfo.ConsoleCount)
	assert.Equal(t, []string{"http://site.test/", "http://site.test/b"}, site.Visits())

	require.Len(t, result.Findings, 2)
	assert.Equal(t, store.FindingError, result.Findings[0].Kind)
	assert.Equal(t, "http://site.test/", result.Findings[0].URL)
	assert.Equal(t, []string{"Error: boom", "at http://site.test/:3:9"}, result.Findings[0].StackTrace)
	assert.Equal(t, store.FindingConsole, result.Findings[1].Kind)
	assert.Equal(t, "error", result.Findings[1].Type)
	assert.Equal(t, "http://site.test/b", result.Findings[1].URL)

	events := emitter.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, EventHuntStarted, events[0])
	assert.Equal(t, EventHuntCompleted, events[len(events)-1])
	assert.Contains(t, events, EventHuntFinding)
}

func TestStartHunt_RequestOverrides(t *testing.T) {
	site := &testutil.Site{Pages: map[string]testutil.Page{
		"http://site.test/": {
			Links:   []string{"http://site.test/b"},
			Console: []testutil.ConsoleMessage{{Kind: hounds.ConsoleLog, Message: "hi"}},
		},
	}}
	a, _ := newTestApp(t, site)

	zero := 0
	info, err := a.StartHunt(types.StartHuntRequest{
		URL:          "http://site.test/",
		ConsoleLevel: "log",
		MaxFollows:   &zero,
	})
	require.NoError(t, err)

	result := waitForHunt(t, a, info.ID)
	assert.Equal(t, []string{"http://site.test/"}, site.Visits())
	require.Len(t, result.Findings, 1)
	assert.Equal(t, "log", result.Findings[0].Type)
}

func TestStartHunt_StoredConfigIsUsed(t *testing.T) {
	site := &testutil.Site{Pages: map[string]testutil.Page{
		"http://site.test/": {
			Links: []string{"http://site.test/keep/1", "http://site.test/skip/1"},
		},
	}}
	a, _ := newTestApp(t, site)

	require.NoError(t, a.UpdateConfigForDomain("http://site.test", types.ConfigResponse{
		Backend:      "chrome",
		ConsoleLevel: "warn",
		MaxFollows:   -1,
		Exclude:      []string{"http://site.test/skip/*"},
	}))
	cfg, err := a.GetConfigForDomain("http://site.test")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.ConsoleLevel)
	assert.Equal(t, []string{"http://site.test/skip/*"}, cfg.Exclude)

	info, err := a.StartHunt(types.StartHuntRequest{URL: "http://site.test/"})
	require.NoError(t, err)
	waitForHunt(t, a, info.ID)
	assert.Equal(t, []string{"http://site.test/", "http://site.test/keep/1"}, site.Visits())
}

func TestUpdateConfigForDomain_Validation(t *testing.T) {
	a, _ := newTestApp(t, &testutil.Site{})

	assert.Error(t, a.UpdateConfigForDomain("http://site.test", types.ConfigResponse{Backend: "firefox", ConsoleLevel: "error"}))
	assert.Error(t, a.UpdateConfigForDomain("http://site.test", types.ConfigResponse{ConsoleLevel: "trace"}))
	assert.Error(t, a.UpdateConfigForDomain("http://site.test", types.ConfigResponse{ConsoleLevel: "error", TimeoutMs: -1}))

	require.NoError(t, a.UpdateConfigForDomain("http://site.test", types.ConfigResponse{ConsoleLevel: "log", MaxFollows: 3}))
	cfg, err := a.GetConfigForDomain("http://site.test")
	require.NoError(t, err)
	assert.Equal(t, "chrome", cfg.Backend)
	assert.Equal(t, 3, cfg.MaxFollows)
}

func TestStartHunt_InvalidRequest(t *testing.T) {
	a, _ := newTestApp(t, &testutil.Site{})

	_, err := a.StartHunt(types.StartHuntRequest{URL: ""})
	assert.Error(t, err)

	_, err = a.StartHunt(types.StartHuntRequest{URL: "http://site.test", ConsoleLevel: "debug"})
	assert.Error(t, err)
}

func TestStartHunt_Failure(t *testing.T) {
	site := &testutil.Site{Pages: map[string]testutil.Page{
		"http://site.test/": {NavigateErr: errors.New("net::ERR_CONNECTION_REFUSED")},
	}}
	a, emitter := newTestApp(t, site)

	info, err := a.StartHunt(types.StartHuntRequest{URL: "http://site.test/"})
	require.NoError(t, err)

	result := waitForHunt(t, a, info.ID)
	assert.Equal(t, store.HuntStateFailed, result.HuntInfo.State)
	assert.Contains(t, result.HuntInfo.Error, "ERR_CONNECTION_REFUSED")
	assert.Equal(t, 1, site.Ends())

	events := emitter.Events()
	assert.Equal(t, EventHuntFailed, events[len(events)-1])
}

func TestStopHunt(t *testing.T) {
	site := &testutil.Site{Pages: map[string]testutil.Page{
		"http://site.test/": {LoadTime: time.Minute},
	}}
	a, _ := newTestApp(t, site)

	info, err := a.StartHunt(types.StartHuntRequest{URL: "http://site.test/"})
	require.NoError(t, err)

	_, err = a.StartHunt(types.StartHuntRequest{URL: "http://site.test/other"})
	assert.Error(t, err, "only one hunt per project may run")

	require.Eventually(t, func() bool { return len(site.Visits()) == 1 }, 5*time.Second, 10*time.Millisecond)
	active := a.GetActiveHunts()
	require.Len(t, active, 1)
	assert.Equal(t, info.ID, active[0].HuntID)
	assert.True(t, active[0].IsRunning)

	require.NoError(t, a.StopHuntByID(info.ID))
	result := waitForHunt(t, a, info.ID)
	assert.Equal(t, store.HuntStateStopped, result.HuntInfo.State)
	assert.Empty(t, a.GetActiveHunts())

	assert.Error(t, a.StopHuntByID(info.ID))
	assert.Error(t, a.StopHunt(info.ProjectID))
}

func TestDeleteHunt(t *testing.T) {
	a, _ := newTestApp(t, &testutil.Site{})

	info, err := a.StartHunt(types.StartHuntRequest{URL: "http://site.test/"})
	require.NoError(t, err)
	waitForHunt(t, a, info.ID)

	hunts, err := a.GetHunts(info.ProjectID)
	require.NoError(t, err)
	require.Len(t, hunts, 1)

	require.NoError(t, a.DeleteHuntByID(info.ID))
	_, err = a.GetHunt(info.ID, store.FindingFilter{})
	assert.Error(t, err)
}

func TestGetProjects(t *testing.T) {
	site := &testutil.Site{Pages: map[string]testutil.Page{
		"http://site.test/": {Errors: []testutil.PageError{{Message: "boom"}}},
	}}
	a, _ := newTestApp(t, site)

	info, err := a.StartHunt(types.StartHuntRequest{URL: "http://site.test/"})
	require.NoError(t, err)
	waitForHunt(t, a, info.ID)

	projects, err := a.GetProjects()
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "site.test", projects[0].Domain)
	assert.Equal(t, info.ID, projects[0].LatestHuntID)
	assert.Equal(t, store.HuntStateCompleted, projects[0].LastState)
	assert.Equal(t, 1, projects[0].ErrorCount)

	require.NoError(t, a.DeleteProjectByID(projects[0].ID))
	projects, err = a.GetProjects()
	require.NoError(t, err)
	assert.Empty(t, projects)
}
