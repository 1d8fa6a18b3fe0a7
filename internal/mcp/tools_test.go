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

package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentberlin/hounds"
	"github.com/agentberlin/hounds/internal/app"
	"github.com/agentberlin/hounds/internal/log"
	"github.com/agentberlin/hounds/internal/store"
	"github.com/agentberlin/hounds/testutil"
)

// setupTestClient starts an MCP server on a test app and connects a client
// to it in memory
func setupTestClient(t *testing.T, site *testutil.Site) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	st, err := store.NewStoreForTesting(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	testApp := app.NewApp(st, &app.NoOpEmitter{}, app.WithLogger(log.Discard()), app.WithLauncher(site))
	testApp.Startup(ctx)
	t.Cleanup(testApp.Shutdown)

	server := NewMCPServer(testApp, log.Discard())
	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.GetServer().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

// callTool calls a tool and decodes its structured output into out
func callTool(t *testing.T, session *mcp.ClientSession, name string, args map[string]any, out any) *mcp.CallToolResult {
	t.Helper()
	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)
	if out != nil && res.StructuredContent != nil {
		data, err := json.Marshal(res.StructuredContent)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, out))
	}
	return res
}

func errorSite() *testutil.Site {
	return &testutil.Site{Pages: map[string]testutil.Page{
		"http://site.test/": {
			Links:  []string{"http://site.test/b"},
			Errors: []testutil.PageError{{Message: "Uncaught TypeError: x is undefined", Stack: "TypeError: x is undefined\n    at main (http://site.test/app.js:1:1)"}},
		},
		"http://site.test/b": {
			Console: []testutil.ConsoleMessage{
				{Kind: hounds.ConsoleError, Message: "failed to fetch"},
				{Kind: hounds.ConsoleWarn, Message: "deprecated"},
			},
		},
	}}
}

func TestListTools(t *testing.T) {
	session := setupTestClient(t, &testutil.Site{})

	res, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"start_hunt", "stop_hunt", "get_hunt", "list_findings",
		"list_hunts", "list_projects", "delete_hunt", "get_domain_config",
	}, names)
}

func TestStartHuntTool(t *testing.T) {
	session := setupTestClient(t, errorSite())

	t.Run("WaitForCompletion", func(t *testing.T) {
		var out StartHuntResult
		res := callTool(t, session, "start_hunt", map[string]any{
			"url":          "http://site.test/",
			"consoleLevel": "warn",
			"wait":         true,
		}, &out)
		assert.False(t, res.IsError)
		require.True(t, out.Success, out.Message)
		require.NotNil(t, out.Hunt)
		assert.Equal(t, store.HuntStateCompleted, out.Hunt.State)
		assert.Equal(t, 2, out.Hunt.PagesVisited)
		assert.Equal(t, 1, out.Hunt.ErrorCount)
		assert.Equal(t, 2, out.Hunt.ConsoleCount)

		var findings ListFindingsResult
		callTool(t, session, "list_findings", map[string]any{"huntId": out.Hunt.ID}, &findings)
		require.True(t, findings.Success)
		require.Len(t, findings.Findings, 3)
		assert.Equal(t, "error", findings.Findings[0].Kind)
		assert.Equal(t, []string{"TypeError: x is undefined", "at main (http://site.test/app.js:1:1)"}, findings.Findings[0].StackTrace)

		var consoleOnly ListFindingsResult
		callTool(t, session, "list_findings", map[string]any{"huntId": out.Hunt.ID, "kind": "console", "query": "deprecated"}, &consoleOnly)
		require.Len(t, consoleOnly.Findings, 1)
		assert.Equal(t, "warn", consoleOnly.Findings[0].Type)

		var status HuntStatusResult
		callTool(t, session, "get_hunt", map[string]any{"huntId": out.Hunt.ID}, &status)
		require.True(t, status.Success)
		assert.Nil(t, status.Active)
		assert.Equal(t, store.HuntStateCompleted, status.Hunt.State)
	})

	t.Run("InvalidURL", func(t *testing.T) {
		var out StartHuntResult
		callTool(t, session, "start_hunt", map[string]any{"url": ""}, &out)
		assert.False(t, out.Success)
		assert.Contains(t, out.Message, "Failed to start hunt")
	})
}

func TestStopHuntTool(t *testing.T) {
	site := &testutil.Site{Pages: map[string]testutil.Page{
		"http://site.test/": {LoadTime: time.Minute},
	}}
	session := setupTestClient(t, site)

	var started StartHuntResult
	callTool(t, session, "start_hunt", map[string]any{"url": "http://site.test/"}, &started)
	require.True(t, started.Success)

	var status HuntStatusResult
	callTool(t, session, "get_hunt", map[string]any{"huntId": started.Hunt.ID}, &status)
	require.NotNil(t, status.Active)
	assert.True(t, status.Active.IsRunning)

	var stopped ActionResult
	callTool(t, session, "stop_hunt", map[string]any{"huntId": started.Hunt.ID}, &stopped)
	assert.True(t, stopped.Success)

	require.Eventually(t, func() bool {
		var s HuntStatusResult
		callTool(t, session, "get_hunt", map[string]any{"huntId": started.Hunt.ID}, &s)
		return s.Hunt != nil && s.Hunt.State == store.HuntStateStopped
	}, 5*time.Second, 20*time.Millisecond)

	var again ActionResult
	callTool(t, session, "stop_hunt", map[string]any{"huntId": started.Hunt.ID}, &again)
	assert.False(t, again.Success)
}

func TestProjectTools(t *testing.T) {
	session := setupTestClient(t, errorSite())

	var started StartHuntResult
	callTool(t, session, "start_hunt", map[string]any{"url": "http://site.test/", "maxFollows": 0, "wait": true}, &started)
	require.True(t, started.Success)
	assert.Equal(t, 1, started.Hunt.PagesVisited)

	var projects ListProjectsResult
	callTool(t, session, "list_projects", map[string]any{}, &projects)
	require.Len(t, projects.Projects, 1)
	assert.Equal(t, "site.test", projects.Projects[0].Domain)

	var hunts ListHuntsResult
	callTool(t, session, "list_hunts", map[string]any{}, &hunts)
	require.Len(t, hunts.Hunts, 1)

	var cfg map[string]any
	callTool(t, session, "get_domain_config", map[string]any{"url": "http://site.test/"}, &cfg)
	assert.Equal(t, "chrome", cfg["backend"])

	var deleted ActionResult
	callTool(t, session, "delete_hunt", map[string]any{"huntId": started.Hunt.ID}, &deleted)
	assert.True(t, deleted.Success)

	hunts = ListHuntsResult{}
	callTool(t, session, "list_hunts", map[string]any{}, &hunts)
	assert.Empty(t, hunts.Hunts)
}
