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

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentberlin/hounds"
	"github.com/agentberlin/hounds/internal/app"
	"github.com/agentberlin/hounds/internal/log"
	"github.com/agentberlin/hounds/internal/store"
	"github.com/agentberlin/hounds/internal/types"
	"github.com/agentberlin/hounds/testutil"
)

func newTestServer(t *testing.T, site *testutil.Site) (*httptest.Server, *Hub) {
	t.Helper()
	st, err := store.NewStoreForTesting(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	hub := NewHub(log.Discard())
	a := app.NewApp(st, hub, app.WithLogger(log.Discard()), app.WithLauncher(site))
	a.Startup(context.Background())

	srv := httptest.NewServer(NewServer(a, hub, log.Discard()))
	t.Cleanup(func() {
		srv.Close()
		a.Shutdown()
	})
	return srv, hub
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	res, err := http.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()
	if v != nil && res.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(res.Body).Decode(v))
	}
	return res.StatusCode
}

func TestVersionAndHealth(t *testing.T) {
	srv, _ := newTestServer(t, &testutil.Site{})

	var version map[string]string
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/v1/version", &version))
	assert.Equal(t, hounds.Version, version["version"])

	var health map[string]any
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/v1/health", &health))
	assert.Contains(t, []any{"ok", "degraded"}, health["status"])
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t, &testutil.Site{})

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/v1/hunts", nil)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "*", res.Header.Get("Access-Control-Allow-Origin"))
}

func TestHuntLifecycle(t *testing.T) {
	site := &testutil.Site{Pages: map[string]testutil.Page{
		"http://site.test/": {
			Links:  []string{"http://site.test/b"},
			Errors: []testutil.PageError{{Message: "Uncaught Error: boom"}},
		},
		"http://site.test/b": {
			Console: []testutil.ConsoleMessage{{Kind: hounds.ConsoleError, Message: "bad"}},
		},
	}}
	srv, _ := newTestServer(t, site)

	res := postJSON(t, srv.URL+"/api/v1/hunts", types.StartHuntRequest{URL: "http://site.test/"})
	require.Equal(t, http.StatusAccepted, res.StatusCode)
	var started struct {
		Hunt types.HuntInfo `json:"hunt"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&started))
	require.NotEmpty(t, started.Hunt.ID)

	var result types.HuntResultDetailed
	require.Eventually(t, func() bool {
		result = types.HuntResultDetailed{}
		return getJSON(t, srv.URL+"/api/v1/hunts/"+started.Hunt.ID, &result) == http.StatusOK &&
			result.HuntInfo.State == store.HuntStateCompleted
	}, 5*time.Second, 20*time.Millisecond)
	assert.Len(t, result.Findings, 2)

	var errorsOnly types.HuntResultDetailed
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/v1/hunts/"+started.Hunt.ID+"?kind=error", &errorsOnly))
	require.Len(t, errorsOnly.Findings, 1)
	assert.Equal(t, "Uncaught Error: boom", errorsOnly.Findings[0].Message)

	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/api/v1/hunts/"+started.Hunt.ID+"?kind=debug", nil))

	var hunts []types.HuntInfo
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/v1/hunts", &hunts))
	assert.Len(t, hunts, 1)

	var projects []types.ProjectInfo
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/v1/projects", &projects))
	require.Len(t, projects, 1)
	assert.Equal(t, started.Hunt.ID, projects[0].LatestHuntID)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/hunts/"+started.Hunt.ID, nil)
	require.NoError(t, err)
	del, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	del.Body.Close()
	assert.Equal(t, http.StatusNoContent, del.StatusCode)
	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/api/v1/hunts/"+started.Hunt.ID, nil))
}

func TestStartHunt_BadRequest(t *testing.T) {
	srv, _ := newTestServer(t, &testutil.Site{})

	res, err := http.Post(srv.URL+"/api/v1/hunts", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res = postJSON(t, srv.URL+"/api/v1/hunts", types.StartHuntRequest{})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestConfigEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, &testutil.Site{})

	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/api/v1/config", nil))

	body := `{"url":"http://site.test","consoleLevel":"warn","include":["http://site.test/docs/**"]}`
	req, err := http.NewRequest(http.MethodPut, srv.URL+"/api/v1/config", strings.NewReader(body))
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var cfg types.ConfigResponse
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/v1/config?url=http://site.test", &cfg))
	assert.Equal(t, "warn", cfg.ConsoleLevel)
	assert.Equal(t, -1, cfg.MaxFollows)
	assert.Equal(t, []string{"http://site.test/docs/**"}, cfg.Include)
}

func TestStopUnknownHunt(t *testing.T) {
	srv, _ := newTestServer(t, &testutil.Site{})

	res := postJSON(t, srv.URL+"/api/v1/hunts/nope/stop", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res = postJSON(t, srv.URL+"/api/v1/projects/abc/stop", nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestEventsWebsocket(t *testing.T) {
	site := &testutil.Site{Pages: map[string]testutil.Page{
		"http://site.test/": {Errors: []testutil.PageError{{Message: "boom"}}},
	}}
	srv, hub := newTestServer(t, site)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/events"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	res := postJSON(t, srv.URL+"/api/v1/hunts", types.StartHuntRequest{URL: "http://site.test/"})
	require.Equal(t, http.StatusAccepted, res.StatusCode)

	var seen []app.EventType
	for len(seen) == 0 || seen[len(seen)-1] != app.EventHuntCompleted {
		_, data, err := conn.Read(ctx)
		require.NoError(t, err)
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		seen = append(seen, msg.Type)
	}
	assert.Equal(t, []app.EventType{app.EventHuntStarted, app.EventHuntFinding, app.EventHuntCompleted}, seen)
}
