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

// Package server exposes the app over a REST API and streams hunt events
// to websocket clients.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/agentberlin/hounds"
	"github.com/agentberlin/hounds/internal/app"
	"github.com/agentberlin/hounds/internal/store"
	"github.com/agentberlin/hounds/internal/types"
)

// Server represents the HTTP server
type Server struct {
	app *app.App
	hub *Hub
	log *slog.Logger
	mux *http.ServeMux
}

// NewServer creates a new HTTP server. hub may be nil, which disables
// /api/v1/events.
func NewServer(a *app.App, hub *Hub, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		app: a,
		hub: hub,
		log: logger,
		mux: http.NewServeMux(),
	}

	s.registerRoutes()

	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// CORS middleware
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	// Handle preflight
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	s.log.Debug("request", "method", r.Method, "path", r.URL.Path)

	s.mux.ServeHTTP(w, r)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/v1/version", s.handleGetVersion)
	s.mux.HandleFunc("GET /api/v1/projects", s.handleProjects)
	s.mux.HandleFunc("DELETE /api/v1/projects/{id}", s.handleDeleteProject)
	s.mux.HandleFunc("GET /api/v1/projects/{id}/hunts", s.handleProjectHunts)
	s.mux.HandleFunc("POST /api/v1/projects/{id}/stop", s.handleStopProjectHunt)
	s.mux.HandleFunc("POST /api/v1/hunts", s.handleStartHunt)
	s.mux.HandleFunc("GET /api/v1/hunts", s.handleListHunts)
	s.mux.HandleFunc("GET /api/v1/hunts/active", s.handleActiveHunts)
	s.mux.HandleFunc("GET /api/v1/hunts/{id}", s.handleGetHunt)
	s.mux.HandleFunc("DELETE /api/v1/hunts/{id}", s.handleDeleteHunt)
	s.mux.HandleFunc("POST /api/v1/hunts/{id}/stop", s.handleStopHunt)
	s.mux.HandleFunc("GET /api/v1/config", s.handleGetConfig)
	s.mux.HandleFunc("PUT /api/v1/config", s.handleUpdateConfig)
	if s.hub != nil {
		s.mux.Handle("GET /api/v1/events", s.hub)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func projectID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		http.Error(w, "Invalid project ID", http.StatusBadRequest)
		return 0, false
	}
	return uint(id), true
}

func queryInt(r *http.Request, name string, def int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(name)); err == nil && v >= 0 {
		return v
	}
	return def
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := s.app.CheckSystemHealth()
	status := "ok"
	if !health.IsHealthy {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": status,
		"system": health,
	})
}

func (s *Server) handleGetVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version": hounds.Version,
	})
}

// handleProjects handles GET /api/v1/projects
func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.app.GetProjects()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// handleDeleteProject handles DELETE /api/v1/projects/{id}
func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	if err := s.app.DeleteProjectByID(id); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleProjectHunts handles GET /api/v1/projects/{id}/hunts
func (s *Server) handleProjectHunts(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	hunts, err := s.app.GetHunts(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, hunts)
}

// handleStopProjectHunt handles POST /api/v1/projects/{id}/stop
func (s *Server) handleStopProjectHunt(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	if err := s.app.StopHunt(id); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Hunt stopped",
	})
}

// handleStartHunt handles POST /api/v1/hunts
func (s *Server) handleStartHunt(w http.ResponseWriter, r *http.Request) {
	var req types.StartHuntRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	info, err := s.app.StartHunt(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"message": "Hunt started",
		"hunt":    info,
	})
}

// handleListHunts handles GET /api/v1/hunts?limit=50
func (s *Server) handleListHunts(w http.ResponseWriter, r *http.Request) {
	hunts, err := s.app.ListHunts(queryInt(r, "limit", 50))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, hunts)
}

// handleActiveHunts handles GET /api/v1/hunts/active
func (s *Server) handleActiveHunts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.GetActiveHunts())
}

// handleGetHunt handles GET /api/v1/hunts/{id}?kind=error&q=boom&limit=100&offset=0
func (s *Server) handleGetHunt(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.FindingFilter{
		Kind:   q.Get("kind"),
		Query:  q.Get("q"),
		Limit:  queryInt(r, "limit", 100),
		Offset: queryInt(r, "offset", 0),
	}
	switch filter.Kind {
	case "", store.FindingError, store.FindingConsole:
	default:
		http.Error(w, "kind must be error or console", http.StatusBadRequest)
		return
	}

	result, err := s.app.GetHunt(r.PathValue("id"), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleDeleteHunt handles DELETE /api/v1/hunts/{id}
func (s *Server) handleDeleteHunt(w http.ResponseWriter, r *http.Request) {
	if err := s.app.DeleteHuntByID(r.PathValue("id")); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleStopHunt handles POST /api/v1/hunts/{id}/stop
func (s *Server) handleStopHunt(w http.ResponseWriter, r *http.Request) {
	if err := s.app.StopHuntByID(r.PathValue("id")); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Hunt stopped",
	})
}

// handleGetConfig handles GET /api/v1/config?url=...
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		http.Error(w, "URL parameter required", http.StatusBadRequest)
		return
	}
	config, err := s.app.GetConfigForDomain(url)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, config)
}

// handleUpdateConfig handles PUT /api/v1/config
func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
		types.ConfigResponse
	}
	// Omitted fields keep the same defaults a new project gets
	req.MaxFollows = -1
	req.ConsoleLevel = string(hounds.ConsoleError)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.URL == "" {
		http.Error(w, "URL is required", http.StatusBadRequest)
		return
	}

	if err := s.app.UpdateConfigForDomain(req.URL, req.ConfigResponse); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Config updated",
	})
}
