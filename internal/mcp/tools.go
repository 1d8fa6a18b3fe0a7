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
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/agentberlin/hounds/internal/store"
	"github.com/agentberlin/hounds/internal/types"
)

// maxWait bounds how long start_hunt may block when asked to wait
const maxWait = 5 * time.Minute

// registerTools registers all MCP tools with the server
func (s *MCPServer) registerTools() {
	// Hunt management
	s.registerStartHuntTool()
	s.registerStopHuntTool()
	s.registerGetHuntTool()

	// Results
	s.registerListFindingsTool()
	s.registerListHuntsTool()

	// Projects and configuration
	s.registerListProjectsTool()
	s.registerDeleteHuntTool()
	s.registerGetDomainConfigTool()

	s.logger.Debug("MCP tools registered")
}

func textResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
	}
}

// StartHuntArgs defines the input schema for start_hunt tool
type StartHuntArgs struct {
	URL          string   `json:"url" jsonschema:"the seed URL to start crawling from"`
	ConsoleLevel string   `json:"consoleLevel,omitempty" jsonschema:"least severe console level reported: error, warn or log"`
	MaxFollows   *int     `json:"maxFollows,omitempty" jsonschema:"how many pages besides the seed may be visited; negative means unbounded"`
	TimeoutMs    *int64   `json:"timeoutMs,omitempty" jsonschema:"stop following links after this many milliseconds"`
	Backend      string   `json:"backend,omitempty" jsonschema:"chrome (default) or http"`
	Include      []string `json:"include,omitempty" jsonschema:"only follow links matching one of these glob patterns"`
	Exclude      []string `json:"exclude,omitempty" jsonschema:"never follow links matching these glob patterns"`
	Wait         bool     `json:"wait,omitempty" jsonschema:"block until the hunt has finished"`
}

// StartHuntResult defines the output schema for start_hunt tool
type StartHuntResult struct {
	Success bool            `json:"success"`
	Hunt    *types.HuntInfo `json:"hunt,omitempty"`
	Message string          `json:"message"`
}

func (s *MCPServer) registerStartHuntTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "start_hunt",
		Description: "Crawls a website in a browser and records every uncaught JavaScript error and console message its pages produce",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args StartHuntArgs) (*mcp.CallToolResult, StartHuntResult, error) {
		s.logger.Info("tool called", "tool", "start_hunt", "url", args.URL)

		info, err := s.app.StartHunt(types.StartHuntRequest{
			URL:          args.URL,
			Backend:      args.Backend,
			ConsoleLevel: args.ConsoleLevel,
			MaxFollows:   args.MaxFollows,
			TimeoutMs:    args.TimeoutMs,
			Include:      args.Include,
			Exclude:      args.Exclude,
		})
		if err != nil {
			return nil, StartHuntResult{
				Success: false,
				Message: fmt.Sprintf("Failed to start hunt: %v", err),
			}, nil
		}

		if args.Wait {
			waitCtx, cancel := context.WithTimeout(ctx, maxWait)
			defer cancel()
			if err := s.app.WaitForHunt(waitCtx, info.ID); err != nil {
				return nil, StartHuntResult{
					Success: true,
					Hunt:    info,
					Message: "Hunt is still running; use get_hunt to follow it",
				}, nil
			}
			if result, err := s.app.GetHunt(info.ID, store.FindingFilter{Limit: 1}); err == nil {
				info = &result.HuntInfo
			}
			return textResult("Hunt %s %s: %d pages visited, %d errors, %d console messages",
					info.ID, info.State, info.PagesVisited, info.ErrorCount, info.ConsoleCount),
				StartHuntResult{Success: true, Hunt: info, Message: "Hunt finished"}, nil
		}

		return textResult("Hunt %s started for %s", info.ID, info.SeedURL),
			StartHuntResult{Success: true, Hunt: info, Message: "Hunt started"}, nil
	})
}

// HuntIDArgs identifies a hunt
type HuntIDArgs struct {
	HuntID string `json:"huntId" jsonschema:"the hunt ID returned by start_hunt"`
}

// ActionResult is the output of tools that only report success
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *MCPServer) registerStopHuntTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "stop_hunt",
		Description: "Stops a running hunt; findings recorded so far are kept",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args HuntIDArgs) (*mcp.CallToolResult, ActionResult, error) {
		if err := s.app.StopHuntByID(args.HuntID); err != nil {
			return nil, ActionResult{Success: false, Message: err.Error()}, nil
		}
		return nil, ActionResult{Success: true, Message: "Hunt stopped"}, nil
	})
}

func (s *MCPServer) registerDeleteHuntTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_hunt",
		Description: "Deletes a finished hunt and its findings",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args HuntIDArgs) (*mcp.CallToolResult, ActionResult, error) {
		if err := s.app.DeleteHuntByID(args.HuntID); err != nil {
			return nil, ActionResult{Success: false, Message: err.Error()}, nil
		}
		return nil, ActionResult{Success: true, Message: "Hunt deleted"}, nil
	})
}

// HuntStatusResult defines the output schema for get_hunt tool
type HuntStatusResult struct {
	Success bool                `json:"success"`
	Hunt    *types.HuntInfo     `json:"hunt,omitempty"`
	Active  *types.HuntProgress `json:"active,omitempty"`
	Message string              `json:"message,omitempty"`
}

func (s *MCPServer) registerGetHuntTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_hunt",
		Description: "Returns the state and counters of a hunt",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args HuntIDArgs) (*mcp.CallToolResult, HuntStatusResult, error) {
		result, err := s.app.GetHunt(args.HuntID, store.FindingFilter{Limit: 1})
		if err != nil {
			return nil, HuntStatusResult{Success: false, Message: err.Error()}, nil
		}

		out := HuntStatusResult{Success: true, Hunt: &result.HuntInfo}
		for _, p := range s.app.GetActiveHunts() {
			if p.HuntID == args.HuntID {
				out.Active = &p
				break
			}
		}
		return nil, out, nil
	})
}

// ListFindingsArgs defines the input schema for list_findings tool
type ListFindingsArgs struct {
	HuntID string `json:"huntId" jsonschema:"the hunt ID returned by start_hunt"`
	Kind   string `json:"kind,omitempty" jsonschema:"error or console; empty lists both"`
	Query  string `json:"query,omitempty" jsonschema:"only findings whose message or page URL contains this text"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of findings (default 50)"`
	Offset int    `json:"offset,omitempty"`
}

// ListFindingsResult defines the output schema for list_findings tool
type ListFindingsResult struct {
	Success  bool                `json:"success"`
	Findings []types.FindingInfo `json:"findings"`
	Message  string              `json:"message,omitempty"`
}

func (s *MCPServer) registerListFindingsTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_findings",
		Description: "Lists the JavaScript errors and console messages recorded by a hunt, in the order they occurred",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ListFindingsArgs) (*mcp.CallToolResult, ListFindingsResult, error) {
		switch args.Kind {
		case "", store.FindingError, store.FindingConsole:
		default:
			return nil, ListFindingsResult{Message: "kind must be error or console"}, nil
		}
		limit := args.Limit
		if limit <= 0 {
			limit = 50
		}

		result, err := s.app.GetHunt(args.HuntID, store.FindingFilter{
			Kind:   args.Kind,
			Query:  args.Query,
			Limit:  limit,
			Offset: args.Offset,
		})
		if err != nil {
			return nil, ListFindingsResult{Message: err.Error()}, nil
		}
		return nil, ListFindingsResult{Success: true, Findings: result.Findings}, nil
	})
}

// ListHuntsArgs defines the input schema for list_hunts tool
type ListHuntsArgs struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of hunts (default 20)"`
}

// ListHuntsResult defines the output schema for list_hunts tool
type ListHuntsResult struct {
	Hunts []types.HuntInfo `json:"hunts"`
}

func (s *MCPServer) registerListHuntsTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_hunts",
		Description: "Lists the most recent hunts across all sites",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ListHuntsArgs) (*mcp.CallToolResult, ListHuntsResult, error) {
		limit := args.Limit
		if limit <= 0 {
			limit = 20
		}
		hunts, err := s.app.ListHunts(limit)
		if err != nil {
			return nil, ListHuntsResult{}, err
		}
		return nil, ListHuntsResult{Hunts: hunts}, nil
	})
}

// ListProjectsResult defines the output schema for list_projects tool
type ListProjectsResult struct {
	Projects []types.ProjectInfo `json:"projects"`
}

func (s *MCPServer) registerListProjectsTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_projects",
		Description: "Lists every site that has been hunted with its latest hunt",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args struct{}) (*mcp.CallToolResult, ListProjectsResult, error) {
		projects, err := s.app.GetProjects()
		if err != nil {
			return nil, ListProjectsResult{}, err
		}
		return nil, ListProjectsResult{Projects: projects}, nil
	})
}

// DomainConfigArgs defines the input schema for get_domain_config tool
type DomainConfigArgs struct {
	URL string `json:"url" jsonschema:"any URL of the site"`
}

func (s *MCPServer) registerGetDomainConfigTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_domain_config",
		Description: "Returns the hunt defaults stored for a site",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args DomainConfigArgs) (*mcp.CallToolResult, types.ConfigResponse, error) {
		cfg, err := s.app.GetConfigForDomain(args.URL)
		if err != nil {
			return nil, types.ConfigResponse{}, err
		}
		return nil, *cfg, nil
	})
}
