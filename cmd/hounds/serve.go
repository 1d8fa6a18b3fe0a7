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

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/agentberlin/hounds"
	"github.com/agentberlin/hounds/internal/app"
	"github.com/agentberlin/hounds/internal/config"
	"github.com/agentberlin/hounds/internal/mcp"
	"github.com/agentberlin/hounds/internal/server"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API and the MCP server",
		Long: `Serve runs the REST API (with a websocket event stream at /api/v1/events)
and the MCP streamable HTTP endpoint. Hunts started through either are
recorded in the database.

Examples:
  # API on :8080, MCP on :8081
  hounds serve

  # Share one Chrome between all hunts
  hounds serve --shared-browser

  # API only
  hounds serve --addr 0.0.0.0:9000 --mcp-addr ""`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}
	cmd.Flags().String("addr", "127.0.0.1:8080", "REST API listen address")
	cmd.Flags().String("mcp-addr", "127.0.0.1:8081", "MCP listen address (empty disables MCP)")
	cmd.Flags().Bool("shared-browser", false, "Start one Chrome at startup and open a tab per hunt")
	return cmd
}

func runServeCmd(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	addr, _ := cmd.Flags().GetString("addr")
	mcpAddr, _ := cmd.Flags().GetString("mcp-addr")
	shared, _ := cmd.Flags().GetBool("shared-browser")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []app.Option
	if shared {
		path, _ := cmd.Flags().GetString("config")
		file, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		browserOpts := file.BrowserOptions()
		if browserOpts.ExecPath == "" {
			browserOpts.ExecPath = app.ChromeExecPath()
		}
		browser, err := hounds.NewBrowser(ctx, browserOpts)
		if err != nil {
			return err
		}
		defer browser.Close()
		opts = append(opts, app.WithLauncher(&hounds.ChromeLauncher{Browser: browser}))
		logger.Info("shared browser started")
	}

	hub := server.NewHub(logger)
	a, cleanup, err := openApp(cmd, logger, hub, opts...)
	if err != nil {
		return err
	}
	defer cleanup()
	a.Startup(ctx)

	if health := a.CheckSystemHealth(); !health.IsHealthy {
		logger.Warn(health.ErrorTitle, "detail", health.ErrorMsg)
	}

	servers := []*http.Server{{
		Addr:              addr,
		Handler:           server.NewServer(a, hub, logger),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}}
	if mcpAddr != "" {
		servers = append(servers, &http.Server{
			Addr:              mcpAddr,
			Handler:           mcp.NewMCPServer(a, logger).Handler(),
			ReadHeaderTimeout: 15 * time.Second,
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			logger.Info("listening", "addr", srv.Addr)
			fmt.Fprintf(cmd.ErrOrStderr(), "Listening on http://%s\n", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server on %s: %w", srv.Addr, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		var errs []error
		for _, srv := range servers {
			errs = append(errs, srv.Shutdown(shutdownCtx))
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}
