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
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentberlin/hounds"
	"github.com/agentberlin/hounds/internal/app"
	"github.com/agentberlin/hounds/internal/log"
	"github.com/agentberlin/hounds/internal/store"
)

// NewRootCmd creates the root command for hounds.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hounds",
		Short: "Hunt down JavaScript errors on a website",
		Long: `hounds crawls a website in headless Chrome, one page at a time, and reports
every uncaught JavaScript error and every console message at or above a chosen
level. Links are followed on the seed's origin unless told otherwise.`,
		Version:       hounds.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringP("config", "c", "",
		"Hunt configuration file (default: .hounds.yaml in the current directory or the XDG config dir)")
	cmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
	cmd.PersistentFlags().String("db", "", "Database path (default: XDG data dir)")

	cmd.AddCommand(NewHuntCmd())
	cmd.AddCommand(NewListCmd())
	cmd.AddCommand(NewFindingsCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

// newLogger builds the logger selected by the persistent flags. Logs go to
// stderr so that stdout stays parseable.
func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	levelName, _ := cmd.Flags().GetString("log-level")
	format, _ := cmd.Flags().GetString("log-format")

	level, err := log.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	return log.New(level, format, os.Stderr)
}

// openStore opens the database selected by --db.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	path, _ := cmd.Flags().GetString("db")
	if path == "" {
		var err error
		if path, err = store.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return store.NewStore(path)
}

// openApp opens the store and creates an app on it. The caller must call
// the returned cleanup function, and Startup if it owns the database.
func openApp(cmd *cobra.Command, logger *slog.Logger, emitter app.EventEmitter, opts ...app.Option) (*app.App, func(), error) {
	st, err := openStore(cmd)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	a := app.NewApp(st, emitter, append([]app.Option{app.WithLogger(logger)}, opts...)...)
	return a, func() {
		a.Shutdown()
		st.Close()
	}, nil
}
