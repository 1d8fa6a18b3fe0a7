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
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentberlin/hounds/internal/app"
	"github.com/agentberlin/hounds/internal/log"
	"github.com/agentberlin/hounds/internal/store"
)

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded hunts or projects",
	}
	cmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")

	hunts := &cobra.Command{
		Use:   "hunts",
		Short: "List the most recent hunts",
		Args:  cobra.NoArgs,
		RunE:  runListHunts,
	}
	hunts.Flags().IntP("limit", "n", 20, "Maximum number of hunts")
	hunts.Flags().Uint("project-id", 0, "Only hunts of this project")

	projects := &cobra.Command{
		Use:   "projects",
		Short: "List every hunted site",
		Args:  cobra.NoArgs,
		RunE:  runListProjects,
	}

	cmd.AddCommand(hunts, projects)
	return cmd
}

// openQuietApp opens the database for reading. Unlike openApp it leaves
// the hunts of other running processes alone.
func openQuietApp(cmd *cobra.Command) (*app.App, func(), error) {
	st, err := openStore(cmd)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return app.NewApp(st, nil, app.WithLogger(log.Discard())), func() { st.Close() }, nil
}

func runListHunts(cmd *cobra.Command, args []string) error {
	a, cleanup, err := openQuietApp(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	limit, _ := cmd.Flags().GetInt("limit")
	projectID, _ := cmd.Flags().GetUint("project-id")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	hunts, err := a.ListHunts(limit)
	if projectID != 0 {
		hunts, err = a.GetHunts(projectID)
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(hunts)
	}
	if len(hunts) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No hunts recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tSTATE\tPAGES\tERRORS\tCONSOLE\tSEED")
	for _, h := range hunts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			h.ID,
			time.Unix(h.StartedAt, 0).Format("2006-01-02 15:04"),
			h.State,
			h.PagesVisited,
			h.ErrorCount,
			h.ConsoleCount,
			h.SeedURL)
	}
	return w.Flush()
}

func runListProjects(cmd *cobra.Command, args []string) error {
	a, cleanup, err := openQuietApp(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	jsonOutput, _ := cmd.Flags().GetBool("json")
	projects, err := a.GetProjects()
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(projects)
	}
	if len(projects) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No projects found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDOMAIN\tLAST HUNT\tSTATE\tERRORS")
	for _, p := range projects {
		last := "-"
		if p.LastHuntAt > 0 {
			last = time.Unix(p.LastHuntAt, 0).Format("2006-01-02 15:04")
		}
		state := p.LastState
		if state == "" {
			state = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n", p.ID, p.Domain, last, state, p.ErrorCount)
	}
	return w.Flush()
}

// NewFindingsCmd creates the findings command.
func NewFindingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "findings <hunt-id>",
		Short: "Show the errors and console messages of a recorded hunt",
		Args:  cobra.ExactArgs(1),
		RunE:  runFindings,
	}
	cmd.Flags().String("kind", "", "Only error or console findings")
	cmd.Flags().StringP("query", "q", "", "Only findings whose message or URL contains this text")
	cmd.Flags().IntP("limit", "n", 0, "Maximum number of findings (0 = all)")
	cmd.Flags().Int("offset", 0, "Skip this many findings")
	cmd.Flags().BoolP("json", "j", false, "Print findings as JSON lines")
	return cmd
}

func runFindings(cmd *cobra.Command, args []string) error {
	a, cleanup, err := openQuietApp(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	kind, _ := cmd.Flags().GetString("kind")
	switch kind {
	case "", store.FindingError, store.FindingConsole:
	default:
		return fmt.Errorf("--kind must be %s or %s", store.FindingError, store.FindingConsole)
	}
	query, _ := cmd.Flags().GetString("query")
	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	result, err := a.GetHunt(args[0], store.FindingFilter{
		Kind:   kind,
		Query:  query,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return err
	}

	out := newPrinter(cmd.OutOrStdout(), jsonOutput)
	for _, f := range result.Findings {
		if err := out.finding(f); err != nil {
			return err
		}
	}
	if !jsonOutput {
		h := result.HuntInfo
		summary{
			Visited:     h.PagesVisited,
			Errors:      h.ErrorCount,
			Console:     h.ConsoleCount,
			Interrupted: h.State == store.HuntStateStopped,
		}.print(cmd.ErrOrStderr())
	}
	return nil
}
