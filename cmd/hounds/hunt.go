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
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/agentberlin/hounds"
	"github.com/agentberlin/hounds/internal/app"
	"github.com/agentberlin/hounds/internal/config"
	"github.com/agentberlin/hounds/internal/store"
	"github.com/agentberlin/hounds/internal/types"
)

// errFindings is returned by --fail-on-error when errors were found
var errFindings = errors.New("page errors found")

func exitCode(err error) int {
	if errors.Is(err, errFindings) {
		return 2
	}
	return 1
}

// NewHuntCmd creates the hunt command.
func NewHuntCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hunt [url]",
		Short: "Crawl a site and print the JavaScript errors of its pages",
		Long: `Hunt crawls a site starting at url and prints every uncaught page error and
every console message at or above --console-level as it happens.

Examples:
  # Hunt a local dev server
  hounds hunt http://localhost:3000

  # Include warnings, stop after the seed plus 20 pages
  hounds hunt -l warn -m 20 https://example.com

  # Only follow documentation pages, print JSON lines
  hounds hunt --include 'https://example.com/docs/**' --json https://example.com/docs/

  # Fail a CI job when any page throws
  hounds hunt --fail-on-error http://localhost:3000

  # Record the hunt so it shows up in "hounds list" and the API
  hounds hunt --save https://example.com

Configuration file (.hounds.yaml) example:
  url: http://localhost:3000
  console_level: warn
  max_follows: 50
  timeout: 2m
  wait_after_loaded_for: 500ms
  exclude:
    - "http://localhost:3000/admin/**"
  browser:
    headless: true`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHuntCmd,
	}

	cmd.Flags().String("backend", "", "Page loader: chrome (default) or http")
	cmd.Flags().StringP("console-level", "l", "", "Least severe console level reported: error, warn, log (default error)")
	cmd.Flags().IntP("max-follows", "m", -1, "Pages to visit besides the seed (negative = unbounded)")
	cmd.Flags().DurationP("timeout", "t", 0, "Stop following links after this long (0 = no timeout)")
	cmd.Flags().Duration("wait", 0, "Settle time after each page load before links are collected")
	cmd.Flags().StringSlice("include", nil, "Only follow links matching these glob patterns")
	cmd.Flags().StringSlice("exclude", nil, "Never follow links matching these glob patterns")
	cmd.Flags().Bool("external-only", false, "Follow only links that leave the seed's origin")
	cmd.Flags().Bool("same-site", false, "Follow links on every subdomain of the seed's site")
	cmd.Flags().Int("max-url-length", 0, "Skip links longer than this (0 = no limit)")
	cmd.Flags().String("screenshots", "", "Save a screenshot of every visited page into this directory")
	cmd.Flags().Bool("keep-alive", false, "Keep the browser open after the crawl and report until interrupted")

	cmd.Flags().Bool("headful", false, "Show the browser window")
	cmd.Flags().String("chrome-path", "", "Chrome executable (default: auto-detect or CHROME_EXECUTABLE_PATH)")
	cmd.Flags().String("user-agent", "", "User agent to send")
	cmd.Flags().Bool("network-errors", false, "Report failed resource loads as console errors")

	cmd.Flags().Bool("log-urls", false, "Print every visited URL to stderr")
	cmd.Flags().BoolP("json", "j", false, "Print findings as JSON lines")
	cmd.Flags().Bool("fail-on-error", false, "Exit with status 2 when any page error was found")
	cmd.Flags().Bool("save", false, "Record the hunt in the database")

	return cmd
}

// buildHuntFile loads the configuration file and applies the flags on top.
func buildHuntFile(cmd *cobra.Command, args []string) (*config.File, error) {
	path, _ := cmd.Flags().GetString("config")
	file, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if len(args) > 0 {
		file.URL = args[0]
	}

	flags := cmd.Flags()
	if flags.Changed("backend") {
		file.Backend, _ = flags.GetString("backend")
	}
	if flags.Changed("console-level") {
		file.ConsoleLevel, _ = flags.GetString("console-level")
	}
	if flags.Changed("max-follows") {
		n, _ := flags.GetInt("max-follows")
		if n < 0 {
			file.MaxFollows = nil
		} else {
			file.MaxFollows = hounds.Follows(n)
		}
	}
	if flags.Changed("timeout") {
		d, _ := flags.GetDuration("timeout")
		file.Timeout = config.DurationFrom(d)
	}
	if flags.Changed("wait") {
		d, _ := flags.GetDuration("wait")
		file.WaitAfterLoadedFor = config.DurationFrom(d)
	}
	if flags.Changed("include") {
		file.Include, _ = flags.GetStringSlice("include")
	}
	if flags.Changed("exclude") {
		file.Exclude, _ = flags.GetStringSlice("exclude")
	}
	if flags.Changed("external-only") {
		file.ExternalOnly, _ = flags.GetBool("external-only")
	}
	if flags.Changed("same-site") {
		file.SameSite, _ = flags.GetBool("same-site")
	}
	if flags.Changed("max-url-length") {
		file.MaxURLLength, _ = flags.GetInt("max-url-length")
	}
	if flags.Changed("screenshots") {
		file.ScreenshotDir, _ = flags.GetString("screenshots")
	}
	if flags.Changed("keep-alive") {
		file.KeepAlive, _ = flags.GetBool("keep-alive")
	}
	if headful, _ := flags.GetBool("headful"); headful {
		headless := false
		file.Browser.Headless = &headless
	}
	if flags.Changed("chrome-path") {
		file.Browser.ExecPath, _ = flags.GetString("chrome-path")
	}
	if file.Browser.ExecPath == "" {
		file.Browser.ExecPath = app.ChromeExecPath()
	}
	if flags.Changed("user-agent") {
		file.Browser.UserAgent, _ = flags.GetString("user-agent")
	}
	if flags.Changed("network-errors") {
		file.Browser.NetworkErrors, _ = flags.GetBool("network-errors")
	}

	if file.URL == "" {
		return nil, errors.New("no URL given: pass one as an argument or set url in the configuration file")
	}
	return file, file.Validate()
}

func runHuntCmd(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	file, err := buildHuntFile(cmd, args)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	failOnError, _ := cmd.Flags().GetBool("fail-on-error")
	save, _ := cmd.Flags().GetBool("save")
	logURLs, _ := cmd.Flags().GetBool("log-urls")

	out := newPrinter(cmd.OutOrStdout(), jsonOutput)
	var logTo io.Writer
	if logURLs {
		logTo = cmd.ErrOrStderr()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var result summary
	if save {
		result, err = runSavedHunt(ctx, cmd, file, logTo, out)
	} else {
		result, err = runHunt(ctx, file, config.Options{LogTo: logTo, Logger: logger}, out)
	}
	result.print(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if failOnError && result.Errors > 0 {
		return errFindings
	}
	return nil
}

// runHunt drains a hunt, printing each event. An interrupt closes the hunt,
// which ends it normally.
func runHunt(ctx context.Context, file *config.File, opts config.Options, out *printer) (summary, error) {
	cfg, err := file.HuntConfig(opts)
	if err != nil {
		return summary{}, err
	}

	hunt := hounds.Release(cfg)
	defer hunt.Close()
	go func() {
		<-ctx.Done()
		hunt.Close()
	}()

	var s summary
	err = hunt.Drain(context.Background(), func(ev hounds.Event) error {
		f := findingFromEvent(ev)
		s.add(f)
		return out.finding(f)
	})
	s.Visited = hunt.Visited()
	s.Interrupted = ctx.Err() != nil
	return s, err
}

// runSavedHunt runs the hunt through the app so that it is recorded.
func runSavedHunt(ctx context.Context, cmd *cobra.Command, file *config.File, logTo io.Writer, out *printer) (summary, error) {
	logger, err := newLogger(cmd)
	if err != nil {
		return summary{}, err
	}
	emitter := &printingEmitter{out: out, stderr: cmd.ErrOrStderr()}
	a, cleanup, err := openApp(cmd, logger, emitter)
	if err != nil {
		return summary{}, err
	}
	defer cleanup()

	info, err := a.StartHuntFromFile(file, config.Options{LogTo: logTo})
	if err != nil {
		return summary{}, err
	}
	go func() {
		<-ctx.Done()
		a.StopHuntByID(info.ID)
	}()
	if err := a.WaitForHunt(context.Background(), info.ID); err != nil {
		return summary{}, err
	}

	result, err := a.GetHunt(info.ID, store.FindingFilter{Limit: 1})
	if err != nil {
		return summary{}, err
	}
	h := result.HuntInfo
	s := summary{
		HuntID:      h.ID,
		Visited:     h.PagesVisited,
		Errors:      h.ErrorCount,
		Console:     h.ConsoleCount,
		Interrupted: h.State == store.HuntStateStopped,
	}
	if h.State == store.HuntStateFailed {
		return s, errors.New(h.Error)
	}
	return s, nil
}

// printingEmitter prints the findings of a recorded hunt as they arrive.
type printingEmitter struct {
	out    *printer
	stderr io.Writer
}

func (e *printingEmitter) Emit(eventType app.EventType, data interface{}) {
	switch eventType {
	case app.EventHuntStarted:
		if info, ok := data.(types.HuntInfo); ok {
			fmt.Fprintf(e.stderr, "Hunt %s started for %s\n", info.ID, info.SeedURL)
		}
	case app.EventHuntFinding:
		if ev, ok := data.(app.FindingEvent); ok {
			if f, ok := ev.Finding.(types.FindingInfo); ok {
				e.out.finding(f)
			}
		}
	}
}
