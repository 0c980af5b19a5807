/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/valpere/docsmith/internal"
	"github.com/valpere/docsmith/internal/agent"
	"github.com/valpere/docsmith/internal/config"
	"github.com/valpere/docsmith/internal/pipeline"
	"github.com/valpere/docsmith/internal/store"
	"github.com/valpere/docsmith/internal/workspace"
)

// flowOptions carries the flags shared by the check/leader/design commands.
// Each command declares its own flag variables and hands them over here.
type flowOptions struct {
	configPath string
	dir        string
	dbPath     string
	logFile    string
	noJournal  bool
}

// buildLogger returns a text logger on stderr, teed into logFile when set.
// The returned closer is a no-op for the stderr-only case.
func buildLogger(logFile string) (*slog.Logger, func(), error) {
	var w io.Writer = os.Stderr
	closer := func() {}

	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = io.MultiWriter(os.Stderr, f)
		closer = func() { f.Close() }
	}

	return slog.New(slog.NewTextHandler(w, nil)), closer, nil
}

// runFlow performs the shared setup and teardown around one pipeline flow:
// logger, config, run journal, OpenCode client check, run record lifecycle.
func runFlow(kind string, opts flowOptions, flow func(ctx context.Context, p *pipeline.Pipeline) error) error {
	log, closeLog, err := buildLogger(opts.logFile)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := config.Load(opts.configPath, log)
	if err != nil {
		return err
	}

	ctx := context.Background()
	runID := uuid.New().String()

	var db *store.Store
	var sink agent.CallLog
	if !opts.noJournal {
		dbPath := opts.dbPath
		if dbPath == "" {
			dbPath = cfg.Store.Path
		}
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
		db, err = store.New(dbPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		if err := db.CreateRun(ctx, runID, kind, opts.dir); err != nil {
			return fmt.Errorf("failed to create run record: %w", err)
		}
		sink = db.CallLog(runID)
		fmt.Fprintf(os.Stderr, "Run ID: %s (use \"docsmith runs show %s\" to inspect)\n", runID, runID)
	}

	client := agent.NewOpenCodeClient(cfg.OpenCode.BaseURL, cfg.OpenCode.Timeout)
	if err := client.IsAvailable(ctx); err != nil {
		if db != nil {
			_ = db.FinishRun(ctx, runID, internal.StatusFailed)
		}
		return fmt.Errorf("opencode server check failed (is \"opencode serve\" running at %s?): %w", cfg.OpenCode.BaseURL, err)
	}

	rec := agent.NewRecorder(client, log, sink, cfg.Limits.MaxPromptTokens)
	p, err := pipeline.New(workspace.New(opts.dir), rec, db, cfg, runID, log)
	if err != nil {
		if db != nil {
			_ = db.FinishRun(ctx, runID, internal.StatusFailed)
		}
		return err
	}

	started := time.Now()
	flowErr := flow(ctx, p)

	status := internal.StatusCompleted
	if flowErr != nil {
		status = internal.StatusFailed
	}
	if db != nil {
		if err := db.FinishRun(ctx, runID, status); err != nil {
			log.Warn("failed to finish run record", "run", runID, "error", err)
		}
	}
	if flowErr != nil {
		return flowErr
	}

	fmt.Printf("%s flow completed in %s (%d agent calls)\n",
		kind, time.Since(started).Round(time.Second), rec.Calls())
	return nil
}

// addFlowFlags registers the shared flow flags on one command into opts.
func addFlowFlags(cmd *cobra.Command, opts *flowOptions) {
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to agents_config.yaml (default: ./agents_config.yaml)")
	cmd.Flags().StringVarP(&opts.dir, "dir", "d", ".", "Working directory holding requirement/ and the generated documents")
	cmd.Flags().StringVar(&opts.dbPath, "db", "", "Database path for the run journal (default: store.path from config)")
	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "Also write logs to this file")
	cmd.Flags().BoolVar(&opts.noJournal, "no-journal", false, "Disable the run journal")
}
