package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/taskmesh/taskmesh/internal/config"
	"github.com/taskmesh/taskmesh/internal/ids"
	"github.com/taskmesh/taskmesh/internal/logging"
	"github.com/taskmesh/taskmesh/internal/storage/sqlite"
	"github.com/taskmesh/taskmesh/internal/taskerr"
	"github.com/taskmesh/taskmesh/internal/workspace"
)

var (
	jsonOutput bool
	actor      string
	dbPathFlag string

	ws     workspace.Workspace
	store  *sqlite.Store
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "tm",
	Short:         "taskmesh — a dependency-aware task tracker for parallel agent execution",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit machine-readable JSON instead of tables")
	rootCmd.PersistentFlags().StringVar(&actor, "actor", "", "identity recorded against mutations (defaults to TM_ACTOR / config)")
	rootCmd.PersistentFlags().StringVar(&dbPathFlag, "db", "", "path to the SQLite database (defaults to the discovered workspace)")

	rootCmd.AddCommand(
		initCmd,
		planCmd,
		taskCmd,
		depCmd,
		commentCmd,
		readyCmd,
		blockedCmd,
		statsCmd,
		doctorCmd,
		watchCmd,
	)
}

// Execute runs the root command, wiring config + workspace + store for every
// subcommand except `init` (which must run before a workspace exists).
func Execute() error {
	if err := config.Initialize(); err != nil {
		return err
	}
	rootCmd.PersistentPreRunE = persistentPreRun
	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if store != nil {
			if err := store.Close(); err != nil {
				if logger != nil {
					logger.Error("close store", "error", err)
				}
				return err
			}
		}
		return nil
	}
	return rootCmd.Execute()
}

func persistentPreRun(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "init" {
		return nil
	}

	if !cmd.Flags().Changed("json") {
		jsonOutput = config.GetBool("json")
	}
	if actor == "" {
		actor = config.GetString("actor")
	}

	logger = logging.New(logging.Options{
		Dir:        config.GetString("log.dir"),
		MaxSizeMB:  config.GetInt("log.max-size-mb"),
		MaxBackups: config.GetInt("log.max-backups"),
		Level:      config.GetString("log.level"),
		JSON:       jsonOutput,
	})

	w, err := workspace.Discover()
	if err != nil {
		return err
	}
	ws = w

	dbPath := ws.DBPath()
	if dbPathFlag != "" {
		dbPath = dbPathFlag
	} else if configured := config.GetString("db"); configured != "" {
		dbPath = configured
	}

	s, err := sqlite.Open(cmd.Context(), dbPath)
	if err != nil {
		logger.Error("open store", "path", dbPath, "error", err)
		return err
	}
	store = s
	logger.Debug("store opened", "path", dbPath, "command", cmd.Name())
	return nil
}

// resolveTask turns a CLI-supplied ID — either a bare internal row ID or a
// {slug}:{number} external identifier — into an internal task ID.
func resolveTask(ctx context.Context, raw string) (int64, error) {
	internalID, isInternal, slug, number, err := ids.ParseTaskID(raw)
	if err != nil {
		return 0, err
	}
	if isInternal {
		return internalID, nil
	}
	id, ok, err := store.ResolveByPlanAndNumber(ctx, slug, number)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, taskerr.Newf(taskerr.InvalidData, nil, "no such task %s", raw)
	}
	return id, nil
}
