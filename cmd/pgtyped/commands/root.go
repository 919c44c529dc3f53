package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/golergka/pgtyped/config"
	"github.com/golergka/pgtyped/errors"
	"github.com/golergka/pgtyped/logger"
	"github.com/golergka/pgtyped/pulse"
	"github.com/golergka/pgtyped/typegen"
	"github.com/golergka/pgtyped/watch"
	"github.com/golergka/pgtyped/worker"
)

const configRequiredMessage = "Config file required. See help -h for details.\nExiting."

// RootCmd runs the generator
var RootCmd = &cobra.Command{
	Use:   "pgtyped",
	Short: "Generate TypeScript types for SQL queries",
	Long: `pgtyped - Type-safe TypeScript interfaces for PostgreSQL queries.

Reads queries from .sql files (sql mode) or sql tagged templates in
TypeScript sources (ts mode), asks a live database for their parameter and
result types, and writes a TypeScript declaration file next to each source.

Examples:
  pgtyped -c config.json          # Generate once
  pgtyped -c config.json -w       # Regenerate as files change
  pgtyped -c config.json -vv      # Debug logging`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		logger.Debugw("Logger initialized", "level", logger.LevelName(verbosity), "json", jsonLogs)
		return nil
	},
	RunE: runGenerate,
}

func init() {
	RootCmd.Flags().StringP("config", "c", "", "Config file path (JSON, YAML or TOML)")
	RootCmd.Flags().BoolP("watch", "w", false, "Watch source files and regenerate on change")
	RootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	RootCmd.PersistentFlags().Bool("json-logs", false, "Write logs as JSON")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		fmt.Fprintln(cmd.OutOrStdout(), configRequiredMessage)
		return nil
	}
	watchMode, _ := cmd.Flags().GetBool("watch")

	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return errors.Wrap(err, "Failed to parse config file")
	}
	registry, err := typegen.NewRegistry(cfg.TypesOverrides)
	if err != nil {
		return errors.Wrap(err, "Failed to parse config file")
	}
	rootDir, err := os.Getwd()
	if err != nil {
		return errors.Wrap(err, "failed to get working directory")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.ComponentLogger("pgtyped")
	log.Debugw("Loaded config",
		"config", configPath,
		"src_dir", cfg.SrcDir,
		"transforms", len(cfg.Transforms),
		"db", cfg.DB.Redacted())

	emitter := newSummaryEmitter()
	poolCfg := pulse.PoolConfig{
		Size:    cfg.Parallelism(runtime.NumCPU()),
		Factory: postgresFactory(cfg, registry, rootDir, log),
	}
	fp, err := pulse.NewFileProcessor(ctx, poolCfg, cfg.FailOnError, emitter, log)
	if err != nil {
		return err
	}
	defer fp.Close()

	start := time.Now()
	if watchMode {
		err = watch.NewController(cfg, fp, log).Run(ctx)
		if err != nil {
			printSummary(fp.Stats(), emitter, time.Since(start), err)
		}
		return err
	}

	err = watch.RunBatch(ctx, cfg, fp, log)
	printSummary(fp.Stats(), emitter, time.Since(start), err)
	return err
}

// postgresFactory gives each pool worker its own database connection
func postgresFactory(cfg *config.Config, registry *typegen.Registry, rootDir string, log *zap.SugaredLogger) pulse.WorkerFactory {
	return func(ctx context.Context, id int) (pulse.FileWorker, error) {
		return worker.NewPostgres(ctx, cfg, registry, rootDir, log.Named(fmt.Sprintf("worker-%d", id)))
	}
}
