package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/artic-report/internal/batch"
	"github.com/Sternrassler/artic-report/internal/config"
	"github.com/Sternrassler/artic-report/pkg/client"
	"github.com/Sternrassler/artic-report/pkg/logging"
	"github.com/Sternrassler/artic-report/pkg/mail"
	"github.com/Sternrassler/artic-report/pkg/render"
	"github.com/Sternrassler/artic-report/pkg/report"
)

var (
	flagQueries    string
	flagSettings   string
	flagOut        string
	flagDryRun     bool
	flagMaxRuntime int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process every report in the query file",
	RunE:  runBatch,
}

func init() {
	runCmd.Flags().StringVar(&flagQueries, "config", "config/queries.yml", "Path to the YAML query file")
	runCmd.Flags().StringVar(&flagSettings, "settings", "", "Optional settings file (environment is used otherwise)")
	runCmd.Flags().StringVar(&flagOut, "out", "out", "Output directory for PDFs/JSON/logs")
	runCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Generate artifacts but skip email sending")
	runCmd.Flags().IntVar(&flagMaxRuntime, "max-runtime", 0, "Maximum runtime in seconds (overrides ARTIC_MAX_RUNTIME_SECONDS)")

	rootCmd.AddCommand(runCmd)
}

func runBatch(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagSettings)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger, logFile, err := logging.SetupWithFile(logging.Config{
		Level:  logging.LogLevel(cfg.Log.Level),
		Pretty: cfg.Log.Pretty,
		Output: os.Stderr,
	}, flagOut)
	if err != nil {
		return err
	}
	defer logFile.Close()

	specs, err := batch.LoadQueries(flagQueries)
	if err != nil {
		return err
	}

	clientCfg := cfg.ClientConfig()
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		pingCtx, cancel := context.WithTimeout(cmd.Context(), 3*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Warn().Err(err).Str("addr", cfg.Redis.Addr).
				Msg("Redis unreachable, running without response cache")
			_ = rdb.Close()
		} else {
			clientCfg.Redis = rdb
			defer rdb.Close()
		}
	}

	apiClient, err := client.New(clientCfg)
	if err != nil {
		return fmt.Errorf("create API client: %w", err)
	}

	engine := render.NewChromeEngine(render.ChromeConfig{})
	defer engine.Close()

	var mailer batch.Mailer
	if !flagDryRun {
		sender, err := mail.NewSender(cfg.MailConfig())
		if err != nil {
			return fmt.Errorf("smtp configuration: %w", err)
		}
		mailer = sender
	}

	runner := batch.NewRunner(report.NewFetcher(apiClient), engine, mailer, flagOut)
	runner.DryRun = flagDryRun
	runner.MaxRuntime = cfg.MaxRuntime()
	if flagMaxRuntime > 0 {
		runner.MaxRuntime = time.Duration(flagMaxRuntime) * time.Second
	}

	summary, err := runner.Run(cmd.Context(), specs)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Summary: ok=%d failed=%d dry_run=%v\n",
		summary.ReportsOK, summary.ReportsFailed, summary.DryRun)

	if summary.ReportsFailed > 0 {
		return fmt.Errorf("%d of %d reports failed", summary.ReportsFailed, summary.ReportsTotal)
	}
	return nil
}
