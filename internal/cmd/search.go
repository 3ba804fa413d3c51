package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/harrison/stemfind/internal/config"
	"github.com/harrison/stemfind/internal/display"
	"github.com/harrison/stemfind/internal/logger"
	"github.com/harrison/stemfind/internal/metrics"
	"github.com/harrison/stemfind/internal/report"
	"github.com/harrison/stemfind/internal/traversal"
)

// searchTree runs the traversal; tests replace it to inject listing failures.
var searchTree = traversal.Search

func runSearch(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		printUsage(cmd)
		return nil
	}
	term := args[0]

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	runID := uuid.NewString()

	logLevel := cfg.LogLevel
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logLevel = "debug"
	}

	consoleLog := logger.NewConsoleLogger(cmd.ErrOrStderr(), logLevel)
	loggers := []logger.Logger{consoleLog}
	if cfg.LogDir != "" {
		fileLog, err := logger.NewFileLogger(cfg.LogDir, logLevel, runID)
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		defer fileLog.Close()
		loggers = append(loggers, fileLog)
	}
	log := logger.NewMultiLogger(loggers...)

	root, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to determine current directory: %w", err)
	}

	out := cmd.OutOrStdout()
	display.Banner(out, root)
	printer := display.NewMatchPrinter(out, term, display.ShouldHighlight(out, cfg.Color))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.LogDebug(fmt.Sprintf("Run %s: mode=%s workers=%d follow_symlinks=%t", runID, cfg.Mode, cfg.Workers, cfg.FollowSymlinks))

	started := time.Now()
	stats, searchErr := searchTree(ctx, root, term, traversal.Options{
		Mode:             traversal.Mode(cfg.Mode),
		Workers:          cfg.Workers,
		NoFollowSymlinks: !cfg.FollowSymlinks,
		OnMatch:          printer.Print,
		OnListError: func(dir string, err error) {
			log.LogError(fmt.Sprintf("Error searching directory %s: %v", dir, err))
		},
	})
	elapsed := time.Since(started)
	snap := stats.Snapshot()

	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(searchErr, ctxErr) {
		searchErr = fmt.Errorf("search interrupted: %w", searchErr)
	}

	log.LogDebug(fmt.Sprintf("Search finished in %s: %d directories, %d files, %d matches, %d unreadable",
		elapsed.Round(time.Millisecond), snap.DirectoriesListed, snap.FilesExamined, snap.Matches, snap.ListErrors))

	if cfg.Summary {
		errOut := cmd.ErrOrStderr()
		display.Summary{
			Snapshot: snap,
			Duration: elapsed,
			Color:    display.ShouldHighlight(errOut, cfg.Color),
		}.Display(errOut)
	}

	if cfg.ReportPath != "" {
		r := report.Build(report.Run{
			ID:        runID,
			Root:      root,
			Term:      term,
			Mode:      cfg.Mode,
			Workers:   cfg.Workers,
			StartedAt: started,
		}, snap, elapsed, searchErr)
		if err := report.Write(cfg.ReportPath, r); err != nil {
			return err
		}
		log.LogDebug(fmt.Sprintf("Report written to %s", cfg.ReportPath))
	}

	if cfg.MetricsPath != "" {
		collector := metrics.NewCollector()
		collector.Record(snap, elapsed)
		if err := collector.WriteTextfile(cfg.MetricsPath); err != nil {
			return err
		}
		log.LogDebug(fmt.Sprintf("Metrics written to %s", cfg.MetricsPath))
	}

	return searchErr
}

// loadConfig reads the config file, applies flags that were set explicitly,
// and validates the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config path: %w", err)
		}
		configPath = p
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg.MergeWithFlags(flagOverrides(cmd))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// flagOverrides collects only the flags the user actually passed, so unset
// flags never mask config file values.
func flagOverrides(cmd *cobra.Command) config.Overrides {
	var o config.Overrides
	flags := cmd.Flags()

	if flags.Changed("sequential") {
		if seq, _ := flags.GetBool("sequential"); seq {
			mode := config.ModeSequential
			o.Mode = &mode
		}
	}
	if flags.Changed("workers") {
		workers, _ := flags.GetInt("workers")
		o.Workers = &workers
	}
	if flags.Changed("log-level") {
		level, _ := flags.GetString("log-level")
		o.LogLevel = &level
	}
	if flags.Changed("log-dir") {
		dir, _ := flags.GetString("log-dir")
		o.LogDir = &dir
	}
	if flags.Changed("no-follow-symlinks") {
		noFollow, _ := flags.GetBool("no-follow-symlinks")
		follow := !noFollow
		o.FollowSymlinks = &follow
	}
	if flags.Changed("no-color") {
		if noColor, _ := flags.GetBool("no-color"); noColor {
			never := config.ColorNever
			o.Color = &never
		}
	}
	if flags.Changed("summary") {
		summary, _ := flags.GetBool("summary")
		o.Summary = &summary
	}
	if flags.Changed("report") {
		path, _ := flags.GetString("report")
		o.ReportPath = &path
	}
	if flags.Changed("metrics-file") {
		path, _ := flags.GetString("metrics-file")
		o.MetricsPath = &path
	}

	return o
}
