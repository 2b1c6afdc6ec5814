package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nao1215/privacyguard/internal/config"
	"github.com/nao1215/privacyguard/internal/database"
	"github.com/nao1215/privacyguard/internal/log"
	"github.com/nao1215/privacyguard/internal/model"
	"github.com/nao1215/privacyguard/internal/notify"
	"github.com/nao1215/privacyguard/internal/orchestrator"
	"github.com/nao1215/privacyguard/internal/probe"
	"github.com/nao1215/privacyguard/internal/report"
)

// errScoreBelowThreshold is returned when --fail-under is set and the run
// scored lower.
var errScoreBelowThreshold = errors.New("security score below threshold")

// NewDetectCmd creates the detect command.
func NewDetectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Run every privacy check and print a scored report",
		Long: `Detect runs the six privacy probes concurrently, scores each category
and prints a report with findings and recommendations.

A probe that fails does not abort the run: its category receives a
neutral fallback value and the report is marked as partial.

Examples:
  # Run all checks with defaults
  privacyguard detect

  # Probe through a SOCKS5 proxy (Tor, VPN client)
  privacyguard detect --proxy 127.0.0.1:9050

  # Include fingerprint and browser signals exported from the browser
  privacyguard detect --signals signals.json

  # Write a Markdown report without saving the run to history
  privacyguard detect --markdown -o report.md --no-save

  # Save a JSON report and still print the summary
  privacyguard detect --json -o run.json --tee

  # Fail (exit 1) when the score is below 80, for CI checks
  privacyguard detect --fail-under 80`,
		Args: cobra.NoArgs,
		RunE: runDetectCmd,
	}

	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .privacyguard in current or home directory)")

	// Probe flags
	cmd.Flags().StringP("proxy", "x", "",
		"SOCKS5 proxy for HTTP probes (e.g., 127.0.0.1:9050)")
	cmd.Flags().StringP("signals", "s", "",
		"Browser signals JSON file for fingerprint, browser and WebRTC checks")
	cmd.Flags().DurationP("timeout", "t", config.DefaultProbeTimeout,
		"Timeout for each probe")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-color", false,
		"Disable colored output")
	cmd.Flags().Bool("tee", false,
		"Also print the report to stdout when writing to --output")
	cmd.Flags().Bool("log-json", false,
		"Write log messages to stderr as JSON")

	// History flags
	cmd.Flags().Bool("no-save", false,
		"Do not store this run in history")
	cmd.Flags().StringP("label", "l", "",
		"Label to attach to the stored run")

	cmd.Flags().Int("fail-under", 0,
		"Exit with an error when the security score is below this value")

	return cmd
}

// detectOptions are the command options that are not part of Config.
type detectOptions struct {
	label     string
	failUnder int
	noColor   bool
	tee       bool
	logJSON   bool
}

// runDetectCmd executes the detect command.
func runDetectCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	opts, err := buildDetectOptions(cmd)
	if err != nil {
		return err
	}

	logger := log.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)
	if opts.logJSON {
		logger = log.NewSecureJSONLogger(cmd.ErrOrStderr(), cfg.Verbose)
	}
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	suite, err := probe.NewSuite(cfg, probe.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create probes: %w", err)
	}

	if err := suite.Transport().CheckProxy(ctx); err != nil {
		return fmt.Errorf("proxy check failed: %w (make sure a SOCKS5 proxy is running at %s)", err, cfg.ProxyAddress)
	}
	if cfg.ProxyAddress != "" {
		logger.Info("SOCKS5 proxy verified")
	}

	return runDetect(ctx, cfg, suite, opts, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// loadConfig creates a Config from defaults and the configuration file.
// An explicitly named config file must exist; a missing default file is
// not an error.
func loadConfig(configPath string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.ConfigFilePath = configPath

	if path := config.FindConfigFile(configPath); path != "" {
		cf, err := config.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		cf.Apply(cfg)
	} else if configPath != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, configPath)
	}
	return cfg, nil
}

// buildConfig creates a Config from defaults, the configuration file and
// cobra command flags, in that order. Flags override the file only when
// they were set explicitly.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	flags := cmd.Flags()

	if flags.Changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("signals") {
		if cfg.SignalsFile, err = flags.GetString("signals"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout") {
		if cfg.ProbeTimeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("json") || flags.Changed("markdown") {
		if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
			return nil, err
		}
		if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("output") {
		if cfg.ReportFile, err = flags.GetString("output"); err != nil {
			return nil, err
		}
	}

	noSave, err := flags.GetBool("no-save")
	if err != nil {
		return nil, err
	}
	if noSave {
		cfg.SaveToDB = false
	}

	return cfg, nil
}

// buildDetectOptions reads the flags that only affect this command.
func buildDetectOptions(cmd *cobra.Command) (detectOptions, error) {
	var opts detectOptions
	var err error

	if opts.label, err = cmd.Flags().GetString("label"); err != nil {
		return opts, err
	}
	if opts.failUnder, err = cmd.Flags().GetInt("fail-under"); err != nil {
		return opts, err
	}
	if opts.noColor, err = cmd.Flags().GetBool("no-color"); err != nil {
		return opts, err
	}
	if opts.tee, err = cmd.Flags().GetBool("tee"); err != nil {
		return opts, err
	}
	if opts.logJSON, err = cmd.Flags().GetBool("log-json"); err != nil {
		return opts, err
	}
	if opts.failUnder < 0 || opts.failUnder > 100 {
		return opts, fmt.Errorf("--fail-under must be between 0 and 100, got %d", opts.failUnder)
	}
	return opts, nil
}

// labeledSink stores runs in history with a fixed label.
type labeledSink struct {
	db    *database.HistoryDB
	label string
}

// SaveResults implements orchestrator.HistorySink.
func (s labeledSink) SaveResults(ctx context.Context, results *model.DetectionResults) error {
	_, err := s.db.Save(ctx, results, s.label)
	return err
}

// runDetect runs one detection with prober and writes the report.
func runDetect(ctx context.Context, cfg *config.Config, prober orchestrator.Prober, opts detectOptions, logger *slog.Logger, stdout, stderr io.Writer) error {
	colored := !opts.noColor && !color.NoColor

	orchOpts := []orchestrator.Option{
		orchestrator.WithLogger(logger),
		orchestrator.WithNotifier(notify.NewConsole(stderr, notify.WithColor(colored))),
	}

	if cfg.SaveToDB {
		db, err := database.Open(cfg.DBDir, database.Options{
			CreateIfNotExists: true,
			EnableWAL:         true,
			Limit:             cfg.HistoryLimit,
		})
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer db.Close()
		orchOpts = append(orchOpts, orchestrator.WithHistorySink(labeledSink{db: db, label: opts.label}))
		logger.Debug("history enabled", "dir", cfg.DBDir, "limit", cfg.HistoryLimit)
	}

	o := orchestrator.New(prober, orchOpts...)

	progress := notify.NewProgress(stderr, colored)
	unsubscribe := o.Subscribe(progress.Observe)
	defer unsubscribe()

	results, err := o.Detect(ctx)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}
	fmt.Fprintln(stderr)

	if err := outputReport(cfg, results, stdout, colored, opts.tee); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if opts.failUnder > 0 && results.Score.Total < opts.failUnder {
		return fmt.Errorf("%w: %d < %d", errScoreBelowThreshold, results.Score.Total, opts.failUnder)
	}
	return nil
}

// reportFormat selects a report writer.
type reportFormat string

const (
	formatText     reportFormat = "text"
	formatMarkdown reportFormat = "markdown"
	formatJSON     reportFormat = "json"
)

// formatOf returns the report format selected by cfg.
func formatOf(cfg *config.Config) reportFormat {
	switch {
	case cfg.JSONReport:
		return formatJSON
	case cfg.MarkdownReport:
		return formatMarkdown
	default:
		return formatText
	}
}

// newReportWriter creates the writer for format.
func newReportWriter(output io.Writer, format reportFormat, verbose, colored bool) report.Writer {
	switch format {
	case formatJSON:
		return report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case formatMarkdown:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output,
			report.WithVerbose(verbose),
			report.WithColor(colored),
		)
	}
}

// outputReport writes the report in the configured format to the report
// file, or to stdout when no file is configured. With tee, a report file
// is accompanied by a text report on stdout.
func outputReport(cfg *config.Config, results *model.DetectionResults, stdout io.Writer, colored, tee bool) error {
	if cfg.ReportFile == "" {
		_, err := newReportWriter(stdout, formatOf(cfg), cfg.Verbose, colored).Write(results)
		return err
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports contain addresses and location data; owner-only permissions.
	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	var w report.Writer = newReportWriter(f, formatOf(cfg), cfg.Verbose, false)
	if tee {
		w = report.NewMultiWriter(w, newReportWriter(stdout, formatText, cfg.Verbose, colored))
	}
	_, err = w.Write(results)
	return err
}
