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

	"github.com/spf13/cobra"

	"github.com/nao1215/mediclaim/internal/client"
	"github.com/nao1215/mediclaim/internal/config"
	"github.com/nao1215/mediclaim/internal/metrics"
	"github.com/nao1215/mediclaim/internal/model"
	"github.com/nao1215/mediclaim/internal/preflight"
	"github.com/nao1215/mediclaim/internal/report"
	"github.com/nao1215/mediclaim/internal/upload"
)

// errAnalysisFailed is returned after a failure has been rendered, so the
// process exits non-zero.
var errAnalysisFailed = errors.New("analysis failed")

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <document>",
		Short: "Analyze a discharge document",
		Long: `Analyze uploads a discharge summary or discharge bill to the analysis
service and prints the result.

Accepted documents are PDF, JPG and PNG files of at most 10MB. The media
type is taken from the file extension.

Before uploading, JPEG and PNG scans are checked for a resolution below
150 DPI and for EXIF metadata that identifies a location, device or person.
These hints never block the upload; use --skip-preflight to turn them off.

Examples:
  # Analyze a PDF discharge summary
  mediclaim analyze discharge-summary.pdf

  # Use a remote service
  mediclaim analyze --api-url https://claims.example.com scan.jpg

  # Save a Markdown report while printing the text report
  mediclaim analyze --markdown -o reports/claim.md discharge.pdf

  # Output JSON and record Prometheus metrics
  mediclaim analyze --json --metrics discharge.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyzeCmd,
	}

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// Run behavior flags
	cmd.Flags().Bool("skip-preflight", false,
		"Skip the scan resolution and metadata hints")
	cmd.Flags().Bool("no-progress", false,
		"Do not draw the progress bar")
	cmd.Flags().Bool("metrics", false,
		"Write Prometheus metrics to the default state directory")
	cmd.Flags().String("metrics-file", "",
		"Write Prometheus metrics to the specified textfile")

	return cmd
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildAnalyzeConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cfg)

	noProgress, err := cmd.Flags().GetBool("no-progress")
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runAnalyze(ctx, cmd, cfg, logger, !noProgress)
}

// buildAnalyzeConfig layers the analyze flags over loadConfig.
func buildAnalyzeConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()

	// The report format flags replace report_format from the file.
	if flags.Changed("json") || flags.Changed("markdown") {
		if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
			return nil, err
		}
		if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
			return nil, err
		}
	}

	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.SkipPreflight, err = flags.GetBool("skip-preflight"); err != nil {
		return nil, err
	}

	if flags.Changed("metrics-file") {
		if cfg.MetricsFile, err = flags.GetString("metrics-file"); err != nil {
			return nil, err
		}
	}
	enableMetrics, err := flags.GetBool("metrics")
	if err != nil {
		return nil, err
	}
	if enableMetrics && cfg.MetricsFile == "" {
		cfg.MetricsFile = metrics.DefaultPath()
	}

	cfg.DocumentPath = args[0]
	return cfg, nil
}

// runAnalyze runs one analysis and renders its outcome.
func runAnalyze(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, showProgress bool) error {
	doc, err := model.LoadDocument(cfg.DocumentPath)
	if err != nil {
		return err
	}

	recorder := metrics.NewRecorder()
	defer writeMetrics(cfg, recorder, logger)

	if !cfg.SkipPreflight {
		reportHints(cmd.ErrOrStderr(), preflight.Check(doc), recorder, logger)
	}

	c, err := client.New(cfg, client.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	opts := []upload.Option{
		upload.WithLogger(logger),
		upload.WithObserver(recorder),
		upload.WithProgress(cfg.ProgressInterval, cfg.ProgressStep, cfg.ProgressCeiling),
	}
	if showProgress && isTerminal(cmd.ErrOrStderr()) {
		opts = append(opts, upload.WithObserver(newProgressPrinter(cmd.ErrOrStderr())))
	}
	controller := upload.NewController(c, opts...)

	logger.Info("starting analysis",
		"document", doc.Name,
		"media_type", string(doc.MediaType),
		"size", doc.Size,
		"api_url", c.BaseURL(),
	)

	writer, closeWriter, err := newReportWriter(cmd.OutOrStdout(), cfg, report.NewSource(doc))
	if err != nil {
		return err
	}
	defer closeWriter()

	result, err := controller.Analyze(ctx, doc)
	if err != nil {
		failure := model.AsAnalysisError(err)
		if _, werr := writer.WriteFailure(failure); werr != nil {
			logger.Error("failed to write report", "error", werr)
		}
		return fmt.Errorf("%w: %s", errAnalysisFailed, failure.Kind)
	}

	recorder.RecordResult(result)
	if _, err := writer.Write(result); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if cfg.ReportFile != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", cfg.ReportFile)
	}
	return nil
}

// reportHints prints preflight advisories to w.
func reportHints(w io.Writer, r preflight.Report, recorder *metrics.Recorder, logger *slog.Logger) {
	for _, h := range r.Hints {
		recorder.RecordHint(h.Code)
		logger.Debug("preflight hint", "code", h.Code, "dpi", r.DPI)
		fmt.Fprintf(w, "Hint: %s\n", h.Message)
	}
}

// newReportWriter picks the writer for the configured format.
//
// Without --output the chosen format goes to out. With --output the chosen
// format goes to the file, and out still gets the text report unless text
// was the chosen format.
func newReportWriter(out io.Writer, cfg *config.Config, source report.Source) (report.Writer, func(), error) {
	if cfg.ReportFile == "" {
		return formatWriter(out, cfg, source), func() {}, nil
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports contain patient data and should only be readable by the owner.
	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	closeFile := func() { _ = f.Close() } //nolint:errcheck // written data was already reported

	fileWriter := formatWriter(f, cfg, source)
	if !cfg.JSONReport && !cfg.MarkdownReport {
		return fileWriter, closeFile, nil
	}
	terminal := report.NewSimpleWriter(out, report.WithSource(source), report.WithVerbose(cfg.Verbose))
	return report.NewMultiWriter(terminal, fileWriter), closeFile, nil
}

func formatWriter(w io.Writer, cfg *config.Config, source report.Source) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewFullJSONWriter(w, getVersion(), source, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(w, report.WithMarkdownSource(source))
	default:
		return report.NewSimpleWriter(w, report.WithSource(source), report.WithVerbose(cfg.Verbose))
	}
}

// writeMetrics writes the metrics textfile when one is configured.
func writeMetrics(cfg *config.Config, recorder *metrics.Recorder, logger *slog.Logger) {
	if cfg.MetricsFile == "" {
		return
	}
	path, err := recorder.WriteFile(cfg.MetricsFile)
	if err != nil {
		logger.Warn("failed to write metrics", "path", cfg.MetricsFile, "error", err)
		return
	}
	logger.Debug("metrics written", "path", path)
}
