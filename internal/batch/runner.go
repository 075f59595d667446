package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/artic-report/pkg/logging"
	"github.com/Sternrassler/artic-report/pkg/render"
	"github.com/Sternrassler/artic-report/pkg/report"
)

// DataFetcher assembles the dataset for one report spec.
type DataFetcher interface {
	FetchReportData(ctx context.Context, spec report.Spec) (*report.Data, error)
}

// Mailer distributes finished report artifacts.
type Mailer interface {
	SendReport(ctx context.Context, spec report.Spec, pdfPath, jsonPath string) error
}

// Result records the outcome of one report.
type Result struct {
	Name   string `json:"name"`
	Count  int    `json:"count,omitempty"`
	JSON   string `json:"json,omitempty"`
	PDF    string `json:"pdf,omitempty"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Summary records the outcome of a whole batch run; it is written to
// summary.json in the output directory.
type Summary struct {
	GeneratedAt   string   `json:"generated_at"`
	DryRun        bool     `json:"dry_run"`
	ReportsTotal  int      `json:"reports_total"`
	ReportsOK     int      `json:"reports_ok"`
	ReportsFailed int      `json:"reports_failed"`
	Reports       []Result `json:"reports"`
}

// Runner processes reports strictly sequentially so one report's network
// usage or failure cannot interleave with another's.
type Runner struct {
	Fetcher DataFetcher
	PDF     render.Engine
	Mailer  Mailer

	// OutDir receives all artifacts (json, html, pdf, summary.json).
	OutDir string

	// DryRun generates artifacts but skips email sending.
	DryRun bool

	// MaxRuntime is the wall-clock budget, checked between reports
	// (0 = unlimited). A report in flight is never interrupted by it.
	MaxRuntime time.Duration

	logger zerolog.Logger
}

// NewRunner creates a Runner writing into outDir.
func NewRunner(fetcher DataFetcher, pdf render.Engine, mailer Mailer, outDir string) *Runner {
	return &Runner{
		Fetcher: fetcher,
		PDF:     pdf,
		Mailer:  mailer,
		OutDir:  outDir,
		logger:  logging.NewLogger("batch-runner"),
	}
}

// Run processes every spec in order, records per-report results, writes
// summary.json, and returns the summary. Per-report failures are isolated:
// they mark the report failed and the batch continues.
func (r *Runner) Run(ctx context.Context, specs []report.Spec) (*Summary, error) {
	if err := os.MkdirAll(r.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	start := time.Now()
	summary := &Summary{
		DryRun:       r.DryRun,
		ReportsTotal: len(specs),
	}

	for _, spec := range specs {
		res := r.processOne(ctx, spec)
		summary.Reports = append(summary.Reports, res)
		if res.Status == "ok" {
			summary.ReportsOK++
		} else {
			summary.ReportsFailed++
		}

		if r.MaxRuntime > 0 && time.Since(start) > r.MaxRuntime {
			r.logger.Error().
				Dur("max_runtime", r.MaxRuntime).
				Int("processed", len(summary.Reports)).
				Msg("Max runtime exceeded, aborting batch")
			break
		}
	}

	summary.GeneratedAt = UTCNow()
	if err := WriteJSON(filepath.Join(r.OutDir, "summary.json"), summary); err != nil {
		return summary, fmt.Errorf("write summary: %w", err)
	}
	return summary, nil
}

func (r *Runner) processOne(ctx context.Context, spec report.Spec) Result {
	spec = spec.Normalize()
	safe := SanitizeFilename(spec.Name)
	if safe == "" {
		safe = "report"
	}

	fail := func(err error) Result {
		r.logger.Error().Err(err).Str("report", spec.Name).Msg("Report failed")
		return Result{Name: spec.Name, Status: "failed", Error: err.Error()}
	}

	data, err := r.Fetcher.FetchReportData(ctx, spec)
	if err != nil {
		return fail(err)
	}

	jsonPath := filepath.Join(r.OutDir, safe+".json")
	if err := WriteJSON(jsonPath, data); err != nil {
		return fail(err)
	}

	htmlPath := filepath.Join(r.OutDir, safe+".html")
	htmlBytes, err := render.HTML(data, UTCNow())
	if err != nil {
		return fail(err)
	}
	if err := os.WriteFile(htmlPath, htmlBytes, 0o644); err != nil {
		return fail(fmt.Errorf("write html: %w", err))
	}

	pdfPath := filepath.Join(r.OutDir, safe+".pdf")
	if r.PDF != nil {
		if err := r.PDF.RenderPDF(ctx, htmlPath, pdfPath); err != nil {
			return fail(err)
		}
	}

	if !r.DryRun && r.Mailer != nil {
		if err := r.Mailer.SendReport(ctx, spec, pdfPath, jsonPath); err != nil {
			return fail(err)
		}
	}

	r.logger.Info().
		Str("report", spec.Name).
		Int("items", data.Count).
		Bool("dry_run", r.DryRun).
		Msg("Report done")

	return Result{
		Name:   spec.Name,
		Count:  data.Count,
		JSON:   safe + ".json",
		PDF:    safe + ".pdf",
		Status: "ok",
	}
}
