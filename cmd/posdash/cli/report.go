// Package cli implements the posdash maintenance subcommands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/webpos/posdash/internal/analytics"
	"github.com/webpos/posdash/internal/analytics/export"
)

// ReportSource builds analytics reports.
type ReportSource interface {
	Snapshot(ctx context.Context) (analytics.Report, error)
	ServerReport(ctx context.Context) (analytics.Report, error)
}

// ReportOptions defines available flags for the report command.
type ReportOptions struct {
	Format string
	Source string
	Stdout io.Writer
	Stderr io.Writer
}

// ReportCLI prints analytics reports.
type ReportCLI struct {
	source ReportSource
}

// NewReportCLI wraps source.
func NewReportCLI(source ReportSource) *ReportCLI {
	return &ReportCLI{source: source}
}

// ReportCommand builds the report and writes it as CSV or JSON. It returns
// the process exit code.
func (c *ReportCLI) ReportCommand(ctx context.Context, opts ReportOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "json" {
		_, _ = fmt.Fprintf(opts.Stderr, "report: unsupported format %q (csv, json)\n", opts.Format)
		return 2
	}

	var (
		report analytics.Report
		err    error
	)
	switch strings.ToLower(strings.TrimSpace(opts.Source)) {
	case "", analytics.SourceClient:
		report, err = c.source.Snapshot(ctx)
	case analytics.SourceServer:
		report, err = c.source.ServerReport(ctx)
	default:
		_, _ = fmt.Fprintf(opts.Stderr, "report: unsupported source %q (client, server)\n", opts.Source)
		return 2
	}
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "report: %v\n", err)
		return 1
	}

	if format == "json" {
		enc := json.NewEncoder(opts.Stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(report)
	} else {
		err = export.WriteReportCSV(opts.Stdout, report)
	}
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "report: write: %v\n", err)
		return 1
	}
	return 0
}
