package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/webpos/posdash/cmd/posdash/cli"
	"github.com/webpos/posdash/internal/app"
	"github.com/webpos/posdash/jobs"
)

const usage = `usage:
  posdash                          serve the dashboard API
  posdash report [-format csv|json] [-source client|server]
  posdash jobs trigger [-invalidate]
  posdash jobs stats`

// runCommand dispatches a maintenance subcommand and returns the exit code.
func runCommand(ctx context.Context, cfg *app.Config, reports cli.ReportSource, args []string) int {
	switch args[0] {
	case "report":
		fs := flag.NewFlagSet("report", flag.ContinueOnError)
		format := fs.String("format", "csv", "output format: csv or json")
		source := fs.String("source", "client", "report source: client or server")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		return cli.NewReportCLI(reports).ReportCommand(ctx, cli.ReportOptions{Format: *format, Source: *source})
	case "jobs":
		return runJobs(ctx, cfg, args[1:])
	default:
		fmt.Fprintln(os.Stderr, usage)
		return 2
	}
}

func runJobs(ctx context.Context, cfg *app.Config, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, usage)
		return 2
	}
	jobsCLI := cli.NewJobsCLI(cfg.RedisAddr)
	defer func() { _ = jobsCLI.Close() }()

	switch args[0] {
	case "trigger":
		fs := flag.NewFlagSet("jobs trigger", flag.ContinueOnError)
		invalidate := fs.Bool("invalidate", false, "bump the analytics cache version first")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		info, err := jobsCLI.Trigger(ctx, jobs.TaskAnalyticsWarmup, *invalidate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "jobs trigger: %v\n", err)
			return 1
		}
		fmt.Printf("enqueued %s as %s\n", info.Type, info.ID)
		return 0
	case "stats":
		stats, err := jobsCLI.InspectQueue(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "jobs stats: %v\n", err)
			return 1
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(stats); err != nil {
			return 1
		}
		return 0
	default:
		fmt.Fprintln(os.Stderr, usage)
		return 2
	}
}
