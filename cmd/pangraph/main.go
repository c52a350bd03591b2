package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/collaborativebioinformatics/Pangenome-and-Genomic-Cluster-Modeling/pkg/analysis"
	"github.com/collaborativebioinformatics/Pangenome-and-Genomic-Cluster-Modeling/pkg/config"
	"github.com/collaborativebioinformatics/Pangenome-and-Genomic-Cluster-Modeling/pkg/logging"
	"github.com/collaborativebioinformatics/Pangenome-and-Genomic-Cluster-Modeling/pkg/output"
	"github.com/collaborativebioinformatics/Pangenome-and-Genomic-Cluster-Modeling/pkg/watcher"
	"github.com/collaborativebioinformatics/Pangenome-and-Genomic-Cluster-Modeling/pkg/web"
)

// Exit codes
const (
	exitOK       = 0
	exitAnalysis = 1 // At least one graph could not be analyzed
	exitUsage    = 2
)

const usageText = `Usage: pangraph [flags] <graph.gfa[.gz]> [other.gfa[.gz]]

Parses one or two GFA graphs, prints their topology statistics and, for two
graphs, compares them.

Flags:
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func newFlagSet(stderr io.Writer) *pflag.FlagSet {
	f := pflag.NewFlagSet("pangraph", pflag.ContinueOnError)
	f.SetOutput(stderr)
	f.Usage = func() {
		fmt.Fprint(stderr, usageText)
		f.PrintDefaults()
	}

	f.String("config", "", "Config file (default ./"+config.DefaultFile+" when present)")
	f.StringP("output", "o", "", "Directory for comparison_report.txt and comparison_data.json")
	f.StringP("format", "f", config.FormatText, "Console format: text, json or yaml (yaml also writes comparison_data.yaml)")
	f.String("name1", "", "Display name of the first graph (default derived from its file name)")
	f.String("name2", "", "Display name of the second graph")
	f.Bool("web", false, "Serve the results over HTTP")
	f.Int("port", 8080, "Port for the web server (only used with --web)")
	f.Bool("watch", false, "Analyze again when an input file changes")
	f.Bool("structure", false, "Also count connected components and cycles (traverses the graph)")
	f.String("verbosity", "", "Log level: trace, debug, info, warn or error")
	f.CountP("verbose", "v", "Increase log verbosity (-v debug, -vv trace)")
	f.Bool("log_json", false, "Log as JSON")
	f.BoolP("quiet", "q", false, "Do not print the report to stdout")
	return f
}

// run is main without the process exit, so it can be tested.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := newFlagSet(stderr)
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	level := logging.ParseLevel(cfg.Verbosity, cfg.VerboseCnt)
	logging.SetOutput(stderr, level)
	if cfg.LogJSON {
		logging.SetJSONOutput(level)
	}

	paths := flags.Args()
	if len(paths) < 1 || len(paths) > 2 {
		flags.Usage()
		return exitUsage
	}
	inputs := []analysis.Input{{Name: cfg.Name1, Path: paths[0]}}
	if len(paths) == 2 {
		inputs = append(inputs, analysis.Input{Name: cfg.Name2, Path: paths[1]})
	}

	var (
		server    *web.Server
		publisher analysis.StatusPublisher
	)
	if cfg.WebMode {
		server = web.NewServer()
		publisher = server
	}
	runner := analysis.NewRunner(inputs, publisher, analysis.Options{Structure: cfg.Structure})

	group, ctx := errgroup.WithContext(ctx)
	if server != nil {
		// Serve while the first analysis runs; status arrives over SSE.
		group.Go(func() error { return server.Start(ctx, cfg.Port) })
	}

	outcome, runErr := runner.Run(ctx, "startup")
	if err := present(stdout, cfg, outcome); err != nil {
		logging.Error("failed to write report", "error", err)
		runErr = errors.Join(runErr, err)
	}

	if !cfg.WebMode && !cfg.Watch {
		if runErr != nil {
			logging.Error("analysis failed", "error", runErr)
			return exitAnalysis
		}
		return exitOK
	}

	if cfg.Watch {
		group.Go(func() error { return watch(ctx, runner, stdout, cfg) })
	}
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error("stopped", "error", err)
		return exitAnalysis
	}
	return exitOK
}

// present prints the outcome in the configured format and writes the report
// files when an output directory is set.
func present(w io.Writer, cfg *config.Config, o *analysis.Outcome) error {
	if len(o.Stats()) == 0 {
		return nil
	}
	doc := output.FromOutcome(o)

	if !cfg.Quiet {
		switch cfg.Format {
		case config.FormatJSON:
			if err := output.EncodeJSON(w, doc); err != nil {
				return err
			}
		case config.FormatYAML:
			if err := output.EncodeYAML(w, doc); err != nil {
				return err
			}
		default:
			for _, r := range o.Results {
				if r.Stats != nil {
					output.PrintStats(w, r.Stats, r.Report)
				}
			}
			if o.Comparison != nil {
				output.PrintComparison(w, o.Comparison)
			}
		}
	}

	if cfg.Output == "" {
		return nil
	}
	written, err := output.WriteReports(cfg.Output, doc, cfg.Format == config.FormatYAML)
	for _, path := range written {
		logging.Info("report saved", "path", path)
	}
	return err
}

// watch re-analyzes changed inputs until ctx is done.
func watch(ctx context.Context, runner *analysis.Runner, stdout io.Writer, cfg *config.Config) error {
	fw, err := watcher.NewFileWatcher(runner.Paths())
	if err != nil {
		return err
	}
	if err := fw.Start(ctx); err != nil {
		return err
	}

	debouncer := watcher.NewDebouncer(fw.Events(), 500*time.Millisecond, 5*time.Second)
	debouncer.Start(ctx)

	for event := range debouncer.Output() {
		change := watcher.AnalyzeChanges(event, runner.Paths())
		for _, path := range change.Missing {
			logging.Warn("graph file removed, keeping previous results", "path", path)
		}
		if len(change.Reanalyze) == 0 {
			continue
		}

		outcome, err := runner.Refresh(ctx, "file change", change.Reanalyze)
		if err != nil {
			logging.Warn("re-analysis failed", "error", err)
		}
		if err := present(stdout, cfg, outcome); err != nil {
			logging.Error("failed to write report", "error", err)
		}
	}
	return ctx.Err()
}
