package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/collaborativebioinformatics/Pangenome-and-Genomic-Cluster-Modeling/pkg/compare"
	"github.com/collaborativebioinformatics/Pangenome-and-Genomic-Cluster-Modeling/pkg/gfa"
	"github.com/collaborativebioinformatics/Pangenome-and-Genomic-Cluster-Modeling/pkg/logging"
	"github.com/collaborativebioinformatics/Pangenome-and-Genomic-Cluster-Modeling/pkg/model"
)

// Input names one graph to analyze.
type Input struct {
	Name string // Display name; derived from Path when empty
	Path string
}

// DisplayName returns Name, or a name derived from Path.
func (in Input) DisplayName() string {
	if in.Name != "" {
		return in.Name
	}
	return gfa.GraphName(in.Path)
}

// Result is the outcome of one graph pipeline. Exactly one of Stats and Err
// is set.
type Result struct {
	Input    Input
	Stats    *model.Stats
	Report   *gfa.Report
	Duration time.Duration
	Err      error
}

// Options selects the optional analysis passes.
type Options struct {
	Structure bool // Also count components and cycles; see AnalyzeStructure
}

// RunPipeline parses and analyzes one graph file.
func RunPipeline(in Input, opts Options) Result {
	logger := logging.New("pipeline")
	name := in.DisplayName()
	start := time.Now()

	logger.Info("parsing graph", "name", name, "path", in.Path)
	g, report, err := gfa.ParseFile(in.Path)
	if err != nil {
		logger.Error("parse failed", "name", name, "error", err)
		return Result{Input: in, Report: report, Duration: time.Since(start), Err: err}
	}
	logger.Info("parsed graph", "name", name,
		"nodes", g.NodeCount(), "edges", g.EdgeCount(), "paths", g.PathCount(),
		"warnings", report.Warnings())

	stats := Analyze(name, g)
	if opts.Structure {
		stats.Structure = AnalyzeStructure(g)
	}
	duration := time.Since(start)
	logger.Info("analyzed graph", "name", name, "durationMs", duration.Milliseconds())

	return Result{Input: in, Stats: stats, Report: report, Duration: duration}
}

// RunPipelines runs each input on its own goroutine. Pipelines share nothing,
// so a failed input leaves the others untouched. Cancelling ctx only prevents
// pipelines that have not started yet; a running parse completes its input.
func RunPipelines(ctx context.Context, inputs []Input, opts Options) []Result {
	results := make([]Result, len(inputs))

	var group errgroup.Group
	for i, in := range inputs {
		i, in := i, in
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result{Input: in, Err: err}
				return nil
			}
			results[i] = RunPipeline(in, opts)
			return nil
		})
	}
	_ = group.Wait()

	return results
}

// StatusPublisher receives progress and results of a run.
type StatusPublisher interface {
	PublishStatus(state, message string, step, total int) error
	PublishOutcome(outcome *Outcome) error
}

// Outcome is the product of one complete run.
type Outcome struct {
	Reason     string
	Results    []Result
	Comparison *model.Comparison // Set when two inputs were analyzed successfully
	Completed  time.Time
}

// Stats returns the Stats of every successful result, in input order.
func (o *Outcome) Stats() []*model.Stats {
	stats := make([]*model.Stats, 0, len(o.Results))
	for _, r := range o.Results {
		if r.Stats != nil {
			stats = append(stats, r.Stats)
		}
	}
	return stats
}

// Lookup returns the Stats of the graph with the given display name.
func (o *Outcome) Lookup(name string) (*model.Stats, bool) {
	for _, r := range o.Results {
		if r.Stats != nil && r.Stats.Name == name {
			return r.Stats, true
		}
	}
	return nil, false
}

// Err joins the errors of all failed pipelines.
func (o *Outcome) Err() error {
	var errs []error
	for _, r := range o.Results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Input.DisplayName(), r.Err))
		}
	}
	return errors.Join(errs...)
}

// Runner orchestrates repeated analysis of a fixed set of inputs
type Runner struct {
	inputs    []Input
	publisher StatusPublisher
	opts      Options

	mu   sync.Mutex // Prevent concurrent analysis runs
	last *Outcome
}

// NewRunner creates a runner for one or two inputs. publisher may be nil.
func NewRunner(inputs []Input, publisher StatusPublisher, opts Options) *Runner {
	return &Runner{
		inputs:    inputs,
		publisher: publisher,
		opts:      opts,
	}
}

// Inputs returns the inputs the runner analyzes.
func (r *Runner) Inputs() []Input {
	return r.inputs
}

// Paths returns the input paths in input order.
func (r *Runner) Paths() []string {
	paths := make([]string, len(r.inputs))
	for i, in := range r.inputs {
		paths[i] = in.Path
	}
	return paths
}

// Last returns the outcome of the latest completed run, or nil.
func (r *Runner) Last() *Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func (r *Runner) status(state, message string, step, total int) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.PublishStatus(state, message, step, total); err != nil {
		logging.Warn("could not publish status", "state", state, "error", err)
	}
}

// Run parses and analyzes every input in parallel and, for two successful
// inputs, compares them. The returned outcome is complete even when some
// pipelines failed; the error reports those failures.
func (r *Runner) Run(ctx context.Context, reason string) (*Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.run(ctx, reason, nil)
}

// Refresh analyzes again only the inputs whose path is listed and reuses
// the previous results for the others. Without a previous run every input
// is analyzed.
func (r *Runner) Refresh(ctx context.Context, reason string, paths []string) (*Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	only := make(map[string]bool, len(paths))
	for _, p := range paths {
		only[p] = true
	}
	return r.run(ctx, reason, only)
}

// run does the work of Run and Refresh. Caller holds r.mu.
func (r *Runner) run(ctx context.Context, reason string, only map[string]bool) (*Outcome, error) {
	var (
		results = make([]Result, len(r.inputs))
		pending []Input
		slots   []int
	)
	for i, in := range r.inputs {
		if only != nil && !only[in.Path] && r.last != nil {
			results[i] = r.last.Results[i]
			continue
		}
		pending = append(pending, in)
		slots = append(slots, i)
	}

	logging.InfoContext(ctx, "starting analysis", "reason", reason, "graphs", len(pending), "reused", len(r.inputs)-len(pending))
	r.status("analyzing", fmt.Sprintf("Analyzing %d graph(s)...", len(pending)), 1, 2)

	for i, res := range RunPipelines(ctx, pending, r.opts) {
		results[slots[i]] = res
	}

	outcome := &Outcome{Reason: reason, Results: results}
	if len(results) == 2 && results[0].Stats != nil && results[1].Stats != nil {
		r.status("comparing", "Comparing graphs...", 2, 2)
		outcome.Comparison = compare.Compare(results[0].Stats, results[1].Stats)
	}
	outcome.Completed = time.Now()
	r.last = outcome

	if r.publisher != nil {
		if err := r.publisher.PublishOutcome(outcome); err != nil {
			logging.Warn("could not publish outcome", "error", err)
		}
	}

	if err := outcome.Err(); err != nil {
		r.status("error", err.Error(), 2, 2)
		return outcome, err
	}

	r.status("ready", "Analysis complete", 2, 2)
	logging.InfoContext(ctx, "analysis complete", "reason", reason)
	return outcome, nil
}
