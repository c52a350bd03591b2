package watcher

import (
	"context"
	"slices"
	"time"

	"github.com/collaborativebioinformatics/Pangenome-and-Genomic-Cluster-Modeling/pkg/logging"
)

// Debouncer batches rapid file system events to avoid excessive re-analysis.
// A batch is flushed after quietPeriod without events, or maxWait after its
// first event, whichever comes first.
type Debouncer struct {
	input       <-chan ChangeEvent
	output      chan ChangeEvent
	quietPeriod time.Duration
	maxWait     time.Duration
}

// NewDebouncer creates a new event debouncer
func NewDebouncer(input <-chan ChangeEvent, quietPeriod, maxWait time.Duration) *Debouncer {
	return &Debouncer{
		input:       input,
		output:      make(chan ChangeEvent, 10),
		quietPeriod: quietPeriod,
		maxWait:     maxWait,
	}
}

// Start begins processing events with debouncing
func (d *Debouncer) Start(ctx context.Context) {
	go d.run(ctx)
}

// batch keeps the latest change type of each path in first-seen order.
type batch struct {
	order  []string
	latest map[string]ChangeType
	events int
}

func (b *batch) add(event ChangeEvent) {
	if b.latest == nil {
		b.latest = make(map[string]ChangeType)
	}
	for _, p := range event.Paths {
		if _, seen := b.latest[p]; !seen {
			b.order = append(b.order, p)
		}
		b.latest[p] = event.Type
	}
	b.events++
}

// split returns one event per change type, modifications first.
func (b *batch) split(now time.Time) []ChangeEvent {
	var out []ChangeEvent
	for _, t := range []ChangeType{ChangeTypeModified, ChangeTypeRemoved} {
		paths := slices.DeleteFunc(slices.Clone(b.order), func(p string) bool { return b.latest[p] != t })
		if len(paths) > 0 {
			out = append(out, ChangeEvent{Type: t, Paths: paths, Timestamp: now})
		}
	}
	return out
}

func (d *Debouncer) run(ctx context.Context) {
	defer close(d.output)

	var (
		pending  batch
		quiet    *time.Timer
		deadline *time.Timer
		quietC   <-chan time.Time
		maxC     <-chan time.Time
	)

	stop := func(t *time.Timer) {
		if t != nil {
			t.Stop()
		}
	}

	flush := func() {
		stop(quiet)
		stop(deadline)
		quietC, maxC = nil, nil
		if pending.events == 0 {
			return
		}

		logging.Debug("flushing accumulated events", "count", pending.events, "files", len(pending.order))
		for _, event := range pending.split(time.Now()) {
			select {
			case d.output <- event:
			case <-ctx.Done():
			}
		}
		pending = batch{}
	}

	for {
		select {
		case <-ctx.Done():
			stop(quiet)
			stop(deadline)
			return

		case event, ok := <-d.input:
			if !ok {
				flush()
				return
			}
			pending.add(event)

			stop(quiet)
			quiet = time.NewTimer(d.quietPeriod)
			quietC = quiet.C
			if maxC == nil {
				deadline = time.NewTimer(d.maxWait)
				maxC = deadline.C
			}

		case <-quietC:
			flush()

		case <-maxC:
			flush()
		}
	}
}

// Output returns the channel of debounced events
func (d *Debouncer) Output() <-chan ChangeEvent {
	return d.output
}
