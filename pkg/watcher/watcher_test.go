package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan ChangeEvent, within time.Duration) ChangeEvent {
	t.Helper()
	select {
	case event, ok := <-ch:
		require.True(t, ok, "channel closed")
		return event
	case <-time.After(within):
		t.Fatal("timeout waiting for change event")
		return ChangeEvent{}
	}
}

func TestDebouncer_BatchesRapidEvents(t *testing.T) {
	input := make(chan ChangeEvent)
	d := NewDebouncer(input, 30*time.Millisecond, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	input <- ChangeEvent{Type: ChangeTypeModified, Paths: []string{"/g/a.gfa"}}
	input <- ChangeEvent{Type: ChangeTypeModified, Paths: []string{"/g/b.gfa"}}
	input <- ChangeEvent{Type: ChangeTypeModified, Paths: []string{"/g/a.gfa"}}

	event := receive(t, d.Output(), time.Second)
	assert.Equal(t, ChangeTypeModified, event.Type)
	assert.Equal(t, []string{"/g/a.gfa", "/g/b.gfa"}, event.Paths)

	select {
	case extra := <-d.Output():
		t.Fatalf("unexpected extra event %+v", extra)
	case <-time.After(60 * time.Millisecond):
	}
}

func TestDebouncer_LatestChangeWins(t *testing.T) {
	input := make(chan ChangeEvent)
	d := NewDebouncer(input, 20*time.Millisecond, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	input <- ChangeEvent{Type: ChangeTypeRemoved, Paths: []string{"/g/a.gfa"}}
	input <- ChangeEvent{Type: ChangeTypeModified, Paths: []string{"/g/a.gfa"}}
	input <- ChangeEvent{Type: ChangeTypeRemoved, Paths: []string{"/g/b.gfa"}}

	first := receive(t, d.Output(), time.Second)
	second := receive(t, d.Output(), time.Second)
	assert.Equal(t, ChangeEvent{Type: ChangeTypeModified, Paths: []string{"/g/a.gfa"}, Timestamp: first.Timestamp}, first)
	assert.Equal(t, ChangeTypeRemoved, second.Type)
	assert.Equal(t, []string{"/g/b.gfa"}, second.Paths)
}

func TestDebouncer_MaxWaitBoundsContinuousChanges(t *testing.T) {
	input := make(chan ChangeEvent)
	d := NewDebouncer(input, 50*time.Millisecond, 120*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	start := time.Now()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for time.Since(start) < 400*time.Millisecond {
			select {
			case input <- ChangeEvent{Type: ChangeTypeModified, Paths: []string{"/g/a.gfa"}}:
			case <-ctx.Done():
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
	}()

	receive(t, d.Output(), 350*time.Millisecond)
	assert.Less(t, time.Since(start), 350*time.Millisecond)
	cancel()
	<-done
}

func TestDebouncer_FlushesWhenInputCloses(t *testing.T) {
	input := make(chan ChangeEvent, 1)
	d := NewDebouncer(input, time.Hour, time.Hour)
	d.Start(context.Background())

	input <- ChangeEvent{Type: ChangeTypeModified, Paths: []string{"/g/a.gfa"}}
	close(input)

	event := receive(t, d.Output(), time.Second)
	assert.Equal(t, []string{"/g/a.gfa"}, event.Paths)

	_, ok := <-d.Output()
	assert.False(t, ok)
}

func TestAnalyzeChanges(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.gfa")
	b := filepath.Join(dir, "b.gfa.gz")

	modified := AnalyzeChanges(ChangeEvent{Type: ChangeTypeModified, Paths: []string{b, filepath.Join(dir, "other.txt")}}, []string{a, b})
	assert.Equal(t, []string{b}, modified.Reanalyze)
	assert.Empty(t, modified.Missing)

	removed := AnalyzeChanges(ChangeEvent{Type: ChangeTypeRemoved, Paths: []string{a}}, []string{a, b})
	assert.Empty(t, removed.Reanalyze)
	assert.Equal(t, []string{a}, removed.Missing)
}

func TestAnalyzeChanges_RelativeInputs(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	analysis := AnalyzeChanges(ChangeEvent{Type: ChangeTypeModified, Paths: []string{filepath.Join(dir, "g.gfa")}}, []string{"g.gfa"})
	assert.Equal(t, []string{"g.gfa"}, analysis.Reanalyze)
}

func TestClassify(t *testing.T) {
	dir := t.TempDir()
	graph := filepath.Join(dir, "g.gfa")
	fw, err := NewFileWatcher([]string{graph})
	require.NoError(t, err)
	defer fw.Stop()

	tests := []struct {
		op       fsnotify.Op
		name     string
		want     ChangeType
		relevant bool
	}{
		{fsnotify.Write, graph, ChangeTypeModified, true},
		{fsnotify.Create, graph, ChangeTypeModified, true},
		{fsnotify.Remove, graph, ChangeTypeRemoved, true},
		{fsnotify.Rename, graph, ChangeTypeRemoved, true},
		{fsnotify.Chmod, graph, 0, false},
		{fsnotify.Write, filepath.Join(dir, "notes.txt"), 0, false},
	}
	for _, tt := range tests {
		change, relevant := fw.classify(fsnotify.Event{Name: tt.name, Op: tt.op})
		assert.Equal(t, tt.relevant, relevant, "%s %s", tt.op, tt.name)
		if relevant {
			assert.Equal(t, tt.want, change.Type)
			assert.Equal(t, []string{graph}, change.Paths)
		}
	}
}

func TestFileWatcher_ReportsWrites(t *testing.T) {
	dir := t.TempDir()
	graph := filepath.Join(dir, "g.gfa")
	require.NoError(t, os.WriteFile(graph, []byte("S\t1\tA\n"), 0o644))

	fw, err := NewFileWatcher([]string{graph})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, fw.Start(ctx))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(graph, []byte("S\t1\tAC\n"), 0o644))

	event := receive(t, fw.Events(), 2*time.Second)
	assert.Equal(t, ChangeTypeModified, event.Type)
	assert.Equal(t, []string{graph}, event.Paths)

	cancel()
	for range fw.Events() {
	}
}

func TestChangeTypeString(t *testing.T) {
	assert.Equal(t, "modified", ChangeTypeModified.String())
	assert.Equal(t, "removed", ChangeTypeRemoved.String())
	assert.Equal(t, "ChangeType(9)", ChangeType(9).String())
}
