package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/collaborativebioinformatics/Pangenome-and-Genomic-Cluster-Modeling/pkg/logging"
)

// ChangeType represents the type of file change detected
type ChangeType int

const (
	ChangeTypeModified ChangeType = iota // Written, created or renamed into place
	ChangeTypeRemoved                    // Removed or renamed away
)

func (t ChangeType) String() string {
	switch t {
	case ChangeTypeModified:
		return "modified"
	case ChangeTypeRemoved:
		return "removed"
	default:
		return fmt.Sprintf("ChangeType(%d)", int(t))
	}
}

// ChangeEvent represents a batch of file system changes
type ChangeEvent struct {
	Type      ChangeType
	Paths     []string
	Timestamp time.Time
}

// FileWatcher watches a fixed set of graph files for changes.
//
// fsnotify watches directories, not files: editors and download tools
// replace a file by renaming a new one over it, which drops a watch placed on
// the file itself. The parent directories are watched and events are
// filtered down to the graph files.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	files   map[string]bool // Absolute paths of the watched graph files
	events  chan ChangeEvent
	once    sync.Once
}

// NewFileWatcher creates a watcher for the given graph files
func NewFileWatcher(paths []string) (*FileWatcher, error) {
	files := make(map[string]bool, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		files[abs] = true
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &FileWatcher{
		watcher: watcher,
		files:   files,
		events:  make(chan ChangeEvent, 100),
	}, nil
}

// Start begins watching for file changes. Events stop when ctx is done or
// Stop is called; the Events channel is closed then.
func (fw *FileWatcher) Start(ctx context.Context) error {
	dirs := make(map[string]bool)
	for file := range fw.files {
		dirs[filepath.Dir(file)] = true
	}
	for dir := range dirs {
		if err := fw.watcher.Add(dir); err != nil {
			fw.watcher.Close()
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	logging.Info("watching graph files", "files", len(fw.files), "directories", len(dirs))

	go fw.processEvents(ctx)
	return nil
}

func (fw *FileWatcher) processEvents(ctx context.Context) {
	defer fw.once.Do(func() { close(fw.events) })

	for {
		select {
		case <-ctx.Done():
			fw.watcher.Close()
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			change, relevant := fw.classify(event)
			if !relevant {
				continue
			}
			logging.Debug("graph file changed", "path", event.Name, "op", event.Op.String())

			select {
			case fw.events <- change:
			case <-ctx.Done():
				fw.watcher.Close()
				return
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("watcher error", "error", err)
		}
	}
}

// classify maps an fsnotify event on a watched file to a ChangeEvent.
func (fw *FileWatcher) classify(event fsnotify.Event) (ChangeEvent, bool) {
	name, err := filepath.Abs(event.Name)
	if err != nil || !fw.files[name] {
		return ChangeEvent{}, false
	}

	change := ChangeEvent{Paths: []string{name}, Timestamp: time.Now()}
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		change.Type = ChangeTypeRemoved
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
		change.Type = ChangeTypeModified
	default:
		return ChangeEvent{}, false // Chmod
	}
	return change, true
}

// Events returns the channel of change events
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}

// Stop stops the file watcher
func (fw *FileWatcher) Stop() error {
	return fw.watcher.Close()
}
