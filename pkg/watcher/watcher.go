package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/epaperdriver/gather-build/pkg/logging"
	"github.com/fsnotify/fsnotify"
)

// ChangeType tells which input tree a change happened in
type ChangeType int

const (
	ChangeTypeLibrary ChangeType = iota
	ChangeTypeExample
)

func (c ChangeType) String() string {
	switch c {
	case ChangeTypeLibrary:
		return "library"
	case ChangeTypeExample:
		return "example"
	default:
		return fmt.Sprintf("ChangeType(%d)", int(c))
	}
}

// ChangeEvent represents a batch of file system changes of one type
type ChangeEvent struct {
	Type      ChangeType
	Paths     []string
	Timestamp time.Time
}

const batchDelay = 100 * time.Millisecond

// FileWatcher watches the example root, every example directory and the library root
type FileWatcher struct {
	watcher     *fsnotify.Watcher
	exampleRoot string
	libraryRoot string
	events      chan ChangeEvent
}

// NewFileWatcher creates a new file system watcher for the two input trees
func NewFileWatcher(exampleRoot, libraryRoot string) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &FileWatcher{
		watcher:     watcher,
		exampleRoot: filepath.Clean(exampleRoot),
		libraryRoot: filepath.Clean(libraryRoot),
		events:      make(chan ChangeEvent, 100),
	}, nil
}

// Start adds the watches and begins processing events until ctx is done
func (fw *FileWatcher) Start(ctx context.Context) error {
	for _, dir := range []string{fw.libraryRoot, fw.exampleRoot} {
		if err := fw.watcher.Add(dir); err != nil {
			_ = fw.watcher.Close()
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	entries, err := os.ReadDir(fw.exampleRoot)
	if err != nil {
		_ = fw.watcher.Close()
		return fmt.Errorf("failed to list %s: %w", fw.exampleRoot, err)
	}
	watched := 2
	for _, entry := range entries {
		if fw.watchExampleDir(filepath.Join(fw.exampleRoot, entry.Name())) {
			watched++
		}
	}

	logging.Info("watching input directories", "count", watched, "example", fw.exampleRoot, "library", fw.libraryRoot)

	go fw.processEvents(ctx)
	return nil
}

// watchExampleDir adds a watch on path if it is a directory
func (fw *FileWatcher) watchExampleDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}
	if err := fw.watcher.Add(path); err != nil {
		logging.Warn("failed to watch directory", "path", path, "error", err)
		return false
	}
	logging.Debug("watching example directory", "path", path)
	return true
}

// processEvents batches relevant events by type and forwards them
func (fw *FileWatcher) processEvents(ctx context.Context) {
	pending := make(map[ChangeType][]string)

	flushTimer := time.NewTimer(batchDelay)
	flushTimer.Stop()

	flush := func() {
		for _, ct := range []ChangeType{ChangeTypeLibrary, ChangeTypeExample} {
			paths := pending[ct]
			if len(paths) == 0 {
				continue
			}
			select {
			case fw.events <- ChangeEvent{Type: ct, Paths: paths, Timestamp: time.Now()}:
			case <-ctx.Done():
				return
			}
			delete(pending, ct)
		}
	}

	defer close(fw.events)
	defer fw.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			// New example directories need their own watch
			if event.Has(fsnotify.Create) && filepath.Dir(event.Name) == fw.exampleRoot {
				fw.watchExampleDir(event.Name)
			}

			ct, relevant := Classify(event, fw.exampleRoot, fw.libraryRoot)
			if !relevant {
				logging.Trace("ignoring file event", "path", event.Name, "op", event.Op.String())
				continue
			}
			pending[ct] = append(pending[ct], event.Name)
			flushTimer.Reset(batchDelay)

		case <-flushTimer.C:
			flush()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("watcher error", "error", err)
		}
	}
}

// Events returns the channel of change events. It is closed when the watcher stops.
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}
