package watch

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

const (
	watchRootRequiredMessageConstant = "at least one watch root must be provided"
	eventChannelBufferSizeConstant   = 64
)

// ErrWatchRootRequired indicates no watch roots were provided.
var ErrWatchRootRequired = errors.New(watchRootRequiredMessageConstant)

// FSNotifySourceOptions configure a filesystem-backed event source.
type FSNotifySourceOptions struct {
	Roots           []string
	SkipDirectories []string
}

// FSNotifySource adapts fsnotify to the EventSource interface, registering
// directories recursively and following newly created ones.
type FSNotifySource struct {
	watcher         *fsnotify.Watcher
	events          chan Event
	errors          chan error
	skipDirectories map[string]struct{}
	done            chan struct{}
}

// NewFSNotifySource constructs a source watching the provided roots.
func NewFSNotifySource(options FSNotifySourceOptions) (*FSNotifySource, error) {
	roots := make([]string, 0, len(options.Roots))
	for _, root := range options.Roots {
		trimmedRoot := strings.TrimSpace(root)
		if len(trimmedRoot) > 0 {
			roots = append(roots, trimmedRoot)
		}
	}
	if len(roots) == 0 {
		return nil, ErrWatchRootRequired
	}

	watcher, watcherError := fsnotify.NewWatcher()
	if watcherError != nil {
		return nil, watcherError
	}

	skipDirectories := make(map[string]struct{}, len(options.SkipDirectories))
	for _, skipDirectory := range options.SkipDirectories {
		trimmedSkip := strings.TrimSpace(skipDirectory)
		if len(trimmedSkip) > 0 {
			skipDirectories[trimmedSkip] = struct{}{}
		}
	}

	source := &FSNotifySource{
		watcher:         watcher,
		events:          make(chan Event, eventChannelBufferSizeConstant),
		errors:          make(chan error, 1),
		skipDirectories: skipDirectories,
		done:            make(chan struct{}),
	}

	for _, root := range roots {
		if registrationError := source.registerTree(root); registrationError != nil {
			_ = watcher.Close()
			return nil, registrationError
		}
	}

	go source.forward()

	return source, nil
}

// Events returns the change notification channel.
func (source *FSNotifySource) Events() <-chan Event {
	return source.events
}

// Errors returns the watcher error channel.
func (source *FSNotifySource) Errors() <-chan error {
	return source.errors
}

// Close stops the underlying watcher.
func (source *FSNotifySource) Close() error {
	close(source.done)
	return source.watcher.Close()
}

func (source *FSNotifySource) registerTree(root string) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkError error) error {
		if walkError != nil {
			return walkError
		}
		if !entry.IsDir() {
			return nil
		}
		if source.skipped(entry.Name()) {
			return filepath.SkipDir
		}
		return source.watcher.Add(path)
	})
}

func (source *FSNotifySource) skipped(directoryName string) bool {
	if strings.HasPrefix(directoryName, ".") && directoryName != "." {
		return true
	}
	_, exists := source.skipDirectories[directoryName]
	return exists
}

func (source *FSNotifySource) forward() {
	defer close(source.events)
	defer close(source.errors)

	for {
		select {
		case <-source.done:
			return
		case watcherEvent, channelOpen := <-source.watcher.Events:
			if !channelOpen {
				return
			}
			if watcherEvent.Op.Has(fsnotify.Create) {
				if info, statError := os.Stat(watcherEvent.Name); statError == nil && info.IsDir() && !source.skipped(filepath.Base(watcherEvent.Name)) {
					_ = source.watcher.Add(watcherEvent.Name)
				}
			}
			select {
			case source.events <- Event{Path: watcherEvent.Name}:
			case <-source.done:
				return
			}
		case watcherError, channelOpen := <-source.watcher.Errors:
			if !channelOpen {
				return
			}
			select {
			case source.errors <- watcherError:
			case <-source.done:
				return
			}
		}
	}
}
