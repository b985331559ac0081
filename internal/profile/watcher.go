package profile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mcpdesk/mcpdesk/internal/api"
	"github.com/mcpdesk/mcpdesk/internal/events"
	"github.com/mcpdesk/mcpdesk/pkg/logging"
)

// DefaultDebounceInterval is the quiet period after the last change to
// settings.yaml before a profiles-changed event is published.
const DefaultDebounceInterval = 200 * time.Millisecond

// Watch publishes a profiles-changed event whenever settings.yaml is
// created, written, replaced or removed, until ctx is cancelled. The
// configuration directory is created if needed so the file can appear later.
func (s *Store) Watch(ctx context.Context, publisher events.Publisher) error {
	return s.watch(ctx, publisher, DefaultDebounceInterval)
}

func (s *Store) watch(ctx context.Context, publisher events.Publisher, debounce time.Duration) error {
	if err := os.MkdirAll(s.configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	// Editors replace files by rename, so the directory is watched rather
	// than the file itself.
	if err := watcher.Add(s.configPath); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", s.configPath, err)
	}

	logging.Info("ProfileStore", "Watching %s for changes", s.Path())

	go s.processEvents(ctx, watcher, publisher, debounce)
	return nil
}

func (s *Store) processEvents(ctx context.Context, watcher *fsnotify.Watcher, publisher events.Publisher, debounce time.Duration) {
	defer watcher.Close()

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	notify := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounce, func() {
			if ctx.Err() != nil {
				return
			}
			logging.Debug("ProfileStore", "Settings changed, notifying subscribers")
			publisher.Publish(api.Event{Type: api.EventProfilesChanged})
		})
	}
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != SettingsFileName {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			notify()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logging.Error("ProfileStore", err, "File watcher error")
		}
	}
}
