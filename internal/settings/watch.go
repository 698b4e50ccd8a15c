package settings

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultReloadDebounce = 250 * time.Millisecond

// WatchFile starts an fsnotify watch on the FileConfig's backing path and
// calls Reload on every write/create/rename event, debounced so a burst of
// filesystem events (editors that write-then-rename) triggers one reload
// instead of several. The returned stop function closes the watcher and
// waits for the watch goroutine to exit; callers must call it to avoid
// leaking the watcher.
func (f *FileConfig) WatchFile(ctx context.Context, logger *slog.Logger) (stop func(), err error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "settings-watch")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(f.path); err != nil {
		watcher.Close()
		return nil, err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go f.watchLoop(watchCtx, watcher, logger, &wg)

	return func() {
		cancel()
		watcher.Close()
		wg.Wait()
	}, nil
}

func (f *FileConfig) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, logger *slog.Logger, wg *sync.WaitGroup) {
	defer wg.Done()

	var mu sync.Mutex
	var timer *time.Timer
	scheduleReload := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(defaultReloadDebounce, func() {
			if err := f.Reload(); err != nil {
				logger.Warn("settings reload failed", "error", err)
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				scheduleReload()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("settings watch error", "error", err)
		}
	}
}
