package config

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/phildougherty/quick-assistant/internal/logging"
)

// Watcher reloads the config file on change and notifies a callback
// with the fresh config. Only the mutable speech settings are expected
// to take effect at runtime; structural settings need a restart.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	logger  *logging.Logger
	onLoad  func(*Config)
	done    chan struct{}
}

// NewWatcher watches the config file at path. onLoad is called with
// each successfully parsed config.
func NewWatcher(path string, logger *logging.Logger, onLoad func(*Config)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	// Watch the directory rather than the file: editors that write via
	// rename would otherwise drop the watch.
	dir := filepath.Dir(path)
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w := &Watcher{
		path:    path,
		watcher: fw,
		logger:  logger,
		onLoad:  onLoad,
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				w.logger.Warning("config reload failed: %v", err)
				continue
			}
			w.logger.Info("config reloaded from %s", w.path)
			w.onLoad(cfg)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warning("config watcher error: %v", err)
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
