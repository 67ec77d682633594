package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/kestrel/logging"
	"go.viam.com/kestrel/motors"
	"go.viam.com/kestrel/utils"
)

// settleTime is how long a file must stay quiet after a write before it is reloaded. Editors
// and shell redirects often write a file in several steps.
const settleTime = 100 * time.Millisecond

// Watcher reloads a configuration file whenever it is written.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	logger   logging.Logger
	onChange func(*Config)
	workers  *utils.StoppableWorkers
	debounce func(func())

	mu     sync.Mutex
	closed bool
}

// Watch calls onChange with every valid new version of the file at path. Invalid versions are
// logged and skipped. The directory is watched so that editors replacing the file are seen.
func Watch(path string, logger logging.Logger, onChange func(*Config)) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating config watcher")
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		return nil, multierr.Combine(errors.Wrapf(err, "watching %s", abs), fw.Close())
	}
	w := &Watcher{
		path:     abs,
		watcher:  fw,
		logger:   logger,
		onChange: onChange,
		debounce: debounce.New(settleTime),
	}
	w.workers = utils.NewStoppableWorkers(w.run)
	return w, nil
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			w.debounce(w.reload)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warnw("config watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	conf, err := Load(w.path)
	if err != nil {
		w.logger.Warnw("ignoring invalid config change", "path", w.path, "error", err)
		return
	}
	w.logger.Infow("config changed", "path", w.path)
	w.onChange(conf)
}

// Close stops watching. A reload already in progress finishes first.
func (w *Watcher) Close() error {
	w.workers.Stop()
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	return w.watcher.Close()
}

// Reapply returns an onChange callback that applies new configurations to k while it is
// disarmed. Changes made while k is armed or testing are logged and dropped.
func Reapply(k *motors.Kestrel, logger logging.Logger) func(*Config) {
	return func(conf *Config) {
		err := Apply(k, conf)
		switch {
		case err == nil:
			logger.Infow("config applied", "frame", k.FrameString(), "type", conf.Frame.Type)
		case errors.Is(err, motors.ErrConfigurationLocked):
			logger.Warnw("config change not applied", "mode", k.Mode())
		default:
			logger.Errorw("config change rejected", "error", err)
		}
	}
}
