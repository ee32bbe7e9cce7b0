package fixtures

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/systemshift/minddump/internal/server/store"
)

// DefaultDebounce collapses the burst of events editors emit on save.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reseeds a store whenever its fixture file changes.
type Watcher struct {
	path     string
	store    *store.Store
	log      zerolog.Logger
	debounce time.Duration
	now      func() time.Time
	reloaded func(error)
}

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithDebounce sets the quiet period before a reload.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) { w.debounce = d }
}

// WithReloadHook registers fn to be called after every reload attempt.
func WithReloadHook(fn func(error)) WatchOption {
	return func(w *Watcher) { w.reloaded = fn }
}

// NewWatcher creates a watcher for the fixture file at path.
func NewWatcher(path string, s *store.Store, log zerolog.Logger, opts ...WatchOption) *Watcher {
	w := &Watcher{
		path:     filepath.Clean(path),
		store:    s,
		log:      log.With().Str("component", "fixtures").Str("path", path).Logger(),
		debounce: DefaultDebounce,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is done. The parent directory is watched so that
// editors replacing the file by rename are noticed.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(w.path), err)
	}
	w.log.Info().Msg("watching fixtures")

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Error().Err(err).Msg("fsnotify error")
		case <-timer.C:
			err := w.Reload()
			if w.reloaded != nil {
				w.reloaded(err)
			}
		}
	}
}

// Reload parses the file and reseeds the store. An invalid file leaves the store untouched.
func (w *Watcher) Reload() error {
	file, err := LoadFile(w.path)
	if err != nil {
		w.log.Error().Err(err).Msg("fixtures reload failed, keeping current data")
		return err
	}
	seed, err := file.Seed(w.now())
	if err != nil {
		w.log.Error().Err(err).Msg("fixtures reload failed, keeping current data")
		return err
	}
	if err := w.store.Reset(seed); err != nil {
		w.log.Error().Err(err).Msg("fixtures reload failed, keeping current data")
		return err
	}

	counts := w.store.Counts()
	w.log.Info().
		Int("notes", counts.Notes).
		Int("folders", counts.Folders).
		Int("concepts", counts.Concepts).
		Msg("fixtures reloaded")
	return nil
}
