// Package ingest watches a drop folder for recorded WAV clips and feeds
// them through the pipeline: each settled file is read, classified and
// persisted as an emotion event.
package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/soulsync-ai/soulsync/internal/logging"
	"github.com/soulsync-ai/soulsync/internal/pipeline"
)

// DefaultDebounce is the quiet window before a dropped file is considered
// fully written.
const DefaultDebounce = 500 * time.Millisecond

// Watcher monitors a single directory (non-recursive) for WAV files.
type Watcher struct {
	coord    *pipeline.Coordinator
	dir      string
	debounce time.Duration
	log      zerolog.Logger

	fsw       *fsnotify.Watcher
	debouncer *Debouncer
}

// New creates a Watcher for dir. A non-positive debounce falls back to
// DefaultDebounce.
func New(coord *pipeline.Coordinator, dir string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		coord:    coord,
		dir:      dir,
		debounce: debounce,
		log:      logging.WithComponent("ingest"),
	}
}

// Run watches the drop folder until ctx is cancelled. Files already
// present when Run starts are processed once before the event loop begins.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.fsw = fsw
	defer fsw.Close()

	w.debouncer = NewDebouncer(w.debounce, func(path string) {
		w.process(ctx, path)
	})
	defer w.debouncer.Stop()

	if err := fsw.Add(w.dir); err != nil {
		return err
	}
	w.scanExisting()

	w.log.Info().Str("dir", w.dir).Dur("debounce", w.debounce).Msg("watching drop folder")
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("fsnotify error")
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return
	}
	if !wantFile(ev.Name) {
		return
	}
	w.debouncer.Feed(ev.Name)
}

// scanExisting feeds files that were dropped while the service was down.
func (w *Watcher) scanExisting() {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		w.log.Warn().Err(err).Msg("scanning drop folder failed")
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(w.dir, e.Name())
		if wantFile(path) {
			w.debouncer.Feed(path)
		}
	}
}

// process reads a settled clip, runs it through the pipeline and removes
// it on success. Failed clips stay in place for a retry on restart.
func (w *Watcher) process(ctx context.Context, path string) {
	wav, err := os.ReadFile(path)
	if err != nil {
		w.log.Warn().Err(err).Str("path", path).Msg("reading clip failed")
		return
	}
	res, err := w.coord.AnalyzeAudio(ctx, filepath.Base(path), wav)
	if err != nil {
		w.log.Warn().Err(err).Str("path", path).Msg("classifying clip failed")
		return
	}
	w.log.Info().
		Str("path", path).
		Int64("event_id", res.Event.ID).
		Str("emotion", res.Event.Emotion).
		Msg("clip ingested")
	if err := os.Remove(path); err != nil {
		w.log.Warn().Err(err).Str("path", path).Msg("removing ingested clip failed")
	}
}

// wantFile reports whether path looks like a finished recording. Hidden
// and partial files are skipped.
func wantFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(base))
	return ext == ".wav"
}
