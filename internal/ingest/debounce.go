package ingest

import (
	"sync"
	"time"
)

// Debouncer collapses rapid filesystem events for the same path into a
// single emission after a quiet window. Recorders tend to write WAV files
// in many small chunks; waiting for silence avoids classifying half-written
// clips. Safe for concurrent use.
type Debouncer struct {
	window time.Duration
	emit   func(path string)

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
}

// NewDebouncer creates a Debouncer that waits for window of silence on a
// path before emitting it.
func NewDebouncer(window time.Duration, emit func(path string)) *Debouncer {
	return &Debouncer{
		window: window,
		emit:   emit,
		timers: make(map[string]*time.Timer),
	}
}

// Feed receives a raw event for path. An existing timer for the path is
// reset; otherwise a new one is started.
func (d *Debouncer) Feed(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if t, ok := d.timers[path]; ok {
		t.Reset(d.window)
		return
	}
	d.timers[path] = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		_, ok := d.timers[path]
		delete(d.timers, path)
		stopped := d.stopped
		d.mu.Unlock()
		if ok && !stopped {
			d.emit(path)
		}
	})
}

// Stop cancels all pending timers. After Stop returns, subsequent Feed
// calls are no-ops and no further emissions happen.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	for path, t := range d.timers {
		t.Stop()
		delete(d.timers, path)
	}
}
