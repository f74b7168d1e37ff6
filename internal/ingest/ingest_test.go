package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/soulsync-ai/soulsync/internal/classifier"
	"github.com/soulsync-ai/soulsync/internal/drift"
	"github.com/soulsync-ai/soulsync/internal/pipeline"
	"github.com/soulsync-ai/soulsync/internal/store"
)

// ---------------------------------------------------------------------------
// Debouncer tests
// ---------------------------------------------------------------------------

func TestDebouncerCollapsesBursts(t *testing.T) {
	var mu sync.Mutex
	var emitted []string

	d := NewDebouncer(50*time.Millisecond, func(path string) {
		mu.Lock()
		emitted = append(emitted, path)
		mu.Unlock()
	})
	defer d.Stop()

	for i := 0; i < 10; i++ {
		d.Feed("/tmp/clip.wav")
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(emitted) != 1 {
		t.Errorf("emitted %d times, want 1", len(emitted))
	}
}

func TestDebouncerDistinctPaths(t *testing.T) {
	var mu sync.Mutex
	emitted := make(map[string]int)

	d := NewDebouncer(30*time.Millisecond, func(path string) {
		mu.Lock()
		emitted[path]++
		mu.Unlock()
	})
	defer d.Stop()

	d.Feed("/tmp/a.wav")
	d.Feed("/tmp/b.wav")

	time.Sleep(120 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if emitted["/tmp/a.wav"] != 1 || emitted["/tmp/b.wav"] != 1 {
		t.Errorf("emissions = %v, want one per path", emitted)
	}
}

func TestDebouncerStopSuppressesPending(t *testing.T) {
	var mu sync.Mutex
	count := 0

	d := NewDebouncer(50*time.Millisecond, func(string) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	d.Feed("/tmp/clip.wav")
	d.Stop()

	time.Sleep(120 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if count != 0 {
		t.Errorf("emitted %d times after Stop, want 0", count)
	}
}

// ---------------------------------------------------------------------------
// Watcher tests
// ---------------------------------------------------------------------------

func TestWantFile(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"/drop/clip.wav", true},
		{"/drop/CLIP.WAV", true},
		{"/drop/.partial.wav", false},
		{"/drop/notes.txt", false},
		{"/drop/clip.mp3", false},
	}
	for _, tc := range cases {
		if got := wantFile(tc.path); got != tc.want {
			t.Errorf("wantFile(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

type stubClassifier struct {
	pred classifier.Prediction
}

func (s *stubClassifier) ClassifyText(ctx context.Context, text string) (classifier.Prediction, error) {
	return s.pred, nil
}

func (s *stubClassifier) ClassifyAudio(ctx context.Context, filename string, wav []byte) (classifier.Prediction, error) {
	return s.pred, nil
}

func TestWatcherIngestsDroppedClip(t *testing.T) {
	dir := t.TempDir()
	st, err := store.New(filepath.Join(t.TempDir(), "ingest.db"))
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	defer st.Close()

	clf := &stubClassifier{pred: classifier.Prediction{Emotion: "happy", Confidence: 90}}
	coord := pipeline.New(st, drift.New(drift.DefaultThreshold), nil, clf)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := New(coord, dir, 30*time.Millisecond)
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher a moment to register before dropping the file.
	time.Sleep(100 * time.Millisecond)

	clip := filepath.Join(dir, "take1.wav")
	if err := os.WriteFile(clip, []byte("RIFF....WAVE"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		n, err := st.HistoryCount()
		if err != nil {
			t.Fatalf("HistoryCount: %v", err)
		}
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("event never ingested, history count = %d", n)
		}
		time.Sleep(20 * time.Millisecond)
	}

	events, err := st.RecentEvents(1)
	if err != nil {
		t.Fatalf("RecentEvents: %v", err)
	}
	if events[0].Emotion != "happy" {
		t.Errorf("emotion = %q, want happy", events[0].Emotion)
	}
	if events[0].OriginLabel != "take1.wav" {
		t.Errorf("origin_label = %q, want take1.wav", events[0].OriginLabel)
	}

	// Successful ingest removes the clip.
	if _, err := os.Stat(clip); !os.IsNotExist(err) {
		t.Errorf("clip still present after ingest")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Error("watcher did not shut down")
	}
}

func TestWatcherProcessesExistingFiles(t *testing.T) {
	dir := t.TempDir()
	st, err := store.New(filepath.Join(t.TempDir(), "ingest.db"))
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	defer st.Close()

	if err := os.WriteFile(filepath.Join(dir, "leftover.wav"), []byte("RIFF"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	clf := &stubClassifier{pred: classifier.Prediction{Emotion: "calm", Confidence: 70}}
	coord := pipeline.New(st, drift.New(drift.DefaultThreshold), nil, clf)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := New(coord, dir, 30*time.Millisecond)
	go w.Run(ctx)

	deadline := time.Now().Add(3 * time.Second)
	for {
		n, err := st.HistoryCount()
		if err != nil {
			t.Fatalf("HistoryCount: %v", err)
		}
		if n == 1 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("leftover clip never ingested")
		}
		time.Sleep(20 * time.Millisecond)
	}
}
