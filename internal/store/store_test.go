package store

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := New(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNew_InitIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	s1, err := New(dbPath)
	if err != nil {
		t.Fatalf("first New: %v", err)
	}
	if _, err := s1.AppendEvent("text", "", "happy", 90, "msg"); err != nil {
		t.Fatalf("AppendEvent: %v", err)
	}
	s1.Close()

	// Reopening must re-run schema init without error or data loss.
	s2, err := New(dbPath)
	if err != nil {
		t.Fatalf("second New: %v", err)
	}
	defer s2.Close()

	count, err := s2.HistoryCount()
	if err != nil {
		t.Fatalf("HistoryCount: %v", err)
	}
	if count != 1 {
		t.Errorf("HistoryCount = %d, want 1", count)
	}
}

func TestAppendEvent_AssignsIncreasingIDs(t *testing.T) {
	s := setupTestStore(t)

	var last int64
	for i := 0; i < 5; i++ {
		e, err := s.AppendEvent("text", "", "happy", 75.5, "Turning on bright ambient lights")
		if err != nil {
			t.Fatalf("AppendEvent: %v", err)
		}
		if e.ID <= last {
			t.Errorf("id %d not greater than previous %d", e.ID, last)
		}
		last = e.ID
	}
}

func TestAppendEvent_ConcurrentWriters(t *testing.T) {
	s := setupTestStore(t)

	const writers = 8
	const perWriter = 20

	ids := make(chan int64, writers*perWriter)
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				e, err := s.AppendEvent("audio", "clip.wav", "calm", 80, "msg")
				if err != nil {
					t.Errorf("AppendEvent: %v", err)
					return
				}
				ids <- e.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		if seen[id] {
			t.Errorf("duplicate id %d", id)
		}
		seen[id] = true
	}
	if len(seen) != writers*perWriter {
		t.Errorf("got %d distinct ids, want %d", len(seen), writers*perWriter)
	}

	count, err := s.HistoryCount()
	if err != nil {
		t.Fatalf("HistoryCount: %v", err)
	}
	if count != writers*perWriter {
		t.Errorf("HistoryCount = %d, want %d", count, writers*perWriter)
	}
}

func TestRecentEvents_NewestFirstAndBounded(t *testing.T) {
	s := setupTestStore(t)

	emotions := []string{"neutral", "calm", "happy", "sad"}
	for _, e := range emotions {
		if _, err := s.AppendEvent("text", "", e, 50, "msg"); err != nil {
			t.Fatalf("AppendEvent: %v", err)
		}
	}

	events, err := s.RecentEvents(2)
	if err != nil {
		t.Fatalf("RecentEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	if events[0].Emotion != "sad" || events[1].Emotion != "happy" {
		t.Errorf("order = [%s, %s], want [sad, happy]", events[0].Emotion, events[1].Emotion)
	}
	if events[0].ID <= events[1].ID {
		t.Errorf("ids not descending: %d then %d", events[0].ID, events[1].ID)
	}
}

func TestRecentEvents_Idempotent(t *testing.T) {
	s := setupTestStore(t)
	for i := 0; i < 3; i++ {
		if _, err := s.AppendEvent("text", "", "happy", 60, "msg"); err != nil {
			t.Fatalf("AppendEvent: %v", err)
		}
	}

	first, err := s.RecentEvents(10)
	if err != nil {
		t.Fatalf("RecentEvents: %v", err)
	}
	second, err := s.RecentEvents(10)
	if err != nil {
		t.Fatalf("RecentEvents: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("row %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, DefaultLimit},
		{-5, DefaultLimit},
		{10, 10},
		{MaxLimit, MaxLimit},
		{MaxLimit + 1, MaxLimit},
	}
	for _, tt := range tests {
		if got := clampLimit(tt.in); got != tt.want {
			t.Errorf("clampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestAppendAlert_RoundTrip(t *testing.T) {
	s := setupTestStore(t)

	a, err := s.AppendAlert("calm", "angry", 5, 80, 92.5, "client-side detector")
	if err != nil {
		t.Fatalf("AppendAlert: %v", err)
	}
	if a.ID == 0 {
		t.Error("alert id not assigned")
	}
	if a.Timestamp.IsZero() {
		t.Error("alert timestamp not assigned")
	}

	alerts, err := s.RecentAlerts(10)
	if err != nil {
		t.Fatalf("RecentAlerts: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("len(alerts) = %d, want 1", len(alerts))
	}
	got := alerts[0]
	if got.FromEmotion != "calm" || got.ToEmotion != "angry" || got.Magnitude != 5 {
		t.Errorf("alert = %+v", got)
	}
	if got.ConfidenceFrom != 80 || got.ConfidenceTo != 92.5 {
		t.Errorf("confidences = %v, %v", got.ConfidenceFrom, got.ConfidenceTo)
	}
	if got.Metadata != "client-side detector" {
		t.Errorf("metadata = %q", got.Metadata)
	}
}

func TestRecentAlerts_NewestFirst(t *testing.T) {
	s := setupTestStore(t)
	if _, err := s.AppendAlert("neutral", "sad", 4, 0, 0, ""); err != nil {
		t.Fatalf("AppendAlert: %v", err)
	}
	if _, err := s.AppendAlert("sad", "happy", 2, 0, 0, ""); err != nil {
		t.Fatalf("AppendAlert: %v", err)
	}

	alerts, err := s.RecentAlerts(10)
	if err != nil {
		t.Fatalf("RecentAlerts: %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("len(alerts) = %d, want 2", len(alerts))
	}
	if alerts[0].ToEmotion != "happy" {
		t.Errorf("newest alert to = %s, want happy", alerts[0].ToEmotion)
	}
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	dir, err := os.MkdirTemp("", "soulsync-store-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	dbPath := filepath.Join(dir, "soulsync.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e, err := s.AppendEvent("audio", "take1.wav", "fearful", 66.6, "Locking doors and enabling security alert")
	if err != nil {
		t.Fatalf("AppendEvent: %v", err)
	}
	s.Close()

	s2, err := New(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	events, err := s2.RecentEvents(1)
	if err != nil {
		t.Fatalf("RecentEvents: %v", err)
	}
	if len(events) != 1 || events[0].ID != e.ID || events[0].Emotion != "fearful" {
		t.Errorf("round trip = %+v, want id=%d emotion=fearful", events, e.ID)
	}
	if events[0].OriginLabel != "take1.wav" {
		t.Errorf("origin = %q, want take1.wav", events[0].OriginLabel)
	}
}
