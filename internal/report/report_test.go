package report

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/soulsync-ai/soulsync/internal/drift"
	"github.com/soulsync-ai/soulsync/internal/store"
)

func seedStore(t *testing.T, emotions []string) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "report.db")
	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	defer s.Close()

	for _, e := range emotions {
		if _, err := s.AppendEvent("text", "", e, 80, "test action"); err != nil {
			t.Fatalf("AppendEvent: %v", err)
		}
	}
	return dbPath
}

func TestGenerateStatus(t *testing.T) {
	dbPath := seedStore(t, []string{"calm", "sad", "angry"})

	r, err := GenerateStatus(dbPath)
	if err != nil {
		t.Fatalf("GenerateStatus: %v", err)
	}
	if r.Events != 3 {
		t.Errorf("events = %d, want 3", r.Events)
	}
	if r.LastEmotion != "angry" {
		t.Errorf("last emotion = %q, want angry", r.LastEmotion)
	}
	if r.DBSizeBytes == 0 {
		t.Error("db size should be non-zero")
	}
}

func TestGenerateStatus_EmptyLog(t *testing.T) {
	dbPath := seedStore(t, nil)

	r, err := GenerateStatus(dbPath)
	if err != nil {
		t.Fatalf("GenerateStatus: %v", err)
	}
	if r.Events != 0 {
		t.Errorf("events = %d, want 0", r.Events)
	}
	if r.Stability != 100 {
		t.Errorf("stability = %v, want 100 for empty log", r.Stability)
	}
	if r.LastEmotion != "" {
		t.Errorf("last emotion = %q, want empty", r.LastEmotion)
	}
}

func TestGenerateStability(t *testing.T) {
	dbPath := seedStore(t, []string{"calm", "sad", "angry", "happy"})

	r, err := GenerateStability(dbPath, 50, drift.DefaultThreshold)
	if err != nil {
		t.Fatalf("GenerateStability: %v", err)
	}
	if r.Window != 4 {
		t.Errorf("window = %d, want 4", r.Window)
	}
	if r.Metrics.AvgDrift != 3.0 {
		t.Errorf("avg_drift = %v, want 3.0", r.Metrics.AvgDrift)
	}
}

func TestFormatStatus(t *testing.T) {
	r := &StatusReport{
		DBPath:      "/tmp/x.db",
		Events:      12,
		Alerts:      2,
		DBSizeBytes: 4096,
		LastEmotion: "happy",
		LastSeen:    "2026-08-30 10:00:00 UTC",
		Stability:   83.5,
	}
	out := FormatStatus(r)
	for _, want := range []string{"Events:    12", "Alerts:    2", "happy", "83.50%"} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatStatus missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatHistory_Empty(t *testing.T) {
	if got := FormatHistory(nil); !strings.Contains(got, "no events") {
		t.Errorf("FormatHistory(nil) = %q", got)
	}
}

func TestFormatJSON(t *testing.T) {
	out := FormatJSON(map[string]int{"events": 3})
	if !strings.Contains(out, `"events": 3`) {
		t.Errorf("FormatJSON output unexpected: %s", out)
	}
}
