// Package report generates terminal-friendly summaries straight from the
// SQLite database. The running service is not required: reports open the
// store read-style, compute, and close.
package report

import (
	"fmt"

	"github.com/soulsync-ai/soulsync/internal/drift"
	"github.com/soulsync-ai/soulsync/internal/store"
)

// StatusReport summarizes the state of the event log.
type StatusReport struct {
	DBPath      string  `json:"db_path"`
	Events      int64   `json:"events"`
	Alerts      int64   `json:"alerts"`
	DBSizeBytes int64   `json:"db_size_bytes"`
	LastEmotion string  `json:"last_emotion,omitempty"`
	LastSeen    string  `json:"last_seen,omitempty"`
	Stability   float64 `json:"stability"`
}

// StabilityReport pairs drift metrics with the window they cover.
type StabilityReport struct {
	Window  int           `json:"window"`
	Metrics drift.Metrics `json:"metrics"`
}

// GenerateStatus opens the database at dbPath and summarizes it.
func GenerateStatus(dbPath string) (*StatusReport, error) {
	s, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer s.Close()

	events, err := s.HistoryCount()
	if err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	alerts, err := s.AlertsCount()
	if err != nil {
		return nil, fmt.Errorf("count alerts: %w", err)
	}
	size, err := s.DBSizeBytes()
	if err != nil {
		return nil, fmt.Errorf("database size: %w", err)
	}

	r := &StatusReport{
		DBPath:      dbPath,
		Events:      events,
		Alerts:      alerts,
		DBSizeBytes: size,
	}

	recent, err := s.RecentEvents(store.DefaultLimit)
	if err != nil {
		return nil, fmt.Errorf("recent events: %w", err)
	}
	if len(recent) > 0 {
		r.LastEmotion = recent[0].Emotion
		r.LastSeen = recent[0].Timestamp.Format("2006-01-02 15:04:05 MST")
	}

	metrics := drift.New(drift.DefaultThreshold).Analyze(drift.FromRecent(recent))
	r.Stability = metrics.Stability
	return r, nil
}

// GenerateStability analyzes the most recent window of events.
func GenerateStability(dbPath string, window, threshold int) (*StabilityReport, error) {
	s, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer s.Close()

	recent, err := s.RecentEvents(window)
	if err != nil {
		return nil, fmt.Errorf("recent events: %w", err)
	}
	metrics := drift.New(threshold).Analyze(drift.FromRecent(recent))
	return &StabilityReport{Window: len(recent), Metrics: metrics}, nil
}

// GenerateHistory returns the most recent events, newest first.
func GenerateHistory(dbPath string, limit int) ([]store.EmotionEvent, error) {
	s, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer s.Close()
	return s.RecentEvents(limit)
}

// GenerateAlerts returns the most recent drift alerts, newest first.
func GenerateAlerts(dbPath string, limit int) ([]store.DriftAlert, error) {
	s, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer s.Close()
	return s.RecentAlerts(limit)
}
