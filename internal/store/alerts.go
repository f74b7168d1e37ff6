package store

import (
	"database/sql"
	"fmt"
	"time"
)

// DriftAlert is one recorded emotional transition. Alerts may be produced
// by the analyzer or reported by an external detector; magnitude is stored
// as given, without re-validation against the taxonomy.
type DriftAlert struct {
	ID             int64     `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	FromEmotion    string    `json:"from"`
	ToEmotion      string    `json:"to"`
	Magnitude      int       `json:"magnitude"`
	ConfidenceFrom float64   `json:"confidence_from"`
	ConfidenceTo   float64   `json:"confidence_to"`
	Metadata       string    `json:"metadata,omitempty"`
}

// AppendAlert persists one drift alert, assigning its id and timestamp.
// Absent confidences default to 0.
func (s *Store) AppendAlert(fromEmotion, toEmotion string, magnitude int, confidenceFrom, confidenceTo float64, metadata string) (DriftAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	res, err := s.db.Exec(
		`INSERT INTO alerts (timestamp, from_emotion, to_emotion, magnitude, confidence_from, confidence_to, metadata)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		now.Format(time.RFC3339Nano), fromEmotion, toEmotion, magnitude, confidenceFrom, confidenceTo, metadata,
	)
	if err != nil {
		return DriftAlert{}, fmt.Errorf("insert alert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return DriftAlert{}, fmt.Errorf("alert insert id: %w", err)
	}

	return DriftAlert{
		ID:             id,
		Timestamp:      now,
		FromEmotion:    fromEmotion,
		ToEmotion:      toEmotion,
		Magnitude:      magnitude,
		ConfidenceFrom: confidenceFrom,
		ConfidenceTo:   confidenceTo,
		Metadata:       metadata,
	}, nil
}

// RecentAlerts returns at most limit alerts, most recently inserted first,
// with the same limit bounds as RecentEvents.
func (s *Store) RecentAlerts(limit int) ([]DriftAlert, error) {
	rows, err := s.db.Query(
		`SELECT id, timestamp, from_emotion, to_emotion, magnitude, confidence_from, confidence_to, metadata
		 FROM alerts ORDER BY id DESC LIMIT ?`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()
	return scanAlerts(rows)
}

func scanAlerts(rows *sql.Rows) ([]DriftAlert, error) {
	var alerts []DriftAlert
	for rows.Next() {
		var a DriftAlert
		var ts string
		if err := rows.Scan(&a.ID, &ts, &a.FromEmotion, &a.ToEmotion, &a.Magnitude, &a.ConfidenceFrom, &a.ConfidenceTo, &a.Metadata); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			a.Timestamp = t
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}
