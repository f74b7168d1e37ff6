package store

import (
	"database/sql"
	"fmt"
	"time"
)

// EmotionEvent is one persisted classification result. Events are immutable
// once written; the action descriptor is frozen at write time so later
// changes to the action table never rewrite history.
type EmotionEvent struct {
	ID          int64     `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	SourceType  string    `json:"source_type"`
	OriginLabel string    `json:"origin_label,omitempty"`
	Emotion     string    `json:"emotion"`
	Confidence  float64   `json:"confidence"`
	Action      string    `json:"action"`
}

// AppendEvent persists one emotion event, assigning its id and timestamp.
// The caller is expected to have normalized the emotion label and clamped
// the confidence; the store records what it is given.
func (s *Store) AppendEvent(sourceType, originLabel, emotion string, confidence float64, actionMsg string) (EmotionEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	res, err := s.db.Exec(
		`INSERT INTO history (timestamp, source_type, origin_label, emotion, confidence, action)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		now.Format(time.RFC3339Nano), sourceType, originLabel, emotion, confidence, actionMsg,
	)
	if err != nil {
		return EmotionEvent{}, fmt.Errorf("insert history: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return EmotionEvent{}, fmt.Errorf("history insert id: %w", err)
	}

	return EmotionEvent{
		ID:          id,
		Timestamp:   now,
		SourceType:  sourceType,
		OriginLabel: originLabel,
		Emotion:     emotion,
		Confidence:  confidence,
		Action:      actionMsg,
	}, nil
}

// RecentEvents returns at most limit events, most recently inserted first.
// The limit is clamped to [1, MaxLimit] with DefaultLimit for non-positive
// input.
func (s *Store) RecentEvents(limit int) ([]EmotionEvent, error) {
	rows, err := s.db.Query(
		`SELECT id, timestamp, source_type, origin_label, emotion, confidence, action
		 FROM history ORDER BY id DESC LIMIT ?`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]EmotionEvent, error) {
	var events []EmotionEvent
	for rows.Next() {
		var e EmotionEvent
		var ts string
		if err := rows.Scan(&e.ID, &ts, &e.SourceType, &e.OriginLabel, &e.Emotion, &e.Confidence, &e.Action); err != nil {
			return nil, err
		}
		// A malformed timestamp degrades to the zero time instead of
		// aborting the read; the analyzer tolerates it.
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			e.Timestamp = t
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
