package store

// schemaVersion is the current schema version. Increment when adding migrations.
const schemaVersion = 1

// migrations maps version numbers to SQL statements that bring the schema
// from (version-1) to (version). Version 1 is the initial schema.
var migrations = map[int]string{
	1: `
-- Append-only log of classified emotion events.
CREATE TABLE IF NOT EXISTS history (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp    TEXT    NOT NULL,
	source_type  TEXT    NOT NULL,
	origin_label TEXT    NOT NULL DEFAULT '',
	emotion      TEXT    NOT NULL,
	confidence   REAL    NOT NULL DEFAULT 0,
	action       TEXT    NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_history_timestamp ON history(timestamp);
CREATE INDEX IF NOT EXISTS idx_history_emotion ON history(emotion);

-- Append-only log of detected or externally reported drift transitions.
CREATE TABLE IF NOT EXISTS alerts (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp       TEXT    NOT NULL,
	from_emotion    TEXT    NOT NULL,
	to_emotion      TEXT    NOT NULL,
	magnitude       INTEGER NOT NULL DEFAULT 0,
	confidence_from REAL    NOT NULL DEFAULT 0,
	confidence_to   REAL    NOT NULL DEFAULT 0,
	metadata        TEXT    NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_alerts_timestamp ON alerts(timestamp);
`,
}
