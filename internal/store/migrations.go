package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS reports (
	id                TEXT PRIMARY KEY,
	day               TEXT NOT NULL,
	type              TEXT NOT NULL,
	good_items        TEXT NOT NULL DEFAULT '[]',
	bad_items         TEXT NOT NULL DEFAULT '[]',
	published         INTEGER NOT NULL DEFAULT 0 CHECK(published IN (0, 1)),
	evaluated         INTEGER NOT NULL DEFAULT 0 CHECK(evaluated IN (0, 1)),
	eval_results      TEXT NOT NULL DEFAULT '[]',
	author_name       TEXT NOT NULL DEFAULT '',
	author_handle     TEXT NOT NULL DEFAULT '',
	author_id         INTEGER NOT NULL DEFAULT 0,
	source_message_id TEXT NOT NULL DEFAULT '',
	source_text       TEXT NOT NULL DEFAULT '',
	voice_urls        TEXT NOT NULL DEFAULT '[]',
	created_at        DATETIME NOT NULL,
	updated_at        DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS voice_notes (
	id           TEXT PRIMARY KEY,
	report_id    TEXT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
	path         TEXT NOT NULL,
	duration_sec INTEGER NOT NULL DEFAULT 0,
	source_url   TEXT NOT NULL DEFAULT '',
	sort_order   INTEGER NOT NULL DEFAULT 0,
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS app_state (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reports_day ON reports(day);
CREATE INDEX IF NOT EXISTS idx_reports_type ON reports(type);
CREATE INDEX IF NOT EXISTS idx_reports_source_message_id
	ON reports(source_message_id) WHERE source_message_id != '';
CREATE INDEX IF NOT EXISTS idx_voice_notes_report_id ON voice_notes(report_id);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE UNIQUE INDEX IF NOT EXISTS idx_reports_internal_slot
	ON reports(day, type) WHERE type IN ('regular', 'custom');

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
