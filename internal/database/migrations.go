package database

// migrationsSQL holds every schema migration keyed by version. Migrations
// are embedded rather than shipped as loose files so a deployed binary is
// self-contained.
var migrationsSQL = map[int]string{
	1: `
		CREATE TABLE series (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			kind       TEXT NOT NULL CHECK (kind IN ('sermon', 'devotion', 'english')),
			title      TEXT NOT NULL,
			start_date TEXT,
			end_date   TEXT,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE TABLE sermons (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			name         TEXT NOT NULL,
			lesson_type  TEXT NOT NULL DEFAULT '',
			preacher     TEXT NOT NULL DEFAULT '',
			sermon_date  TEXT,
			status       TEXT NOT NULL DEFAULT 'draft',
			series_id    INTEGER REFERENCES series(id) ON DELETE SET NULL,
			content      TEXT NOT NULL DEFAULT '',
			notes        TEXT NOT NULL DEFAULT '',
			rating       INTEGER NOT NULL DEFAULT 0,
			primary_text TEXT NOT NULL DEFAULT '',
			theme        TEXT NOT NULL DEFAULT '',
			audience     TEXT NOT NULL DEFAULT '',
			season       TEXT NOT NULL DEFAULT '',
			key_takeaway TEXT NOT NULL DEFAULT '',
			hashtags     TEXT NOT NULL DEFAULT '[]',
			info_added   INTEGER NOT NULL DEFAULT 0,
			created_at   TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at   TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE INDEX idx_sermons_date ON sermons(sermon_date);
		CREATE INDEX idx_sermons_series ON sermons(series_id);

		CREATE TABLE devotion_lessons (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			series_id      INTEGER REFERENCES series(id) ON DELETE SET NULL,
			title          TEXT NOT NULL,
			week           INTEGER NOT NULL DEFAULT 0,
			lesson         INTEGER NOT NULL DEFAULT 0,
			day            INTEGER NOT NULL DEFAULT 0,
			scheduled_date TEXT,
			prepared       INTEGER NOT NULL DEFAULT 0,
			created_at     TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at     TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE INDEX idx_devotion_lessons_date ON devotion_lessons(scheduled_date);
		CREATE INDEX idx_devotion_lessons_series ON devotion_lessons(series_id);

		CREATE TABLE english_classes (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			series_id  INTEGER REFERENCES series(id) ON DELETE SET NULL,
			title      TEXT NOT NULL,
			week       INTEGER NOT NULL DEFAULT 0,
			lesson     INTEGER NOT NULL DEFAULT 0,
			class_date TEXT,
			status     TEXT NOT NULL DEFAULT 'scheduled'
			           CHECK (status IN ('scheduled', 'completed', 'cancelled')),
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE INDEX idx_english_classes_date ON english_classes(class_date);
		CREATE INDEX idx_english_classes_series ON english_classes(series_id);
	`,
}
