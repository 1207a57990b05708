package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Statements are idempotent and re-run
// on every open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ADD COLUMN is re-run on every open.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS modules (
		id          TEXT PRIMARY KEY,
		course_id   TEXT NOT NULL,
		title       TEXT NOT NULL DEFAULT '',
		order_index INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_modules_course ON modules(course_id)`,

	`CREATE TABLE IF NOT EXISTS module_contents (
		join_id     TEXT PRIMARY KEY,
		source_id   TEXT NOT NULL DEFAULT '',
		module_id   TEXT NOT NULL REFERENCES modules(id) ON DELETE CASCADE,
		course_id   TEXT NOT NULL,
		type        TEXT NOT NULL
		            CHECK(type IN ('video','audio','image','document','external','assessment','assignment','scorm')),
		title       TEXT NOT NULL DEFAULT '',
		order_index INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_module_contents_module ON module_contents(module_id)`,
	`CREATE INDEX IF NOT EXISTS idx_module_contents_source ON module_contents(source_id)`,

	`CREATE TABLE IF NOT EXISTS progress_records (
		id               TEXT PRIMARY KEY,
		user_id          TEXT NOT NULL,
		client_id        TEXT NOT NULL DEFAULT '',
		course_id        TEXT NOT NULL,
		content_id       TEXT NOT NULL,
		content_type     TEXT NOT NULL,
		percentage       INTEGER NOT NULL DEFAULT 0 CHECK(percentage BETWEEN 0 AND 100),
		completed        INTEGER NOT NULL DEFAULT 0,
		status           TEXT NOT NULL DEFAULT 'not_started'
		                 CHECK(status IN ('not_started','started','in_progress','completed','unknown')),
		view_count       INTEGER NOT NULL DEFAULT 0,
		play_count       INTEGER NOT NULL DEFAULT 0,
		payload          TEXT NOT NULL DEFAULT '',
		last_activity_at TEXT NOT NULL,
		completed_at     TEXT,
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_progress_key
		ON progress_records(user_id, client_id, course_id, content_id, content_type)`,
	`CREATE INDEX IF NOT EXISTS idx_progress_course ON progress_records(user_id, course_id)`,

	`CREATE TABLE IF NOT EXISTS requirements (
		id         TEXT PRIMARY KEY,
		course_id  TEXT NOT NULL,
		phase      TEXT NOT NULL CHECK(phase IN ('pre','post')),
		type       TEXT NOT NULL,
		target_id  TEXT NOT NULL DEFAULT '',
		required   INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_requirements_course ON requirements(course_id, phase)`,

	`CREATE TABLE IF NOT EXISTS assessment_attempts (
		id            TEXT PRIMARY KEY,
		assessment_id TEXT NOT NULL,
		course_id     TEXT NOT NULL,
		user_id       TEXT NOT NULL,
		graded        INTEGER NOT NULL DEFAULT 0,
		passed        INTEGER,
		score         REAL NOT NULL DEFAULT 0,
		attempted_at  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_attempts_lookup
		ON assessment_attempts(course_id, user_id, assessment_id, attempted_at)`,

	`CREATE TABLE IF NOT EXISTS submissions (
		id           TEXT PRIMARY KEY,
		kind         TEXT NOT NULL CHECK(kind IN ('survey','assignment','feedback')),
		target_id    TEXT NOT NULL,
		course_id    TEXT NOT NULL,
		user_id      TEXT NOT NULL,
		submitted_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_submissions_lookup
		ON submissions(course_id, user_id, kind, target_id)`,
}
