package postgres

// GetMigrations returns all embedded migrations in order.
func GetMigrations() []Migration {
	return []Migration{
		migration001InitialSchema(),
		migration002LessonIndexes(),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: dictionaries, lessons, users
// ══════════════════════════════════════════════════════════════════════════════

func migration001InitialSchema() Migration {
	return Migration{
		Version: 1,
		Name:    "initial_schema",
		UpSQL: `
-- Reference dictionaries. Ids are assigned upstream; rows are only ever
-- upserted, never generated locally.
CREATE TABLE IF NOT EXISTS groups (
    id            INTEGER PRIMARY KEY,
    name          TEXT NOT NULL,
    real_group_id INTEGER
);

CREATE TABLE IF NOT EXISTS tutors (
    id   INTEGER PRIMARY KEY,
    name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS rooms (
    id       INTEGER PRIMARY KEY,
    name     TEXT NOT NULL,
    building TEXT
);

-- Lesson occurrences keyed by the upstream source id. content_hash is the
-- SHA-256 fingerprint of the semantic fields; last_seen_at drives retention.
CREATE TABLE IF NOT EXISTS lessons (
    source_id        BIGINT PRIMARY KEY,
    schedule_cell_id INTEGER NOT NULL,
    date             DATE NOT NULL,
    time_slot        INTEGER NOT NULL,
    subgroup_name    TEXT,
    subject_name     TEXT NOT NULL,
    lesson_type      TEXT NOT NULL DEFAULT '',
    content_hash     CHAR(64) NOT NULL,
    last_seen_at     TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    group_id         INTEGER NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
    tutor_id         INTEGER NOT NULL REFERENCES tutors(id),
    room_id          INTEGER NOT NULL REFERENCES rooms(id)
);

-- The slice of the bot's user table the worker reads: which groups have at
-- least one live subscriber.
CREATE TABLE IF NOT EXISTS users (
    telegram_id BIGINT PRIMARY KEY,
    group_id    INTEGER REFERENCES groups(id),
    is_blocked  BOOLEAN NOT NULL DEFAULT FALSE,
    created_at  TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
`,
		DownSQL: `
DROP TABLE IF EXISTS users;
DROP TABLE IF EXISTS lessons;
DROP TABLE IF EXISTS rooms;
DROP TABLE IF EXISTS tutors;
DROP TABLE IF EXISTS groups;
`,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: query-path indexes
// ══════════════════════════════════════════════════════════════════════════════

func migration002LessonIndexes() Migration {
	return Migration{
		Version: 2,
		Name:    "lesson_indexes",
		UpSQL: `
-- Reconciliation loads all lessons of one group.
CREATE INDEX IF NOT EXISTS idx_lessons_group_id ON lessons(group_id);

-- Reminder scans look up by day and slot.
CREATE INDEX IF NOT EXISTS idx_lessons_date_slot ON lessons(date, time_slot);

-- Retention sweeps by last_seen_at.
CREATE INDEX IF NOT EXISTS idx_lessons_last_seen_at ON lessons(last_seen_at);

-- Hot-group detection scans non-blocked users by group.
CREATE INDEX IF NOT EXISTS idx_users_group_id ON users(group_id) WHERE is_blocked = FALSE;
`,
		DownSQL: `
DROP INDEX IF EXISTS idx_users_group_id;
DROP INDEX IF EXISTS idx_lessons_last_seen_at;
DROP INDEX IF EXISTS idx_lessons_date_slot;
DROP INDEX IF EXISTS idx_lessons_group_id;
`,
	}
}
