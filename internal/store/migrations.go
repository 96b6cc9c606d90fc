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

CREATE TABLE IF NOT EXISTS lists (
	id         TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	name       TEXT NOT NULL,
	position   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id          TEXT PRIMARY KEY,
	list_id     TEXT NOT NULL REFERENCES lists(id) ON DELETE CASCADE,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	assignees   TEXT NOT NULL DEFAULT '[]',
	labels      TEXT NOT NULL DEFAULT '[]',
	start_date  DATETIME,
	due_date    DATETIME,
	cover_url   TEXT NOT NULL DEFAULT '',
	position    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id          TEXT PRIMARY KEY,
	target_kind TEXT NOT NULL,
	target_id   TEXT NOT NULL,
	sender_id   TEXT NOT NULL,
	body        TEXT NOT NULL DEFAULT '',
	file_url    TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL,
	read        INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS notifications (
	id          TEXT PRIMARY KEY,
	target_kind TEXT NOT NULL,
	target_id   TEXT NOT NULL,
	sender_id   TEXT NOT NULL DEFAULT '',
	message     TEXT NOT NULL,
	read        INTEGER NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_lists_project ON lists(project_id, position);
CREATE INDEX IF NOT EXISTS idx_tasks_list ON tasks(list_id, position);
CREATE INDEX IF NOT EXISTS idx_messages_target ON messages(target_kind, target_id, created_at);
CREATE INDEX IF NOT EXISTS idx_notifications_read ON notifications(read);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
