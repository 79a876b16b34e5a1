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

CREATE TABLE IF NOT EXISTS notifications (
	id        TEXT PRIMARY KEY,
	message   TEXT NOT NULL,
	type      TEXT NOT NULL,
	priority  TEXT NOT NULL DEFAULT 'MEDIUM',
	timestamp DATETIME NOT NULL,
	read      INTEGER NOT NULL DEFAULT 0 CHECK(read IN (0, 1))
);

CREATE INDEX IF NOT EXISTS idx_notifications_timestamp ON notifications(timestamp);
CREATE INDEX IF NOT EXISTS idx_notifications_read ON notifications(read);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_notifications_type_timestamp
	ON notifications(type, timestamp);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
