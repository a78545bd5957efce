package migration

// Registry returns the ordered schema migrations for the workspace session
// store.
func Registry() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "initial schema",
			SQL: `
CREATE TABLE workspaces (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE users (
	id INTEGER PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	display_name TEXT NOT NULL,
	token_hash TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE roles (
	id TEXT PRIMARY KEY,
	workspace_id INTEGER NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	is_owner_role INTEGER NOT NULL DEFAULT 0,
	permissions TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX idx_roles_workspace ON roles(workspace_id);

CREATE TABLE user_roles (
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	role_id TEXT NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
	PRIMARY KEY (user_id, role_id)
);

CREATE TABLE session_types (
	id TEXT PRIMARY KEY,
	workspace_id INTEGER NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX idx_session_types_workspace ON session_types(workspace_id);

CREATE TABLE session_type_hosting_roles (
	session_type_id TEXT NOT NULL REFERENCES session_types(id) ON DELETE CASCADE,
	role_id TEXT NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
	PRIMARY KEY (session_type_id, role_id)
);

CREATE TABLE schedules (
	id TEXT PRIMARY KEY,
	session_type_id TEXT NOT NULL REFERENCES session_types(id) ON DELETE CASCADE,
	weekdays INTEGER NOT NULL,
	hour INTEGER NOT NULL CHECK (hour BETWEEN 0 AND 23),
	minute INTEGER NOT NULL CHECK (minute BETWEEN 0 AND 59),
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX idx_schedules_session_type ON schedules(session_type_id);

CREATE TABLE sessions (
	id TEXT PRIMARY KEY,
	session_type_id TEXT NOT NULL REFERENCES session_types(id) ON DELETE CASCADE,
	date TEXT NOT NULL,
	owner_id INTEGER REFERENCES users(id),
	started_at TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE UNIQUE INDEX idx_sessions_type_date ON sessions(session_type_id, date);
CREATE INDEX idx_sessions_date ON sessions(date);

CREATE TABLE auth_sessions (
	id TEXT PRIMARY KEY,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	token TEXT NOT NULL UNIQUE,
	expires_at TEXT NOT NULL,
	revoked_at TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX idx_auth_sessions_user ON auth_sessions(user_id);
`,
		},
	}
}
