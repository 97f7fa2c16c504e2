package database

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name VARCHAR(255) NOT NULL,
		speaker VARCHAR(255) NOT NULL CHECK (speaker <> ''),
		description TEXT,
		session_date TIMESTAMPTZ,
		unique_url_slug VARCHAR(300) NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS questions (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		session_id UUID NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		content TEXT NOT NULL CHECK (char_length(content) BETWEEN 5 AND 500),
		author_name VARCHAR(255) NOT NULL DEFAULT 'Anonymous',
		is_answered BOOLEAN NOT NULL DEFAULT FALSE,
		upvote_count INTEGER NOT NULL DEFAULT 0 CHECK (upvote_count >= 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_questions_session ON questions (session_id, is_answered)`,
	`CREATE TABLE IF NOT EXISTS invites (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		token VARCHAR(64) NOT NULL UNIQUE,
		created_by_moderator_id VARCHAR(64),
		expires_at TIMESTAMPTZ NOT NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'used', 'expired')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		id CHAR(36) NOT NULL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		speaker VARCHAR(255) NOT NULL CHECK (speaker <> ''),
		description TEXT NULL,
		session_date DATETIME(6) NULL,
		unique_url_slug VARCHAR(300) NOT NULL,
		created_at DATETIME(6) NOT NULL,
		UNIQUE KEY uq_sessions_slug (unique_url_slug)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS questions (
		id CHAR(36) NOT NULL PRIMARY KEY,
		session_id CHAR(36) NOT NULL,
		content TEXT NOT NULL CHECK (CHAR_LENGTH(content) BETWEEN 5 AND 500),
		author_name VARCHAR(255) NOT NULL DEFAULT 'Anonymous',
		is_answered TINYINT(1) NOT NULL DEFAULT 0,
		upvote_count INT NOT NULL DEFAULT 0 CHECK (upvote_count >= 0),
		created_at DATETIME(6) NOT NULL,
		KEY idx_questions_session (session_id, is_answered),
		CONSTRAINT fk_questions_session FOREIGN KEY (session_id) REFERENCES sessions (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS invites (
		id CHAR(36) NOT NULL PRIMARY KEY,
		token VARCHAR(64) NOT NULL,
		created_by_moderator_id VARCHAR(64) NULL,
		expires_at DATETIME(6) NOT NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'used', 'expired')),
		created_at DATETIME(6) NOT NULL,
		UNIQUE KEY uq_invites_token (token)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT NOT NULL PRIMARY KEY,
		name TEXT NOT NULL,
		speaker TEXT NOT NULL CHECK (speaker <> ''),
		description TEXT,
		session_date DATETIME,
		unique_url_slug TEXT NOT NULL UNIQUE,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS questions (
		id TEXT NOT NULL PRIMARY KEY,
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		content TEXT NOT NULL CHECK (length(content) BETWEEN 5 AND 500),
		author_name TEXT NOT NULL DEFAULT 'Anonymous',
		is_answered INTEGER NOT NULL DEFAULT 0,
		upvote_count INTEGER NOT NULL DEFAULT 0 CHECK (upvote_count >= 0),
		created_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_questions_session ON questions (session_id, is_answered)`,
	`CREATE TABLE IF NOT EXISTS invites (
		id TEXT NOT NULL PRIMARY KEY,
		token TEXT NOT NULL UNIQUE,
		created_by_moderator_id TEXT,
		expires_at DATETIME NOT NULL,
		status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'used', 'expired')),
		created_at DATETIME NOT NULL
	)`,
}

// sessionOrderColumns lists the columns a session page may be ordered by.
var sessionOrderColumns = map[string]bool{
	"created_at":   true,
	"session_date": true,
	"name":         true,
}

// updatableQuestionColumns lists the columns a moderator may change.
var updatableQuestionColumns = map[string]bool{
	"is_answered": true,
}
