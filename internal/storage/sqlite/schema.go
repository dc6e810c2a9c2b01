// ABOUTME: SQLite schema for the three-tier memory store
// ABOUTME: Sessions/messages (L3), summaries (L2), project knowledge (L1), entities
package sqlite

// Schema contains all SQL statements for database initialization
const Schema = `
-- Tier 3: raw sessions normalized from transcript sources
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    source TEXT NOT NULL,
    project_path TEXT,
    project_name TEXT,
    cwd TEXT,
    model TEXT,
    git_branch TEXT,
    first_message_at INTEGER,
    last_message_at INTEGER,
    message_count INTEGER DEFAULT 0,
    user_message_count INTEGER DEFAULT 0,
    total_tokens INTEGER DEFAULT 0,
    compaction_count INTEGER DEFAULT 0,
    tools_used TEXT DEFAULT '[]',
    tier TEXT DEFAULT 'L3',
    raw_path TEXT,
    ingested_at INTEGER,
    title TEXT
);

CREATE TABLE IF NOT EXISTS messages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    ordinal INTEGER NOT NULL,
    role TEXT NOT NULL,
    content_type TEXT DEFAULT 'text',
    content_text TEXT,
    content_json TEXT,
    tool_name TEXT,
    token_count INTEGER DEFAULT 0,
    created_at INTEGER,
    UNIQUE(session_id, ordinal)
);

-- Full-text index over message content, kept in sync by triggers
CREATE VIRTUAL TABLE IF NOT EXISTS messages_fts USING fts5(
    content_text,
    content='messages',
    content_rowid='id',
    tokenize='porter unicode61'
);

CREATE TRIGGER IF NOT EXISTS messages_ai AFTER INSERT ON messages BEGIN
    INSERT INTO messages_fts(rowid, content_text) VALUES (new.id, new.content_text);
END;
CREATE TRIGGER IF NOT EXISTS messages_ad AFTER DELETE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, content_text) VALUES ('delete', old.id, old.content_text);
END;
CREATE TRIGGER IF NOT EXISTS messages_au AFTER UPDATE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, content_text) VALUES ('delete', old.id, old.content_text);
    INSERT INTO messages_fts(rowid, content_text) VALUES (new.id, new.content_text);
END;

-- Tier 2: one structured summary per session
CREATE TABLE IF NOT EXISTS session_summaries (
    session_id TEXT PRIMARY KEY REFERENCES sessions(id) ON DELETE CASCADE,
    summary_text TEXT NOT NULL,
    key_decisions TEXT DEFAULT '[]',
    files_touched TEXT DEFAULT '[]',
    commands_run TEXT DEFAULT '[]',
    outcome TEXT DEFAULT 'partial',
    generated_at INTEGER,
    generator_backend TEXT
);

-- Tier 1: distilled per-project knowledge
CREATE TABLE IF NOT EXISTS project_knowledge (
    id TEXT PRIMARY KEY,
    project_path TEXT NOT NULL,
    knowledge_type TEXT NOT NULL,
    content TEXT NOT NULL,
    confidence REAL DEFAULT 0.5,
    evidence_count INTEGER DEFAULT 1,
    source_sessions TEXT DEFAULT '[]',
    first_seen_at INTEGER,
    last_confirmed_at INTEGER
);

-- Regex-extracted artifacts
CREATE TABLE IF NOT EXISTS entities (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    entity_type TEXT NOT NULL,
    value TEXT NOT NULL,
    first_seen INTEGER,
    last_seen INTEGER,
    seen_count INTEGER DEFAULT 1,
    UNIQUE(entity_type, value)
);

CREATE TABLE IF NOT EXISTS entity_occurrences (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    entity_id INTEGER NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
    session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    message_id INTEGER,
    context TEXT
);

-- Indexes for efficient querying
CREATE INDEX IF NOT EXISTS idx_sessions_project ON sessions(project_path);
CREATE INDEX IF NOT EXISTS idx_sessions_source ON sessions(source);
CREATE INDEX IF NOT EXISTS idx_sessions_tier ON sessions(tier);
CREATE INDEX IF NOT EXISTS idx_sessions_last_msg ON sessions(last_message_at);
CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id);
CREATE INDEX IF NOT EXISTS idx_knowledge_project ON project_knowledge(project_path);
CREATE INDEX IF NOT EXISTS idx_entities_type ON entities(entity_type);
CREATE INDEX IF NOT EXISTS idx_occurrences_session ON entity_occurrences(session_id);
`

// SchemaVersion is the current schema version for migrations
const SchemaVersion = 1
