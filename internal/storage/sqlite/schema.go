// ABOUTME: SQLite database schema for topic and embedding storage
// ABOUTME: Creates all tables and indexes for local storage
package sqlite

// Schema contains all SQL statements for database initialization
const Schema = `
-- Topic content nodes (one row per node; the root's id is the topic id)
CREATE TABLE IF NOT EXISTS topic_nodes (
    id TEXT PRIMARY KEY,
    topic_id TEXT NOT NULL,
    parent_id TEXT REFERENCES topic_nodes(id) ON DELETE CASCADE,
    position INTEGER NOT NULL DEFAULT 0,
    content TEXT NOT NULL DEFAULT '',
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Embedding records, one per (node, role). The vector blob is always
-- exactly 4*D bytes; generated_at is an ISO-8601 timestamp.
CREATE TABLE IF NOT EXISTS embeddings (
    node_id TEXT NOT NULL,
    role TEXT NOT NULL,
    parent_topic TEXT,
    vector BLOB NOT NULL,
    generated_at TEXT NOT NULL,
    token_count INTEGER NOT NULL DEFAULT 0,
    depth INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (node_id, role)
);

-- Indexes for efficient querying
CREATE INDEX IF NOT EXISTS idx_nodes_topic ON topic_nodes(topic_id);
CREATE INDEX IF NOT EXISTS idx_nodes_parent ON topic_nodes(parent_id, position);
CREATE INDEX IF NOT EXISTS idx_embeddings_topic ON embeddings(parent_topic);
CREATE INDEX IF NOT EXISTS idx_embeddings_role ON embeddings(role);
`

// SchemaVersion is the current schema version for migrations
const SchemaVersion = 1
