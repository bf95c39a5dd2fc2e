package inventory

// schemaVersion is the current database schema version.
const schemaVersion = 1

// schema contains the SQL statements to create the inventory schema.
const schema = `
CREATE TABLE IF NOT EXISTS nodes (
    id TEXT PRIMARY KEY,
    hostname TEXT NOT NULL,
    vendor TEXT NOT NULL,
    model TEXT,
    os_version TEXT,
    mgmt_ip TEXT,
    site TEXT,
    role TEXT,
    tags TEXT,
    custom_data TEXT,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_nodes_site ON nodes(site);
CREATE INDEX IF NOT EXISTS idx_nodes_vendor ON nodes(vendor);

CREATE TABLE IF NOT EXISTS node_status (
    node_id TEXT PRIMARY KEY,
    state TEXT NOT NULL,
    uptime_seconds INTEGER,
    last_seen TIMESTAMP,
    message TEXT,
    checked_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS node_interfaces (
    node_id TEXT NOT NULL,
    name TEXT NOT NULL,
    description TEXT,
    admin_status TEXT,
    oper_status TEXT,
    speed_mbps INTEGER,
    vlan INTEGER,
    PRIMARY KEY (node_id, name)
);

CREATE TABLE IF NOT EXISTS node_metrics (
    node_id TEXT NOT NULL,
    name TEXT NOT NULL,
    value REAL NOT NULL,
    unit TEXT,
    collected_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_metrics_node ON node_metrics(node_id, collected_at);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);
`

// insertSchemaVersion records the schema version, idempotently.
const insertSchemaVersion = `INSERT OR IGNORE INTO schema_version (version) VALUES (?)`

// getSchemaVersion reads the highest recorded schema version.
const getSchemaVersion = `SELECT MAX(version) FROM schema_version`
