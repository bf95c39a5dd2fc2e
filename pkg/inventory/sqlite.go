package inventory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteConfig contains configuration for the SQLite inventory backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections. Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections. Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is how long to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/inventory.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStore implements Store on SQLite.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) the inventory database and initializes
// its schema.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "inventory.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStore{db: db, config: config, logger: logger}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("inventory storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

// initialize enables WAL mode, sets the busy timeout, and creates the
// schema.
func (s *SQLiteStore) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return NewStorageError("sqlite", "enable_wal", err)
		}
	}

	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())); err != nil {
		return NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(schema); err != nil {
		return NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(insertSchemaVersion, schemaVersion); err != nil {
		return NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	if err := s.db.QueryRow(getSchemaVersion).Scan(&version); err != nil && err != sql.ErrNoRows {
		return NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != schemaVersion {
		return NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", schemaVersion, version))
	}

	return nil
}

// GetNode fetches one node by ID.
func (s *SQLiteStore) GetNode(ctx context.Context, id string) (*Node, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, hostname, vendor, model, os_version, mgmt_ip, site, role,
		       tags, custom_data, created_at, updated_at
		FROM nodes WHERE id = ?`, id)

	node, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Kind: "node", ID: id}
	}
	if err != nil {
		return nil, NewStorageError("sqlite", "get_node", err)
	}
	return node, nil
}

// encodeNodeFields JSON-encodes a node's tags and custom data columns.
// CustomData is caller-supplied and can hold unmarshalable values; that is
// a storage error, not a silent null.
func encodeNodeFields(op string, node *Node) (tags, customData string, err error) {
	t, err := json.Marshal(node.Tags)
	if err != nil {
		return "", "", NewStorageError("sqlite", op, fmt.Errorf("encoding tags: %w", err))
	}
	c, err := json.Marshal(node.CustomData)
	if err != nil {
		return "", "", NewStorageError("sqlite", op, fmt.Errorf("encoding custom data: %w", err))
	}
	return string(t), string(c), nil
}

// CreateNode persists a new node.
func (s *SQLiteStore) CreateNode(ctx context.Context, node *Node) error {
	if node.ID == "" {
		return fmt.Errorf("node ID is required")
	}

	tags, customData, err := encodeNodeFields("create_node", node)
	if err != nil {
		return err
	}
	now := time.Now()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO nodes (id, hostname, vendor, model, os_version, mgmt_ip,
		                   site, role, tags, custom_data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		node.ID, node.Hostname, node.Vendor, node.Model, node.OSVersion,
		node.MgmtIP, node.Site, node.Role, tags, customData,
		now, now,
	)
	if err != nil {
		return NewStorageError("sqlite", "create_node", err)
	}
	return nil
}

// CreateNodes persists a batch of nodes best-effort.
func (s *SQLiteStore) CreateNodes(ctx context.Context, nodes []*Node) (*BatchResult, error) {
	result := &BatchResult{}
	for _, node := range nodes {
		if err := s.CreateNode(ctx, node); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, err)
			continue
		}
		result.Created++
	}
	return result, nil
}

// UpdateNode replaces an existing node.
func (s *SQLiteStore) UpdateNode(ctx context.Context, node *Node) error {
	tags, customData, err := encodeNodeFields("update_node", node)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE nodes SET hostname = ?, vendor = ?, model = ?, os_version = ?,
		       mgmt_ip = ?, site = ?, role = ?, tags = ?, custom_data = ?,
		       updated_at = ?
		WHERE id = ?`,
		node.Hostname, node.Vendor, node.Model, node.OSVersion,
		node.MgmtIP, node.Site, node.Role, tags, customData,
		time.Now(), node.ID,
	)
	if err != nil {
		return NewStorageError("sqlite", "update_node", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{Kind: "node", ID: node.ID}
	}
	return nil
}

// DeleteNode removes a node and its associated data.
func (s *SQLiteStore) DeleteNode(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM nodes WHERE id = ?`, id)
	if err != nil {
		return NewStorageError("sqlite", "delete_node", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{Kind: "node", ID: id}
	}

	for _, table := range []string{"node_status", "node_interfaces", "node_metrics"} {
		if _, err := s.db.ExecContext(ctx,
			fmt.Sprintf("DELETE FROM %s WHERE node_id = ?", table), id); err != nil {
			return NewStorageError("sqlite", "delete_node_data", err)
		}
	}
	return nil
}

// ListNodes returns nodes matching the options.
func (s *SQLiteStore) ListNodes(ctx context.Context, opts ListOptions) ([]*Node, error) {
	query := `
		SELECT id, hostname, vendor, model, os_version, mgmt_ip, site, role,
		       tags, custom_data, created_at, updated_at
		FROM nodes`

	var conds []string
	var args []any
	if opts.Site != "" {
		conds = append(conds, "site = ?")
		args = append(args, opts.Site)
	}
	if opts.Vendor != "" {
		conds = append(conds, "vendor = ?")
		args = append(args, opts.Vendor)
	}
	if opts.Role != "" {
		conds = append(conds, "role = ?")
		args = append(args, opts.Role)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"

	limit := 100
	if opts.Limit > 0 {
		limit = opts.Limit
	}
	query += fmt.Sprintf(" LIMIT %d", limit)
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", opts.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, NewStorageError("sqlite", "list_nodes", err)
	}
	defer rows.Close()

	var nodes []*Node
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, NewStorageError("sqlite", "scan_node", err)
		}
		// Tag filtering happens in Go: tags are stored as a JSON array.
		if opts.Tag != "" && !hasTag(node, opts.Tag) {
			continue
		}
		nodes = append(nodes, node)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "list_nodes", err)
	}
	return nodes, nil
}

func hasTag(node *Node, tag string) bool {
	for _, t := range node.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// GetNodeStatus fetches a node's last observed status.
func (s *SQLiteStore) GetNodeStatus(ctx context.Context, nodeID string) (*NodeStatus, error) {
	var status NodeStatus
	err := s.db.QueryRowContext(ctx, `
		SELECT node_id, state, uptime_seconds, last_seen, message, checked_at
		FROM node_status WHERE node_id = ?`, nodeID).
		Scan(&status.NodeID, &status.State, &status.Uptime, &status.LastSeen,
			&status.Message, &status.CheckedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Kind: "status", ID: nodeID}
	}
	if err != nil {
		return nil, NewStorageError("sqlite", "get_status", err)
	}
	return &status, nil
}

// SetNodeStatus records a node's status.
func (s *SQLiteStore) SetNodeStatus(ctx context.Context, status *NodeStatus) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO node_status (node_id, state, uptime_seconds, last_seen, message, checked_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(node_id) DO UPDATE SET
			state = excluded.state,
			uptime_seconds = excluded.uptime_seconds,
			last_seen = excluded.last_seen,
			message = excluded.message,
			checked_at = excluded.checked_at`,
		status.NodeID, status.State, status.Uptime, status.LastSeen,
		status.Message, status.CheckedAt,
	)
	if err != nil {
		return NewStorageError("sqlite", "set_status", err)
	}
	return nil
}

// GetNodeInterfaces fetches a node's interfaces.
func (s *SQLiteStore) GetNodeInterfaces(ctx context.Context, nodeID string) ([]Interface, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT node_id, name, description, admin_status, oper_status, speed_mbps, vlan
		FROM node_interfaces WHERE node_id = ? ORDER BY name`, nodeID)
	if err != nil {
		return nil, NewStorageError("sqlite", "get_interfaces", err)
	}
	defer rows.Close()

	var ifaces []Interface
	for rows.Next() {
		var iface Interface
		if err := rows.Scan(&iface.NodeID, &iface.Name, &iface.Description,
			&iface.AdminStatus, &iface.OperStatus, &iface.SpeedMbps, &iface.VLAN); err != nil {
			return nil, NewStorageError("sqlite", "scan_interface", err)
		}
		ifaces = append(ifaces, iface)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "get_interfaces", err)
	}
	if ifaces == nil {
		return nil, &NotFoundError{Kind: "interfaces", ID: nodeID}
	}
	return ifaces, nil
}

// SetNodeInterfaces replaces a node's interfaces.
func (s *SQLiteStore) SetNodeInterfaces(ctx context.Context, nodeID string, interfaces []Interface) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return NewStorageError("sqlite", "set_interfaces", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM node_interfaces WHERE node_id = ?`, nodeID); err != nil {
		return NewStorageError("sqlite", "set_interfaces", err)
	}
	for _, iface := range interfaces {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO node_interfaces (node_id, name, description, admin_status, oper_status, speed_mbps, vlan)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			nodeID, iface.Name, iface.Description, iface.AdminStatus,
			iface.OperStatus, iface.SpeedMbps, iface.VLAN); err != nil {
			return NewStorageError("sqlite", "set_interfaces", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return NewStorageError("sqlite", "set_interfaces", err)
	}
	return nil
}

// GetNodeMetrics fetches a node's collected metrics.
func (s *SQLiteStore) GetNodeMetrics(ctx context.Context, nodeID string) ([]Metric, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT node_id, name, value, unit, collected_at
		FROM node_metrics WHERE node_id = ? ORDER BY collected_at`, nodeID)
	if err != nil {
		return nil, NewStorageError("sqlite", "get_metrics", err)
	}
	defer rows.Close()

	var metrics []Metric
	for rows.Next() {
		var m Metric
		if err := rows.Scan(&m.NodeID, &m.Name, &m.Value, &m.Unit, &m.CollectedAt); err != nil {
			return nil, NewStorageError("sqlite", "scan_metric", err)
		}
		metrics = append(metrics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "get_metrics", err)
	}
	if metrics == nil {
		return nil, &NotFoundError{Kind: "metrics", ID: nodeID}
	}
	return metrics, nil
}

// RecordMetric appends one measurement.
func (s *SQLiteStore) RecordMetric(ctx context.Context, metric *Metric) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO node_metrics (node_id, name, value, unit, collected_at)
		VALUES (?, ?, ?, ?, ?)`,
		metric.NodeID, metric.Name, metric.Value, metric.Unit, metric.CollectedAt,
	)
	if err != nil {
		return NewStorageError("sqlite", "record_metric", err)
	}
	return nil
}

// Ping verifies the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return NewStorageError("sqlite", "ping", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// scanRow abstracts sql.Row and sql.Rows for scanNode.
type scanRow interface {
	Scan(dest ...any) error
}

// scanNode reads one node row, decoding the JSON-encoded columns.
func scanNode(row scanRow) (*Node, error) {
	var node Node
	var tags, customData string
	if err := row.Scan(&node.ID, &node.Hostname, &node.Vendor, &node.Model,
		&node.OSVersion, &node.MgmtIP, &node.Site, &node.Role,
		&tags, &customData, &node.CreatedAt, &node.UpdatedAt); err != nil {
		return nil, err
	}

	if tags != "" && tags != "null" {
		if err := json.Unmarshal([]byte(tags), &node.Tags); err != nil {
			return nil, fmt.Errorf("decoding tags: %w", err)
		}
	}
	if customData != "" && customData != "null" {
		if err := json.Unmarshal([]byte(customData), &node.CustomData); err != nil {
			return nil, fmt.Errorf("decoding custom_data: %w", err)
		}
	}
	return &node, nil
}
