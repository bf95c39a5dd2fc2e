package inventory

import (
	"context"
)

// Store is the device inventory datastore.
//
// Lookups for missing entities return *NotFoundError. Backend failures
// return *StorageError.
type Store interface {
	// GetNode fetches one node by ID.
	GetNode(ctx context.Context, id string) (*Node, error)

	// CreateNode persists a new node.
	CreateNode(ctx context.Context, node *Node) error

	// CreateNodes persists a batch of nodes best-effort: items that fail
	// are reported in the result, the rest are created.
	CreateNodes(ctx context.Context, nodes []*Node) (*BatchResult, error)

	// UpdateNode replaces an existing node.
	UpdateNode(ctx context.Context, node *Node) error

	// DeleteNode removes a node and its associated data.
	DeleteNode(ctx context.Context, id string) error

	// ListNodes returns nodes matching the options.
	ListNodes(ctx context.Context, opts ListOptions) ([]*Node, error)

	// GetNodeStatus fetches a node's last observed status.
	GetNodeStatus(ctx context.Context, nodeID string) (*NodeStatus, error)

	// SetNodeStatus records a node's status.
	SetNodeStatus(ctx context.Context, status *NodeStatus) error

	// GetNodeInterfaces fetches a node's interfaces.
	GetNodeInterfaces(ctx context.Context, nodeID string) ([]Interface, error)

	// SetNodeInterfaces replaces a node's interfaces.
	SetNodeInterfaces(ctx context.Context, nodeID string, interfaces []Interface) error

	// GetNodeMetrics fetches a node's collected metrics.
	GetNodeMetrics(ctx context.Context, nodeID string) ([]Metric, error)

	// RecordMetric appends one measurement.
	RecordMetric(ctx context.Context, metric *Metric) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
