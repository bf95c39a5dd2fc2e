package inventory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for tests and small installs.
type MemoryStore struct {
	mu         sync.RWMutex
	nodes      map[string]*Node
	statuses   map[string]*NodeStatus
	interfaces map[string][]Interface
	metrics    map[string][]Metric
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes:      make(map[string]*Node),
		statuses:   make(map[string]*NodeStatus),
		interfaces: make(map[string][]Interface),
		metrics:    make(map[string][]Metric),
	}
}

// GetNode fetches one node by ID.
func (s *MemoryStore) GetNode(_ context.Context, id string) (*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, ok := s.nodes[id]
	if !ok {
		return nil, &NotFoundError{Kind: "node", ID: id}
	}
	copied := *node
	return &copied, nil
}

// CreateNode persists a new node.
func (s *MemoryStore) CreateNode(_ context.Context, node *Node) error {
	if node.ID == "" {
		return fmt.Errorf("node ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[node.ID]; exists {
		return fmt.Errorf("node %s already exists", node.ID)
	}

	now := time.Now()
	copied := *node
	copied.CreatedAt = now
	copied.UpdatedAt = now
	s.nodes[node.ID] = &copied
	return nil
}

// CreateNodes persists a batch of nodes best-effort.
func (s *MemoryStore) CreateNodes(ctx context.Context, nodes []*Node) (*BatchResult, error) {
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
func (s *MemoryStore) UpdateNode(_ context.Context, node *Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.nodes[node.ID]
	if !ok {
		return &NotFoundError{Kind: "node", ID: node.ID}
	}

	copied := *node
	copied.CreatedAt = existing.CreatedAt
	copied.UpdatedAt = time.Now()
	s.nodes[node.ID] = &copied
	return nil
}

// DeleteNode removes a node and its associated data.
func (s *MemoryStore) DeleteNode(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[id]; !ok {
		return &NotFoundError{Kind: "node", ID: id}
	}
	delete(s.nodes, id)
	delete(s.statuses, id)
	delete(s.interfaces, id)
	delete(s.metrics, id)
	return nil
}

// ListNodes returns nodes matching the options, sorted by ID.
func (s *MemoryStore) ListNodes(_ context.Context, opts ListOptions) ([]*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var nodes []*Node
	for _, node := range s.nodes {
		if !matches(node, opts) {
			continue
		}
		copied := *node
		nodes = append(nodes, &copied)
	}

	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	if opts.Offset > 0 {
		if opts.Offset >= len(nodes) {
			return nil, nil
		}
		nodes = nodes[opts.Offset:]
	}
	if opts.Limit > 0 && len(nodes) > opts.Limit {
		nodes = nodes[:opts.Limit]
	}
	return nodes, nil
}

// matches applies list filters to a node.
func matches(node *Node, opts ListOptions) bool {
	if opts.Site != "" && node.Site != opts.Site {
		return false
	}
	if opts.Vendor != "" && node.Vendor != opts.Vendor {
		return false
	}
	if opts.Role != "" && node.Role != opts.Role {
		return false
	}
	if opts.Tag != "" {
		found := false
		for _, t := range node.Tags {
			if t == opts.Tag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// GetNodeStatus fetches a node's last observed status.
func (s *MemoryStore) GetNodeStatus(_ context.Context, nodeID string) (*NodeStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status, ok := s.statuses[nodeID]
	if !ok {
		return nil, &NotFoundError{Kind: "status", ID: nodeID}
	}
	copied := *status
	return &copied, nil
}

// SetNodeStatus records a node's status.
func (s *MemoryStore) SetNodeStatus(_ context.Context, status *NodeStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *status
	s.statuses[status.NodeID] = &copied
	return nil
}

// GetNodeInterfaces fetches a node's interfaces.
func (s *MemoryStore) GetNodeInterfaces(_ context.Context, nodeID string) ([]Interface, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ifaces, ok := s.interfaces[nodeID]
	if !ok {
		return nil, &NotFoundError{Kind: "interfaces", ID: nodeID}
	}
	out := make([]Interface, len(ifaces))
	copy(out, ifaces)
	return out, nil
}

// SetNodeInterfaces replaces a node's interfaces.
func (s *MemoryStore) SetNodeInterfaces(_ context.Context, nodeID string, interfaces []Interface) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]Interface, len(interfaces))
	copy(copied, interfaces)
	s.interfaces[nodeID] = copied
	return nil
}

// GetNodeMetrics fetches a node's collected metrics.
func (s *MemoryStore) GetNodeMetrics(_ context.Context, nodeID string) ([]Metric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ms, ok := s.metrics[nodeID]
	if !ok {
		return nil, &NotFoundError{Kind: "metrics", ID: nodeID}
	}
	out := make([]Metric, len(ms))
	copy(out, ms)
	return out, nil
}

// RecordMetric appends one measurement.
func (s *MemoryStore) RecordMetric(_ context.Context, metric *Metric) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics[metric.NodeID] = append(s.metrics[metric.NodeID], *metric)
	return nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(_ context.Context) error { return nil }

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
