package inventory

import (
	"time"
)

// Node is one managed network device.
type Node struct {
	ID         string         `json:"id"`
	Hostname   string         `json:"hostname"`
	Vendor     string         `json:"vendor"`
	Model      string         `json:"model"`
	OSVersion  string         `json:"os_version"`
	MgmtIP     string         `json:"mgmt_ip"`
	Site       string         `json:"site"`
	Role       string         `json:"role"`
	Tags       []string       `json:"tags,omitempty"`
	CustomData map[string]any `json:"custom_data,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// NodeStatus is a device's last observed reachability state.
type NodeStatus struct {
	NodeID    string    `json:"node_id"`
	State     string    `json:"state"` // up, down, degraded, unknown
	Uptime    int64     `json:"uptime_seconds"`
	LastSeen  time.Time `json:"last_seen"`
	Message   string    `json:"message,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Interface is one port on a device.
type Interface struct {
	NodeID      string `json:"node_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	AdminStatus string `json:"admin_status"` // up, down
	OperStatus  string `json:"oper_status"`  // up, down
	SpeedMbps   int64  `json:"speed_mbps"`
	VLAN        int    `json:"vlan,omitempty"`
}

// Metric is one collected measurement for a device.
type Metric struct {
	NodeID      string    `json:"node_id"`
	Name        string    `json:"name"`
	Value       float64   `json:"value"`
	Unit        string    `json:"unit,omitempty"`
	CollectedAt time.Time `json:"collected_at"`
}

// ListOptions filters and pages node listings.
type ListOptions struct {
	Site   string
	Vendor string
	Role   string
	Tag    string
	Limit  int
	Offset int
}

// BatchResult reports a best-effort bulk create: how many succeeded and
// which items failed.
type BatchResult struct {
	Created int
	Failed  int
	Errors  []error
}

// NodeDocument flattens a node and its associated data into the JSON-like
// document shape policy rules traverse. Numeric values are float64 to
// match JSON decoding.
func NodeDocument(node *Node, status *NodeStatus, interfaces []Interface) map[string]any {
	nodeObj := map[string]any{
		"id":         node.ID,
		"hostname":   node.Hostname,
		"vendor":     node.Vendor,
		"model":      node.Model,
		"os_version": node.OSVersion,
		"mgmt_ip":    node.MgmtIP,
		"site":       node.Site,
		"role":       node.Role,
	}

	if len(node.Tags) > 0 {
		tags := make([]any, len(node.Tags))
		for i, t := range node.Tags {
			tags[i] = t
		}
		nodeObj["tags"] = tags
	}

	if status != nil {
		nodeObj["state"] = status.State
		nodeObj["uptime"] = float64(status.Uptime)
	}

	if len(interfaces) > 0 {
		ifaces := make([]any, len(interfaces))
		for i, iface := range interfaces {
			ifaces[i] = map[string]any{
				"name":         iface.Name,
				"admin_status": iface.AdminStatus,
				"oper_status":  iface.OperStatus,
				"speed_mbps":   float64(iface.SpeedMbps),
				"vlan":         float64(iface.VLAN),
			}
		}
		nodeObj["interfaces"] = ifaces
	}

	doc := map[string]any{"node": nodeObj}

	if node.CustomData != nil {
		doc["custom_data"] = node.CustomData
	} else {
		doc["custom_data"] = map[string]any{}
	}

	return doc
}
