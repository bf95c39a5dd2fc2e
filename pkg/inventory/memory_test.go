package inventory

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testNode(id string) *Node {
	return &Node{
		ID:       id,
		Hostname: "core-" + id,
		Vendor:   "cisco",
		Model:    "C9300",
		Site:     "hq",
		Role:     "core",
		Tags:     []string{"critical"},
	}
}

func TestMemoryStore_CRUD(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.CreateNode(ctx, testNode("n1")); err != nil {
		t.Fatalf("CreateNode failed: %v", err)
	}

	node, err := store.GetNode(ctx, "n1")
	if err != nil {
		t.Fatalf("GetNode failed: %v", err)
	}
	if node.Hostname != "core-n1" || node.CreatedAt.IsZero() {
		t.Errorf("node = %+v", node)
	}

	node.Model = "C9500"
	if err := store.UpdateNode(ctx, node); err != nil {
		t.Fatalf("UpdateNode failed: %v", err)
	}
	updated, _ := store.GetNode(ctx, "n1")
	if updated.Model != "C9500" {
		t.Errorf("model = %q after update", updated.Model)
	}
	if !updated.CreatedAt.Equal(node.CreatedAt) {
		t.Error("update changed CreatedAt")
	}

	if err := store.DeleteNode(ctx, "n1"); err != nil {
		t.Fatalf("DeleteNode failed: %v", err)
	}
	if _, err := store.GetNode(ctx, "n1"); err == nil {
		t.Error("GetNode succeeded after delete")
	}
}

func TestMemoryStore_NotFound(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.GetNode(ctx, "ghost")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
	if nf.Kind != "node" || nf.ID != "ghost" {
		t.Errorf("NotFoundError = %+v", nf)
	}

	if err := store.UpdateNode(ctx, testNode("ghost")); !errors.As(err, &nf) {
		t.Errorf("UpdateNode err = %v, want NotFoundError", err)
	}
	if err := store.DeleteNode(ctx, "ghost"); !errors.As(err, &nf) {
		t.Errorf("DeleteNode err = %v, want NotFoundError", err)
	}
}

func TestMemoryStore_DuplicateCreate(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.CreateNode(ctx, testNode("n1")); err != nil {
		t.Fatal(err)
	}
	if err := store.CreateNode(ctx, testNode("n1")); err == nil {
		t.Error("duplicate create succeeded")
	}
}

// Batch create is best-effort: failures are counted, the rest are created.
func TestMemoryStore_CreateNodesBestEffort(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.CreateNode(ctx, testNode("dup")); err != nil {
		t.Fatal(err)
	}

	result, err := store.CreateNodes(ctx, []*Node{
		testNode("a"),
		testNode("dup"), // Already exists.
		testNode("b"),
		{}, // Missing ID.
	})
	if err != nil {
		t.Fatalf("CreateNodes failed: %v", err)
	}
	if result.Created != 2 || result.Failed != 2 {
		t.Errorf("result = %+v, want 2 created / 2 failed", result)
	}
	if len(result.Errors) != 2 {
		t.Errorf("errors = %d, want 2", len(result.Errors))
	}

	if _, err := store.GetNode(ctx, "b"); err != nil {
		t.Errorf("node b not created: %v", err)
	}
}

func TestMemoryStore_ListNodes(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	nodes := []*Node{
		{ID: "a", Vendor: "cisco", Site: "hq", Role: "core", Tags: []string{"critical"}},
		{ID: "b", Vendor: "juniper", Site: "hq", Role: "edge"},
		{ID: "c", Vendor: "cisco", Site: "branch", Role: "edge"},
	}
	for _, n := range nodes {
		if err := store.CreateNode(ctx, n); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name    string
		opts    ListOptions
		wantIDs []string
	}{
		{"all", ListOptions{}, []string{"a", "b", "c"}},
		{"by site", ListOptions{Site: "hq"}, []string{"a", "b"}},
		{"by vendor", ListOptions{Vendor: "cisco"}, []string{"a", "c"}},
		{"by role", ListOptions{Role: "edge"}, []string{"b", "c"}},
		{"by tag", ListOptions{Tag: "critical"}, []string{"a"}},
		{"site and vendor", ListOptions{Site: "hq", Vendor: "cisco"}, []string{"a"}},
		{"limit", ListOptions{Limit: 2}, []string{"a", "b"}},
		{"offset", ListOptions{Offset: 1}, []string{"b", "c"}},
		{"offset past end", ListOptions{Offset: 10}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.ListNodes(ctx, tt.opts)
			if err != nil {
				t.Fatalf("ListNodes failed: %v", err)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("got %d nodes, want %d", len(got), len(tt.wantIDs))
			}
			for i, want := range tt.wantIDs {
				if got[i].ID != want {
					t.Errorf("node %d = %s, want %s", i, got[i].ID, want)
				}
			}
		})
	}
}

func TestMemoryStore_StatusInterfacesMetrics(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.SetNodeStatus(ctx, &NodeStatus{
		NodeID: "n1", State: "up", Uptime: 3600, CheckedAt: time.Now(),
	}); err != nil {
		t.Fatal(err)
	}
	status, err := store.GetNodeStatus(ctx, "n1")
	if err != nil || status.State != "up" {
		t.Errorf("status = (%+v, %v)", status, err)
	}

	ifaces := []Interface{
		{NodeID: "n1", Name: "Gi0/1", AdminStatus: "up", OperStatus: "up", SpeedMbps: 1000},
	}
	if err := store.SetNodeInterfaces(ctx, "n1", ifaces); err != nil {
		t.Fatal(err)
	}
	got, err := store.GetNodeInterfaces(ctx, "n1")
	if err != nil || len(got) != 1 || got[0].Name != "Gi0/1" {
		t.Errorf("interfaces = (%+v, %v)", got, err)
	}

	if err := store.RecordMetric(ctx, &Metric{
		NodeID: "n1", Name: "cpu_percent", Value: 42.5, CollectedAt: time.Now(),
	}); err != nil {
		t.Fatal(err)
	}
	metrics, err := store.GetNodeMetrics(ctx, "n1")
	if err != nil || len(metrics) != 1 || metrics[0].Value != 42.5 {
		t.Errorf("metrics = (%+v, %v)", metrics, err)
	}
}

func TestMemoryStore_DeleteRemovesAssociatedData(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.CreateNode(ctx, testNode("n1")); err != nil {
		t.Fatal(err)
	}
	_ = store.SetNodeStatus(ctx, &NodeStatus{NodeID: "n1", State: "up"})

	if err := store.DeleteNode(ctx, "n1"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.GetNodeStatus(ctx, "n1"); err == nil {
		t.Error("status survived node deletion")
	}
}

func TestNodeDocument(t *testing.T) {
	node := &Node{
		ID:       "n1",
		Hostname: "core-01",
		Vendor:   "cisco",
		Tags:     []string{"critical"},
		CustomData: map[string]any{
			"vlan": float64(100),
		},
	}
	status := &NodeStatus{NodeID: "n1", State: "up", Uptime: 3600}
	ifaces := []Interface{{Name: "Gi0/1", OperStatus: "up", SpeedMbps: 1000}}

	doc := NodeDocument(node, status, ifaces)

	nodeObj := doc["node"].(map[string]any)
	if nodeObj["vendor"] != "cisco" || nodeObj["state"] != "up" {
		t.Errorf("node section = %+v", nodeObj)
	}
	if nodeObj["uptime"] != float64(3600) {
		t.Errorf("uptime = %v, want float64(3600)", nodeObj["uptime"])
	}
	if tags := nodeObj["tags"].([]any); len(tags) != 1 || tags[0] != "critical" {
		t.Errorf("tags = %v", nodeObj["tags"])
	}
	if cd := doc["custom_data"].(map[string]any); cd["vlan"] != float64(100) {
		t.Errorf("custom_data = %v", cd)
	}

	ifaceList := nodeObj["interfaces"].([]any)
	if len(ifaceList) != 1 {
		t.Fatalf("interfaces = %v", ifaceList)
	}
	if ifaceList[0].(map[string]any)["name"] != "Gi0/1" {
		t.Errorf("interface = %v", ifaceList[0])
	}
}

func TestNodeDocument_NoOptionalData(t *testing.T) {
	doc := NodeDocument(&Node{ID: "n1", Vendor: "cisco"}, nil, nil)

	nodeObj := doc["node"].(map[string]any)
	if _, ok := nodeObj["state"]; ok {
		t.Error("state present without status")
	}
	if cd, ok := doc["custom_data"].(map[string]any); !ok || len(cd) != 0 {
		t.Errorf("custom_data = %v, want empty object", doc["custom_data"])
	}
}
