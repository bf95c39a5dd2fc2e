package engine

import (
	"testing"

	"driftwatch-io/driftwatch/pkg/dcl/ast"
)

func TestGetNestedField(t *testing.T) {
	doc := map[string]any{
		"node": map[string]any{
			"vendor": "cisco",
			"interfaces": []any{
				map[string]any{"name": "Gi0/1"},
			},
		},
		"vlan": float64(100),
	}

	tests := []struct {
		name      string
		path      ast.FieldRef
		want      any
		wantFound bool
	}{
		{"top-level scalar", ast.FieldRef{"vlan"}, float64(100), true},
		{"nested scalar", ast.FieldRef{"node", "vendor"}, "cisco", true},
		{"missing key", ast.FieldRef{"node", "model"}, nil, false},
		{"missing top-level", ast.FieldRef{"absent"}, nil, false},
		{"intermediate non-object", ast.FieldRef{"vlan", "nested"}, nil, false},
		{"through array is not found", ast.FieldRef{"node", "interfaces", "name"}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := GetNestedField(doc, tt.path)
			if found != tt.wantFound {
				t.Fatalf("found = %v, want %v", found, tt.wantFound)
			}
			if found && !equalValues(got, tt.want) {
				t.Errorf("value = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetNestedField_EmptyPathIsIdentity(t *testing.T) {
	doc := map[string]any{"a": map[string]any{"b": "c"}}
	got, found := GetNestedField(doc, ast.FieldRef{})
	if !found {
		t.Fatal("empty path not found, want whole document")
	}
	if !equalValues(got, doc) {
		t.Errorf("empty path = %v, want the document itself", got)
	}
}

func TestSetNestedField_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		doc  map[string]any
		path ast.FieldRef
	}{
		{"top-level into empty doc", map[string]any{}, ast.FieldRef{"a"}},
		{"deep into empty doc", map[string]any{}, ast.FieldRef{"a", "b", "c"}},
		{"overwrite existing", map[string]any{"a": "old"}, ast.FieldRef{"a"}},
		{
			"intermediate previously scalar",
			map[string]any{"a": float64(5)},
			ast.FieldRef{"a", "b"},
		},
		{
			"intermediate previously array",
			map[string]any{"a": []any{"x"}},
			ast.FieldRef{"a", "b", "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetNestedField(tt.doc, tt.path, "written")
			got, found := GetNestedField(tt.doc, tt.path)
			if !found {
				t.Fatal("field not found after set")
			}
			if got != "written" {
				t.Errorf("value = %v, want %q", got, "written")
			}
		})
	}
}

// Scenario: SET a.b.c on an empty document creates the full object chain.
func TestSetNestedField_CreatesIntermediates(t *testing.T) {
	doc := map[string]any{}
	SetNestedField(doc, ast.FieldRef{"a", "b", "c"}, "x")

	want := map[string]any{"a": map[string]any{"b": map[string]any{"c": "x"}}}
	if !equalValues(doc, want) {
		t.Errorf("document = %v, want %v", doc, want)
	}
}

func TestSetNestedField_CoercesNonObjectIntermediate(t *testing.T) {
	doc := map[string]any{"a": "scalar"}
	prev, existed := SetNestedField(doc, ast.FieldRef{"a", "b"}, float64(1))

	// The field a.b did not exist before (a was a scalar), so the
	// pre-mutation report is "absent" even though a itself held a value.
	if existed {
		t.Errorf("existed = true, want false (previous = %v)", prev)
	}

	want := map[string]any{"a": map[string]any{"b": float64(1)}}
	if !equalValues(doc, want) {
		t.Errorf("document = %v, want %v", doc, want)
	}
}

func TestSetNestedField_ReportsPrevious(t *testing.T) {
	doc := map[string]any{"a": map[string]any{"b": "old"}}
	prev, existed := SetNestedField(doc, ast.FieldRef{"a", "b"}, "new")
	if !existed {
		t.Fatal("existed = false, want true")
	}
	if prev != "old" {
		t.Errorf("previous = %v, want %q", prev, "old")
	}
}

func TestDeleteNestedField(t *testing.T) {
	doc := map[string]any{"a": map[string]any{"b": "x", "c": "y"}}

	if !DeleteNestedField(doc, ast.FieldRef{"a", "b"}) {
		t.Fatal("delete reported false for existing field")
	}
	if _, found := GetNestedField(doc, ast.FieldRef{"a", "b"}); found {
		t.Error("field still present after delete")
	}
	if _, found := GetNestedField(doc, ast.FieldRef{"a", "c"}); !found {
		t.Error("sibling field removed by delete")
	}

	if DeleteNestedField(doc, ast.FieldRef{"a", "missing"}) {
		t.Error("delete reported true for missing field")
	}
	if DeleteNestedField(doc, ast.FieldRef{}) {
		t.Error("delete reported true for empty path")
	}
}
