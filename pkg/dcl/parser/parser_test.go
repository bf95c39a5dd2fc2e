package parser

import (
	"strings"
	"testing"

	"driftwatch-io/driftwatch/pkg/dcl/ast"
)

func TestParseRule_AssertRule(t *testing.T) {
	rule, err := ParseRule(`WHEN node.vendor == "cisco" THEN ASSERT node.version IS "15.1"`)
	if err != nil {
		t.Fatalf("ParseRule failed: %v", err)
	}

	if rule.ID != "" {
		t.Errorf("parser must not assign rule IDs, got %q", rule.ID)
	}

	wantCond := ast.Comparison(ast.FieldRef{"node", "vendor"}, ast.OperatorEqual, ast.StringValue("cisco"))
	if !rule.Condition.Equal(wantCond) {
		t.Errorf("condition = %s, want %s", rule.Condition, wantCond)
	}

	wantAction := ast.Assert(ast.FieldRef{"node", "version"}, ast.StringValue("15.1"))
	if !rule.Action.Equal(wantAction) {
		t.Errorf("action = %s, want %s", rule.Action, wantAction)
	}
}

func TestParseRule_Conditions(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want *ast.Condition
	}{
		{
			name: "literal true",
			src:  "WHEN true THEN ASSERT a IS 1",
			want: ast.True(),
		},
		{
			name: "literal false",
			src:  "WHEN false THEN ASSERT a IS 1",
			want: ast.False(),
		},
		{
			name: "number comparison",
			src:  "WHEN custom_data.vlan >= 100 THEN ASSERT a IS 1",
			want: ast.Comparison(ast.FieldRef{"custom_data", "vlan"}, ast.OperatorGreaterEqual, ast.NumberValue(100)),
		},
		{
			name: "negative number",
			src:  "WHEN metrics.delta < -1.5 THEN ASSERT a IS 1",
			want: ast.Comparison(ast.FieldRef{"metrics", "delta"}, ast.OperatorLessThan, ast.NumberValue(-1.5)),
		},
		{
			name: "boolean value",
			src:  "WHEN node.managed == true THEN ASSERT a IS 1",
			want: ast.Comparison(ast.FieldRef{"node", "managed"}, ast.OperatorEqual, ast.BoolValue(true)),
		},
		{
			name: "null value",
			src:  "WHEN node.site != null THEN ASSERT a IS 1",
			want: ast.Comparison(ast.FieldRef{"node", "site"}, ast.OperatorNotEqual, ast.NullValue()),
		},
		{
			name: "single-quoted string",
			src:  "WHEN node.vendor == 'juniper' THEN ASSERT a IS 1",
			want: ast.Comparison(ast.FieldRef{"node", "vendor"}, ast.OperatorEqual, ast.StringValue("juniper")),
		},
		{
			name: "regex literal",
			src:  `WHEN node.hostname MATCHES /^core-\d+$/ THEN ASSERT a IS 1`,
			want: ast.Comparison(ast.FieldRef{"node", "hostname"}, ast.OperatorMatches, ast.RegexValue(`^core-\d+$`)),
		},
		{
			name: "regex with escaped slash",
			src:  `WHEN node.path MATCHES /a\/b/ THEN ASSERT a IS 1`,
			want: ast.Comparison(ast.FieldRef{"node", "path"}, ast.OperatorMatches, ast.RegexValue("a/b")),
		},
		{
			name: "field reference value",
			src:  "WHEN node.vlan == desired.vlan THEN ASSERT a IS 1",
			want: ast.Comparison(ast.FieldRef{"node", "vlan"}, ast.OperatorEqual, ast.FieldRefValue(ast.FieldRef{"desired", "vlan"})),
		},
		{
			name: "contains operator",
			src:  `WHEN node.tags CONTAINS "edge" THEN ASSERT a IS 1`,
			want: ast.Comparison(ast.FieldRef{"node", "tags"}, ast.OperatorContains, ast.StringValue("edge")),
		},
		{
			name: "and chain folds left",
			src:  "WHEN a == 1 AND b == 2 AND c == 3 THEN ASSERT a IS 1",
			want: ast.And(
				ast.And(
					ast.Comparison(ast.FieldRef{"a"}, ast.OperatorEqual, ast.NumberValue(1)),
					ast.Comparison(ast.FieldRef{"b"}, ast.OperatorEqual, ast.NumberValue(2)),
				),
				ast.Comparison(ast.FieldRef{"c"}, ast.OperatorEqual, ast.NumberValue(3)),
			),
		},
		{
			name: "and binds tighter than or",
			src:  "WHEN a == 1 OR b == 2 AND c == 3 THEN ASSERT a IS 1",
			want: ast.Or(
				ast.Comparison(ast.FieldRef{"a"}, ast.OperatorEqual, ast.NumberValue(1)),
				ast.And(
					ast.Comparison(ast.FieldRef{"b"}, ast.OperatorEqual, ast.NumberValue(2)),
					ast.Comparison(ast.FieldRef{"c"}, ast.OperatorEqual, ast.NumberValue(3)),
				),
			),
		},
		{
			name: "parentheses override precedence",
			src:  "WHEN (a == 1 OR b == 2) AND c == 3 THEN ASSERT a IS 1",
			want: ast.And(
				ast.Or(
					ast.Comparison(ast.FieldRef{"a"}, ast.OperatorEqual, ast.NumberValue(1)),
					ast.Comparison(ast.FieldRef{"b"}, ast.OperatorEqual, ast.NumberValue(2)),
				),
				ast.Comparison(ast.FieldRef{"c"}, ast.OperatorEqual, ast.NumberValue(3)),
			),
		},
		{
			name: "not binds tighter than and",
			src:  "WHEN NOT a == 1 AND b == 2 THEN ASSERT a IS 1",
			want: ast.And(
				ast.Not(ast.Comparison(ast.FieldRef{"a"}, ast.OperatorEqual, ast.NumberValue(1))),
				ast.Comparison(ast.FieldRef{"b"}, ast.OperatorEqual, ast.NumberValue(2)),
			),
		},
		{
			name: "double negation",
			src:  "WHEN NOT NOT true THEN ASSERT a IS 1",
			want: ast.Not(ast.Not(ast.True())),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := ParseRule(tt.src)
			if err != nil {
				t.Fatalf("ParseRule(%q) failed: %v", tt.src, err)
			}
			if !rule.Condition.Equal(tt.want) {
				t.Errorf("condition = %s, want %s", rule.Condition, tt.want)
			}
		})
	}
}

func TestParseRule_Actions(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want *ast.Action
	}{
		{
			name: "assert",
			src:  `WHEN true THEN ASSERT node.version IS "15.1"`,
			want: ast.Assert(ast.FieldRef{"node", "version"}, ast.StringValue("15.1")),
		},
		{
			name: "set number",
			src:  "WHEN true THEN SET custom_data.vlan TO 100",
			want: ast.Set(ast.FieldRef{"custom_data", "vlan"}, ast.NumberValue(100)),
		},
		{
			name: "set from field reference",
			src:  "WHEN true THEN SET node.vlan TO desired.vlan",
			want: ast.Set(ast.FieldRef{"node", "vlan"}, ast.FieldRefValue(ast.FieldRef{"desired", "vlan"})),
		},
		{
			name: "apply template quoted path",
			src:  `WHEN true THEN APPLY TEMPLATE "templates/base.conf"`,
			want: ast.ApplyTemplate("templates/base.conf"),
		},
		{
			name: "apply template bare path",
			src:  "WHEN true THEN APPLY TEMPLATE base_config",
			want: ast.ApplyTemplate("base_config"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := ParseRule(tt.src)
			if err != nil {
				t.Fatalf("ParseRule(%q) failed: %v", tt.src, err)
			}
			if !rule.Action.Equal(tt.want) {
				t.Errorf("action = %s, want %s", rule.Action, tt.want)
			}
		})
	}
}

func TestParseRule_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantMsg string
	}{
		{"empty input", "", `expected "WHEN"`},
		{"missing then", `WHEN true ASSERT a IS 1`, `expected "THEN"`},
		{"missing condition", "WHEN THEN ASSERT a IS 1", "expected condition"},
		{"missing operator", `WHEN node.vendor "cisco" THEN ASSERT a IS 1`, "expected comparison operator"},
		{"missing value", "WHEN node.vendor == THEN ASSERT a IS 1", "expected value"},
		{"unknown action", "WHEN true THEN DELETE a", "expected action"},
		{"lowercase keyword", "when true THEN ASSERT a IS 1", `expected "WHEN"`},
		{"unterminated string", `WHEN a == "cisco THEN ASSERT a IS 1`, "unterminated string"},
		{"unterminated regex", "WHEN a MATCHES /core THEN ASSERT a IS 1", "unterminated regex"},
		{"unclosed paren", "WHEN (true THEN ASSERT a IS 1", `expected ")"`},
		{"single equals", "WHEN a = 1 THEN ASSERT a IS 1", "unexpected character"},
		{"trailing garbage", "WHEN true THEN ASSERT a IS 1 extra", "unexpected input after rule"},
		{"assert missing is", "WHEN true THEN ASSERT a 1", `expected "IS"`},
		{"set missing to", "WHEN true THEN SET a 1", `expected "TO"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRule(tt.src)
			if err == nil {
				t.Fatalf("ParseRule(%q) succeeded, want error containing %q", tt.src, tt.wantMsg)
			}
			perr, ok := err.(*ParseError)
			if !ok {
				t.Fatalf("error type = %T, want *ParseError", err)
			}
			if !strings.Contains(perr.Message, tt.wantMsg) {
				t.Errorf("error = %q, want message containing %q", perr.Message, tt.wantMsg)
			}
		})
	}
}

func TestParseRule_ErrorLocation(t *testing.T) {
	_, err := ParseRule("WHEN true\nTHEN BOGUS a IS 1")
	perr, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("error type = %T, want *ParseError", err)
	}
	if perr.Location.Line != 2 {
		t.Errorf("error line = %d, want 2", perr.Location.Line)
	}
}

func TestParseFile(t *testing.T) {
	src := `
# Baseline compliance rules.
WHEN node.vendor == "cisco" THEN ASSERT node.version IS "15.1"

// Remediation: normalize the management VLAN.
WHEN custom_data.vlan != 100 THEN SET custom_data.vlan TO 100

WHEN node.role == "edge" THEN APPLY TEMPLATE "templates/edge.conf"
`
	rules, err := ParseFile(src)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if len(rules) != 3 {
		t.Fatalf("rule count = %d, want 3", len(rules))
	}
	for i, rule := range rules {
		if rule.ID != "" {
			t.Errorf("rule %d: parser must not assign IDs, got %q", i, rule.ID)
		}
	}
	if rules[1].Action.Type != ast.ActionTypeSet {
		t.Errorf("second rule action type = %s, want %s", rules[1].Action.Type, ast.ActionTypeSet)
	}
}

func TestParseFile_Empty(t *testing.T) {
	for _, src := range []string{"", "   \n\t  ", "# only a comment\n// another\n"} {
		rules, err := ParseFile(src)
		if err != nil {
			t.Errorf("ParseFile(%q) failed: %v", src, err)
			continue
		}
		if len(rules) != 0 {
			t.Errorf("ParseFile(%q) = %d rules, want 0", src, len(rules))
		}
	}
}

func TestParseFile_ErrorBlocksFile(t *testing.T) {
	src := `WHEN node.vendor == "cisco" THEN ASSERT node.version IS "15.1"
WHEN broken ==
`
	_, err := ParseFile(src)
	if err == nil {
		t.Fatal("ParseFile succeeded on malformed input, want error")
	}
}

// Parsing is deterministic: the same input always yields a structurally
// equal AST, and re-parsing a rendered rule reproduces the original.
func TestParse_RenderRoundTrip(t *testing.T) {
	sources := []string{
		`WHEN node.vendor == "cisco" THEN ASSERT node.version IS "15.1"`,
		`WHEN (a == 1 OR b == 2) AND NOT c == 3 THEN SET custom_data.vlan TO 100`,
		`WHEN node.hostname MATCHES /^core-\d+$/ THEN APPLY TEMPLATE "templates/core.conf"`,
		`WHEN node.vlan == desired.vlan THEN ASSERT node.state IS null`,
	}

	for _, src := range sources {
		first, err := ParseRule(src)
		if err != nil {
			t.Fatalf("ParseRule(%q) failed: %v", src, err)
		}
		second, err := ParseRule(src)
		if err != nil {
			t.Fatalf("ParseRule(%q) failed on reparse: %v", src, err)
		}
		if !first.Equal(second) {
			t.Errorf("parse not deterministic for %q", src)
		}

		rendered := first.String()
		reparsed, err := ParseRule(rendered)
		if err != nil {
			t.Fatalf("ParseRule(render(%q)) = ParseRule(%q) failed: %v", src, rendered, err)
		}
		if !first.Equal(reparsed) {
			t.Errorf("render round trip changed AST: %q -> %q", src, rendered)
		}
	}
}
