// Package ast defines the typed abstract syntax tree for DCL, the Device
// Compliance Language.
//
// A DCL rule has the surface form:
//
//	WHEN <condition> THEN <action>
//
// The parser (pkg/dcl/parser) turns rule text into *ast.Rule values; the
// policy engine (pkg/policy/engine) evaluates them. The AST is immutable
// once parsed: evaluation never mutates nodes, so a parsed rule set can be
// shared freely across concurrent evaluations.
//
// # Node vocabulary
//
//   - FieldRef: a dotted path into a device's JSON-like data document.
//   - Value: a tagged literal (string, number, boolean, null, regex) or a
//     late-bound field reference resolved at evaluation time.
//   - Condition: recursive boolean expression (comparison, AND, OR, NOT,
//     and the trivial true/false conditions).
//   - Action: what to do when a condition is satisfied (ASSERT, SET,
//     APPLY TEMPLATE).
//   - Rule: condition + action with an optional identity.
//
// Every node carries a Location for error reporting.
package ast
