// Package parser turns DCL rule text into the typed AST defined in
// pkg/dcl/ast.
//
// # Entry points
//
//	rule, err := parser.ParseRule(`WHEN node.vendor == "cisco" THEN ASSERT node.version IS "15.1"`)
//	rules, err := parser.ParseFile(src) // zero or more rules
//
// ParseFile accepts zero or more whitespace/comment-separated rules; a
// syntactically empty input yields an empty slice, not an error. Line
// comments start with '#' or '//'.
//
// # Grammar
//
//	rule      := "WHEN" condition "THEN" action
//	condition := or
//	or        := and ( "OR" and )*
//	and       := unary ( "AND" unary )*
//	unary     := "NOT" unary | primary
//	primary   := "(" condition ")" | "true" | "false" | field op value
//	op        := "==" | "!=" | "<" | "<=" | ">" | ">=" | "CONTAINS" | "MATCHES"
//	value     := string | number | "true" | "false" | "null" | regex | field
//	action    := "ASSERT" field "IS" value
//	           | "SET" field "TO" value
//	           | "APPLY" "TEMPLATE" ( string | field )
//	field     := ident ( "." ident )*
//
// NOT binds tighter than AND, which binds tighter than OR; chained AND/OR
// fold left-associatively into nested binary nodes. Word keywords are
// case-sensitive.
//
// # Errors
//
// All syntax violations are reported as *ParseError with a line/column
// location; malformed input is always a recoverable error, never a panic.
// The parser never assigns rule IDs; loaders do that after parsing.
package parser
