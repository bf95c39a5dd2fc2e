package ast

import "fmt"

// Rule represents a single compliance rule: a condition describing when the
// rule applies, and an action describing what to do when it does.
//
// ID is optional. The parser never assigns IDs; loaders assign them after
// parsing. A rule with an empty ID is anonymous and is identified only by
// its position in its source file.
type Rule struct {
	ID        string
	Condition *Condition
	Action    *Action
	Location  Location
}

// IsAnonymous reports whether the rule has no assigned identity.
func (r *Rule) IsAnonymous() bool {
	return r.ID == ""
}

// Equal reports structural equality between two rules, ignoring location.
// IDs participate in equality since they are the rule's identity.
func (r *Rule) Equal(other *Rule) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.ID == other.ID && r.Condition.Equal(other.Condition) && r.Action.Equal(other.Action)
}

// String returns a DCL-syntax rendering of the rule.
func (r *Rule) String() string {
	return fmt.Sprintf("WHEN %s THEN %s", r.Condition, r.Action)
}
