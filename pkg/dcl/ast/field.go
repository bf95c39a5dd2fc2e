package ast

import "strings"

// FieldRef identifies a location inside a JSON-like document as an ordered
// sequence of path segments, e.g. ["custom_data", "vlan"]. An empty FieldRef
// denotes the document root.
type FieldRef []string

// ParseFieldRef splits a dotted path ("custom_data.vlan") into a FieldRef.
// An empty string yields an empty (root) reference.
func ParseFieldRef(path string) FieldRef {
	if path == "" {
		return FieldRef{}
	}
	return FieldRef(strings.Split(path, "."))
}

// String renders the reference in dotted form.
func (f FieldRef) String() string {
	return strings.Join(f, ".")
}

// IsRoot reports whether the reference denotes the whole document.
func (f FieldRef) IsRoot() bool {
	return len(f) == 0
}

// Equal reports whether two references name the same path.
func (f FieldRef) Equal(other FieldRef) bool {
	if len(f) != len(other) {
		return false
	}
	for i := range f {
		if f[i] != other[i] {
			return false
		}
	}
	return true
}
