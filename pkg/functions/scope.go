// Package functions defines external function descriptors, visibility
// scopes, the eligibility validator, and the default function table.
package functions

// Scope is an explicit visibility context. Scopes form a tree; a function
// defined in one scope is callable from another only if the defining scope
// lies on the caller's ancestor chain. A nil defining scope is universal
// and callable from everywhere.
type Scope struct {
	name   string
	parent *Scope
}

// Root is the top-level scope used by compilations that do not supply
// their own.
var Root = &Scope{name: "root"}

// NewScope creates a child scope of parent. A nil parent attaches the
// scope under Root.
func NewScope(parent *Scope, name string) *Scope {
	if parent == nil {
		parent = Root
	}
	return &Scope{name: name, parent: parent}
}

// Name returns the scope's display name.
func (s *Scope) Name() string {
	if s == nil {
		return "<universal>"
	}
	return s.name
}

// Reaches reports whether a function defined in def may be called from s.
func (s *Scope) Reaches(def *Scope) bool {
	if def == nil {
		return true
	}
	for cur := s; cur != nil; cur = cur.parent {
		if cur == def {
			return true
		}
	}
	return false
}
