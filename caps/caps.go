// Package caps declares the structural capability contracts a host value may
// implement to participate in tree mapping and traversal.
//
// The contracts are deliberately untyped (any-based): capabilities are
// discovered at runtime from values of unknown static type, and the typed
// traversal variants in package traverse recover static typing at the yield
// boundary.
package caps

// ValueHolder exposes a mutable value slot on a host object.
type ValueHolder interface {
	Value() any
	SetValue(v any)
}

// ParentHolder exposes the host's current parent value, or nil when the host
// is a root.
type ParentHolder interface {
	ParentValue() any
}

// ChildBearer exposes an ordered sequence of child values.
//
// The returned slice is read-only from the mapping/traversal side: child
// structure must be mutated through the host's own API, never by writing
// through this slice.
type ChildBearer interface {
	ChildValues() []any
}

// RootHolder exposes the root value of a hierarchy, letting a container be
// mapped without the caller knowing how the root is reached.
type RootHolder interface {
	RootValue() any
}
