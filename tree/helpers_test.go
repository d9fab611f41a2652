package tree_test

import (
	"sync/atomic"

	"github.com/on-the-ground/lazytree/caps"
)

// org is a host hierarchy fixture. It counts ChildValues reads so tests can
// assert exactly how far mapping walked it.
type org struct {
	name  string
	units []*org
	reads atomic.Int32
}

var _ caps.ChildBearer = &org{}

func newOrg(name string, units ...*org) *org {
	return &org{name: name, units: units}
}

func (o *org) ChildValues() []any {
	o.reads.Add(1)
	out := make([]any, len(o.units))
	for i, u := range o.units {
		out[i] = u
	}
	return out
}

// rootedOrg exposes an org hierarchy through the caps.RootHolder contract.
type rootedOrg struct {
	root *org
}

var _ caps.RootHolder = rootedOrg{}

func (r rootedOrg) RootValue() any {
	return r.root
}
