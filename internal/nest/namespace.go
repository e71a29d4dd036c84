package nest

import (
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// entry is a namespace value plus the name of the level that set it.
type entry struct {
	value  any
	origin string
}

// Namespace is the ordered set of parameter values accumulated while
// descending through levels. Keys keep their first insertion position;
// overwriting a key replaces its value and origin in place.
type Namespace struct {
	m *orderedmap.OrderedMap[string, entry]
}

// NewNamespace returns an empty namespace.
func NewNamespace() *Namespace {
	return &Namespace{m: orderedmap.New[string, entry]()}
}

// Get returns the value stored under key.
func (ns *Namespace) Get(key string) (any, bool) {
	e, ok := ns.m.Get(key)
	return e.value, ok
}

// Origin returns the name of the level that last set key. Entries seeded
// through WithBase or Set have an empty origin.
func (ns *Namespace) Origin(key string) (string, bool) {
	e, ok := ns.m.Get(key)
	return e.origin, ok
}

// Set stores value under key with no level origin.
func (ns *Namespace) Set(key string, value any) {
	ns.set(key, value, "")
}

func (ns *Namespace) set(key string, value any, origin string) {
	ns.m.Set(key, entry{value: value, origin: origin})
}

// Len returns the number of keys.
func (ns *Namespace) Len() int {
	return ns.m.Len()
}

// Keys returns the keys in insertion order.
func (ns *Namespace) Keys() []string {
	keys := make([]string, 0, ns.m.Len())
	for p := ns.m.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	return keys
}

// Range calls fn for every entry in insertion order until fn returns false.
func (ns *Namespace) Range(fn func(key string, value any) bool) {
	for p := ns.m.Oldest(); p != nil; p = p.Next() {
		if !fn(p.Key, p.Value.value) {
			return
		}
	}
}

// Map returns an unordered copy of the namespace.
func (ns *Namespace) Map() map[string]any {
	out := make(map[string]any, ns.m.Len())
	for p := ns.m.Oldest(); p != nil; p = p.Next() {
		out[p.Key] = p.Value.value
	}
	return out
}

// Clone returns a shallow copy. Values are shared, the key set is not.
func (ns *Namespace) Clone() *Namespace {
	c := NewNamespace()
	for p := ns.m.Oldest(); p != nil; p = p.Next() {
		c.m.Set(p.Key, p.Value)
	}
	return c
}

// MarshalJSON encodes the namespace as a JSON object in insertion order.
func (ns *Namespace) MarshalJSON() ([]byte, error) {
	om := orderedmap.New[string, any]()
	for p := ns.m.Oldest(); p != nil; p = p.Next() {
		om.Set(p.Key, p.Value.value)
	}
	return json.Marshal(om)
}
