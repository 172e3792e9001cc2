package lispkit

import (
	"sort"

	"src.elv.sh/pkg/persistent/hash"
	"src.elv.sh/pkg/persistent/hashmap"
)

// Context maps symbol names to values for the tree-walking evaluator.
//
// It is a flat mapping, not a chain of scopes: a function body sees only the
// Context built for that call. Bind returns a new Context and never changes
// the receiver, so a caller's bindings survive any call it makes.
type Context struct {
	m hashmap.Map
}

func strEqual(a, b any) bool { return a.(string) == b.(string) }
func strHash(k any) uint32   { return hash.String(k.(string)) }

var emptyContext = Context{m: hashmap.New(strEqual, strHash)}

// NewContext returns an empty Context.
func NewContext() Context { return emptyContext }

func (c Context) mapOrEmpty() hashmap.Map {
	if c.m == nil {
		return emptyContext.m
	}
	return c.m
}

// Bind returns c extended with name bound to v (replacing any prior binding).
func (c Context) Bind(name string, v Node) Context {
	return Context{m: c.mapOrEmpty().Assoc(name, v)}
}

// BindAll binds names[i] to values[i] for every i.
func (c Context) BindAll(names []string, values []Node) Context {
	m := c.mapOrEmpty()
	for i, name := range names {
		m = m.Assoc(name, values[i])
	}
	return Context{m: m}
}

// Lookup returns the value bound to name.
func (c Context) Lookup(name string) (Node, bool) {
	v, ok := c.mapOrEmpty().Index(name)
	if !ok {
		return Nil, false
	}
	return v.(Node), true
}

// Has reports whether name is bound.
func (c Context) Has(name string) bool {
	_, ok := c.mapOrEmpty().Index(name)
	return ok
}

// Len is the number of bindings.
func (c Context) Len() int { return c.mapOrEmpty().Len() }

// Names returns the bound names in sorted order.
func (c Context) Names() []string {
	out := make([]string, 0, c.Len())
	for it := c.mapOrEmpty().Iterator(); it.HasElem(); it.Next() {
		k, _ := it.Elem()
		out = append(out, k.(string))
	}
	sort.Strings(out)
	return out
}
