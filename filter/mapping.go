package filter

import (
	"slices"
	"sort"
)

// FieldMap translates field names from one schema to another.
// Fields without an entry keep their name.
type FieldMap map[string]string

// Field returns the target name for a source field.
func (m FieldMap) Field(name string) string {
	if target, ok := m[name]; ok && target != "" {
		return target
	}
	return name
}

// Inverse returns the map translating target names back to source names.
// It fails with *MappingError when two source fields share a target.
func (m FieldMap) Inverse() (FieldMap, error) {
	// Iterate in sorted order so the reported conflict is deterministic.
	sources := make([]string, 0, len(m))
	for source := range m {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	inv := make(FieldMap, len(m))
	for _, source := range sources {
		target := m.Field(source)
		if prev, ok := inv[target]; ok {
			return nil, &MappingError{Target: target, Sources: [2]string{prev, source}}
		}
		inv[target] = source
	}
	return inv, nil
}

// Transform rewrites every field reference in the tree through m. Operators,
// operands, connectives and child order are preserved. The input tree is not
// modified; the result shares no mutable state with it.
func Transform(n Node, m FieldMap) Node {
	switch n := n.(type) {
	case *Comparison:
		if n == nil {
			return nil
		}
		c := *n
		c.Field = m.Field(n.Field)
		c.Values = slices.Clone(n.Values)
		return &c
	case *Group:
		if n == nil {
			return nil
		}
		g := &Group{Connective: n.Connective}
		if n.Children != nil {
			g.Children = make([]Node, len(n.Children))
			for i, child := range n.Children {
				g.Children[i] = Transform(child, m)
			}
		}
		return g
	default:
		// Unknown node types are returned as is so Compile rejects them
		// instead of the filter widening to match everything.
		return n
	}
}

// Fields returns the distinct field names referenced by the tree, in order of
// first appearance.
func Fields(n Node) []string {
	var (
		out  []string
		seen = map[string]bool{}
	)
	var walk func(Node)
	walk = func(n Node) {
		switch n := n.(type) {
		case *Comparison:
			if n != nil && !seen[n.Field] {
				seen[n.Field] = true
				out = append(out, n.Field)
			}
		case *Group:
			if n == nil {
				return
			}
			for _, child := range n.Children {
				walk(child)
			}
		}
	}
	walk(n)
	return out
}
