package query

import "github.com/hugr-lab/memquery/filter"

// TransformSort renames the field of every criterion through m, keeping
// direction, null placement and criterion order.
func TransformSort(spec SortSpec, m filter.FieldMap) SortSpec {
	if spec == nil {
		return nil
	}
	out := make(SortSpec, len(spec))
	for i, c := range spec {
		c.Field = m.Field(c.Field)
		out[i] = c
	}
	return out
}

// TransformQuery renames every field referenced by the filter and the sort
// specification. Paging carries no field names and is copied as is.
func TransformQuery(q Query, m filter.FieldMap) Query {
	return Query{
		Filter:  filter.Transform(q.Filter, m),
		Sorting: TransformSort(q.Sorting, m),
		Paging:  q.Paging.Clone(),
	}
}
