package query

import (
	"github.com/hugr-lab/memquery/filter"
	"github.com/hugr-lab/memquery/record"
)

// Query combines a filter, a sort specification and a paging window. Every
// component is optional; an absent component leaves the records unchanged.
type Query struct {
	Filter  filter.Node
	Sorting SortSpec
	Paging  *Paging
}

// IsEmpty reports whether q has no component at all.
func (q Query) IsEmpty() bool {
	return q.Filter == nil && len(q.Sorting) == 0 && q.Paging == nil
}

// Validate checks the sort specification and the paging window.
func (q Query) Validate() error {
	if err := q.Sorting.Validate(); err != nil {
		return err
	}
	return q.Paging.Validate()
}

// ApplyFilter returns the records matching n in their original order.
func ApplyFilter[R record.Record](records []R, n filter.Node) ([]R, error) {
	return filter.Evaluate(records, n)
}

// Apply filters, sorts and pages records, in that order, so that offset and
// limit count positions within the matching set.
//
// The whole query is validated before any record is touched; on error no
// partial result is returned.
//
// Error conditions:
//   - Negative offset or limit, unknown direction (*InvalidArgumentError)
//   - Unknown filter operator (*filter.UnsupportedOperatorError)
func Apply[R record.Record](records []R, q Query) ([]R, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	match, err := filter.Compile(q.Filter)
	if err != nil {
		return nil, err
	}

	matched := make([]R, 0, len(records))
	for _, r := range records {
		if match(r) {
			matched = append(matched, r)
		}
	}
	return page(ApplySort(matched, q.Sorting), q.Paging), nil
}
