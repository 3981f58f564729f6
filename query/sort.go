package query

import (
	"slices"

	"github.com/hugr-lab/memquery/record"
)

// Direction is the ordering applied to non-null values of a sort field.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// NullsPlacement positions null and absent values relative to every non-null
// value. It does not depend on Direction.
type NullsPlacement string

const (
	NullsLast  NullsPlacement = "NULLS_LAST"
	NullsFirst NullsPlacement = "NULLS_FIRST"
)

// SortCriterion orders records by one field. The zero Direction is Asc and
// the zero Nulls is NullsLast.
type SortCriterion struct {
	Field     string         `json:"field"`
	Direction Direction      `json:"direction,omitempty"`
	Nulls     NullsPlacement `json:"nulls,omitempty"`
}

// Descending reports whether the criterion reverses natural order.
func (c SortCriterion) Descending() bool { return c.Direction == Desc }

// NullsFirst reports whether nulls sort before non-null values.
func (c SortCriterion) NullsFirst() bool { return c.Nulls == NullsFirst }

// Validate rejects directions and null placements outside the known set.
func (c SortCriterion) Validate() error {
	switch c.Direction {
	case "", Asc, Desc:
	default:
		return &InvalidArgumentError{Field: "direction", Value: c.Direction}
	}
	switch c.Nulls {
	case "", NullsLast, NullsFirst:
	default:
		return &InvalidArgumentError{Field: "nulls", Value: c.Nulls}
	}
	return nil
}

// SortSpec is an ordered list of criteria; the first is the primary key.
type SortSpec []SortCriterion

// Validate validates every criterion.
func (s SortSpec) Validate() error {
	for _, c := range s {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Comparator orders two records, returning -1, 0 or 1.
type Comparator func(a, b record.Record) int

// BuildComparator returns a comparator applying the criteria in priority
// order. The first criterion on which the records differ decides; records
// tied on every criterion compare equal.
//
// Nulls are placed first or last regardless of direction. Non-null values of
// different kinds order number < string < boolean < timestamp.
func BuildComparator(spec SortSpec) Comparator {
	criteria := slices.Clone(spec)
	return func(a, b record.Record) int {
		for _, c := range criteria {
			if n := compareField(a, b, c); n != 0 {
				return n
			}
		}
		return 0
	}
}

func compareField(a, b record.Record, c SortCriterion) int {
	av := record.Lookup(a, c.Field)
	bv := record.Lookup(b, c.Field)

	switch {
	case av.IsNull() && bv.IsNull():
		return 0
	case av.IsNull():
		if c.NullsFirst() {
			return -1
		}
		return 1
	case bv.IsNull():
		if c.NullsFirst() {
			return 1
		}
		return -1
	}

	n := sign(record.Order(av, bv))
	if c.Descending() {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

// ApplySort returns a new slice holding the records in the order given by
// spec. The sort is stable, so fully tied records keep their input order. An
// empty spec returns a copy in input order. The input is never modified.
func ApplySort[R record.Record](records []R, spec SortSpec) []R {
	out := make([]R, len(records))
	copy(out, records)
	if len(spec) == 0 {
		return out
	}

	compare := BuildComparator(spec)
	slices.SortStableFunc(out, func(a, b R) int {
		return compare(a, b)
	})
	return out
}
