// Package query executes declarative queries against in-memory records.
//
// A Query bundles an optional filter tree, an ordered sort specification and
// an offset/limit window. Apply runs them in a fixed order: filter, then sort,
// then page, so that paging counts positions inside the matching set.
//
//	q, err := query.Parse([]byte(`{
//	    "filter":  {"isVerified": {"is": true}},
//	    "sorting": [{"field": "first", "direction": "DESC"}],
//	    "paging":  {"offset": 1, "limit": 2}
//	}`))
//	if err != nil {
//	    return err
//	}
//	page, err := query.Apply(records, *q)
//
// Sorting is stable. Null and absent values are placed by the criterion's
// NullsPlacement (NULLS_LAST unless stated) whatever the direction.
//
// TransformQuery rewrites the field names of a query through a
// filter.FieldMap, and SelectDuckDB renders the same query as DuckDB SQL for
// stores that evaluate it natively.
package query
