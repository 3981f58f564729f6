// Package filter parses, evaluates, remaps and encodes declarative filter trees.
//
// This package enables store implementers to:
//   - Parse filter documents into strongly-typed Go structures
//   - Evaluate them against in-memory records with the same semantics a query
//     store would apply
//   - Rewrite field names to move a filter between two schemas
//   - Encode filters to SQL for backends with native query support (DuckDB)
//
// # Basic Usage
//
// Parse a filter document and keep the matching records:
//
//	n, err := filter.Parse([]byte(`{"first": {"in": ["Bob", "Sally"]}}`))
//	if err != nil {
//	    return err // Malformed document or unknown operator
//	}
//
//	matched, err := filter.Evaluate(records, n)
//
// Compile once when the same filter is applied to many records:
//
//	match, err := filter.Compile(n)
//	if match(rec) { ... }
//
// # Document Shape
//
// A filter document is an object. Each key is either a field name mapping to
// an operator object, or "and"/"or" mapping to a list of documents:
//
//	{
//	    "isVerified": {"is": true},
//	    "or": [
//	        {"age": {"between": {"lower": 18, "upper": 30}}},
//	        {"name": {"like": "A%"}}
//	    ]
//	}
//
// Keys at the same level are joined with AND in document order.
//
// # Operator Semantics
//
// A field missing from a record reads as null. Mismatched kinds, null values
// under ordered operators and non-string values under like never match; they
// are not errors.
//   - eq, neq: strict equality per kind; eq null matches null fields
//   - gt, gte, lt, lte: numbers, strings (lexicographic) and timestamps
//   - in, notIn: strict membership in a list
//   - like, notLike, iLike, notILike: % wildcard, whole value, on strings
//   - is, isNot: boolean or null operand
//   - between, notBetween: inclusive range on ordered kinds
//
// Timestamps travel as RFC 3339 strings; a string operand compared against a
// timestamp field is read as a timestamp.
//
// # Field Mapping
//
// Translate a filter written against one schema to another:
//
//	mapped := filter.Transform(n, filter.FieldMap{
//	    "first": "firstName",
//	    "last":  "lastName",
//	})
//
// Fields absent from the map keep their names.
//
// # SQL Encoding
//
// Encode filters for DuckDB, optionally renaming columns on the way:
//
//	enc := filter.NewDuckDBEncoder(&filter.EncoderOptions{
//	    ColumnMapping: filter.FieldMap{"created": "created_at"},
//	})
//	where, err := enc.Encode(n)
package filter
