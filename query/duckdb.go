package query

import (
	"strconv"
	"strings"

	"github.com/hugr-lab/memquery/filter"
)

// DuckDBOptions configures SelectDuckDB.
type DuckDBOptions struct {
	filter.EncoderOptions

	// Tiebreaker is a column expression appended to ORDER BY so rows tied on
	// every sort criterion keep their storage order. DuckDB tables expose
	// "rowid" for this purpose. Empty leaves ties unordered.
	Tiebreaker string
}

// SelectDuckDB renders q as a DuckDB SELECT over table. columns are physical
// column names; an empty list selects every column. Field references in the
// filter and sort specification go through opts.ColumnMapping and
// opts.ColumnExpressions.
func SelectDuckDB(table string, columns []string, q Query, opts *DuckDBOptions) (string, error) {
	if opts == nil {
		opts = &DuckDBOptions{}
	}
	if err := q.Validate(); err != nil {
		return "", err
	}
	enc := filter.NewDuckDBEncoder(&opts.EncoderOptions)

	var sb strings.Builder
	sb.WriteString("SELECT ")
	if len(columns) == 0 {
		sb.WriteString("*")
	} else {
		for i, col := range columns {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(filter.QuoteIdentifier(col))
		}
	}
	sb.WriteString(" FROM ")
	sb.WriteString(filter.QuoteIdentifier(table))

	if q.Filter != nil {
		where, err := enc.Encode(q.Filter)
		if err != nil {
			return "", err
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}

	if orderBy := OrderByDuckDB(q.Sorting, enc, opts.Tiebreaker); orderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(orderBy)
	}

	if q.Paging != nil {
		if q.Paging.Limit != nil {
			sb.WriteString(" LIMIT ")
			sb.WriteString(strconv.Itoa(*q.Paging.Limit))
		}
		if q.Paging.Offset > 0 {
			sb.WriteString(" OFFSET ")
			sb.WriteString(strconv.Itoa(q.Paging.Offset))
		}
	}
	return sb.String(), nil
}

// OrderByDuckDB renders spec as an ORDER BY list (without the keywords) with
// explicit NULLS FIRST / NULLS LAST on every term. A non-empty tiebreaker is
// appended in ascending order.
func OrderByDuckDB(spec SortSpec, enc filter.Encoder, tiebreaker string) string {
	terms := make([]string, 0, len(spec)+1)
	for _, c := range spec {
		term := enc.Column(c.Field)
		if c.Descending() {
			term += " DESC"
		} else {
			term += " ASC"
		}
		if c.NullsFirst() {
			term += " NULLS FIRST"
		} else {
			term += " NULLS LAST"
		}
		terms = append(terms, term)
	}
	if tiebreaker != "" {
		terms = append(terms, tiebreaker+" ASC")
	}
	return strings.Join(terms, ", ")
}
