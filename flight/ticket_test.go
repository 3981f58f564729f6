package flight

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hugr-lab/memquery/filter"
	"github.com/hugr-lab/memquery/query"
)

func newTestCodec(t *testing.T) *TicketCodec {
	t.Helper()
	codec, err := NewTicketCodec()
	if err != nil {
		t.Fatalf("NewTicketCodec failed: %v", err)
	}
	t.Cleanup(codec.Close)
	return codec
}

func TestTicketCodecRoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	tests := []struct {
		name   string
		ticket TicketData
	}{
		{
			name:   "table only",
			ticket: TicketData{Schema: "main", Table: "users"},
		},
		{
			name: "projection and query",
			ticket: TicketData{
				Schema:   "my_schema",
				Table:    "my_table",
				Columns:  []string{"id", "first_name"},
				Query:    []byte(`{"filter":{"firstName":{"eq":"Bob"}},"paging":{"limit":10}}`),
				FieldMap: map[string]string{"firstName": "first_name"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := codec.Encode(&tt.ticket)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}

			decoded, err := codec.Decode(encoded)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}

			if diff := cmp.Diff(&tt.ticket, decoded); diff != "" {
				t.Errorf("ticket mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTicketCodecErrors(t *testing.T) {
	codec := newTestCodec(t)

	tests := []struct {
		name   string
		ticket []byte
		target error
	}{
		{name: "empty", ticket: nil, target: ErrInvalidTicket},
		{name: "not compressed", ticket: []byte(`{"schema":"main","table":"users"}`), target: ErrInvalidTicket},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := codec.Decode(tt.ticket); !errors.Is(err, tt.target) {
				t.Errorf("Decode() error = %v, want %v", err, tt.target)
			}
		})
	}

	if _, err := codec.Encode(&TicketData{Table: "users"}); !errors.Is(err, ErrInvalidTicket) {
		t.Errorf("Encode() without schema: error = %v, want ErrInvalidTicket", err)
	}
	if _, err := codec.Encode(&TicketData{Schema: "main"}); !errors.Is(err, ErrInvalidTicket) {
		t.Errorf("Encode() without table: error = %v, want ErrInvalidTicket", err)
	}
	_, err := codec.Encode(&TicketData{Schema: "main", Table: "users", Query: []byte(`{"paging":{"offset":-1}}`)})
	if !errors.Is(err, query.ErrInvalidArgument) {
		t.Errorf("Encode() with bad query: error = %v, want ErrInvalidArgument", err)
	}
}

func TestTicketScanOptions(t *testing.T) {
	td := TicketData{
		Schema:   "main",
		Table:    "users",
		Columns:  []string{"id"},
		Query:    []byte(`{"filter":{"firstName":{"eq":"Bob"}},"sorting":[{"field":"id","direction":"desc"}]}`),
		FieldMap: map[string]string{"firstName": "first_name"},
	}

	opts, err := td.ScanOptions()
	if err != nil {
		t.Fatalf("ScanOptions() error = %v", err)
	}
	if diff := cmp.Diff([]string{"id"}, opts.Columns); diff != "" {
		t.Errorf("Columns mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(filter.FieldMap{"firstName": "first_name"}, opts.FieldMap); diff != "" {
		t.Errorf("FieldMap mismatch (-want +got):\n%s", diff)
	}
	if opts.Query == nil || len(opts.Query.Sorting) != 1 || opts.Query.Sorting[0].Direction != query.Desc {
		t.Errorf("unexpected query %+v", opts.Query)
	}

	empty, err := (&TicketData{Schema: "main", Table: "users"}).ScanOptions()
	if err != nil || empty.Query != nil {
		t.Errorf("expected nil query, got %+v, %v", empty.Query, err)
	}
}

func TestParseCommand(t *testing.T) {
	td, err := ParseCommand([]byte(`{
		"schema": "main",
		"table": "people",
		"columns": ["id"],
		"query": {"filter": {"id": {"eq": 1}}, "sorting": [{"field": "id"}]},
		"field_map": {"personId": "id"}
	}`))
	if err != nil {
		t.Fatalf("ParseCommand() error = %v", err)
	}

	want := &TicketData{
		Schema:   "main",
		Table:    "people",
		Columns:  []string{"id"},
		Query:    []byte(`{"filter":{"id":{"eq":1}},"sorting":[{"field":"id","direction":"ASC","nulls":"NULLS_LAST"}]}`),
		FieldMap: map[string]string{"personId": "id"},
	}
	if diff := cmp.Diff(want, td); diff != "" {
		t.Errorf("ParseCommand mismatch (-want +got):\n%s", diff)
	}

	empty, err := ParseCommand([]byte(`{"schema": "main", "table": "people", "query": {}}`))
	if err != nil {
		t.Fatalf("ParseCommand() error = %v", err)
	}
	if empty.Query != nil {
		t.Errorf("expected empty query to be dropped, got %s", empty.Query)
	}
}

func TestParseCommandErrors(t *testing.T) {
	tests := []struct {
		name   string
		cmd    string
		target error
	}{
		{name: "not json", cmd: `schema=main`, target: ErrInvalidCommand},
		{name: "missing table", cmd: `{"schema": "main"}`, target: ErrInvalidTicket},
		{name: "malformed query", cmd: `{"schema": "main", "table": "t", "query": {"filter": {"and": {}}}}`, target: filter.ErrInvalidFilter},
		{name: "unsupported operator", cmd: `{"schema": "main", "table": "t", "query": {"filter": {"a": {"near": 1}}}}`, target: filter.ErrUnsupportedOperator},
		{name: "negative limit", cmd: `{"schema": "main", "table": "t", "query": {"paging": {"limit": -1}}}`, target: query.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseCommand([]byte(tt.cmd)); !errors.Is(err, tt.target) {
				t.Errorf("ParseCommand() error = %v, want %v", err, tt.target)
			}
		})
	}
}
