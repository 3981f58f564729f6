package flight

import (
	"encoding/json"
	"fmt"

	"github.com/hugr-lab/memquery/catalog"
	"github.com/hugr-lab/memquery/filter"
	"github.com/hugr-lab/memquery/internal/msgpack"
	"github.com/hugr-lab/memquery/internal/serialize"
	"github.com/hugr-lab/memquery/query"
)

// maxTicketSize bounds the decompressed size of a ticket.
const maxTicketSize = 1 << 20

// TicketData is the decoded content of a Flight ticket: the table to scan
// plus the query to run against it.
type TicketData struct {
	// Schema is the schema name (e.g., "main").
	Schema string `msgpack:"schema"`

	// Table is the table name (e.g., "users").
	Table string `msgpack:"table"`

	// Columns to project (optional, nil means all columns).
	Columns []string `msgpack:"columns,omitempty"`

	// Query is the JSON query document (optional).
	Query []byte `msgpack:"query,omitempty"`

	// FieldMap translates query field names to column names (optional).
	FieldMap map[string]string `msgpack:"field_map,omitempty"`
}

// Validate checks the ticket names a table and carries a well-formed query.
func (td *TicketData) Validate() error {
	if td.Schema == "" {
		return fmt.Errorf("%w: schema name cannot be empty", ErrInvalidTicket)
	}
	if td.Table == "" {
		return fmt.Errorf("%w: table name cannot be empty", ErrInvalidTicket)
	}
	_, err := td.parseQuery()
	return err
}

func (td *TicketData) parseQuery() (*query.Query, error) {
	if len(td.Query) == 0 {
		return nil, nil
	}
	return query.Parse(td.Query)
}

// ScanOptions converts the ticket into catalog scan options.
func (td *TicketData) ScanOptions() (*catalog.ScanOptions, error) {
	q, err := td.parseQuery()
	if err != nil {
		return nil, err
	}
	return &catalog.ScanOptions{
		Columns:  td.Columns,
		Query:    q,
		FieldMap: filter.FieldMap(td.FieldMap),
	}, nil
}

// Command is the JSON body of a CMD flight descriptor. It selects a table
// like a PATH descriptor and adds a projection and a query.
//
//	{
//	  "schema": "main",
//	  "table": "people",
//	  "columns": ["id", "first_name"],
//	  "query": {"filter": {"firstName": {"like": "B%"}}, "paging": {"limit": 10}},
//	  "field_map": {"firstName": "first_name"}
//	}
type Command struct {
	Schema   string            `json:"schema"`
	Table    string            `json:"table"`
	Columns  []string          `json:"columns,omitempty"`
	Query    json.RawMessage   `json:"query,omitempty"`
	FieldMap map[string]string `json:"field_map,omitempty"`
}

// ParseCommand decodes a CMD descriptor body. The query is parsed and
// stored in canonical form.
func ParseCommand(data []byte) (*TicketData, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCommand, err)
	}

	td := &TicketData{
		Schema:   cmd.Schema,
		Table:    cmd.Table,
		Columns:  cmd.Columns,
		FieldMap: cmd.FieldMap,
	}
	if len(cmd.Query) > 0 {
		q, err := query.Parse(cmd.Query)
		if err != nil {
			return nil, err
		}
		if !q.IsEmpty() {
			if td.Query, err = q.MarshalJSON(); err != nil {
				return nil, err
			}
		}
	}
	if err := td.Validate(); err != nil {
		return nil, err
	}
	return td, nil
}

// TicketCodec encodes TicketData into opaque ticket bytes: MessagePack
// compressed with ZStandard. Safe for concurrent use.
type TicketCodec struct {
	compressor   *serialize.Compressor
	decompressor *serialize.Decompressor
}

// NewTicketCodec creates a codec. Caller must call Close() when done.
func NewTicketCodec() (*TicketCodec, error) {
	c, err := serialize.NewCompressor()
	if err != nil {
		return nil, err
	}
	d, err := serialize.NewDecompressor(maxTicketSize)
	if err != nil {
		c.Close()
		return nil, err
	}
	return &TicketCodec{compressor: c, decompressor: d}, nil
}

// Encode validates td and returns its ticket bytes.
func (tc *TicketCodec) Encode(td *TicketData) ([]byte, error) {
	if err := td.Validate(); err != nil {
		return nil, err
	}
	data, err := msgpack.Encode(td)
	if err != nil {
		return nil, fmt.Errorf("failed to encode ticket: %w", err)
	}
	return tc.compressor.Compress(data), nil
}

// Decode parses ticket bytes produced by Encode.
func (tc *TicketCodec) Decode(ticket []byte) (*TicketData, error) {
	if len(ticket) == 0 {
		return nil, fmt.Errorf("%w: ticket cannot be empty", ErrInvalidTicket)
	}
	data, err := tc.decompressor.Decompress(ticket)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTicket, err)
	}
	var td TicketData
	if err := msgpack.Decode(data, &td); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTicket, err)
	}
	if err := td.Validate(); err != nil {
		return nil, err
	}
	return &td, nil
}

// Close releases codec resources.
func (tc *TicketCodec) Close() {
	tc.compressor.Close()
	tc.decompressor.Close()
}
