package flight

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/flight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/memquery/catalog"
	"github.com/hugr-lab/memquery/internal/recovery"
)

// GetFlightInfo plans a table query and returns its ticket.
//
// The descriptor is either:
//   - PATH [schema_name, table_name]: scan the whole table
//   - CMD with a JSON Command: scan with projection, query and field map
//
// Query errors are reported here, before any data is streamed. The returned
// FlightInfo carries the projected Arrow schema and a single endpoint whose
// ticket is redeemed with DoGet.
func (s *Server) GetFlightInfo(ctx context.Context, desc *flight.FlightDescriptor) (*flight.FlightInfo, error) {
	ctx = EnrichContext(ctx)
	logger := requestLogger(ctx, s.logger)

	logger.Debug("GetFlightInfo called", "type", desc.GetType())

	td, err := ticketFromDescriptor(desc)
	if err != nil {
		return nil, statusError(err, "invalid descriptor")
	}

	schema, err := s.resolveSchema(ctx, td)
	if err != nil {
		logger.Debug("GetFlightInfo rejected", "schema", td.Schema, "table", td.Table, "error", err)
		return nil, err
	}

	info, err := s.flightInfo(desc, td, schema)
	if err != nil {
		return nil, err
	}

	logger.Debug("GetFlightInfo successful",
		"schema", td.Schema,
		"table", td.Table,
		"num_fields", schema.NumFields(),
		"has_query", len(td.Query) > 0,
	)
	return info, nil
}

// GetSchema returns the Arrow schema a descriptor would stream.
func (s *Server) GetSchema(ctx context.Context, desc *flight.FlightDescriptor) (*flight.SchemaResult, error) {
	ctx = EnrichContext(ctx)

	td, err := ticketFromDescriptor(desc)
	if err != nil {
		return nil, statusError(err, "invalid descriptor")
	}
	schema, err := s.resolveSchema(ctx, td)
	if err != nil {
		return nil, err
	}
	return &flight.SchemaResult{Schema: flight.SerializeSchema(schema, s.allocator)}, nil
}

// ticketFromDescriptor reads the table and query a descriptor selects.
func ticketFromDescriptor(desc *flight.FlightDescriptor) (*TicketData, error) {
	switch desc.GetType() {
	case flight.DescriptorPATH:
		path := desc.GetPath()
		if len(path) != 2 {
			return nil, status.Error(codes.InvalidArgument, "path must contain exactly 2 elements: [schema_name, table_name]")
		}
		td := &TicketData{Schema: path[0], Table: path[1]}
		if err := td.Validate(); err != nil {
			return nil, err
		}
		return td, nil
	case flight.DescriptorCMD:
		return ParseCommand(desc.GetCmd())
	default:
		return nil, status.Errorf(codes.InvalidArgument, "unsupported descriptor type %v", desc.GetType())
	}
}

// lookupTable finds a table in the catalog. Missing entities map to NotFound.
func (s *Server) lookupTable(ctx context.Context, schemaName, tableName string) (catalog.Table, error) {
	schema, err := recovery.Value(s.logger, "Catalog.Schema", func() (catalog.Schema, error) {
		return s.catalog.Schema(ctx, schemaName)
	})
	if err != nil {
		s.logger.Error("Failed to get schema from catalog", "schema", schemaName, "error", err)
		return nil, statusError(err, "failed to get schema")
	}
	if schema == nil {
		return nil, status.Errorf(codes.NotFound, "schema not found: %s", schemaName)
	}

	table, err := recovery.Value(s.logger, "Schema.Table", func() (catalog.Table, error) {
		return schema.Table(ctx, tableName)
	})
	if err != nil {
		s.logger.Error("Failed to get table from schema", "schema", schemaName, "table", tableName, "error", err)
		return nil, statusError(err, "failed to get table")
	}
	if table == nil {
		return nil, status.Errorf(codes.NotFound, "table not found: %s.%s", schemaName, tableName)
	}
	return table, nil
}

// resolveSchema returns the projected Arrow schema td streams.
func (s *Server) resolveSchema(ctx context.Context, td *TicketData) (*arrow.Schema, error) {
	table, err := s.lookupTable(ctx, td.Schema, td.Table)
	if err != nil {
		return nil, err
	}
	return projectedSchema(table, td)
}

func projectedSchema(table catalog.Table, td *TicketData) (*arrow.Schema, error) {
	full := table.ArrowSchema(nil)
	if full == nil {
		return nil, status.Errorf(codes.Internal, "table %s.%s has nil Arrow schema", td.Schema, td.Table)
	}
	schema, err := catalog.ProjectSchema(full, td.Columns)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "table %s.%s: %v", td.Schema, td.Table, err)
	}
	return schema, nil
}

// flightInfo builds the FlightInfo for a planned scan.
func (s *Server) flightInfo(desc *flight.FlightDescriptor, td *TicketData, schema *arrow.Schema) (*flight.FlightInfo, error) {
	ticket, err := s.tickets.Encode(td)
	if err != nil {
		s.logger.Error("Failed to encode ticket", "schema", td.Schema, "table", td.Table, "error", err)
		return nil, statusError(err, "failed to encode ticket")
	}

	endpoint := &flight.FlightEndpoint{
		Ticket: &flight.Ticket{Ticket: ticket},
	}
	if s.address != "" {
		endpoint.Location = []*flight.Location{{Uri: "grpc://" + s.address}}
	}

	return &flight.FlightInfo{
		Schema:           flight.SerializeSchema(schema, s.allocator),
		FlightDescriptor: desc,
		Endpoint:         []*flight.FlightEndpoint{endpoint},
		TotalRecords:     -1,
		TotalBytes:       -1,
	}, nil
}
