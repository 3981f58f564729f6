package flight

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/memquery/catalog"
	"github.com/hugr-lab/memquery/internal/recovery"
)

// DoGet streams the result of the query encoded in a ticket.
//
// The handler:
//  1. Decodes the ticket issued by GetFlightInfo or ListFlights
//  2. Looks up the table in the catalog
//  3. Scans it with the ticket's projection, query and field map
//  4. Checks the reader schema matches the projected table schema
//  5. Streams record batches using Arrow IPC format
//
// Panics in the table's Scan are recovered and reported as Internal.
func (s *Server) DoGet(ticket *flight.Ticket, stream flight.FlightService_DoGetServer) (err error) {
	ctx := EnrichContext(stream.Context())
	logger := requestLogger(ctx, s.logger)

	logger.Debug("DoGet called", "ticket_size", len(ticket.GetTicket()))

	td, err := s.tickets.Decode(ticket.GetTicket())
	if err != nil {
		logger.Error("Failed to decode ticket", "error", err)
		return statusError(err, "invalid ticket")
	}

	logger = logger.With("schema", td.Schema, "table", td.Table)
	logger.Debug("DoGet request", "columns", td.Columns, "has_query", len(td.Query) > 0)

	// Labels come from the catalog, never from an unresolved ticket.
	table, err := s.lookupTable(ctx, td.Schema, td.Table)
	if err != nil {
		s.metrics.scanFailed(unresolvedLabel, unresolvedLabel, err)
		return err
	}

	start := time.Now()
	s.metrics.scanStarted(td.Schema, td.Table)
	defer func() {
		if err != nil {
			s.metrics.scanFailed(td.Schema, td.Table, err)
		}
	}()

	rows, err := s.streamScan(ctx, logger, td, table, stream)
	if err != nil {
		return err
	}

	s.metrics.scanCompleted(td.Schema, td.Table, rows, time.Since(start).Seconds())
	return nil
}

// streamScan runs the scan td describes and writes it to stream. It returns
// the number of rows sent.
func (s *Server) streamScan(ctx context.Context, logger *slog.Logger, td *TicketData, table catalog.Table, stream flight.FlightService_DoGetServer) (int64, error) {
	opts, err := td.ScanOptions()
	if err != nil {
		return 0, statusError(err, "invalid query")
	}

	schema, err := projectedSchema(table, td)
	if err != nil {
		return 0, err
	}

	reader, err := recovery.Value(s.logger, "Scan", func() (array.RecordReader, error) {
		return table.Scan(ctx, opts)
	})
	if err != nil {
		logger.Error("Table scan failed", "error", err)
		return 0, statusError(err, "table scan failed")
	}
	defer reader.Release()

	if !schema.Equal(reader.Schema()) {
		logger.Error("RecordReader schema does not match table schema",
			"table_schema_fields", schema.NumFields(),
			"reader_schema_fields", reader.Schema().NumFields(),
		)
		return 0, status.Errorf(codes.Internal,
			"schema mismatch: table has %d fields, reader has %d fields",
			schema.NumFields(), reader.Schema().NumFields())
	}

	writer := flight.NewRecordWriter(stream, ipc.WithSchema(schema), ipc.WithAllocator(s.allocator))
	defer writer.Close()

	batchCount := 0
	totalRows := int64(0)

	for reader.Next() {
		select {
		case <-ctx.Done():
			logger.Debug("DoGet cancelled by client",
				"batches_sent", batchCount,
				"rows_sent", totalRows,
			)
			return totalRows, status.Error(codes.Canceled, "request cancelled")
		default:
		}

		batch := reader.RecordBatch()
		if err := writer.Write(batch); err != nil {
			logger.Error("Failed to write record batch", "batch", batchCount+1, "error", err)
			return totalRows, status.Errorf(codes.Internal, "failed to write batch %d: %v", batchCount+1, err)
		}
		batchCount++
		totalRows += batch.NumRows()
	}

	if err := reader.Err(); err != nil && !errors.Is(err, io.EOF) {
		logger.Error("RecordReader error during iteration", "batch", batchCount, "error", err)
		return totalRows, statusError(err, "scan error")
	}

	logger.Debug("DoGet completed successfully",
		"batches_sent", batchCount,
		"total_rows", totalRows,
	)
	return totalRows, nil
}
