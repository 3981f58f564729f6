package flight

import (
	"github.com/apache/arrow-go/v18/arrow/flight"

	"github.com/hugr-lab/memquery/catalog"
	"github.com/hugr-lab/memquery/internal/recovery"
)

// ListFlights sends one FlightInfo per table, each with a PATH descriptor
// and a ticket for an unfiltered scan. A non-empty criteria expression
// restricts the listing to the schema it names.
func (s *Server) ListFlights(criteria *flight.Criteria, stream flight.FlightService_ListFlightsServer) error {
	ctx := EnrichContext(stream.Context())
	logger := requestLogger(ctx, s.logger)

	only := string(criteria.GetExpression())
	logger.Debug("ListFlights called", "schema", only)

	schemas, err := recovery.Value(s.logger, "Catalog.Schemas", func() ([]catalog.Schema, error) {
		return s.catalog.Schemas(ctx)
	})
	if err != nil {
		logger.Error("Failed to list schemas", "error", err)
		return statusError(err, "failed to list schemas")
	}

	sent := 0
	for _, schema := range schemas {
		if only != "" && schema.Name() != only {
			continue
		}
		tables, err := recovery.Value(s.logger, "Schema.Tables", func() ([]catalog.Table, error) {
			return schema.Tables(ctx)
		})
		if err != nil {
			logger.Error("Failed to list tables", "schema", schema.Name(), "error", err)
			return statusError(err, "failed to list tables")
		}

		for _, table := range tables {
			td := &TicketData{Schema: schema.Name(), Table: table.Name()}
			arrowSchema, err := projectedSchema(table, td)
			if err != nil {
				return err
			}
			desc := &flight.FlightDescriptor{
				Type: flight.DescriptorPATH,
				Path: []string{td.Schema, td.Table},
			}
			info, err := s.flightInfo(desc, td, arrowSchema)
			if err != nil {
				return err
			}
			if err := stream.Send(info); err != nil {
				logger.Error("Failed to send FlightInfo", "error", err)
				return statusError(err, "failed to send flight info")
			}
			sent++
		}
	}

	logger.Debug("ListFlights completed", "flights", sent)
	return nil
}
