package report

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cloudops/azure-vm-eol/pkg/eol"
	"github.com/cloudops/azure-vm-eol/pkg/inventory"
)

// CalendarSource provides the EOL calendar for an endoflife.date product.
// In production this is the eol.Client, whose calendars were prefetched
// before the sink starts draining.
type CalendarSource interface {
	Calendar(ctx context.Context, product string) ([]eol.CycleRecord, error)
}

// Sink consumes inventory records, classifies each against its family's
// EOL calendar and appends a report row per record.
type Sink struct {
	calendars       CalendarSource
	writer          RowWriter
	logger          *logrus.Logger
	lookaheadMonths int
	now             func() time.Time
}

// NewSink creates a sink writing through the given RowWriter.
func NewSink(calendars CalendarSource, writer RowWriter, logger *logrus.Logger, lookaheadMonths int) *Sink {
	return &Sink{
		calendars:       calendars,
		writer:          writer,
		logger:          logger,
		lookaheadMonths: lookaheadMonths,
		now:             time.Now,
	}
}

// Drain writes the header, then consumes records until the producer closes
// the channel or the context is cancelled.
func (s *Sink) Drain(ctx context.Context, records <-chan inventory.Record) error {
	if err := s.writer.WriteHeader(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case record, ok := <-records:
			if !ok {
				return nil
			}
			if err := s.writeRecord(ctx, record); err != nil {
				return err
			}
		}
	}
}

func (s *Sink) writeRecord(ctx context.Context, record inventory.Record) error {
	row := Row{
		OS:             osLabel(record.OSType),
		SubscriptionID: record.SubscriptionID,
		Publisher:      record.Publisher,
		Offer:          record.Offer,
		SKU:            record.SKU,
		Version:        record.Version,
		ExactVersion:   record.ExactVersion,
		ResourceID:     record.ResourceID,
	}

	if record.Family == eol.FamilyUnknown {
		row.Status = eol.StatusUnknown
		row.StatusLabel = "--"
		return s.writer.WriteRow(row)
	}

	calendar, err := s.calendars.Calendar(ctx, record.Family.Product())
	if err != nil {
		return err
	}

	result := eol.Classify(record.Family, record.SKU, calendar, s.now(), s.lookaheadMonths)
	if result.Status == eol.StatusUnknown {
		s.logger.Warnf("Could not determine EOL status for %s (family %s, sku %q)",
			record.ResourceID, record.Family, record.SKU)
	}
	row.DetectedVersion = result.DetectedVersion
	row.Status = result.Status
	row.StatusLabel = result.Label()
	return s.writer.WriteRow(row)
}

func osLabel(osType string) string {
	if osType == "" {
		return "--"
	}
	return osType
}
