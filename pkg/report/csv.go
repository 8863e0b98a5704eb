package report

import (
	"encoding/csv"
	"fmt"
	"os"
)

// csvHeader is the fixed header row of the CSV report.
var csvHeader = []string{
	"Deprecated",
	"Version (detected)",
	"ID",
	"OS",
	"Subscription",
	"Publisher",
	"Offer",
	"SKU",
	"Version",
	"Exact version",
}

// CSVWriter renders the report as a semicolon-delimited CSV file.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates the output file and a writer over it.
func NewCSVWriter(path string) (*CSVWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV output file %s: %w", path, err)
	}
	writer := csv.NewWriter(file)
	writer.Comma = ';'
	return &CSVWriter{file: file, writer: writer}, nil
}

func (w *CSVWriter) WriteHeader() error {
	return w.writer.Write(csvHeader)
}

func (w *CSVWriter) WriteRow(row Row) error {
	return w.writer.Write([]string{
		row.StatusLabel,
		row.DetectedVersion,
		row.ResourceID,
		row.OS,
		row.SubscriptionID,
		row.Publisher,
		row.Offer,
		row.SKU,
		row.Version,
		row.ExactVersion,
	})
}

// Close flushes buffered rows and closes the file. Already-written rows
// stay on disk even when a later error aborts the run.
func (w *CSVWriter) Close() error {
	w.writer.Flush()
	flushErr := w.writer.Error()
	closeErr := w.file.Close()
	if flushErr != nil {
		return fmt.Errorf("failed to flush CSV output: %w", flushErr)
	}
	return closeErr
}
