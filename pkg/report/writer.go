package report

import (
	"fmt"
	"strings"

	"github.com/cloudops/azure-vm-eol/pkg/eol"
)

// OutputFormat selects the report renderer.
type OutputFormat int

const (
	FormatUnknown OutputFormat = iota
	FormatExcel
	FormatCSV
)

// ParseOutputFormat maps a --format flag value to an OutputFormat.
// Unrecognized values map to FormatUnknown; the caller decides whether
// that is fatal.
func ParseOutputFormat(s string) OutputFormat {
	switch strings.ToLower(s) {
	case "excel":
		return FormatExcel
	case "csv":
		return FormatCSV
	default:
		return FormatUnknown
	}
}

func (f OutputFormat) String() string {
	switch f {
	case FormatExcel:
		return "excel"
	case FormatCSV:
		return "csv"
	default:
		return "unknown"
	}
}

// Row is one rendered report line for a single VM.
type Row struct {
	DetectedVersion string
	Status          eol.Status
	StatusLabel     string
	OS              string
	SubscriptionID  string
	Publisher       string
	Offer           string
	SKU             string
	Version         string
	ExactVersion    string
	ResourceID      string
}

// RowWriter appends report rows to an output file. Implementations own the
// underlying file handle; Close flushes and releases it.
type RowWriter interface {
	WriteHeader() error
	WriteRow(row Row) error
	Close() error
}

// NewWriter opens a RowWriter of the requested format at the given path.
func NewWriter(format OutputFormat, path string) (RowWriter, error) {
	switch format {
	case FormatCSV:
		return NewCSVWriter(path)
	case FormatExcel:
		return NewExcelWriter(path)
	default:
		return nil, fmt.Errorf("no writer for output format %q", format)
	}
}
