package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/cloudops/azure-vm-eol/pkg/eol"
)

const excelSheet = "Sheet1"

// excelHeader is the fixed column order of the spreadsheet report.
var excelHeader = []string{
	"Detected version",
	"Deprecated",
	"OS",
	"Subscription",
	"Offer",
	"SKU",
	"Version",
	"Version exact",
	"Publisher",
	"Resource ID",
}

// ExcelWriter renders the report as a styled worksheet. The Deprecated
// cell of each row is highlighted by status: red for end-of-life, green
// for supported, yellow for everything else.
type ExcelWriter struct {
	path string
	file *excelize.File
	row  int

	headerStyle    int
	eolStyle       int
	supportedStyle int
	warningStyle   int
}

// NewExcelWriter prepares an in-memory workbook; the file is written on Close.
func NewExcelWriter(path string) (*ExcelWriter, error) {
	file := excelize.NewFile()
	w := &ExcelWriter{path: path, file: file, row: 1}

	var err error
	w.headerStyle, err = file.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"808080"}},
		Border: []excelize.Border{{Type: "bottom", Style: 2, Color: "000000"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	w.eolStyle, err = file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "8D2012"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"F5CAC9"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create EOL style: %w", err)
	}
	w.supportedStyle, err = file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "295F10"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"CFEDCF"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create supported style: %w", err)
	}
	w.warningStyle, err = file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "915C17"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FAECA2"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create warning style: %w", err)
	}

	return w, nil
}

func (w *ExcelWriter) WriteHeader() error {
	for col, title := range excelHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, w.row)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(excelSheet, cell, title); err != nil {
			return err
		}
		if err := w.file.SetCellStyle(excelSheet, cell, cell, w.headerStyle); err != nil {
			return err
		}
	}
	w.row++
	return nil
}

func (w *ExcelWriter) WriteRow(row Row) error {
	values := []string{
		row.DetectedVersion,
		row.StatusLabel,
		row.OS,
		row.SubscriptionID,
		row.Offer,
		row.SKU,
		row.Version,
		row.ExactVersion,
		row.Publisher,
		row.ResourceID,
	}
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, w.row)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(excelSheet, cell, value); err != nil {
			return err
		}
	}

	statusCell, err := excelize.CoordinatesToCellName(2, w.row)
	if err != nil {
		return err
	}
	if err := w.file.SetCellStyle(excelSheet, statusCell, statusCell, w.styleFor(row.Status)); err != nil {
		return err
	}

	w.row++
	return nil
}

func (w *ExcelWriter) styleFor(status eol.Status) int {
	switch status {
	case eol.StatusEndOfLife:
		return w.eolStyle
	case eol.StatusSupported:
		return w.supportedStyle
	default:
		return w.warningStyle
	}
}

// Close writes the workbook to disk and releases it.
func (w *ExcelWriter) Close() error {
	if err := w.file.SaveAs(w.path); err != nil {
		w.file.Close()
		return fmt.Errorf("failed to save workbook to %s: %w", w.path, err)
	}
	return w.file.Close()
}
