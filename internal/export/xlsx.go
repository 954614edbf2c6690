package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"medvault/internal/domain"
)

// SheetName is the worksheet holding exported scans.
const SheetName = "Insurance Cards"

// WriteXLSX writes a single-sheet workbook with a bold, frozen header row.
func WriteXLSX(w io.Writer, scans []domain.CardScan) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(Columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", lastHeader, bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for i := range scans {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := ScanRow(&scans[i])
		row := make([]interface{}, len(values))
		for j, v := range values {
			row[j] = v
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(Columns))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "A", lastCol, 20); err != nil {
		return fmt.Errorf("sizing columns: %w", err)
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freezing header: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// Write dispatches to the writer for format.
func Write(w io.Writer, format Format, scans []domain.CardScan) error {
	switch format {
	case FormatXLSX:
		return WriteXLSX(w, scans)
	case FormatCSV:
		return WriteCSV(w, scans)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
