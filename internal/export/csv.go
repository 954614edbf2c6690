package export

import (
	"encoding/csv"
	"io"

	"medvault/internal/domain"
)

// BOM makes Excel on Windows read the file as UTF-8.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes the BOM, the header row and one row per scan.
func WriteCSV(w io.Writer, scans []domain.CardScan) error {
	if _, err := w.Write(BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for i := range scans {
		if err := cw.Write(ScanRow(&scans[i])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
