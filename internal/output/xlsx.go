package output

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"srat/internal/hit"
)

// SheetName is the worksheet holding the hit table.
const SheetName = "Sheet1"

// WriteXLSX writes hits as a single-sheet workbook. The header row is always
// present so an empty run still carries the schema.
func WriteXLSX(w io.Writer, list []hit.Hit) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return err
	}
	for i, h := range list {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := Cells(ToAPIHit(h))
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("xlsx row %d: %w", i+2, err)
		}
	}
	return f.Write(w)
}
