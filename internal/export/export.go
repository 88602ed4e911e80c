// Package export writes a loaded collection to an Excel workbook.
package export

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/aanand-mishra/school-admin/internal/types"
)

// Header is the first row of every exported sheet.
var Header = []any{"ID", "Full Name", "Class", "Gender", "Age"}

// Write encodes records as a one-sheet workbook named after kind
// ("Students") and writes it to w.
func Write(w io.Writer, kind types.Kind, records []types.Record) error {
	f, err := build(kind, records)
	if err != nil {
		return err
	}
	defer closeFile(f)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

// WriteFile is Write to a file at path.
func WriteFile(path string, kind types.Kind, records []types.Record) error {
	f, err := build(kind, records)
	if err != nil {
		return err
	}
	defer closeFile(f)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("export: save %s: %w", path, err)
	}
	return nil
}

// SheetName is the sheet records of kind are written to.
func SheetName(kind types.Kind) string {
	return types.Kind(kind.Plural()).Title()
}

func build(kind types.Kind, records []types.Record) (*excelize.File, error) {
	f := excelize.NewFile()

	sheet := SheetName(kind)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		closeFile(f)
		return nil, fmt.Errorf("export: name sheet: %w", err)
	}

	if err := f.SetSheetRow(sheet, "A1", &Header); err != nil {
		closeFile(f)
		return nil, fmt.Errorf("export: header row: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			closeFile(f)
			return nil, fmt.Errorf("export: row %d: %w", i+2, err)
		}
		row := []any{r.ID, r.FullName, r.Class, r.Gender, int(r.Age)}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			closeFile(f)
			return nil, fmt.Errorf("export: row %d: %w", i+2, err)
		}
	}

	return f, nil
}

func closeFile(f *excelize.File) {
	if err := f.Close(); err != nil {
		slog.Error("error closing workbook", slog.String("error", err.Error()))
	}
}
