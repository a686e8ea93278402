package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// defaultWorkbookSheet is the sheet every new excelize workbook starts with.
const defaultWorkbookSheet = "Sheet1"

func writeXLSX(w io.Writer, records []Record, sheet string) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close workbook: %w", cerr)
		}
	}()

	if err := f.SetSheetName(defaultWorkbookSheet, sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header, rows := table(records)
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	for i, row := range rows {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("row %d: %w", rowNum, err)
	}
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &row); err != nil {
		return fmt.Errorf("row %d: %w", rowNum, err)
	}
	return nil
}
