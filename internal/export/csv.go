package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

func writeCSV(w io.Writer, records []Record) error {
	header, rows := table(records)
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}
