package views

import (
	"github.com/nibzard/curriculum/internal/curriculum"
	"github.com/nibzard/curriculum/internal/export"
)

// Export column names, in output order.
const (
	ColumnTitle    = "Title"
	ColumnResident = "Resident"
	ColumnSubtopic = "Subtopic"
	ColumnDueDate  = "Due Date"
)

// ExportRow is one flattened assignment.
type ExportRow struct {
	Title    string
	Resident string
	Subtopic string
	DueDate  string
}

// Record converts the row into a spreadsheet record with the export columns.
func (r ExportRow) Record() export.Record {
	return export.Record{
		{Key: ColumnTitle, Value: r.Title},
		{Key: ColumnResident, Value: r.Resident},
		{Key: ColumnSubtopic, Value: r.Subtopic},
		{Key: ColumnDueDate, Value: r.DueDate},
	}
}

// ExportRows flattens every resident into one row per subtopic, or a single
// row with an empty subtopic, in topic, resident, subtopic order. Names are
// exported as entered.
func ExportRows(doc curriculum.Document) []ExportRow {
	var rows []ExportRow
	for _, t := range doc {
		for _, r := range t.Residents {
			for _, sub := range subtopicsOrBlank(r) {
				rows = append(rows, ExportRow{
					Title:    t.Title,
					Resident: r.Name,
					Subtopic: sub,
					DueDate:  r.DueDate,
				})
			}
		}
	}
	return rows
}

// Records converts rows for the spreadsheet writer.
func Records(rows []ExportRow) []export.Record {
	out := make([]export.Record, len(rows))
	for i, r := range rows {
		out[i] = r.Record()
	}
	return out
}
