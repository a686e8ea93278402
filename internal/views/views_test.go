package views

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/language"

	"github.com/nibzard/curriculum/internal/curriculum"
)

func topic(id, title string, residents ...curriculum.Resident) curriculum.Topic {
	return curriculum.Topic{
		ID:        id,
		Title:     title,
		Subtopics: []string{"A", "B", "C"},
		Resources: []curriculum.Resource{},
		Residents: residents,
	}
}

func resident(name, due string, subs ...string) curriculum.Resident {
	if subs == nil {
		subs = []string{}
	}
	return curriculum.Resident{Name: name, Subtopics: subs, DueDate: due}
}

func TestCoverageMergesSameName(t *testing.T) {
	doc := curriculum.Document{
		topic("t1", "Topic 1", resident("Alice", "2024-01-01", "A")),
		topic("t2", "Topic 2", resident(" Alice ", "2024-02-01", "B")),
	}

	got := Coverage(doc)
	want := []CoverageGroup{{
		Resident: "Alice",
		Rows: []CoverageRow{
			{Topic: "Topic 1", Subtopic: "A", DueDate: "2024-01-01"},
			{Topic: "Topic 2", Subtopic: "B", DueDate: "2024-02-01"},
		},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("coverage mismatch (-want +got):\n%s", diff)
	}
}

func TestCoverageEmptySubtopicsYieldsOneRow(t *testing.T) {
	doc := curriculum.Document{topic("t1", "Topic 1", resident("Bob", "2024-03-01"))}

	got := Coverage(doc)
	if len(got) != 1 || len(got[0].Rows) != 1 {
		t.Fatalf("got %+v, want one group with one row", got)
	}
	if row := got[0].Rows[0]; row.Subtopic != "" || row.Topic != "Topic 1" || row.DueDate != "2024-03-01" {
		t.Errorf("row: got %+v", row)
	}
}

func TestCoverageOrdering(t *testing.T) {
	doc := curriculum.Document{
		topic("t1", "Topic 1", resident("zoe", ""), resident("Bob", "", "A", "C")),
		topic("t2", "Topic 2", resident("Émile", ""), resident("alice", "")),
	}

	var names []string
	for _, g := range Coverage(doc) {
		names = append(names, g.Resident)
	}
	want := []string{"alice", "Bob", "Émile", "zoe"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("group order mismatch (-want +got):\n%s", diff)
	}
}

func TestCoverageRowsKeepDocumentOrder(t *testing.T) {
	doc := curriculum.Document{
		topic("t1", "Topic 1", resident("Cara", "d1", "C", "A")),
		topic("t2", "Topic 2", resident("Cara", "d2", "B")),
	}
	got := Coverage(doc, WithLocale(language.German))
	want := []CoverageRow{
		{Topic: "Topic 1", Subtopic: "C", DueDate: "d1"},
		{Topic: "Topic 1", Subtopic: "A", DueDate: "d1"},
		{Topic: "Topic 2", Subtopic: "B", DueDate: "d2"},
	}
	if diff := cmp.Diff(want, got[0].Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestCoverageSkipsUnnamed(t *testing.T) {
	doc := curriculum.Document{topic("t1", "Topic 1", resident("", "", "A"), resident("   ", ""))}
	if got := Coverage(doc); len(got) != 0 {
		t.Errorf("got %+v, want no groups", got)
	}
}

func TestCoverageDoesNotModifyDocument(t *testing.T) {
	doc := curriculum.Document{topic("t1", "Topic 1", resident("b", "", "A"), resident("a", ""))}
	before := doc.Clone()
	Coverage(doc)
	ExportRows(doc)
	if diff := cmp.Diff(before, doc); diff != "" {
		t.Errorf("document changed:\n%s", diff)
	}
}

func TestExportRows(t *testing.T) {
	doc := curriculum.Document{
		topic("t1", "Topic 1", resident("Alice", "2024-01-01", "A", "B"), resident("", "")),
		topic("t2", "Topic 2"),
		topic("t3", "Topic 3", resident("Bob", "2024-02-01")),
	}

	want := []ExportRow{
		{Title: "Topic 1", Resident: "Alice", Subtopic: "A", DueDate: "2024-01-01"},
		{Title: "Topic 1", Resident: "Alice", Subtopic: "B", DueDate: "2024-01-01"},
		{Title: "Topic 1", Resident: "", Subtopic: "", DueDate: ""},
		{Title: "Topic 3", Resident: "Bob", Subtopic: "", DueDate: "2024-02-01"},
	}
	if diff := cmp.Diff(want, ExportRows(doc)); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestExportRowsEmpty(t *testing.T) {
	doc := curriculum.Document{topic("t1", "Topic 1"), topic("t2", "Topic 2")}
	if rows := ExportRows(doc); len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
	if rows := ExportRows(nil); len(rows) != 0 {
		t.Errorf("nil document: got %d rows", len(rows))
	}
}

func TestRecordColumns(t *testing.T) {
	rec := ExportRow{Title: "T", Resident: "R", Subtopic: "S", DueDate: "D"}.Record()
	var keys []string
	for _, c := range rec {
		keys = append(keys, c.Key)
	}
	want := []string{ColumnTitle, ColumnResident, ColumnSubtopic, ColumnDueDate}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	if v, _ := rec.Get(ColumnDueDate); v != "D" {
		t.Errorf("due date: got %q, want %q", v, "D")
	}
}

func TestCoverageRowString(t *testing.T) {
	tests := []struct {
		row  CoverageRow
		want string
	}{
		{CoverageRow{Topic: "T", Subtopic: "S", DueDate: "2024-01-01"}, "T — S (due 2024-01-01)"},
		{CoverageRow{Topic: "T", Subtopic: "S"}, "T — S"},
		{CoverageRow{Topic: "T", DueDate: "2024-01-01"}, "T (due 2024-01-01)"},
		{CoverageRow{Topic: "T"}, "T"},
	}
	for _, tt := range tests {
		if got := tt.row.String(); got != tt.want {
			t.Errorf("String(%+v): got %q, want %q", tt.row, got, tt.want)
		}
	}
}
