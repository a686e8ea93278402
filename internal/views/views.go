// Package views derives read-only projections from a curriculum document.
//
// Coverage groups every assignment by resident; ExportRows flattens the same
// assignments into spreadsheet rows. Both are pure functions of the document
// and never modify it.
package views

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/nibzard/curriculum/internal/curriculum"
)

// CoverageRow is one (topic, subtopic, due date) assignment of a resident.
// Subtopic is empty for a resident with no subtopics selected.
type CoverageRow struct {
	Topic    string
	Subtopic string
	DueDate  string
}

// String renders the row as "Topic — Subtopic (due Date)", leaving out the
// parts that are empty.
func (r CoverageRow) String() string {
	s := r.Topic
	if r.Subtopic != "" {
		s += " — " + r.Subtopic
	}
	if r.DueDate != "" {
		s += " (due " + r.DueDate + ")"
	}
	return s
}

// CoverageGroup holds every assignment of one resident, in topic order.
type CoverageGroup struct {
	Resident string
	Rows     []CoverageRow
}

// Option configures Coverage.
type Option func(*options)

type options struct {
	locale language.Tag
}

// WithLocale sets the language used to order resident names.
func WithLocale(tag language.Tag) Option {
	return func(o *options) {
		o.locale = tag
	}
}

// DefaultLocale orders names when no locale is configured.
var DefaultLocale = language.English

// Coverage groups all assignments by trimmed resident name. Residents with an
// empty name are left out. Groups are ordered by locale-aware comparison of
// the names; rows inside a group keep document order.
func Coverage(doc curriculum.Document, opts ...Option) []CoverageGroup {
	o := options{locale: DefaultLocale}
	for _, opt := range opts {
		opt(&o)
	}

	index := make(map[string]int)
	var groups []CoverageGroup

	for _, t := range doc {
		for _, r := range t.Residents {
			name := strings.TrimSpace(r.Name)
			if name == "" {
				continue
			}
			i, ok := index[name]
			if !ok {
				i = len(groups)
				index[name] = i
				groups = append(groups, CoverageGroup{Resident: name})
			}
			for _, sub := range subtopicsOrBlank(r) {
				groups[i].Rows = append(groups[i].Rows, CoverageRow{
					Topic:    t.Title,
					Subtopic: sub,
					DueDate:  r.DueDate,
				})
			}
		}
	}

	col := collate.New(o.locale)
	sort.SliceStable(groups, func(a, b int) bool {
		return col.CompareString(groups[a].Resident, groups[b].Resident) < 0
	})
	return groups
}

// subtopicsOrBlank yields the resident's subtopics, or a single empty entry
// so a resident without assignments still produces a row.
func subtopicsOrBlank(r curriculum.Resident) []string {
	if len(r.Subtopics) == 0 {
		return []string{""}
	}
	return r.Subtopics
}
