package ui

import (
	"fmt"

	"github.com/nibzard/curriculum/internal/curriculum"
)

type lineKind int

const (
	lineTopic lineKind = iota
	lineText
	lineAddResident
	lineResident
	lineAssign
	lineDue
)

// line is one rendered row of the topic tree. ti and ri address the topic
// and resident the line belongs to; ri is -1 for topic-level lines.
type line struct {
	kind lineKind
	ti   int
	ri   int
	sub  string
	text string
}

func (l line) selectable() bool {
	return l.kind != lineText
}

// buildLines flattens the document into display lines. Admin-only lines are
// left out while logged out.
func buildLines(doc curriculum.Document, admin bool) []line {
	var lines []line
	for ti, t := range doc {
		lines = append(lines, line{kind: lineTopic, ti: ti, ri: -1, text: t.Title})
		if !t.Expanded {
			continue
		}

		text := func(s string) {
			lines = append(lines, line{kind: lineText, ti: ti, ri: -1, text: s})
		}

		text("Subtopics:")
		for _, sub := range t.Subtopics {
			text("  • " + sub)
		}

		text("Resources:")
		for _, res := range t.Resources {
			if res.URL != "" {
				text(fmt.Sprintf("  • %s <%s>", res.Name, res.URL))
			} else {
				text("  • " + res.Name)
			}
		}

		text("Resident Assignments:")
		if admin {
			lines = append(lines, line{kind: lineAddResident, ti: ti, ri: -1, text: "+ Add Resident"})
		}
		for ri, r := range t.Residents {
			lines = append(lines, line{
				kind: lineResident,
				ti:   ti,
				ri:   ri,
				text: fmt.Sprintf("Resident #%d Name: %s", ri+1, r.Name),
			})
			for _, sub := range t.Subtopics {
				box := "[ ]"
				if r.HasSubtopic(sub) {
					box = "[x]"
				}
				lines = append(lines, line{kind: lineAssign, ti: ti, ri: ri, sub: sub, text: box + " " + sub})
			}
			lines = append(lines, line{kind: lineDue, ti: ti, ri: ri, text: "Due Date: " + r.DueDate})
		}
	}
	return lines
}
