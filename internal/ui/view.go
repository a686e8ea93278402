package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headingStyle  = lipgloss.NewStyle().Bold(true)
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	topicStyle    = lipgloss.NewStyle().Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	coverageStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
)

func (m *model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(Title))
	b.WriteString("\n")
	if m.store.IsAdmin() {
		b.WriteString(dimStyle.Render("admin session  ·  l logout  ·  e export"))
	} else {
		b.WriteString(dimStyle.Render("read only  ·  l login as admin"))
	}
	b.WriteString("\n\n")

	b.WriteString(m.renderLines())

	if m.showCoverage {
		b.WriteString("\n")
		b.WriteString(coverageStyle.Render(m.renderCoverage()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	if m.showHelp {
		b.WriteString("\n\n")
		b.WriteString(renderHelp())
	}
	return b.String()
}

func (m *model) renderLines() string {
	var b strings.Builder
	for i, l := range m.lines {
		text := l.text
		indent := ""
		switch l.kind {
		case lineTopic:
			marker := "▸ "
			if m.doc[l.ti].Expanded {
				marker = "▾ "
			}
			text = topicStyle.Render(marker + text)
		case lineText:
			indent = "    "
			if !strings.HasPrefix(text, "  ") {
				text = headingStyle.Render(text)
			}
		case lineAddResident, lineResident:
			indent = "    "
		case lineAssign, lineDue:
			indent = "        "
			if !m.store.IsAdmin() {
				text = dimStyle.Render(text)
			}
		}
		if i == m.cursor {
			text = cursorStyle.Render(text)
		}
		b.WriteString(indent)
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String()
}

func (m *model) renderCoverage() string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("Resident Coverage Summary"))
	b.WriteString("\n")

	groups := m.store.Coverage()
	if len(groups) == 0 {
		b.WriteString(dimStyle.Render("No assignments yet."))
		return b.String()
	}
	for i, g := range groups {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(topicStyle.Render(g.Resident))
		for _, row := range g.Rows {
			b.WriteString("\n  • ")
			b.WriteString(row.String())
		}
	}
	return b.String()
}

func (m *model) renderFooter() string {
	switch m.mode {
	case modePassword:
		prompt := promptStyle.Render("Admin password: ") + strings.Repeat("•", len(m.input)) + "█"
		if m.notice != "" {
			prompt += "  " + errorStyle.Render(m.notice)
		}
		return prompt
	case modeEditName:
		return promptStyle.Render("Resident name: ") + string(m.input) + "█"
	case modeEditDue:
		return promptStyle.Render("Due date (YYYY-MM-DD): ") + string(m.input) + "█"
	}

	if m.notice != "" {
		if m.noticeErr {
			return errorStyle.Render(m.notice)
		}
		return noticeStyle.Render(m.notice)
	}
	return dimStyle.Render("↑/↓ move  ·  enter toggle  ·  c coverage  ·  ? help  ·  q quit")
}

func renderHelp() string {
	rows := [][2]string{
		{"↑/k ↓/j", "move"},
		{"enter/space", "expand topic, toggle subtopic, edit field"},
		{"a", "add resident"},
		{"x/delete", "remove resident"},
		{"n", "edit resident name"},
		{"u", "edit due date"},
		{"e", "export assignments"},
		{"c", "show or hide coverage summary"},
		{"l", "login or logout"},
		{"q", "quit"},
	}
	var b strings.Builder
	for i, r := range rows {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(headingStyle.Render(lipgloss.NewStyle().Width(14).Render(r[0])))
		b.WriteString(r[1])
	}
	return b.String()
}
