// Package ui provides the interactive terminal interface.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/nibzard/curriculum/internal/curriculum"
	"github.com/nibzard/curriculum/internal/export"
	"github.com/nibzard/curriculum/internal/store"
	"github.com/nibzard/curriculum/internal/views"
)

// Title is shown at the top of the screen.
const Title = "Lab Informatics Curriculum for Pathology Residents"

// Options configures the TUI.
type Options struct {
	ExportPath  string
	ExportSheet string
}

// RunTUI runs the interface on the terminal until the user quits or ctx is
// cancelled.
func RunTUI(ctx context.Context, st *store.Store, opts Options) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	program := tea.NewProgram(newModel(st, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

type mode int

const (
	modeBrowse mode = iota
	modeEditName
	modeEditDue
	modePassword
)

type model struct {
	store *store.Store
	opts  Options

	doc    curriculum.Document
	lines  []line
	cursor int

	mode   mode
	input  []rune
	editTI int
	editRI int

	showHelp     bool
	showCoverage bool
	notice       string
	noticeErr    bool

	width  int
	height int
}

func newModel(st *store.Store, opts Options) *model {
	if opts.ExportPath == "" {
		opts.ExportPath = export.DefaultFileName
	}
	if opts.ExportSheet == "" {
		opts.ExportSheet = export.DefaultSheet
	}
	m := &model{store: st, opts: opts, showCoverage: true}
	m.refresh()
	return m
}

func (m *model) Init() tea.Cmd {
	return nil
}

// refresh rebuilds the line list from the store and keeps the cursor on a
// selectable line.
func (m *model) refresh() {
	m.doc = m.store.Document()
	m.lines = buildLines(m.doc, m.store.IsAdmin())
	if m.cursor >= len(m.lines) {
		m.cursor = len(m.lines) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if len(m.lines) > 0 && !m.lines[m.cursor].selectable() {
		m.move(-1)
	}
}

func (m *model) current() (line, bool) {
	if m.cursor < 0 || m.cursor >= len(m.lines) {
		return line{}, false
	}
	return m.lines[m.cursor], true
}

// move steps the cursor by dir over selectable lines. It stays put at either
// end of the list.
func (m *model) move(dir int) {
	for i := m.cursor + dir; i >= 0 && i < len(m.lines); i += dir {
		if m.lines[i].selectable() {
			m.cursor = i
			return
		}
	}
}

// focus moves the cursor to the first line matching kind, ti and ri.
func (m *model) focus(kind lineKind, ti, ri int) {
	for i, l := range m.lines {
		if l.kind == kind && l.ti == ti && l.ri == ri {
			m.cursor = i
			return
		}
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.mode != modeBrowse {
			m.updateInput(msg)
			return m, nil
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m *model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""
	m.noticeErr = false

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = len(m.lines) - 1
		if m.cursor >= 0 && !m.lines[m.cursor].selectable() {
			m.move(-1)
		}
	case "enter", " ", "space":
		m.activate()
	case "a":
		if l, ok := m.current(); ok {
			m.addResident(l.ti)
		}
	case "x", "delete":
		m.removeResident()
	case "n":
		m.startEdit(modeEditName)
	case "u":
		m.startEdit(modeEditDue)
	case "e":
		m.exportRows()
	case "c":
		m.showCoverage = !m.showCoverage
	case "l":
		if m.store.IsAdmin() {
			m.store.Logout()
			m.refresh()
			m.info("Logged out.")
		} else {
			m.mode = modePassword
			m.input = nil
		}
	case "h", "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *model) activate() {
	l, ok := m.current()
	if !ok {
		return
	}
	switch l.kind {
	case lineTopic:
		m.apply(m.store.ToggleExpand(l.ti))
	case lineAddResident:
		m.addResident(l.ti)
	case lineResident:
		m.startEdit(modeEditName)
	case lineAssign:
		m.apply(m.store.ToggleSubtopic(l.ti, l.ri, l.sub))
	case lineDue:
		m.startEdit(modeEditDue)
	}
}

func (m *model) addResident(ti int) {
	ri, err := m.store.AddResident(ti)
	if err != nil {
		m.fail(err)
		return
	}
	if !m.doc[ti].Expanded {
		_ = m.store.ToggleExpand(ti)
	}
	m.apply(nil)
	m.focus(lineResident, ti, ri)
	m.startEdit(modeEditName)
}

func (m *model) removeResident() {
	l, ok := m.current()
	if !ok || l.ri < 0 {
		m.alert("select a resident to remove")
		return
	}
	if err := m.store.RemoveResident(l.ti, l.ri); err != nil {
		m.fail(err)
		return
	}
	m.apply(nil)
	m.info(fmt.Sprintf("Removed resident #%d.", l.ri+1))
}

func (m *model) startEdit(md mode) {
	l, ok := m.current()
	if !ok || l.ri < 0 {
		m.alert("select a resident to edit")
		return
	}
	if !m.store.IsAdmin() {
		m.fail(store.ErrAdminRequired)
		return
	}
	r := m.doc[l.ti].Residents[l.ri]
	m.mode = md
	m.editTI, m.editRI = l.ti, l.ri
	if md == modeEditName {
		m.input = []rune(r.Name)
	} else {
		m.input = []rune(r.DueDate)
	}
}

func (m *model) updateInput(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeBrowse
		m.input = nil
	case tea.KeyEnter:
		m.commitInput()
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeySpace:
		m.input = append(m.input, ' ')
	case tea.KeyRunes:
		m.input = append(m.input, msg.Runes...)
	}
}

func (m *model) commitInput() {
	value := string(m.input)
	switch m.mode {
	case modePassword:
		m.input = nil
		if err := m.store.Login(value); err != nil {
			m.alert("Incorrect password")
			return
		}
		m.mode = modeBrowse
		m.refresh()
		m.info("Logged in as admin.")
	case modeEditName:
		m.mode = modeBrowse
		m.input = nil
		m.apply(m.store.SetName(m.editTI, m.editRI, value))
	case modeEditDue:
		m.mode = modeBrowse
		m.input = nil
		m.apply(m.store.SetDueDate(m.editTI, m.editRI, value))
	}
}

func (m *model) exportRows() {
	if !m.store.IsAdmin() {
		m.fail(store.ErrAdminRequired)
		return
	}
	rows := m.store.ExportRows()
	opts := export.Options{
		Format: export.FormatForPath(m.opts.ExportPath),
		Sheet:  m.opts.ExportSheet,
	}
	err := export.WriteFile(m.opts.ExportPath, views.Records(rows), opts)
	switch {
	case errors.Is(err, export.ErrNothingToExport):
		m.alert("No assignments to export yet.")
	case err != nil:
		m.fail(err)
	default:
		m.info(fmt.Sprintf("Exported %d rows to %s", len(rows), m.opts.ExportPath))
	}
}

// apply refreshes the view after a store call and reports its error, or a
// failed save.
func (m *model) apply(err error) {
	if err != nil {
		m.fail(err)
		return
	}
	m.refresh()
	if saveErr := m.store.LastSaveError(); saveErr != nil {
		m.fail(fmt.Errorf("changes kept in memory, save failed: %w", saveErr))
	}
}

func (m *model) info(msg string) {
	m.notice = msg
	m.noticeErr = false
}

func (m *model) alert(msg string) {
	m.notice = msg
	m.noticeErr = true
}

func (m *model) fail(err error) {
	m.alert(err.Error())
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
