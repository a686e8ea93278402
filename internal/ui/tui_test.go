package ui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nibzard/curriculum/internal/auth"
	"github.com/nibzard/curriculum/internal/curriculum"
	"github.com/nibzard/curriculum/internal/kv"
	"github.com/nibzard/curriculum/internal/store"
)

func testSeed() curriculum.Document {
	return curriculum.Document{
		{
			ID:        "topic1",
			Title:     "1. Informatics",
			Subtopics: []string{"A", "B"},
			Resources: []curriculum.Resource{{Name: "Book", URL: "https://example.com"}, {Name: "Notes"}},
			Residents: []curriculum.Resident{},
		},
		{
			ID:        "topic2",
			Title:     "2. Databases",
			Subtopics: []string{"SQL"},
			Resources: []curriculum.Resource{},
			Residents: []curriculum.Resident{},
		},
	}
}

func newTestModel(t *testing.T) (*model, *store.Store) {
	t.Helper()
	st := store.Open(kv.NewMemStore(), store.Options{Seed: testSeed})
	m := newModel(st, Options{ExportPath: filepath.Join(t.TempDir(), "out.xlsx")})
	return m, st
}

func keys(m *model, ks ...string) {
	for _, k := range ks {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "backspace":
			msg = tea.KeyMsg{Type: tea.KeyBackspace}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m.Update(msg)
	}
}

func typeText(m *model, s string) {
	for _, r := range s {
		if r == ' ' {
			keys(m, " ")
			continue
		}
		keys(m, string(r))
	}
}

func loginModel(t *testing.T, m *model) {
	t.Helper()
	keys(m, "l")
	require.Equal(t, modePassword, m.mode)
	typeText(m, auth.DefaultPassword)
	keys(m, "enter")
	require.Equal(t, modeBrowse, m.mode, m.notice)
}

func TestBuildLines(t *testing.T) {
	doc := testSeed()
	doc[0].Expanded = true
	doc[0].Residents = []curriculum.Resident{{Name: "Ann", Subtopics: []string{"B"}, DueDate: "2024-01-01"}}

	var texts []string
	for _, l := range buildLines(doc, true) {
		texts = append(texts, l.text)
	}
	want := []string{
		"1. Informatics",
		"Subtopics:",
		"  • A",
		"  • B",
		"Resources:",
		"  • Book <https://example.com>",
		"  • Notes",
		"Resident Assignments:",
		"+ Add Resident",
		"Resident #1 Name: Ann",
		"[ ] A",
		"[x] B",
		"Due Date: 2024-01-01",
		"2. Databases",
	}
	assert.Equal(t, want, texts)

	for _, l := range buildLines(doc, false) {
		assert.NotEqual(t, lineAddResident, l.kind, "add line is admin only")
	}
}

func TestNavigationSkipsText(t *testing.T) {
	m, _ := newTestModel(t)
	keys(m, "enter")
	require.True(t, m.doc[0].Expanded)

	keys(m, "down")
	l, ok := m.current()
	require.True(t, ok)
	assert.Equal(t, lineTopic, l.kind, "logged out the only selectable lines are topics")
	assert.Equal(t, 1, l.ti)

	keys(m, "down")
	l, _ = m.current()
	assert.Equal(t, 1, l.ti, "cursor stays at the last line")

	keys(m, "g")
	assert.Equal(t, 0, m.cursor)
}

func TestExpandWithoutLogin(t *testing.T) {
	m, st := newTestModel(t)
	keys(m, " ")
	assert.True(t, st.Document()[0].Expanded)
	keys(m, "enter")
	assert.False(t, st.Document()[0].Expanded)
}

func TestLoggedOutEditsRejected(t *testing.T) {
	m, st := newTestModel(t)
	keys(m, "a")
	assert.Equal(t, store.ErrAdminRequired.Error(), m.notice)
	assert.True(t, m.noticeErr)
	assert.Empty(t, st.Document()[0].Residents)

	keys(m, "e")
	assert.Equal(t, store.ErrAdminRequired.Error(), m.notice)
}

func TestLoginFlow(t *testing.T) {
	m, st := newTestModel(t)

	keys(m, "l")
	typeText(m, "wrong")
	keys(m, "enter")
	assert.Equal(t, modePassword, m.mode, "prompt stays open after a failure")
	assert.Equal(t, "Incorrect password", m.notice)
	assert.False(t, st.IsAdmin())
	assert.Contains(t, m.View(), "Incorrect password")
	assert.NotContains(t, m.View(), "wrong", "password is masked")

	typeText(m, auth.DefaultPassword)
	keys(m, "enter")
	assert.Equal(t, modeBrowse, m.mode)
	assert.True(t, st.IsAdmin())

	keys(m, "l")
	assert.False(t, st.IsAdmin())
	assert.Equal(t, "Logged out.", m.notice)
}

func TestPasswordEscCancels(t *testing.T) {
	m, st := newTestModel(t)
	keys(m, "l")
	typeText(m, "abc")
	keys(m, "esc")
	assert.Equal(t, modeBrowse, m.mode)
	assert.Empty(t, m.input)
	assert.False(t, st.IsAdmin())
}

func TestAddAndEditResident(t *testing.T) {
	m, st := newTestModel(t)
	loginModel(t, m)

	keys(m, "a")
	require.Equal(t, modeEditName, m.mode, "adding a resident starts editing its name")
	assert.True(t, st.Document()[0].Expanded, "topic expands to show the new resident")

	typeText(m, "Jane Dx")
	keys(m, "backspace", "o", "e", "enter")
	require.Equal(t, modeBrowse, m.mode)
	assert.Equal(t, "Jane Doe", st.Document()[0].Residents[0].Name)

	l, _ := m.current()
	require.Equal(t, lineResident, l.kind)

	// first assign line
	keys(m, "down")
	l, _ = m.current()
	require.Equal(t, lineAssign, l.kind)
	assert.Equal(t, "A", l.sub)
	keys(m, "enter")
	assert.Equal(t, []string{"A"}, st.Document()[0].Residents[0].Subtopics)
	keys(m, "enter")
	assert.Empty(t, st.Document()[0].Residents[0].Subtopics)

	keys(m, "u")
	require.Equal(t, modeEditDue, m.mode)
	typeText(m, "2024-06-30")
	keys(m, "enter")
	assert.Equal(t, "2024-06-30", st.Document()[0].Residents[0].DueDate)
}

func TestEditEscKeepsValue(t *testing.T) {
	m, st := newTestModel(t)
	loginModel(t, m)
	keys(m, "a")
	typeText(m, "Ann")
	keys(m, "enter")

	keys(m, "n")
	typeText(m, "xyz")
	keys(m, "esc")
	assert.Equal(t, "Ann", st.Document()[0].Residents[0].Name)
}

func TestRemoveResident(t *testing.T) {
	m, st := newTestModel(t)
	loginModel(t, m)
	keys(m, "a")
	typeText(m, "Ann")
	keys(m, "enter")

	keys(m, "x")
	assert.Empty(t, st.Document()[0].Residents)
	assert.Equal(t, "Removed resident #1.", m.notice)

	keys(m, "g", "x")
	assert.True(t, m.noticeErr, "topic line has no resident to remove")
}

func TestExport(t *testing.T) {
	m, _ := newTestModel(t)
	loginModel(t, m)

	keys(m, "e")
	assert.Equal(t, "No assignments to export yet.", m.notice)
	assert.NoFileExists(t, m.opts.ExportPath)

	keys(m, "a")
	typeText(m, "Ann")
	keys(m, "enter", "down", "enter", "down", "enter", "u")
	typeText(m, "2024-01-01")
	keys(m, "enter")

	keys(m, "e")
	require.False(t, m.noticeErr, m.notice)
	assert.True(t, strings.HasPrefix(m.notice, "Exported 2 rows to "))

	f, err := excelize.OpenFile(m.opts.ExportPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Curriculum")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Title", "Resident", "Subtopic", "Due Date"},
		{"1. Informatics", "Ann", "A", "2024-01-01"},
		{"1. Informatics", "Ann", "B", "2024-01-01"},
	}, rows)
}

func TestSaveFailureShown(t *testing.T) {
	backend := kv.NewMemStore()
	st := store.Open(backend, store.Options{Seed: testSeed})
	m := newModel(st, Options{})
	backend.FailSaves = assert.AnError

	keys(m, "enter")
	assert.True(t, m.noticeErr)
	assert.Contains(t, m.notice, "save failed")
	assert.True(t, st.Document()[0].Expanded)
}

func TestCoveragePanel(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Contains(t, m.View(), "Resident Coverage Summary")
	assert.Contains(t, m.View(), "No assignments yet.")

	loginModel(t, m)
	keys(m, "a")
	typeText(m, "Ann")
	keys(m, "enter", "u")
	typeText(m, "2024-01-01")
	keys(m, "enter")
	assert.Contains(t, m.View(), "1. Informatics (due 2024-01-01)")

	keys(m, "c")
	assert.NotContains(t, m.View(), "Resident Coverage Summary")
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
}

func TestQuitKeyTypedInInput(t *testing.T) {
	m, st := newTestModel(t)
	loginModel(t, m)
	keys(m, "a")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.Nil(t, cmd)
	keys(m, "enter")
	assert.Equal(t, "q", st.Document()[0].Residents[0].Name)
}
