package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

type fakeSource struct {
	items  []Item
	opened []string
	err    error
}

func (f *fakeSource) search(q string) []Item {
	var out []Item
	for _, it := range f.items {
		if strings.Contains(it.Title, q) {
			out = append(out, it)
		}
	}
	return out
}

func (f *fakeSource) open(id string) (Item, bool, error) {
	f.opened = append(f.opened, id)
	if f.err != nil {
		return Item{}, false, f.err
	}
	for i, it := range f.items {
		if it.ID == id {
			f.items[i].Usage++
			return f.items[i], true, nil
		}
	}
	return Item{}, false, nil
}

func newTestModel(t *testing.T) (Model, *fakeSource) {
	t.Helper()
	src := &fakeSource{items: []Item{
		{ID: "1", Title: "git status", Detail: "show status"},
		{ID: "2", Title: "git log", Detail: "show history", Usage: 4},
		{ID: "3", Title: "make build", Detail: "compile"},
	}}
	m := NewModel("commands", src.search, src.open)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	return next.(Model), src
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}
	return m
}

func TestModel_InitialList(t *testing.T) {
	m, _ := newTestModel(t)
	if len(m.Items) != 3 {
		t.Errorf("Expected 3 items, got %d", len(m.Items))
	}
	if !m.Ready {
		t.Error("Expected model to be ready after resize")
	}
	if !strings.Contains(m.View(), "3 results") {
		t.Errorf("unexpected view:\n%s", m.View())
	}
}

func TestModel_TypingSearches(t *testing.T) {
	m, _ := newTestModel(t)
	m = typeText(m, "git")

	if m.Input.Value() != "git" {
		t.Fatalf("Expected query 'git', got %q", m.Input.Value())
	}
	if len(m.Items) != 2 {
		t.Errorf("Expected 2 items, got %d", len(m.Items))
	}
}

func TestModel_CursorBounds(t *testing.T) {
	m, _ := newTestModel(t)
	up := tea.KeyMsg{Type: tea.KeyUp}
	down := tea.KeyMsg{Type: tea.KeyDown}

	next, _ := m.Update(up)
	m = next.(Model)
	if m.Cursor != 0 {
		t.Errorf("Expected cursor 0, got %d", m.Cursor)
	}
	for range 5 {
		next, _ = m.Update(down)
		m = next.(Model)
	}
	if m.Cursor != 2 {
		t.Errorf("Expected cursor 2, got %d", m.Cursor)
	}
}

func TestModel_Open(t *testing.T) {
	m, src := newTestModel(t)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if cmd == nil {
		t.Fatal("Expected open command")
	}
	next, _ = m.Update(cmd())
	m = next.(Model)

	if len(src.opened) != 1 || src.opened[0] != "2" {
		t.Errorf("Expected open of id 2, got %v", src.opened)
	}
	if m.Detail != "show history" {
		t.Errorf("Expected detail 'show history', got %q", m.Detail)
	}
	if sel, _ := m.Selected(); sel.Usage != 5 {
		t.Errorf("Expected refreshed usage 5, got %d", sel.Usage)
	}
	if m.usageShare() != 1 {
		t.Errorf("Expected usage share 1, got %v", m.usageShare())
	}
}

func TestModel_OpenError(t *testing.T) {
	m, src := newTestModel(t)
	src.err = errors.New("disk full")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	next, _ := m.Update(cmd())
	m = next.(Model)

	if m.Err == nil || !strings.Contains(m.View(), "disk full") {
		t.Errorf("Expected error in view, got %v", m.Err)
	}
}

func TestModel_Quit(t *testing.T) {
	m, _ := newTestModel(t)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !next.(Model).Quitting {
		t.Error("Expected quitting")
	}
	if cmd == nil {
		t.Error("Expected quit command")
	}
}
