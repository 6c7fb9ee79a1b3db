// Package tui implements the interactive record browser.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))
)

// Item is one browsable record.
type Item struct {
	ID     string
	Title  string
	Detail string
	Usage  int
}

// SearchFunc returns the items for a query. An empty query lists everything.
type SearchFunc func(query string) []Item

// OpenFunc fetches an item by id, recording its use.
type OpenFunc func(id string) (Item, bool, error)

type openedMsg struct {
	item  Item
	found bool
	err   error
}

// Model is the bubbletea model of the browser: a query line, a result list
// and the detail of the last opened record.
type Model struct {
	Title    string
	Input    textinput.Model
	Viewport viewport.Model
	Usage    progress.Model
	Items    []Item
	Cursor   int
	Detail   string
	Status   string
	Err      error
	Quitting bool
	Ready    bool
	Width    int
	Height   int

	search SearchFunc
	open   OpenFunc
}

// NewModel creates a browser over search and open.
func NewModel(title string, search SearchFunc, open OpenFunc) Model {
	in := textinput.New()
	in.Placeholder = "search"
	in.Prompt = "> "
	in.Focus()

	m := Model{
		Title:  title,
		Input:  in,
		Usage:  progress.New(progress.WithDefaultGradient()),
		search: search,
		open:   open,
	}
	m.Items = search("")
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.Quitting = true
			return m, tea.Quit
		case tea.KeyUp:
			if m.Cursor > 0 {
				m.Cursor--
			}
			return m, nil
		case tea.KeyDown:
			if m.Cursor < len(m.Items)-1 {
				m.Cursor++
			}
			return m, nil
		case tea.KeyEnter:
			if len(m.Items) == 0 {
				return m, nil
			}
			return m, m.openCmd(m.Items[m.Cursor].ID)
		}

		prev := m.Input.Value()
		var cmd tea.Cmd
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
		if m.Input.Value() != prev {
			m.Items = m.search(m.Input.Value())
			m.Cursor = 0
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Usage.Width = max(msg.Width-4, 10)
		if !m.Ready {
			m.Viewport = viewport.New(msg.Width, max(msg.Height-10, 1))
			m.Ready = true
		} else {
			m.Viewport.Width = msg.Width
			m.Viewport.Height = max(msg.Height-10, 1)
		}

	case openedMsg:
		m.Err = msg.err
		switch {
		case msg.err != nil:
			m.Status = "open failed"
		case !msg.found:
			m.Status = "record no longer exists"
			m.Items = m.search(m.Input.Value())
			m.Cursor = min(m.Cursor, max(len(m.Items)-1, 0))
		default:
			m.Status = fmt.Sprintf("opened %s", msg.item.ID)
			m.Detail = msg.item.Detail
			m.replace(msg.item)
			m.Viewport.SetContent(m.Detail)
			m.Viewport.GotoTop()
		}
	}

	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) openCmd(id string) tea.Cmd {
	return func() tea.Msg {
		item, ok, err := m.open(id)
		return openedMsg{item: item, found: ok, err: err}
	}
}

func (m *Model) replace(item Item) {
	for i := range m.Items {
		if m.Items[i].ID == item.ID {
			m.Items[i] = item
		}
	}
}

// Selected returns the item under the cursor.
func (m Model) Selected() (Item, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Items) {
		return Item{}, false
	}
	return m.Items[m.Cursor], true
}

// usageShare is the selected item's usage relative to the busiest listed item.
func (m Model) usageShare() float64 {
	sel, ok := m.Selected()
	if !ok {
		return 0
	}
	top := 0
	for _, it := range m.Items {
		top = max(top, it.Usage)
	}
	if top == 0 {
		return 0
	}
	return float64(sel.Usage) / float64(top)
}

func (m Model) View() string {
	if !m.Ready {
		return "\n  Initializing..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(" " + m.Title + " "))
	b.WriteString(infoStyle.Render(fmt.Sprintf(" %d results ", len(m.Items))))
	if m.Status != "" {
		b.WriteString(" " + m.Status)
	}
	b.WriteString("\n\n" + m.Input.View() + "\n\n")

	for i, it := range m.Items {
		line := fmt.Sprintf("%s  (%d)", it.Title, it.Usage)
		if i == m.Cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n" + m.Viewport.View() + "\n\n")
	b.WriteString(m.Usage.ViewAs(m.usageShare()))

	if m.Err != nil {
		b.WriteString("\n" + errorStyle.Render(m.Err.Error()))
	}
	if m.Quitting {
		b.WriteString("\n  Quitting...\n")
	}
	return b.String()
}
