// Package ui renders records and summaries for the terminal.
package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/felixgeelhaar/recall/internal/memory"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#626262"))

	nameStyle = lipgloss.NewStyle().Bold(true)

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000"))
)

// Printer writes human readable output, or indented JSON when JSON is set.
type Printer struct {
	out  io.Writer
	JSON bool
}

// NewPrinter creates a printer writing to out.
func NewPrinter(out io.Writer, asJSON bool) *Printer {
	return &Printer{out: out, JSON: asJSON}
}

// Value writes v as JSON regardless of mode.
func (p *Printer) Value(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Title writes a heading. Nothing is written in JSON mode.
func (p *Printer) Title(s string) {
	if p.JSON {
		return
	}
	fmt.Fprintln(p.out, titleStyle.Render(s))
}

// Info writes a plain status line, or {"message": ...} in JSON mode.
func (p *Printer) Info(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if p.JSON {
		return p.Value(map[string]string{"message": msg})
	}
	_, err := fmt.Fprintln(p.out, msg)
	return err
}

// Error writes err in the error style.
func (p *Printer) Error(err error) {
	if p.JSON {
		_ = p.Value(map[string]string{"error": err.Error()})
		return
	}
	fmt.Fprintln(p.out, errorStyle.Render("Error: "+err.Error()))
}

// Commands lists commands.
func (p *Printer) Commands(cmds []*memory.Command) error {
	if p.JSON {
		return p.Value(cmds)
	}
	if len(cmds) == 0 {
		return p.Info("No commands found.")
	}
	for _, c := range cmds {
		p.Command(c)
	}
	return nil
}

// Command writes a single command.
func (p *Printer) Command(c *memory.Command) {
	if p.JSON {
		_ = p.Value(c)
		return
	}
	fmt.Fprintf(p.out, "%s %s\n", idStyle.Render("["+c.ID+"]"), nameStyle.Render(c.Command))
	if c.Description != "" {
		fmt.Fprintf(p.out, "    %s\n", c.Description)
	}
	if c.Context != "" {
		fmt.Fprintf(p.out, "    context: %s\n", c.Context)
	}
	fmt.Fprintf(p.out, "    %s\n", metaStyle.Render(meta(c.Header)))
}

// Contexts lists contexts.
func (p *Printer) Contexts(ctxs []*memory.Context) error {
	if p.JSON {
		return p.Value(ctxs)
	}
	if len(ctxs) == 0 {
		return p.Info("No contexts found.")
	}
	for _, c := range ctxs {
		p.Context(c)
	}
	return nil
}

// Context writes a single context, including its content.
func (p *Printer) Context(c *memory.Context) {
	if p.JSON {
		_ = p.Value(c)
		return
	}
	fmt.Fprintf(p.out, "%s %s %s\n", idStyle.Render("["+c.ID+"]"), nameStyle.Render(c.Key), c.Title)
	for _, line := range strings.Split(c.Content, "\n") {
		fmt.Fprintf(p.out, "    %s\n", line)
	}
	fmt.Fprintf(p.out, "    %s\n", metaStyle.Render(fmt.Sprintf("priority: %d  %s", c.Priority, meta(c.Header))))
}

// Labels lists categories, tags or keys one per line.
func (p *Printer) Labels(labels []string) error {
	if p.JSON {
		return p.Value(labels)
	}
	for _, l := range labels {
		fmt.Fprintln(p.out, l)
	}
	return nil
}

// Stats writes a command store summary.
func (p *Printer) Stats(st memory.Stats) error {
	if p.JSON {
		return p.Value(st)
	}
	p.stats("Commands", st)
	return nil
}

// ContextStats writes a context store summary.
func (p *Printer) ContextStats(st memory.ContextStats) error {
	if p.JSON {
		return p.Value(st)
	}
	p.stats("Contexts", st.Stats)
	fmt.Fprintf(p.out, "Keys:                %d\n", st.Keys)
	fmt.Fprintf(p.out, "High priority:       %d\n", st.HighPriorityCount)
	return nil
}

func (p *Printer) stats(title string, st memory.Stats) {
	p.Title(title)
	fmt.Fprintf(p.out, "Total:               %d\n", st.Total)
	fmt.Fprintf(p.out, "Categories:          %d\n", st.Categories)
	fmt.Fprintf(p.out, "Tags:                %d\n", st.Tags)
	fmt.Fprintf(p.out, "Most used category:  %s\n", st.MostUsedCategory)
	fmt.Fprintf(p.out, "Average usage:       %.2f\n", st.AverageUsage)
}

func meta(h memory.Header) string {
	s := fmt.Sprintf("category: %s  used: %d", h.Category, h.UsageCount)
	if len(h.Tags) > 0 {
		s += "  tags: " + strings.Join(h.Tags, ", ")
	}
	return s
}
