package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/felixgeelhaar/recall/internal/memory"
	"github.com/felixgeelhaar/recall/internal/ui/tui"
	"github.com/spf13/cobra"
)

// browseLimit caps the result list shown by the browser.
const browseLimit = 50

func newBrowseCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Search a memory interactively",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "commands",
			Short: "Browse remembered commands",
			Args:  cobra.NoArgs,
			RunE: withApp(opts, func(cmd *cobra.Command, _ []string, a *app) error {
				st := a.commands
				search := func(q string) []tui.Item {
					if q == "" {
						return commandItems(st.MostUsed(browseLimit))
					}
					return commandItems(st.Search(q, browseLimit))
				}
				open := func(id string) (tui.Item, bool, error) {
					c, ok, err := st.Get(cmd.Context(), id)
					if !ok || err != nil {
						return tui.Item{}, ok, err
					}
					return commandItem(c), true, nil
				}
				return runBrowser(cmd, tui.NewModel("Commands", search, open))
			}),
		},
		&cobra.Command{
			Use:   "contexts",
			Short: "Browse remembered contexts",
			Args:  cobra.NoArgs,
			RunE: withApp(opts, func(cmd *cobra.Command, _ []string, a *app) error {
				st := a.contexts
				search := func(q string) []tui.Item {
					if q == "" {
						return contextItems(st.HighPriority(browseLimit))
					}
					return contextItems(st.Search(q, browseLimit))
				}
				open := func(id string) (tui.Item, bool, error) {
					c, ok, err := st.Get(cmd.Context(), id)
					if !ok || err != nil {
						return tui.Item{}, ok, err
					}
					return contextItem(c), true, nil
				}
				return runBrowser(cmd, tui.NewModel("Contexts", search, open))
			}),
		},
	)
	return cmd
}

func runBrowser(cmd *cobra.Command, m tui.Model) error {
	p := tea.NewProgram(m,
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("browser: %w", err)
	}
	return nil
}

func commandItem(c *memory.Command) tui.Item {
	detail := c.Command + "\n\n" + c.Description
	if c.Context != "" {
		detail += "\n\ncontext: " + c.Context
	}
	return tui.Item{ID: c.ID, Title: c.Command, Detail: detail, Usage: c.UsageCount}
}

func commandItems(cmds []*memory.Command) []tui.Item {
	out := make([]tui.Item, len(cmds))
	for i, c := range cmds {
		out[i] = commandItem(c)
	}
	return out
}

func contextItem(c *memory.Context) tui.Item {
	return tui.Item{
		ID:     c.ID,
		Title:  fmt.Sprintf("[%d] %s: %s", c.Priority, c.Key, c.Title),
		Detail: c.Content,
		Usage:  c.UsageCount,
	}
}

func contextItems(ctxs []*memory.Context) []tui.Item {
	out := make([]tui.Item, len(ctxs))
	for i, c := range ctxs {
		out[i] = contextItem(c)
	}
	return out
}
