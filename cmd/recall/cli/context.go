package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/felixgeelhaar/recall/internal/memory"
	"github.com/spf13/cobra"
)

func newContextCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "context",
		Aliases: []string{"ctx"},
		Short:   "Manage remembered project context",
	}
	cmd.AddCommand(
		newContextAddCmd(opts),
		newContextUpdateCmd(opts),
		&cobra.Command{
			Use:   "get [id]",
			Short: "Show a context and count it as used",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
				c, ok, err := a.contexts.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("context %q not found", args[0])
				}
				a.out.Context(c)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "show [key]",
			Short: "Show the context stored under a key and count it as used",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
				c, ok, err := a.contexts.GetByKey(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no context with key %q", args[0])
				}
				a.out.Context(c)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "delete [id]",
			Short: "Forget a context",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
				ok, err := a.contexts.Delete(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("context %q not found", args[0])
				}
				return a.out.Info("Deleted context %s", args[0])
			}),
		},
		&cobra.Command{
			Use:   "list [category]",
			Short: "List the contexts in a category, highest priority first",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
				return a.out.Contexts(a.contexts.ListByCategory(args[0]))
			}),
		},
		&cobra.Command{
			Use:   "stats",
			Short: "Summarize the context memory",
			Args:  cobra.NoArgs,
			RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
				return a.out.ContextStats(a.contexts.Stats())
			}),
		},
		limitCmd(opts, "search [query]", "Search contexts by relevance", cobra.MinimumNArgs(1),
			func(a *app, args []string, limit int) error {
				return a.out.Contexts(a.contexts.Search(strings.Join(args, " "), limit))
			}),
		limitCmd(opts, "most-used", "List the most used contexts", cobra.NoArgs,
			func(a *app, _ []string, limit int) error {
				return a.out.Contexts(a.contexts.MostUsed(limit))
			}),
		limitCmd(opts, "recent", "List the most recently added contexts", cobra.NoArgs,
			func(a *app, _ []string, limit int) error {
				return a.out.Contexts(a.contexts.Recent(limit))
			}),
		limitCmd(opts, "high-priority", fmt.Sprintf("List contexts with priority %d or more", memory.HighPriorityThreshold), cobra.NoArgs,
			func(a *app, _ []string, limit int) error {
				return a.out.Contexts(a.contexts.HighPriority(limit))
			}),
		labelsCmd(opts, "categories", "List context categories", func(a *app) []string { return a.contexts.Categories() }),
		labelsCmd(opts, "tags", "List context tags", func(a *app) []string { return a.contexts.Tags() }),
		labelsCmd(opts, "keys", "List context keys", func(a *app) []string { return a.contexts.Keys() }),
	)
	return cmd
}

func newContextAddCmd(opts *globalOptions) *cobra.Command {
	var c memory.Context
	cmd := &cobra.Command{
		Use:   "add [key]",
		Short: "Remember a piece of context under a key",
		Example: `  recall context add oncall --title "On-call" --content "Page #sre first" -p 4
  cat ARCHITECTURE.md | recall context add arch --title Architecture --content -`,
		Args: cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			c.Key = args[0]
			content, err := readContent(cmd, c.Content)
			if err != nil {
				return err
			}
			c.Content = content
			id, err := a.contexts.Add(cmd.Context(), &c)
			if err != nil {
				return err
			}
			if a.out.JSON {
				return a.out.Value(map[string]string{"id": id})
			}
			return a.out.Info("Remembered context %s", id)
		}),
	}
	cmd.Flags().StringVar(&c.Title, "title", "", "Short title")
	cmd.Flags().StringVar(&c.Content, "content", "", "Context text, - reads stdin")
	cmd.Flags().StringVarP(&c.Category, "category", "c", "", "Category (default "+memory.DefaultCategory+")")
	cmd.Flags().StringSliceVarP(&c.Tags, "tag", "t", nil, "Tag, repeatable")
	cmd.Flags().IntVarP(&c.Priority, "priority", "p", 0, "Priority 1 (low) to 5 (high), default 1")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("content")
	return cmd
}

func newContextUpdateCmd(opts *globalOptions) *cobra.Command {
	var (
		key, title, content, category string
		tags                          []string
		priority                      int
	)
	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Change fields of a context",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			f := cmd.Flags()
			patch := memory.ContextPatch{
				Key:      changed(f, "key", key),
				Title:    changed(f, "title", title),
				Category: changed(f, "category", category),
				Priority: changed(f, "priority", priority),
			}
			if f.Changed("content") {
				text, err := readContent(cmd, content)
				if err != nil {
					return err
				}
				patch.Content = &text
			}
			if f.Changed("tag") {
				patch.Tags = append([]string{}, tags...)
			}
			ok, err := a.contexts.Update(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("context %q not found", args[0])
			}
			return a.out.Info("Updated context %s", args[0])
		}),
	}
	cmd.Flags().StringVar(&key, "key", "", "New key")
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&content, "content", "", "New text, - reads stdin")
	cmd.Flags().StringVarP(&category, "category", "c", "", "New category")
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "Replace tags, repeatable")
	cmd.Flags().IntVarP(&priority, "priority", "p", 0, "New priority")
	return cmd
}

// readContent resolves "-" to the command's stdin.
func readContent(cmd *cobra.Command, v string) (string, error) {
	if v != "-" {
		return v, nil
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return strings.TrimRight(string(b), "\n"), nil
}
