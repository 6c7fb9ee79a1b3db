package cli

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/recall/internal/memory"
	"github.com/spf13/cobra"
)

func newCommandCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "command",
		Aliases: []string{"cmd"},
		Short:   "Manage remembered shell commands",
	}
	cmd.AddCommand(
		newCommandAddCmd(opts),
		newCommandUpdateCmd(opts),
		&cobra.Command{
			Use:   "get [id]",
			Short: "Show a command and count it as used",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
				c, ok, err := a.commands.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("command %q not found", args[0])
				}
				a.out.Command(c)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "delete [id]",
			Short: "Forget a command",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
				ok, err := a.commands.Delete(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("command %q not found", args[0])
				}
				return a.out.Info("Deleted command %s", args[0])
			}),
		},
		&cobra.Command{
			Use:   "list [category]",
			Short: "List the commands in a category",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
				return a.out.Commands(a.commands.ListByCategory(args[0]))
			}),
		},
		&cobra.Command{
			Use:   "stats",
			Short: "Summarize the command memory",
			Args:  cobra.NoArgs,
			RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
				return a.out.Stats(a.commands.Stats())
			}),
		},
		limitCmd(opts, "search [query]", "Search commands by relevance", cobra.MinimumNArgs(1),
			func(a *app, args []string, limit int) error {
				return a.out.Commands(a.commands.Search(strings.Join(args, " "), limit))
			}),
		limitCmd(opts, "most-used", "List the most used commands", cobra.NoArgs,
			func(a *app, _ []string, limit int) error {
				return a.out.Commands(a.commands.MostUsed(limit))
			}),
		limitCmd(opts, "recent", "List the most recently added commands", cobra.NoArgs,
			func(a *app, _ []string, limit int) error {
				return a.out.Commands(a.commands.Recent(limit))
			}),
		labelsCmd(opts, "categories", "List command categories", func(a *app) []string { return a.commands.Categories() }),
		labelsCmd(opts, "tags", "List command tags", func(a *app) []string { return a.commands.Tags() }),
	)
	return cmd
}

func newCommandAddCmd(opts *globalOptions) *cobra.Command {
	var c memory.Command
	cmd := &cobra.Command{
		Use:   "add [command]",
		Short: "Remember a shell command",
		Example: `  recall command add "kubectl get pods -A" -d "List every pod" -c k8s -t kubectl
  recall command add -- make test -race`,
		Args: cobra.MinimumNArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			c.Command = strings.Join(args, " ")
			id, err := a.commands.Add(cmd.Context(), &c)
			if err != nil {
				return err
			}
			if a.out.JSON {
				return a.out.Value(map[string]string{"id": id})
			}
			return a.out.Info("Remembered command %s", id)
		}),
	}
	cmd.Flags().StringVarP(&c.Description, "description", "d", "", "What the command does")
	cmd.Flags().StringVarP(&c.Category, "category", "c", "", "Category (default "+memory.DefaultCategory+")")
	cmd.Flags().StringSliceVarP(&c.Tags, "tag", "t", nil, "Tag, repeatable")
	cmd.Flags().StringVar(&c.Context, "context", "", "Where or when the command applies")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

func newCommandUpdateCmd(opts *globalOptions) *cobra.Command {
	var (
		command, description, category, context string
		tags                                    []string
	)
	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Change fields of a command",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			f := cmd.Flags()
			patch := memory.CommandPatch{
				Command:     changed(f, "command", command),
				Description: changed(f, "description", description),
				Category:    changed(f, "category", category),
				Context:     changed(f, "context", context),
			}
			if f.Changed("tag") {
				patch.Tags = append([]string{}, tags...)
			}
			ok, err := a.commands.Update(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("command %q not found", args[0])
			}
			return a.out.Info("Updated command %s", args[0])
		}),
	}
	cmd.Flags().StringVar(&command, "command", "", "New command line")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	cmd.Flags().StringVarP(&category, "category", "c", "", "New category")
	cmd.Flags().StringVar(&context, "context", "", "New context note")
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "Replace tags, repeatable")
	return cmd
}
