package cli

import (
	"github.com/felixgeelhaar/recall/internal/memory"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// changed returns &v when the flag was set on the command line.
func changed[T any](f *pflag.FlagSet, name string, v T) *T {
	if !f.Changed(name) {
		return nil
	}
	return &v
}

// limitCmd builds a listing subcommand with a --limit flag.
func limitCmd(opts *globalOptions, use, short string, args cobra.PositionalArgs, run func(a *app, args []string, limit int) error) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: withApp(opts, func(_ *cobra.Command, args []string, a *app) error {
			return run(a, args, limit)
		}),
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", memory.DefaultLimit, "Maximum number of results")
	return cmd
}

// labelsCmd builds a label listing subcommand with a --match glob.
func labelsCmd(opts *globalOptions, use, short string, labels func(a *app) []string) *cobra.Command {
	var match string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(_ *cobra.Command, _ []string, a *app) error {
			out, err := memory.FilterLabels(labels(a), match)
			if err != nil {
				return err
			}
			return a.out.Labels(out)
		}),
	}
	cmd.Flags().StringVar(&match, "match", "", "Only labels matching this glob (e.g. dev/**, k8s-*)")
	return cmd
}
