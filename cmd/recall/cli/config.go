package cli

import (
	"fmt"

	"github.com/felixgeelhaar/recall/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration as YAML",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := loadConfig(opts)
				if err != nil {
					return err
				}
				out, err := config.Marshal(cfg)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(out)
				return err
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the resolved snapshot locations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := loadConfig(opts)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if cfg.Backend == config.BackendSQLite {
					_, err = fmt.Fprintf(w, "sqlite: %s\n", cfg.SQLitePath())
					return err
				}
				_, err = fmt.Fprintf(w, "commands: %s\ncontexts: %s\n", cfg.CommandsPath(), cfg.ContextsPath())
				return err
			},
		},
	)
	return cmd
}
