package cli

import (
	"os"

	"github.com/felixgeelhaar/recall/internal/ui"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

type globalOptions struct {
	configPath string
	dataDir    string
	backend    string
	verbose    bool
	json       bool
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = NewRootCmd()

// NewRootCmd builds the full command tree with its own flag state.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "recall",
		Short: "Remember shell commands and project context",
		Long: `Recall keeps two small searchable memories: shell commands worth reusing,
and keyed snippets of project context. Both rank search hits by relevance
and track how often each record is used.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := root.PersistentFlags()
	f.StringVar(&opts.configPath, "config", "", "Config file (default ~/.recall/config.yaml)")
	f.StringVar(&opts.dataDir, "data-dir", "", "Directory holding the snapshots")
	f.StringVar(&opts.backend, "backend", "", "Snapshot backend (json, sqlite)")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")
	f.BoolVar(&opts.json, "json", false, "JSON output and JSON logs")

	root.AddCommand(
		newCommandCmd(opts),
		newContextCmd(opts),
		newServeCmd(opts),
		newBrowseCmd(opts),
		newConfigCmd(opts),
	)
	return root
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		reportError(RootCmd, err)
		os.Exit(1)
	}
}

// reportError writes err to the command's stderr, as JSON when --json is set.
func reportError(root *cobra.Command, err error) {
	asJSON, _ := root.PersistentFlags().GetBool("json")
	ui.NewPrinter(root.ErrOrStderr(), asJSON).Error(err)
}
