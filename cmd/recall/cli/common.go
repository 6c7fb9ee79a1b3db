package cli

import (
	"database/sql"
	"errors"
	"io"

	"github.com/felixgeelhaar/recall/internal/config"
	"github.com/felixgeelhaar/recall/internal/memory"
	"github.com/felixgeelhaar/recall/internal/observe"
	"github.com/felixgeelhaar/recall/internal/store"
	"github.com/felixgeelhaar/recall/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// app holds everything a subcommand needs once the stores are loaded.
type app struct {
	cfg      *config.Config
	obs      *observe.Observer
	db       *sql.DB
	commands *memory.CommandStore
	contexts *memory.ContextStore
	out      *ui.Printer
}

func loadConfig(opts *globalOptions) (*config.Config, error) {
	path := opts.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if opts.dataDir != "" {
		cfg.DataDir = opts.dataDir
	}
	if opts.backend != "" {
		cfg.Backend = opts.backend
	}
	if opts.verbose {
		cfg.Log.Verbose = true
	}
	if opts.json {
		cfg.Log.Format = config.LogJSON
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newObserver(w io.Writer, cfg *config.Config) *observe.Observer {
	if cfg.Log.Format == config.LogJSON {
		return observe.NewJSON(w, cfg.Log.Verbose)
	}
	return observe.New(w, cfg.Log.Verbose)
}

// openApp loads the config, opens the configured backend and initializes
// both stores concurrently. Logs go to stderr so stdout stays clean for
// results and the MCP transport.
func openApp(cmd *cobra.Command, opts *globalOptions) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	obs := newObserver(cmd.ErrOrStderr(), cfg)
	a := &app{
		cfg: cfg,
		obs: obs,
		out: ui.NewPrinter(cmd.OutOrStdout(), opts.json),
	}
	ctx := cmd.Context()

	switch cfg.Backend {
	case config.BackendSQLite:
		db, err := store.OpenSQLite(ctx, cfg.SQLitePath(), cfg.SQLite.BusyTimeout)
		if err != nil {
			return nil, err
		}
		a.db = db
		cb, err := store.NewSQLite[*memory.Command](ctx, db, store.KindCommands)
		if err != nil {
			a.Close()
			return nil, err
		}
		xb, err := store.NewSQLite[*memory.Context](ctx, db, store.KindContexts)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.commands = memory.NewCommandStore(cb, memory.WithObserver(obs))
		a.contexts = memory.NewContextStore(xb, memory.WithObserver(obs))
	default:
		a.commands = memory.NewCommandStore(store.NewJSONFile[*memory.Command](cfg.CommandsPath()), memory.WithObserver(obs))
		a.contexts = memory.NewContextStore(store.NewJSONFile[*memory.Context](cfg.ContextsPath()), memory.WithObserver(obs))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.commands.Initialize(gctx) })
	g.Go(func() error { return a.contexts.Initialize(gctx) })
	if err := g.Wait(); err != nil {
		a.Close()
		return nil, err
	}

	obs.Log().Debug().Str("backend", cfg.Backend).Str("data_dir", cfg.DataDir).Msg("stores ready")
	return a, nil
}

func (a *app) Close() error {
	var errs []error
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	errs = append(errs, a.obs.Close())
	return errors.Join(errs...)
}

// withApp wraps a RunE body with store setup and teardown.
func withApp(opts *globalOptions, run func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, opts)
		if err != nil {
			return err
		}
		defer a.Close()
		return run(cmd, args, a)
	}
}
