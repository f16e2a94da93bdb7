package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Joseda-hg/taskdeck/internal/account"
	"github.com/Joseda-hg/taskdeck/internal/app"
	"github.com/Joseda-hg/taskdeck/internal/config"
	"github.com/Joseda-hg/taskdeck/internal/db"
	"github.com/Joseda-hg/taskdeck/internal/logging"
	"github.com/Joseda-hg/taskdeck/internal/store"
	"github.com/Joseda-hg/taskdeck/internal/tui"
)

var (
	configPathFlag string
	dbPathFlag     string
	logLevelFlag   string
)

// env is what every subcommand works against once the root command has
// loaded config and opened the database.
type env struct {
	cfg      config.Config
	logger   *zap.SugaredLogger
	db       *db.Store
	accounts *account.Service
}

var current *env

var rootCmd = &cobra.Command{
	Use:           "taskdeck",
	Short:         "Personal tasks, lists and calendar for the terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var console io.Writer
		if cmd == serveCmd {
			console = os.Stderr
		}
		e, err := setup(console)
		if err != nil {
			return err
		}
		current = e
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
		if current == nil {
			return nil
		}
		_ = current.logger.Sync()
		return current.db.Close()
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runTUI(cmd.Context())
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the terminal UI",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runTUI(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPathFlag, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&dbPathFlag, "db", "", "sqlite db path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.AddCommand(tuiCmd)
}

func setup(console io.Writer) (*env, error) {
	cfgPath := configPathFlag
	if cfgPath == "" {
		path, err := config.DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		cfgPath = path
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if dbPathFlag != "" {
		cfg.DBPath = dbPathFlag
	}
	if logLevelFlag != "" {
		cfg.LogLevel = logLevelFlag
	}
	cfg.Resolve(cfgPath)

	if err := config.Save(cfgPath, cfg); err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Options{Path: cfg.LogPath, Level: cfg.LogLevel, Console: console})
	if err != nil {
		return nil, err
	}

	if err := config.EnsureDir(cfg.DBPath); err != nil {
		return nil, err
	}
	sqlDB, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	dbStore := db.NewStore(sqlDB)

	return &env{
		cfg:      cfg,
		logger:   logger,
		db:       dbStore,
		accounts: account.NewService(dbStore),
	}, nil
}

// openSession loads the signed-in user's snapshot into a fresh store.
func (e *env) openSession(ctx context.Context) (*app.Session, error) {
	user, err := e.accounts.RequireCurrent(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: run `taskdeck user login` first", err)
	}
	return app.Open(ctx, store.New(), e.db, user, app.Options{
		History:     e.db,
		Logger:      e.logger,
		SearchLimit: e.cfg.SearchLimit,
	})
}

func withSession(fn func(ctx context.Context, session *app.Session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		session, err := current.openSession(ctx)
		if err != nil {
			return err
		}
		return fn(ctx, session)
	}
}

func withSessionArgs(fn func(ctx context.Context, session *app.Session, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		session, err := current.openSession(ctx)
		if err != nil {
			return err
		}
		return fn(ctx, session, args)
	}
}

func runTUI(ctx context.Context) error {
	session, err := current.openSession(ctx)
	if err != nil {
		return err
	}
	if current.cfg.WebEnabled {
		startWeb(session, current.cfg.WebPort, current.logger)
	}
	current.logger.Infow("tui started", "user_id", session.User().ID)
	return tui.Run(session)
}
