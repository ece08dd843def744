package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Kerhoff/wedding/internal/storage"
	"github.com/Kerhoff/wedding/pkg/logger"
)

type globalOptions struct {
	databaseURL    string
	migrationsPath string
	logLevel       string

	logger *logrus.Logger
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "weddingctl",
		Short:         "Manage the wedding guest list, story and photos",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to load .env: %w", err)
			}
			if opts.databaseURL == "" {
				opts.databaseURL = os.Getenv("DATABASE_URL")
			}
			if opts.migrationsPath == "" {
				opts.migrationsPath = os.Getenv("MIGRATIONS_PATH")
			}
			if opts.migrationsPath == "" {
				opts.migrationsPath = "migrations"
			}
			opts.logger = logger.New(opts.logLevel, "text")
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.databaseURL, "database-url", "", "postgres:// or bolt:// URL (default $DATABASE_URL)")
	cmd.PersistentFlags().StringVar(&opts.migrationsPath, "migrations", "", "Directory of SQL migrations (default $MIGRATIONS_PATH or ./migrations)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level")

	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newGuestsCommand(opts))
	cmd.AddCommand(newStoriesCommand(opts))
	cmd.AddCommand(newAssetsCommand(opts))
	return cmd
}

// open connects to storage and applies pending migrations.
func (o *globalOptions) open(ctx context.Context) (*storage.Store, error) {
	if o.databaseURL == "" {
		return nil, errors.New("--database-url or DATABASE_URL is required")
	}
	store, err := storage.Open(ctx, o.databaseURL, o.logger)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(o.migrationsPath); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func newMigrateCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.open(commandContext(cmd))
			if err != nil {
				return err
			}
			defer store.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "%s storage is up to date\n", store.Backend)
			return nil
		},
	}
	cmd.AddCommand(newMigrateDownCommand(opts))
	return cmd
}

func newMigrateDownCommand(opts *globalOptions) *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.databaseURL == "" {
				return errors.New("--database-url or DATABASE_URL is required")
			}
			store, err := storage.Open(commandContext(cmd), opts.databaseURL, opts.logger)
			if err != nil {
				return err
			}
			defer store.Close()
			return store.MigrateDown(opts.migrationsPath, steps)
		},
	}

	cmd.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back")
	return cmd
}
