package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/koustreak/pgmeta/internal/catalog"
	catalogpg "github.com/koustreak/pgmeta/internal/catalog/postgres"
	"github.com/koustreak/pgmeta/internal/config"
	"github.com/koustreak/pgmeta/internal/database/postgres"
	"github.com/koustreak/pgmeta/internal/logger"
)

type rootOptions struct {
	configPath string
	dbURL      string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "pgmeta",
		Short: "Typed bindings for PostgreSQL schemas",
		Long: `pgmeta reads a PostgreSQL catalog and generates TypeScript, Dart or Go
bindings for its tables, views, functions, enums and composite types.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.dbURL, "db-url", "", "database url (overrides config and "+config.EnvDatabaseURL+")")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newGenerateCmd(opts))
	cmd.AddCommand(newSnapshotCmd(opts))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// load reads the config and applies command line overrides.
func (o *rootOptions) load() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	if o.dbURL != "" {
		cfg.Database.DSN = o.dbURL
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	return cfg, logger.New(&cfg.Log), nil
}

// connect opens the database and wraps it in a catalog collector. The
// returned func closes the pool.
func connect(ctx context.Context, cfg *config.Config) (catalog.Collector, func(), error) {
	if err := cfg.Database.Validate(); err != nil {
		return nil, nil, err
	}
	db, err := postgres.New(ctx, &cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	return catalogpg.New(db, cfg.Database.QueryTimeout), db.Close, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pgmeta %s (%s)\n", Version, GitCommit)
		},
	}
}
