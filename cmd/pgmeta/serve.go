package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/koustreak/pgmeta/internal/cache"
	catalogpg "github.com/koustreak/pgmeta/internal/catalog/postgres"
	"github.com/koustreak/pgmeta/internal/database/postgres"
	"github.com/koustreak/pgmeta/internal/filestore"
	"github.com/koustreak/pgmeta/internal/filestore/minio"
	"github.com/koustreak/pgmeta/internal/server"
	"github.com/koustreak/pgmeta/internal/service"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		addr      string
		goPackage string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve generated bindings over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := root.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			ctx = log.WithContext(ctx)

			db, err := postgres.New(ctx, &cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()
			opts := []server.Option{
				server.WithDefaults(cfg.Generator),
				server.WithCheck("database", db.Ping),
			}

			var c cache.Cache = cache.Nop{}
			if cfg.Cache.Enabled {
				rc, err := cache.NewRedis(ctx, &cfg.Cache)
				if err != nil {
					return err
				}
				defer rc.Close()
				c = rc
				opts = append(opts, server.WithCheck("cache", func(ctx context.Context) error {
					_, _, err := rc.Get(ctx, "health")
					return err
				}))
			}

			if cfg.Filestore.Enabled {
				store, err := minio.New(ctx, &cfg.Filestore)
				if err != nil {
					return err
				}
				defer store.Close()
				opts = append(opts,
					server.WithPublisher(filestore.NewPublisher(store, &cfg.Filestore)),
					server.WithCheck("filestore", store.Ping))
			}

			collector := catalogpg.New(db, cfg.Database.QueryTimeout)
			svc := service.New(collector, c, service.DefaultTargets(goPackage)...)
			return server.New(cfg.Server, svc, log, opts...).ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&goPackage, "go-package", "", "package name of generated Go code")
	return cmd
}
