package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/bizdesk/internal/observability/logger"
	"github.com/dropDatabas3/bizdesk/internal/store/pg"
	migrations "github.com/dropDatabas3/bizdesk/migrations/postgres"
)

func newMigrateCmd(o *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending PostgreSQL migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.load()
			if err != nil {
				return err
			}
			if cfg.Storage.Driver != "postgres" || cfg.Storage.DSN == "" {
				return errors.New("migrate requires storage.driver=postgres and storage.dsn")
			}
			ctx := cmd.Context()

			pool, err := pg.Connect(ctx, pg.Options{DSN: cfg.Storage.DSN, MaxConns: 2})
			if err != nil {
				return err
			}
			defer pool.Close()

			n, err := pg.Migrate(ctx, pool, migrations.FS)
			if err != nil {
				return err
			}
			logger.L().Info("migrations applied", logger.Int("count", n))
			return nil
		},
	}
}
