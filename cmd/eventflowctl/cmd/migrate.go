package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/eventflow-io/eventflow/internal/common"
	"github.com/eventflow-io/eventflow/internal/config"
	"github.com/eventflow-io/eventflow/internal/flowcontext"
	"github.com/eventflow-io/eventflow/internal/store/postgres"
)

func migrateCmd() *cobra.Command {
	var configPaths []string

	command := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations to the configured Postgres store.",
		RunE: func(c *cobra.Command, args []string) error {
			var cfg config.IngestionConfiguration
			common.LoadConfig(&cfg, "./config/ingestion", configPaths)

			dsn := postgres.CreateConnectionString(cfg.Postgres.Connection)
			if err := postgres.WaitForPostgres(dsn, 10, 2*time.Second); err != nil {
				return err
			}

			ctx := flowcontext.Background()
			pool, err := postgres.OpenPool(ctx, cfg.Postgres)
			if err != nil {
				return err
			}
			defer pool.Close()

			return postgres.ApplyMigrations(ctx, pool)
		},
	}

	flags := pflag.NewFlagSet("migrate", pflag.ContinueOnError)
	flags.StringSliceVar(&configPaths, "config", []string{}, "Additional configuration file paths")
	command.Flags().AddFlagSet(flags)
	_ = viper.BindPFlags(command.Flags())

	return command
}
