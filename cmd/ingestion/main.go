package main

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v4/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/eventflow-io/eventflow/internal/common"
	"github.com/eventflow-io/eventflow/internal/common/app"
	"github.com/eventflow-io/eventflow/internal/common/util"
	"github.com/eventflow-io/eventflow/internal/config"
	"github.com/eventflow-io/eventflow/internal/flowcontext"
	"github.com/eventflow-io/eventflow/internal/ingestion"
	"github.com/eventflow-io/eventflow/internal/queue"
	"github.com/eventflow-io/eventflow/internal/store/postgres"
)

const (
	customConfigLocation = "config"
	migrateDatabase      = "migrateDatabase"
)

func init() {
	pflag.StringSlice(customConfigLocation, []string{}, "Fully qualified path to application configuration file (for multiple config files repeat this arg or separate paths with commas)")
	pflag.Bool(migrateDatabase, false, "Apply pending schema migrations instead of serving")
	pflag.Parse()
}

func main() {
	common.BindCommandlineArguments()

	var cfg config.IngestionConfiguration
	userSpecifiedConfigs := viper.GetStringSlice(customConfigLocation)
	common.LoadConfig(&cfg, "./config/ingestion", userSpecifiedConfigs)
	common.ConfigureLogging(cfg.LogFormat, cfg.LogLevel)

	ctx := flowcontext.Background()

	var pool *pgxpool.Pool
	util.RetryUntilSuccess(ctx, func() error {
		p, err := postgres.OpenPool(ctx, cfg.Postgres)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}, func(err error) {
		log.WithError(err).Warn("postgres not ready, retrying")
		time.Sleep(2 * time.Second)
	})

	if viper.GetBool(migrateDatabase) {
		if err := postgres.ApplyMigrations(ctx, pool); err != nil {
			log.WithError(err).Fatal("migration failed")
		}
		return
	}

	redisClient := redis.NewUniversalClient(cfg.Queue.Redis.AsUniversalOptions())
	q := queue.New(redisClient, cfg.Queue.StreamName, cfg.Queue.ConsumerGroup)
	if err := q.EnsureGroup(ctx); err != nil {
		log.WithError(err).Fatal("failed to ensure consumer group")
	}

	store := postgres.NewStore(pool)
	service := ingestion.New(cfg, store, q)
	service.Start(ctx)
	log.Infof("ingestion service listening on :%d (metrics on :%d)", cfg.HttpPort, cfg.MetricsPort)

	shutdownCtx := app.CreateContextWithShutdown()
	<-shutdownCtx.Done()
	log.Info("shutdown signal received, stopping ingestion service")

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	service.Stop(stopCtx)
	util.CloseResource("postgres store", store)
}
