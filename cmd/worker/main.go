package main

import (
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/eventflow-io/eventflow/internal/common"
	"github.com/eventflow-io/eventflow/internal/common/app"
	"github.com/eventflow-io/eventflow/internal/common/util"
	"github.com/eventflow-io/eventflow/internal/config"
	"github.com/eventflow-io/eventflow/internal/flowcontext"
	"github.com/eventflow-io/eventflow/internal/queue"
	"github.com/eventflow-io/eventflow/internal/store/postgres"
	"github.com/eventflow-io/eventflow/internal/worker"

	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const customConfigLocation = "config"

func init() {
	pflag.StringSlice(customConfigLocation, []string{}, "Fully qualified path to application configuration file (for multiple config files repeat this arg or separate paths with commas)")
	pflag.Parse()
}

func main() {
	common.BindCommandlineArguments()

	var cfg config.WorkerConfiguration
	userSpecifiedConfigs := viper.GetStringSlice(customConfigLocation)
	common.LoadConfig(&cfg, "./config/worker", userSpecifiedConfigs)
	common.ConfigureLogging(cfg.LogFormat, cfg.LogLevel)

	ctx := flowcontext.Background()

	pool, err := postgres.OpenPool(ctx, cfg.Postgres)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to postgres")
	}
	store := postgres.NewStore(pool)

	redisClient := redis.NewUniversalClient(cfg.Queue.Redis.AsUniversalOptions())
	q := queue.New(redisClient, cfg.Queue.StreamName, cfg.Queue.ConsumerGroup)

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{Addr: portAddr(cfg.MetricsPort), Handler: metricsMux}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("metrics server stopped unexpectedly")
		}
	}()

	shutdownCtx := app.CreateContextWithShutdown()
	workerCtx := flowcontext.New(shutdownCtx, log.NewEntry(log.StandardLogger()))

	workerPool := worker.NewPool(q, store, cfg)
	done := make(chan struct{})
	go func() {
		if err := workerPool.Run(workerCtx); err != nil {
			log.WithError(err).Error("worker pool exited with error")
		}
		close(done)
	}()

	log.Infof("worker pool running with %d workers (metrics on :%d)", cfg.WorkerCount, cfg.MetricsPort)

	<-shutdownCtx.Done()
	log.Info("shutdown signal received, draining in-flight entries")

	grace := time.Duration(cfg.ShutdownGraceS) * time.Second
	if grace <= 0 {
		grace = 30 * time.Second
	}
	select {
	case <-done:
		log.Info("worker pool drained cleanly")
	case <-time.After(grace):
		log.Warn("shutdown grace period exceeded, abandoning in-flight entries for reclaim-stale")
	}

	_ = metricsServer.Close()
	util.CloseResource("postgres store", store)
}

func portAddr(port uint16) string {
	return ":" + strconv.Itoa(int(port))
}
