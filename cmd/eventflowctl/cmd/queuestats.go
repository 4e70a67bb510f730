package cmd

import (
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"

	"github.com/eventflow-io/eventflow/internal/common"
	"github.com/eventflow-io/eventflow/internal/config"
	"github.com/eventflow-io/eventflow/internal/flowcontext"
	"github.com/eventflow-io/eventflow/internal/queue"
)

func queueStatsCmd() *cobra.Command {
	var configPaths []string

	command := &cobra.Command{
		Use:   "queue-stats",
		Short: "Print the current stream length and pending-entry count.",
		RunE: func(c *cobra.Command, args []string) error {
			var cfg config.WorkerConfiguration
			common.LoadConfig(&cfg, "./config/worker", configPaths)

			ctx := flowcontext.Background()
			client := redis.NewUniversalClient(cfg.Queue.Redis.AsUniversalOptions())
			q := queue.New(client, cfg.Queue.StreamName, cfg.Queue.ConsumerGroup)

			length, err := q.Length(ctx)
			if err != nil {
				return err
			}
			pending, err := q.PendingCount(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("queue_length=%d pending=%d\n", length, pending)
			return nil
		},
	}

	command.Flags().StringSliceVar(&configPaths, "config", []string{}, "Additional configuration file paths")
	return command
}
