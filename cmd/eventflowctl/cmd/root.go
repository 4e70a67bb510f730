// Package cmd implements eventflowctl, an operational CLI for migrating the
// schema, inspecting queue depth, and polling a running deployment.
package cmd

import (
	"github.com/spf13/cobra"
)

// RootCmd is the root Cobra command, following the teacher's
// cmd/armadactl/cmd.RootCmd shape: one command per operational concern.
func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eventflowctl",
		Short: "eventflowctl operates the EventFlow ingestion/worker deployment.",
	}

	cmd.AddCommand(
		migrateCmd(),
		queueStatsCmd(),
		monitorCmd(),
	)

	return cmd
}
