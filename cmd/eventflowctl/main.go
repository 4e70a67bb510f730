package main

import (
	log "github.com/sirupsen/logrus"

	"github.com/eventflow-io/eventflow/cmd/eventflowctl/cmd"
)

func main() {
	if err := cmd.RootCmd().Execute(); err != nil {
		log.WithError(err).Fatal("eventflowctl failed")
	}
}
