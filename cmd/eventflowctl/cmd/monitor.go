package cmd

import (
	"encoding/json"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// monitorCmd is carried forward from the Python original's scripts/monitor.py:
// a periodic poller against /health and /metrics/summary, logged rather than
// printed to a cleared terminal since this is an operational CLI, not a TUI.
func monitorCmd() *cobra.Command {
	var apiURL string
	var intervalS int

	command := &cobra.Command{
		Use:   "monitor",
		Short: "Poll /health and /metrics/summary on an interval and log a summary line.",
		RunE: func(c *cobra.Command, args []string) error {
			client := &http.Client{Timeout: 10 * time.Second}
			ticker := time.NewTicker(time.Duration(intervalS) * time.Second)
			defer ticker.Stop()

			for {
				logSummary(client, apiURL)
				<-ticker.C
			}
		},
	}

	command.Flags().StringVar(&apiURL, "api-url", "http://localhost:8000", "Ingestion service base URL")
	command.Flags().IntVar(&intervalS, "interval", 5, "Refresh interval in seconds")

	return command
}

func logSummary(client *http.Client, apiURL string) {
	health, err := fetchJSON(client, apiURL+"/health")
	if err != nil {
		log.WithError(err).Warn("health probe failed")
		return
	}

	summary, err := fetchJSON(client, apiURL+"/metrics/summary")
	if err != nil {
		log.WithError(err).Warn("metrics probe failed")
		return
	}

	log.WithFields(log.Fields{
		"status":       health["status"],
		"queue_length": summary["queue_length"],
		"pending":      summary["pending"],
	}).Info("eventflow status")
}

func fetchJSON(client *http.Client, url string) (map[string]interface{}, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	return body, nil
}
