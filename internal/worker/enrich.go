package worker

import "github.com/eventflow-io/eventflow/internal/model"

const tagHighValue = "high_value"

// enrich computes derived fields deterministically over the event and
// config, with no network I/O, per spec.md §4.3.
func enrich(sub model.Submission, workerID string, highValueThreshold float64) model.Enrichment {
	e := model.Enrichment{WorkerID: workerID}

	if sub.Kind == model.KindPurchase {
		if amount, ok := numericProperty(sub.Properties, "amount"); ok && amount >= highValueThreshold {
			e.Tag = tagHighValue
		}
	}
	return e
}
