package worker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eventflow-io/eventflow/internal/model"
)

func TestEnrichTagsHighValuePurchase(t *testing.T) {
	sub := model.Submission{Kind: model.KindPurchase, Properties: map[string]interface{}{"amount": 500.0}}
	e := enrich(sub, "worker-1", 100)
	assert.Equal(t, "worker-1", e.WorkerID)
	assert.Equal(t, tagHighValue, e.Tag)
}

func TestEnrichLeavesLowValuePurchaseUntagged(t *testing.T) {
	sub := model.Submission{Kind: model.KindPurchase, Properties: map[string]interface{}{"amount": 5.0}}
	e := enrich(sub, "worker-1", 100)
	assert.Empty(t, e.Tag)
}

func TestEnrichIgnoresNonPurchaseKinds(t *testing.T) {
	sub := model.Submission{Kind: model.KindPageView, Properties: map[string]interface{}{"amount": 9999.0}}
	e := enrich(sub, "worker-1", 100)
	assert.Empty(t, e.Tag)
}
