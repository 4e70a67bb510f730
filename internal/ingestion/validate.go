package ingestion

import (
	"github.com/eventflow-io/eventflow/internal/eventerrors"
	"github.com/eventflow-io/eventflow/internal/model"
)

// validateStructural enforces the schema submit() requires before any
// durable write happens (spec.md §4.1, contract step 1).
func validateStructural(sub model.Submission) error {
	if sub.Kind == "" {
		return &eventerrors.StructuralError{Field: "kind", Message: "kind is required"}
	}
	if !model.ValidKinds[sub.Kind] {
		return &eventerrors.StructuralError{Field: "kind", Message: "unrecognized kind " + string(sub.Kind)}
	}
	if sub.Properties == nil {
		return &eventerrors.StructuralError{Field: "properties", Message: "properties is required"}
	}
	return nil
}
