package worker

import (
	"fmt"

	"github.com/eventflow-io/eventflow/internal/eventerrors"
	"github.com/eventflow-io/eventflow/internal/model"
)

// validateSemantics applies the per-kind business rules spec.md §4.3 names.
// Structural shape (kind enum membership, presence of properties) was
// already enforced at ingestion; this step is about domain meaning.
func validateSemantics(sub model.Submission) error {
	switch sub.Kind {
	case model.KindPurchase:
		amount, ok := numericProperty(sub.Properties, "amount")
		if !ok || amount <= 0 {
			return &eventerrors.ValidationError{Kind: string(sub.Kind), Message: "purchase requires a positive numeric amount"}
		}
	case model.KindUserSignup:
		if sub.SubjectID == "" {
			return &eventerrors.ValidationError{Kind: string(sub.Kind), Message: "user_signup requires a non-empty subject_id"}
		}
	case model.KindPageView, model.KindCustom:
		// No additional semantic rules beyond structural validation.
	default:
		return &eventerrors.ValidationError{Kind: string(sub.Kind), Message: fmt.Sprintf("unrecognized kind %q", sub.Kind)}
	}
	return nil
}

func numericProperty(properties map[string]interface{}, key string) (float64, bool) {
	raw, ok := properties[key]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
