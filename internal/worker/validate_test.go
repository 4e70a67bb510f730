package worker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eventflow-io/eventflow/internal/eventerrors"
	"github.com/eventflow-io/eventflow/internal/model"
)

func TestValidateSemanticsPurchase(t *testing.T) {
	sub := model.Submission{Kind: model.KindPurchase, Properties: map[string]interface{}{"amount": 42.0}}
	assert.NoError(t, validateSemantics(sub))

	sub.Properties = map[string]interface{}{"amount": 0.0}
	assert.Error(t, validateSemantics(sub))

	sub.Properties = map[string]interface{}{}
	err := validateSemantics(sub)
	assert.Error(t, err)
	var valErr *eventerrors.ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestValidateSemanticsUserSignup(t *testing.T) {
	sub := model.Submission{Kind: model.KindUserSignup, SubjectID: "user-1"}
	assert.NoError(t, validateSemantics(sub))

	sub.SubjectID = ""
	assert.Error(t, validateSemantics(sub))
}

func TestValidateSemanticsPageViewAndCustomHaveNoExtraRules(t *testing.T) {
	assert.NoError(t, validateSemantics(model.Submission{Kind: model.KindPageView}))
	assert.NoError(t, validateSemantics(model.Submission{Kind: model.KindCustom}))
}

func TestValidateSemanticsUnknownKind(t *testing.T) {
	err := validateSemantics(model.Submission{Kind: "bogus"})
	assert.Error(t, err)
}

func TestNumericProperty(t *testing.T) {
	props := map[string]interface{}{"a": 1.5, "b": 2, "c": int64(3), "d": "nope"}

	v, ok := numericProperty(props, "a")
	assert.True(t, ok)
	assert.Equal(t, 1.5, v)

	v, ok = numericProperty(props, "b")
	assert.True(t, ok)
	assert.Equal(t, 2.0, v)

	v, ok = numericProperty(props, "c")
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)

	_, ok = numericProperty(props, "d")
	assert.False(t, ok)

	_, ok = numericProperty(props, "missing")
	assert.False(t, ok)
}
