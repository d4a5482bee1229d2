package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/approvd/approvd/model"
)

func optionalStepDefinition() *model.FlowDefinition {
	return &model.FlowDefinition{
		FlowId: "expense-approval",
		Steps: []model.StepTemplate{
			{StepId: "manager-review", Role: "manager", Actions: []string{"approve", "reject"}, SlaHours: 1},
			{StepId: "admin-review", Role: "admin", Actions: []string{"approve", "reject"}, SlaHours: 2, Required: boolPtr(false)},
		},
	}
}

func TestMaterializeOptionalStep(t *testing.T) {
	def := optionalStepDefinition()

	steps, err := materializeSteps(def, nil)
	require.NoError(t, err)
	require.Len(t, steps, 1)
	require.Equal(t, "manager-review", steps[0].StepId)

	steps, err = materializeSteps(def, map[string]any{"twoStep": false})
	require.NoError(t, err)
	require.Len(t, steps, 1)

	steps, err = materializeSteps(def, map[string]any{"twoStep": true})
	require.NoError(t, err)
	require.Len(t, steps, 2)
	require.Equal(t, "manager-review", steps[0].StepId)
	require.Equal(t, "admin-review", steps[1].StepId)
}

func TestMaterializeEmptyPipeline(t *testing.T) {
	def := &model.FlowDefinition{
		FlowId: "optional-only",
		Steps: []model.StepTemplate{
			{StepId: "admin-review", Role: "admin", Actions: []string{"approve"}, Required: boolPtr(false)},
		},
	}
	_, err := materializeSteps(def, nil)
	var invalidDefinition InvalidDefinitionError
	require.ErrorAs(t, err, &invalidDefinition)
}

func TestMaterializeCondition(t *testing.T) {
	def := &model.FlowDefinition{
		FlowId: "expense-approval",
		Steps: []model.StepTemplate{
			{StepId: "manager-review", Role: "manager", Actions: []string{"approve", "reject"}},
			{StepId: "finance-review", Role: "finance", Actions: []string{"approve", "reject"}, Condition: "$.highValue"},
		},
	}

	steps, err := materializeSteps(def, map[string]any{"highValue": true})
	require.NoError(t, err)
	require.Len(t, steps, 2)

	steps, err = materializeSteps(def, map[string]any{"highValue": false})
	require.NoError(t, err)
	require.Len(t, steps, 1)

	steps, err = materializeSteps(def, map[string]any{})
	require.NoError(t, err)
	require.Len(t, steps, 1)
}

func TestMaterializeClonesTemplate(t *testing.T) {
	def := optionalStepDefinition()
	def.Steps[0].OnTimeout = &model.TimeoutPolicy{EscalateTo: "admin"}

	steps, err := materializeSteps(def, nil)
	require.NoError(t, err)
	require.Equal(t, "admin", steps[0].EscalateTo)
	require.Empty(t, steps[0].EscalatedTo)

	// mutating the instance must not leak into the definition
	steps[0].Actions[0] = "mutated"
	require.Equal(t, "approve", def.Steps[0].Actions[0])
}

func TestIsTruthy(t *testing.T) {
	require.True(t, isTruthy(true))
	require.True(t, isTruthy("yes"))
	require.True(t, isTruthy(float64(1)))
	require.True(t, isTruthy(2))
	require.False(t, isTruthy(false))
	require.False(t, isTruthy(""))
	require.False(t, isTruthy("false"))
	require.False(t, isTruthy("0"))
	require.False(t, isTruthy(float64(0)))
	require.False(t, isTruthy(nil))
}
