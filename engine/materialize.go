package engine

import (
	"github.com/oliveagle/jsonpath"

	"github.com/approvd/approvd/model"
)

// materializeSteps clones the definition's templates into the step instances
// of a new request. Required templates are always cloned. An optional
// template is cloned when the payload's twoStep flag is truthy, unless it
// carries a jsonpath condition, which is then evaluated against the payload
// instead. Template order is preserved.
func materializeSteps(def *model.FlowDefinition, payload map[string]any) ([]*model.Step, error) {
	steps := make([]*model.Step, 0, len(def.Steps))
	for _, tmpl := range def.Steps {
		include := tmpl.IsRequired()
		if tmpl.Condition != "" {
			v, err := jsonpath.JsonPathLookup(payload, tmpl.Condition)
			include = err == nil && isTruthy(v)
		} else if !include {
			include = isTruthy(payload["twoStep"])
		}
		if !include {
			continue
		}
		step := &model.Step{
			StepId:   tmpl.StepId,
			Role:     tmpl.Role,
			Actions:  append([]string(nil), tmpl.Actions...),
			SlaHours: tmpl.SlaHours,
		}
		if tmpl.OnTimeout != nil {
			step.EscalateTo = tmpl.OnTimeout.EscalateTo
		}
		steps = append(steps, step)
	}
	if len(steps) == 0 {
		return nil, InvalidDefinitionError{Reason: "no steps materialized for submission"}
	}
	return steps, nil
}

// isTruthy follows the loose truthiness of the payload flags: booleans as-is,
// numbers when non-zero, strings when non-empty and not "false"/"0".
func isTruthy(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val != "" && val != "false" && val != "0"
	case float64:
		return val != 0
	case int:
		return val != 0
	case int64:
		return val != 0
	default:
		return false
	}
}
