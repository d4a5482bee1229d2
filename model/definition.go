package model

// FlowDefinition is the static description of an approval pipeline. It is
// immutable once loaded; reloading the source produces a new value that only
// affects requests submitted afterwards.
type FlowDefinition struct {
	FlowId string         `json:"flowId"`
	Steps  []StepTemplate `json:"steps"`
}

type StepTemplate struct {
	StepId    string         `json:"stepId"`
	Role      string         `json:"role"`
	Actions   []string       `json:"actions"`
	SlaHours  float64        `json:"slaHours"`
	Required  *bool          `json:"required,omitempty"`
	Condition string         `json:"condition,omitempty"`
	OnTimeout *TimeoutPolicy `json:"onTimeout,omitempty"`
}

type TimeoutPolicy struct {
	EscalateTo string `json:"escalateTo"`
}

// IsRequired treats an absent required field as true.
func (t StepTemplate) IsRequired() bool {
	return t.Required == nil || *t.Required
}
