package model

type SubmitRequest struct {
	Type      string         `json:"type"`
	CreatedBy string         `json:"createdBy"`
	Payload   map[string]any `json:"payload"`
}

type ActionRequest struct {
	Actor   string `json:"actor"`
	Role    string `json:"role"`
	Action  string `json:"action"`
	Comment string `json:"comment,omitempty"`
}

type RequestStateResponse struct {
	Id          string        `json:"id"`
	Status      RequestStatus `json:"status"`
	CurrentStep string        `json:"currentStep,omitempty"`
}

type ReloadResponse struct {
	FlowId    string `json:"flowId"`
	StepCount int    `json:"stepCount"`
}
