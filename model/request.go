package model

import (
	"strings"
	"time"
)

type RequestStatus string

const STATUS_PENDING RequestStatus = "PENDING"
const STATUS_APPROVED RequestStatus = "APPROVED"
const STATUS_REJECTED RequestStatus = "REJECTED"

func (s RequestStatus) IsTerminal() bool {
	return s == STATUS_APPROVED || s == STATUS_REJECTED
}

// Step is one stage of a request's pipeline, cloned from its StepTemplate at
// submission time. EscalatedTo is set once by SLA escalation and never cleared.
type Step struct {
	StepId      string   `json:"stepId"`
	Role        string   `json:"role"`
	Actions     []string `json:"actions"`
	SlaHours    float64  `json:"slaHours"`
	EscalateTo  string   `json:"escalateTo,omitempty"`
	EscalatedTo string   `json:"escalatedTo,omitempty"`
}

// EffectiveRole is the role currently allowed to act on the step.
func (s *Step) EffectiveRole() string {
	if s.EscalatedTo != "" {
		return s.EscalatedTo
	}
	return s.Role
}

func (s *Step) AllowsAction(action string) bool {
	for _, a := range s.Actions {
		if strings.EqualFold(a, action) {
			return true
		}
	}
	return false
}

type HistoryEntry struct {
	At      time.Time `json:"at"`
	Actor   string    `json:"actor,omitempty"`
	Role    string    `json:"role,omitempty"`
	Action  string    `json:"action"`
	StepId  string    `json:"stepId,omitempty"`
	Comment string    `json:"comment,omitempty"`
	Detail  string    `json:"detail,omitempty"`
}

// Request is one in-flight or terminal approval request. History is append
// only; Status never changes again after reaching a terminal value.
type Request struct {
	Id               string         `json:"id"`
	Type             string         `json:"type"`
	CreatedAt        time.Time      `json:"createdAt"`
	CreatedBy        string         `json:"createdBy"`
	Payload          map[string]any `json:"payload,omitempty"`
	Status           RequestStatus  `json:"status"`
	Steps            []*Step        `json:"steps"`
	CurrentStepIndex int            `json:"currentStepIndex"`
	History          []HistoryEntry `json:"history"`
}

// CurrentStep returns the active step, or nil once the request is terminal or
// the index is out of range.
func (r *Request) CurrentStep() *Step {
	if r.Status != STATUS_PENDING {
		return nil
	}
	if r.CurrentStepIndex < 0 || r.CurrentStepIndex >= len(r.Steps) {
		return nil
	}
	return r.Steps[r.CurrentStepIndex]
}

func (r *Request) IsLastStep() bool {
	return r.CurrentStepIndex == len(r.Steps)-1
}
