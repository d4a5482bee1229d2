package engine

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/approvd/approvd/analytics"
	"github.com/approvd/approvd/definition"
	"github.com/approvd/approvd/logger"
	"github.com/approvd/approvd/model"
	"github.com/approvd/approvd/notify"
	"github.com/approvd/approvd/scheduler"
	"github.com/approvd/approvd/store"
)

const ACTION_REJECT string = "reject"

// Engine applies the approval transition rules to request aggregates. Act and
// HandleTimeout for the same request are serialized on a per-request lock so
// the "one active step, at most one armed timer" invariant holds under
// concurrent callers.
type Engine struct {
	definitions *definition.Service
	store       store.RequestStore
	scheduler   scheduler.Scheduler
	notifier    notify.Notifier
	decisions   *analytics.DecisionLog
	mu          sync.Mutex
	locks       map[string]*sync.Mutex
}

func New(definitions *definition.Service, requestStore store.RequestStore, sched scheduler.Scheduler, notifier notify.Notifier, decisions *analytics.DecisionLog) *Engine {
	return &Engine{
		definitions: definitions,
		store:       requestStore,
		scheduler:   sched,
		notifier:    notifier,
		decisions:   decisions,
		locks:       make(map[string]*sync.Mutex),
	}
}

// Submit materializes a new request from the definition in force, stores it,
// arms the first step's SLA timer and notifies the first step's role.
func (e *Engine) Submit(reqType string, createdBy string, payload map[string]any) (*model.Request, error) {
	def := e.definitions.Current()
	if def == nil {
		return nil, InvalidDefinitionError{Reason: "no flow definition loaded"}
	}
	steps, err := materializeSteps(def, payload)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	req := &model.Request{
		Id:        uuid.New().String(),
		Type:      reqType,
		CreatedAt: now,
		CreatedBy: createdBy,
		Payload:   payload,
		Status:    model.STATUS_PENDING,
		Steps:     steps,
		History: []model.HistoryEntry{
			{At: now, Actor: createdBy, Action: "submit"},
		},
	}
	if err := e.store.Create(req); err != nil {
		return nil, err
	}
	first := req.Steps[0]
	e.scheduler.Arm(req.Id, 0, slaDuration(first))
	e.notifier.Notify([]string{first.EffectiveRole()}, fmt.Sprintf("approval request %s (%s) awaits %s", req.Id, req.Type, first.EffectiveRole()))
	logger.Info("request submitted", zap.String("requestId", req.Id), zap.String("type", reqType), zap.Int("steps", len(steps)))
	return req, nil
}

// Act applies an approve/reject decision to the active step. Preconditions
// are checked in order: request exists, request pending, active step exists,
// role matches the step's effective role, action permitted at the step. The
// SLA timer is cancelled before any state mutation.
func (e *Engine) Act(id string, actor string, role string, action string, comment string) (*model.Request, error) {
	lock := e.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	req, err := e.load(id)
	if err != nil {
		return nil, err
	}
	if req.Status != model.STATUS_PENDING {
		return nil, InvalidStateError{Id: id, Reason: fmt.Sprintf("already %s", req.Status)}
	}
	step := req.CurrentStep()
	if step == nil {
		return nil, InvalidStateError{Id: id, Reason: "no active step"}
	}
	if !strings.EqualFold(role, step.EffectiveRole()) {
		return nil, ForbiddenError{Role: role, Expected: step.EffectiveRole()}
	}
	if !step.AllowsAction(action) {
		return nil, InvalidActionError{Action: action, StepId: step.StepId}
	}

	e.scheduler.Cancel(id)
	req.History = append(req.History, model.HistoryEntry{
		At:      time.Now(),
		Actor:   actor,
		Role:    role,
		Action:  strings.ToUpper(action),
		StepId:  step.StepId,
		Comment: comment,
	})
	if e.decisions != nil {
		e.decisions.RecordAction(id, step.StepId, actor, role, strings.ToUpper(action))
	}

	if strings.EqualFold(action, ACTION_REJECT) {
		req.Status = model.STATUS_REJECTED
		if err := e.store.Save(req); err != nil {
			return nil, err
		}
		e.finishTerminal(req)
		e.notifier.Notify([]string{req.CreatedBy, step.EffectiveRole()}, fmt.Sprintf("approval request %s rejected at step %s", req.Id, step.StepId))
		return req, nil
	}

	if req.IsLastStep() {
		req.Status = model.STATUS_APPROVED
		if err := e.store.Save(req); err != nil {
			return nil, err
		}
		e.finishTerminal(req)
		e.notifier.Notify([]string{req.CreatedBy}, fmt.Sprintf("approval request %s approved", req.Id))
		return req, nil
	}

	req.CurrentStepIndex++
	next := req.Steps[req.CurrentStepIndex]
	if err := e.store.Save(req); err != nil {
		return nil, err
	}
	e.scheduler.Arm(req.Id, req.CurrentStepIndex, slaDuration(next))
	e.notifier.Notify([]string{next.EffectiveRole()}, fmt.Sprintf("approval request %s (%s) awaits %s", req.Id, req.Type, next.EffectiveRole()))
	logger.Info("request advanced", zap.String("requestId", req.Id), zap.String("stepId", next.StepId))
	return req, nil
}

// HandleTimeout is invoked by the scheduler when a step's SLA elapses.
// A firing whose request is no longer pending, or whose guarded step index
// has moved on, is stale and discarded. Escalation reassigns the expected
// role for the same step; the pipeline never advances on timeout, and a step
// escalates at most once.
func (e *Engine) HandleTimeout(id string, stepIndex int) {
	lock := e.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	req, err := e.load(id)
	if err != nil {
		logger.Debug("discarding timeout for unknown request", zap.String("requestId", id))
		return
	}
	if req.Status != model.STATUS_PENDING || req.CurrentStepIndex != stepIndex {
		logger.Debug("discarding stale sla timeout", zap.String("requestId", id), zap.Int("stepIndex", stepIndex))
		return
	}
	step := req.Steps[stepIndex]
	now := time.Now()
	req.History = append(req.History, model.HistoryEntry{
		At:     now,
		Actor:  "system",
		Action: "SLA_TIMEOUT",
		StepId: step.StepId,
		Detail: fmt.Sprintf("step %s exceeded %v hour SLA", step.StepId, step.SlaHours),
	})
	if step.EscalateTo != "" && step.EscalatedTo == "" {
		step.EscalatedTo = step.EscalateTo
		req.History = append(req.History, model.HistoryEntry{
			At:     now,
			Actor:  "system",
			Role:   step.EscalatedTo,
			Action: "ESCALATE",
			StepId: step.StepId,
			Detail: fmt.Sprintf("escalated to %s", step.EscalatedTo),
		})
		if e.decisions != nil {
			e.decisions.RecordEscalation(id, step.StepId, step.EscalatedTo)
		}
		e.notifier.Notify([]string{step.EscalatedTo}, fmt.Sprintf("approval request %s escalated to %s at step %s", req.Id, step.EscalatedTo, step.StepId))
		logger.Info("request escalated", zap.String("requestId", id), zap.String("stepId", step.StepId), zap.String("role", step.EscalatedTo))
	}
	if err := e.store.Save(req); err != nil {
		logger.Error("error saving request after sla timeout", zap.String("requestId", id), zap.Error(err))
	}
}

func (e *Engine) Get(id string) (*model.Request, error) {
	return e.load(id)
}

func (e *Engine) List(filter store.Filter) ([]*model.Request, error) {
	return e.store.List(filter)
}

func (e *Engine) ReloadDefinition() (*model.FlowDefinition, error) {
	return e.definitions.Reload()
}

func (e *Engine) CurrentDefinition() *model.FlowDefinition {
	return e.definitions.Current()
}

func (e *Engine) load(id string) (*model.Request, error) {
	req, err := e.store.Get(id)
	if err != nil {
		var notFound store.NotFoundError
		if errors.As(err, &notFound) {
			return nil, NotFoundError{Id: id}
		}
		return nil, err
	}
	return req, nil
}

func (e *Engine) lockFor(id string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[id] = lock
	}
	return lock
}

// finishTerminal releases the per-request lock entry and records the terminal
// transition. Any straggler holding the old lock still serializes correctly;
// it will observe the terminal status and fail the pending check.
func (e *Engine) finishTerminal(req *model.Request) {
	e.mu.Lock()
	delete(e.locks, req.Id)
	e.mu.Unlock()
	if e.decisions != nil {
		e.decisions.RecordTerminal(req.Id, req.Status)
	}
	logger.Info("request finished", zap.String("requestId", req.Id), zap.String("status", string(req.Status)))
}

func slaDuration(step *model.Step) time.Duration {
	return time.Duration(step.SlaHours * float64(time.Hour))
}
