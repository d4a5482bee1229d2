package engine

import "fmt"

type InvalidDefinitionError struct {
	Reason string
}

func (e InvalidDefinitionError) Error() string {
	return fmt.Sprintf("invalid flow definition: %s", e.Reason)
}

type NotFoundError struct {
	Id string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("request %s not found", e.Id)
}

type InvalidStateError struct {
	Id     string
	Reason string
}

func (e InvalidStateError) Error() string {
	return fmt.Sprintf("request %s: %s", e.Id, e.Reason)
}

type ForbiddenError struct {
	Role     string
	Expected string
}

func (e ForbiddenError) Error() string {
	return fmt.Sprintf("role %s can not act on current step, expected %s", e.Role, e.Expected)
}

type InvalidActionError struct {
	Action string
	StepId string
}

func (e InvalidActionError) Error() string {
	return fmt.Sprintf("action %s not permitted at step %s", e.Action, e.StepId)
}
