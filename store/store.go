package store

import (
	"fmt"

	"github.com/approvd/approvd/model"
)

// RequestStore is an addressable container of request aggregates keyed by id.
// It does not interpret aggregate contents; serializing mutations of a single
// request is the engine's responsibility.
type RequestStore interface {
	Create(req *model.Request) error
	Save(req *model.Request) error
	Get(id string) (*model.Request, error)
	List(filter Filter) ([]*model.Request, error)
}

type Filter struct {
	Status    model.RequestStatus
	CreatedBy string
}

func (f Filter) Matches(req *model.Request) bool {
	if f.Status != "" && req.Status != f.Status {
		return false
	}
	if f.CreatedBy != "" && req.CreatedBy != f.CreatedBy {
		return false
	}
	return true
}

type NotFoundError struct {
	Id string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("request %s not found", e.Id)
}

type DuplicateIdError struct {
	Id string
}

func (e DuplicateIdError) Error() string {
	return fmt.Sprintf("request %s already exists", e.Id)
}

type StorageLayerError struct {
	Message string
}

func (e StorageLayerError) Error() string {
	return fmt.Sprintf("storage layer error %s", e.Message)
}
