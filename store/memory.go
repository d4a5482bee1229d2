package store

import (
	"sync"
	"time"

	"github.com/approvd/approvd/logger"
	"github.com/approvd/approvd/model"
	c "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// InMemoryStore keeps live aggregates in a map. Terminal aggregates are
// tracked in a retention cache whose eviction drops them from the map, so
// finished requests stay retrievable for the configured retention and are
// collected afterwards. Zero retention keeps them forever.
type InMemoryStore struct {
	mu        sync.RWMutex
	requests  map[string]*model.Request
	retention *c.Cache
}

var _ RequestStore = new(InMemoryStore)

func NewInMemoryStore(retention time.Duration) *InMemoryStore {
	cleanup := retention / 2
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	return newInMemoryStore(retention, cleanup)
}

func newInMemoryStore(retention time.Duration, cleanup time.Duration) *InMemoryStore {
	s := &InMemoryStore{
		requests: make(map[string]*model.Request),
	}
	if retention > 0 {
		s.retention = c.New(retention, cleanup)
		s.retention.OnEvicted(func(id string, _ any) {
			s.mu.Lock()
			delete(s.requests, id)
			s.mu.Unlock()
			logger.Debug("request collected after retention", zap.String("requestId", id))
		})
	}
	return s
}

func (s *InMemoryStore) Create(req *model.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[req.Id]; ok {
		return DuplicateIdError{Id: req.Id}
	}
	s.requests[req.Id] = req
	return nil
}

func (s *InMemoryStore) Save(req *model.Request) error {
	s.mu.Lock()
	s.requests[req.Id] = req
	s.mu.Unlock()
	if s.retention != nil && req.Status.IsTerminal() {
		s.retention.Set(req.Id, struct{}{}, c.DefaultExpiration)
	}
	return nil
}

func (s *InMemoryStore) Get(id string) (*model.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[id]
	if !ok {
		return nil, NotFoundError{Id: id}
	}
	return req, nil
}

func (s *InMemoryStore) List(filter Filter) ([]*model.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*model.Request, 0)
	for _, req := range s.requests {
		if filter.Matches(req) {
			result = append(result, req)
		}
	}
	return result, nil
}
