package definition

import (
	"sync"

	"github.com/approvd/approvd/logger"
	"github.com/approvd/approvd/model"
	"go.uber.org/zap"
)

// Service holds the definition in force. Reload swaps it for subsequent
// submissions only; requests already submitted keep their materialized steps.
type Service struct {
	source  Source
	mu      sync.RWMutex
	current *model.FlowDefinition
}

func NewService(source Source) *Service {
	return &Service{source: source}
}

func (s *Service) Current() *model.FlowDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Service) Reload() (*model.FlowDefinition, error) {
	def, err := s.source.Load()
	if err != nil {
		logger.Error("error loading flow definition", zap.Error(err))
		return nil, err
	}
	s.mu.Lock()
	s.current = def
	s.mu.Unlock()
	logger.Info("flow definition loaded", zap.String("flowId", def.FlowId), zap.Int("steps", len(def.Steps)))
	return def, nil
}
