package rest

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/approvd/approvd/logger"
	"github.com/approvd/approvd/model"
)

func (s *Server) HandleGetDefinition(w http.ResponseWriter, r *http.Request) {
	def := s.engine.CurrentDefinition()
	if def == nil {
		respondWithError(w, http.StatusNotFound, "no flow definition loaded")
		return
	}
	respondWithJSON(w, http.StatusOK, def)
}

func (s *Server) HandleReloadDefinition(w http.ResponseWriter, r *http.Request) {
	def, err := s.engine.ReloadDefinition()
	if err != nil {
		logger.Error("error reloading flow definition", zap.Error(err))
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, model.ReloadResponse{FlowId: def.FlowId, StepCount: len(def.Steps)})
}
