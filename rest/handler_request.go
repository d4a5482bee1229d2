package rest

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/approvd/approvd/logger"
	"github.com/approvd/approvd/model"
	"github.com/approvd/approvd/store"
)

func (s *Server) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var submitReq model.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&submitReq); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	defer r.Body.Close()
	req, err := s.engine.Submit(submitReq.Type, submitReq.CreatedBy, submitReq.Payload)
	if err != nil {
		logger.Error("error submitting request", zap.String("type", submitReq.Type), zap.Error(err))
		respondEngineError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, stateResponse(req))
}

func (s *Server) HandleAct(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	var actionReq model.ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&actionReq); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	defer r.Body.Close()
	req, err := s.engine.Act(id, actionReq.Actor, actionReq.Role, actionReq.Action, actionReq.Comment)
	if err != nil {
		logger.Error("error applying action", zap.String("requestId", id), zap.String("action", actionReq.Action), zap.Error(err))
		respondEngineError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, stateResponse(req))
}

func (s *Server) HandleGet(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	req, err := s.engine.Get(vars["id"])
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, req)
}

func (s *Server) HandleList(w http.ResponseWriter, r *http.Request) {
	filter := store.Filter{
		Status:    model.RequestStatus(r.URL.Query().Get("status")),
		CreatedBy: r.URL.Query().Get("createdBy"),
	}
	requests, err := s.engine.List(filter)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, requests)
}

func stateResponse(req *model.Request) model.RequestStateResponse {
	resp := model.RequestStateResponse{
		Id:     req.Id,
		Status: req.Status,
	}
	if step := req.CurrentStep(); step != nil {
		resp.CurrentStep = step.StepId
	}
	return resp
}
