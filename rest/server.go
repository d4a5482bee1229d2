package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/approvd/approvd/engine"
	"github.com/approvd/approvd/logger"
)

type Server struct {
	http.Server
	Port   int
	engine *engine.Engine
}

func NewServer(httpPort int, eng *engine.Engine) (*Server, error) {
	s := &Server{
		Server: http.Server{
			Addr: fmt.Sprintf(":%d", httpPort),
		},
		Port:   httpPort,
		engine: eng,
	}

	router := mux.NewRouter()
	router.HandleFunc("/requests", s.HandleSubmit).Methods(http.MethodPost)
	router.HandleFunc("/requests", s.HandleList).Methods(http.MethodGet)
	router.HandleFunc("/requests/{id}", s.HandleGet).Methods(http.MethodGet)
	router.HandleFunc("/requests/{id}/actions", s.HandleAct).Methods(http.MethodPost)
	router.HandleFunc("/definition", s.HandleGetDefinition).Methods(http.MethodGet)
	router.HandleFunc("/definition/reload", s.HandleReloadDefinition).Methods(http.MethodPost)
	router.Use(loggingMiddleware)
	s.Handler = router
	return s, nil
}

func (s *Server) Start() error {
	logger.Info("starting http server", zap.Int("port", s.Port))
	if err := s.ListenAndServe(); err != nil {
		return err
	}
	return nil
}

func (s *Server) Stop() error {
	logger.Info("stopping http server")
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := s.Shutdown(ctx)
	if err != nil {
		logger.Error("error shutting down http server")
	}
	return nil
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Info(r.RequestURI)
		next.ServeHTTP(w, r)
	})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondEngineError maps the engine's error taxonomy onto http status codes.
func respondEngineError(w http.ResponseWriter, err error) {
	var notFound engine.NotFoundError
	var invalidState engine.InvalidStateError
	var forbidden engine.ForbiddenError
	var invalidAction engine.InvalidActionError
	var invalidDefinition engine.InvalidDefinitionError
	switch {
	case errors.As(err, &notFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &invalidState):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.As(err, &forbidden):
		respondWithError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &invalidAction):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &invalidDefinition):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, err.Error())
	}
}
