package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/algopool-labs/staking-pool-engine/internal/observability/tracing"
	"github.com/algopool-labs/staking-pool-engine/internal/types"
)

type dataResponse struct {
	Data any `json:"data"`
}

type errorResponse struct {
	ErrorCode string `json:"errorCode"`
	Message   string `json:"message"`
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, "ok")
}

func (s *Server) listPools(w http.ResponseWriter, r *http.Request) {
	ctx := tracing.InjectTraceID(r.Context())
	pools, err := s.service.GetPools(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, pools)
}

func (s *Server) getPool(w http.ResponseWriter, r *http.Request) {
	ctx := tracing.InjectTraceID(r.Context())
	pool, err := s.service.GetPool(ctx, chi.URLParam(r, "poolID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, pool)
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	ctx := tracing.InjectTraceID(r.Context())
	account, err := s.service.GetAccount(
		ctx, chi.URLParam(r, "poolID"), chi.URLParam(r, "address"),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, account)
}

func (s *Server) submitOperation(w http.ResponseWriter, r *http.Request) {
	ctx := tracing.InjectTraceID(r.Context())

	var op types.Operation
	if err := json.NewDecoder(r.Body).Decode(&op); err != nil {
		writeError(w, types.NewValidationFailedError(err))
		return
	}
	if op.Caller == "" {
		writeError(w, types.NewErrorWithMsg(
			http.StatusBadRequest, types.ValidationError, "caller is required",
		))
		return
	}

	result, serviceErr := s.service.ProcessOperation(ctx, &op)
	if serviceErr != nil {
		writeError(w, serviceErr)
		return
	}
	writeData(w, http.StatusOK, result)
}

func writeData(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(dataResponse{Data: data}); err != nil {
		log.Error().Err(err).Msg("failed to encode api response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	var serviceErr *types.Error
	if !errors.As(err, &serviceErr) {
		serviceErr = types.NewInternalServiceError(err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(serviceErr.StatusCode)
	if encErr := json.NewEncoder(w).Encode(errorResponse{
		ErrorCode: serviceErr.ErrorCode.String(),
		Message:   serviceErr.Error(),
	}); encErr != nil {
		log.Error().Err(encErr).Msg("failed to encode api error response")
	}
}
