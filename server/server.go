/*
Copyright 2025 CareSignal, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package server exposes the evaluation service over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/caresignal/turneval/evaluator"
	"github.com/caresignal/turneval/evaluator/judge"
	"github.com/chainguard-dev/clog"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// Server routes evaluation requests to a batch service.
type Server struct {
	svc    *evaluator.Service
	router *mux.Router
}

// New builds the HTTP surface around a batch service. The service may be
// degraded; health still answers and evaluation requests fail with 500.
func New(svc *evaluator.Service) *Server {
	s := &Server{
		svc:    svc,
		router: mux.NewRouter(),
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Length", "Content-Type"},
	})
	s.router.Use(c.Handler)
	s.router.Use(logRequests)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/evaluate", s.handleEvaluate).Methods(http.MethodPost)
	return s
}

// ServeHTTP makes the server mountable as a plain http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type healthResponse struct {
	Status  string `json:"status"`
	KBItems int    `json:"kb_items"`
}

// evaluateRequest is the wire form of a batch: each turn is decoded lazily so
// a malformed turn is reported with its index instead of failing the whole
// body decode.
type evaluateRequest struct {
	Turns []json.RawMessage `json:"turns"`
}

// errorBody is the uniform error envelope. Index is present only for errors
// attributable to a specific turn.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind   string `json:"kind"`
	Index  *int   `json:"index,omitempty"`
	Detail string `json:"detail"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, healthResponse{
		Status:  "ok",
		KBItems: s.svc.KnowledgeBaseItems(),
	})
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req evaluateRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(ctx, w, http.StatusBadRequest, errorDetail{
			Kind:   "bad_request",
			Detail: "request body must be a JSON object with a turns array: " + err.Error(),
		})
		return
	}

	resp, err := s.svc.EvaluateBatch(ctx, req.Turns)
	if err != nil {
		s.writeEvaluationError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, resp)
}

// writeEvaluationError maps the evaluation error taxonomy onto status codes:
// malformed turns are the caller's fault (422), provider failures are an
// upstream fault (502), and everything else is a server-side condition (500).
func (s *Server) writeEvaluationError(ctx context.Context, w http.ResponseWriter, err error) {
	var malformed *evaluator.MalformedTurnError
	if errors.As(err, &malformed) {
		writeError(ctx, w, http.StatusUnprocessableEntity, errorDetail{
			Kind:   "malformed_turn",
			Index:  &malformed.Index,
			Detail: malformed.Err.Error(),
		})
		return
	}

	var batchErr *evaluator.BatchInvocationError
	if errors.As(err, &batchErr) {
		detail := batchErr.Err.Error()
		var invErr *judge.InvocationError
		if errors.As(batchErr.Err, &invErr) {
			detail = invErr.Error()
		}
		writeError(ctx, w, http.StatusBadGateway, errorDetail{
			Kind:   "provider_invocation",
			Index:  &batchErr.Index,
			Detail: detail,
		})
		return
	}

	if errors.Is(err, evaluator.ErrKnowledgeBaseUnavailable) {
		writeError(ctx, w, http.StatusInternalServerError, errorDetail{
			Kind:   "knowledge_base_unavailable",
			Detail: err.Error(),
		})
		return
	}

	writeError(ctx, w, http.StatusInternalServerError, errorDetail{
		Kind:   "configuration",
		Detail: err.Error(),
	})
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, detail errorDetail) {
	clog.FromContext(ctx).With("status", status).
		With("kind", detail.Kind).
		With("detail", detail.Detail).
		Warn("Request failed")
	writeJSON(ctx, w, status, errorBody{Error: detail})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		clog.FromContext(ctx).With("error", err).Error("Failed to encode response")
	}
}

// logRequests emits one clog line per request.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		clog.FromContext(r.Context()).
			With("method", r.Method).
			With("path", r.URL.Path).
			With("duration", time.Since(start)).
			Debug("Handled request")
	})
}
