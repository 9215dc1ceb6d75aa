// Package server exposes the dashboard JSON API over chi.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/convoeval/internal/analytics"
	"github.com/sells-group/convoeval/internal/evaluator"
	"github.com/sells-group/convoeval/internal/model"
	"github.com/sells-group/convoeval/internal/store"
	"github.com/sells-group/convoeval/internal/upload"
)

// maxUploadBytes bounds multipart CSV uploads.
const maxUploadBytes = 16 << 20

// Server wires the evaluation pipeline behind the dashboard API.
type Server struct {
	store        store.Store
	processor    *evaluator.Processor
	analyzer     *analytics.Analyzer
	batchTimeout time.Duration
}

// New creates a server. batchTimeout bounds the whole-batch evaluate
// endpoint.
func New(st store.Store, processor *evaluator.Processor, analyzer *analytics.Analyzer, batchTimeout time.Duration) *Server {
	if batchTimeout <= 0 {
		batchTimeout = 120 * time.Second
	}
	return &Server{
		store:        st,
		processor:    processor,
		analyzer:     analyzer,
		batchTimeout: batchTimeout,
	}
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/evaluations", s.handleListEvaluations)
		r.Get("/evaluations/{id}", s.handleGetEvaluation)
		r.Post("/evaluate", s.handleEvaluate)
		r.Get("/stats", s.handleStats)
		r.Post("/analytics/trigger", s.handleAnalyticsTrigger)
		r.Get("/analytics/results", s.handleAnalyticsLatest)
		r.Get("/analytics/results/{id}", s.handleAnalyticsGet)
		r.Get("/analytics/history", s.handleAnalyticsHistory)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListEvaluations(w http.ResponseWriter, r *http.Request) {
	results, err := s.store.ListEvaluations(r.Context())
	if err != nil {
		serverError(w, "list evaluations", err)
		return
	}
	if results == nil {
		results = []model.EvaluationResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleGetEvaluation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result, err := s.store.GetEvaluation(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		notFound(w, fmt.Sprintf("evaluation %s not found", id))
		return
	}
	if err != nil {
		serverError(w, "get evaluation", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		badRequest(w, "invalid multipart form")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		badRequest(w, "missing file field")
		return
	}
	defer file.Close()

	convs, err := upload.ParseCSV(file)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.batchTimeout)
	defer cancel()

	report := s.processor.Run(ctx, convs)
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	results, err := s.store.ListEvaluations(r.Context())
	if err != nil {
		serverError(w, "list evaluations", err)
		return
	}
	writeJSON(w, http.StatusOK, analytics.ComputeStats(results))
}

func (s *Server) handleAnalyticsTrigger(w http.ResponseWriter, r *http.Request) {
	// Analysis runs over the signal population derived from stored
	// evaluations' conversations; the request body optionally carries
	// fresh conversations as JSON.
	var convs []model.Conversation
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&convs); err != nil {
			badRequest(w, "invalid request body")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.batchTimeout)
	defer cancel()

	result, err := s.analyzer.Run(ctx, convs)
	if err != nil {
		serverError(w, "run analysis", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAnalyticsLatest(w http.ResponseWriter, r *http.Request) {
	result, err := s.store.LatestAnalysis(r.Context())
	if errors.Is(err, store.ErrNotFound) {
		notFound(w, "no analysis results available")
		return
	}
	if err != nil {
		serverError(w, "latest analysis", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAnalyticsGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result, err := s.store.GetAnalysis(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		notFound(w, fmt.Sprintf("analysis %s not found", id))
		return
	}
	if err != nil {
		serverError(w, "get analysis", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAnalyticsHistory(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.store.ListAnalyses(r.Context())
	if err != nil {
		serverError(w, "list analyses", err)
		return
	}
	if summaries == nil {
		summaries = []model.AnalysisSummary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func notFound(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": msg})
}

func serverError(w http.ResponseWriter, operation string, err error) {
	zap.L().Error("request failed", zap.String("operation", operation), zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}
