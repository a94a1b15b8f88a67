// Package api exposes the planning pipeline over HTTP. The endpoints are
// read-modeled on the CLI: a plan request carries the ingredient list inline
// and returns the same result document the plan command renders.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/basketwise/basket-cli/internal/catalog"
	"github.com/basketwise/basket-cli/internal/engine"
	"github.com/basketwise/basket-cli/internal/model"
	"github.com/basketwise/basket-cli/internal/planner"
	"github.com/basketwise/basket-cli/internal/store"
)

// Server wires the decision engine and run store into an HTTP handler.
type Server struct {
	snapshot      *catalog.Snapshot
	vendors       []model.Vendor
	engine        *engine.Engine
	store         store.Store
	primaryVendor string
}

// New constructs a Server. The store may be nil, in which case the runs
// endpoints return 404 and plan results are not persisted.
func New(snapshot *catalog.Snapshot, vendors []model.Vendor, eng *engine.Engine, s store.Store, primaryVendor string) *Server {
	return &Server{
		snapshot:      snapshot,
		vendors:       vendors,
		engine:        eng,
		store:         s,
		primaryVendor: primaryVendor,
	}
}

// Handler builds the chi router for the API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/plan", s.handlePlan)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{runID}", s.handleGetRun)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// PlanRequest is the POST /v1/plan body.
type PlanRequest struct {
	Ingredients []model.Ingredient `json:"ingredients"`
	Vendors     []string           `json:"vendors,omitempty"` // scope; empty means all
	Trace       bool               `json:"trace,omitempty"`
	Save        bool               `json:"save,omitempty"`
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if len(req.Ingredients) == 0 {
		writeError(w, http.StatusBadRequest, "ingredients must not be empty")
		return
	}

	var pool engine.Pool = s.snapshot
	if len(req.Vendors) > 0 {
		pool = s.snapshot.Scoped(req.Vendors)
	}

	out, err := s.engine.Run(r.Context(), req.Ingredients, pool)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		zap.L().Error("api: plan run failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "plan run failed")
		return
	}

	result := planner.BuildResult(uuid.NewString(), out, s.vendors, s.primaryVendor, req.Trace)

	if req.Save && s.store != nil {
		run, err := store.NewStoredRun(result)
		if err == nil {
			err = s.store.SaveRun(r.Context(), run)
		}
		if err != nil {
			zap.L().Error("api: save run failed", zap.String("run_id", result.RunID), zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "run store not configured")
		return
	}

	filter := store.RunFilter{}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		filter.Limit = n
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return
		}
		filter.Offset = n
	}

	summaries, err := s.store.ListRuns(r.Context(), filter)
	if err != nil {
		zap.L().Error("api: list runs failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list runs failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": summaries})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "run store not configured")
		return
	}

	runID := chi.URLParam(r, "runID")
	raw, err := s.store.GetRun(r.Context(), runID)
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		zap.L().Error("api: get run failed", zap.String("run_id", runID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "get run failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
