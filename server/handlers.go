package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gaurav-prasanna/briefpipe/core"
	"github.com/gaurav-prasanna/briefpipe/core/pipeline"
	"github.com/gaurav-prasanna/briefpipe/store"
)

// errorResponse is the structured error body for non-2xx responses.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req core.RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.URL == "" || req.PageType == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "url and page_type are required")
		return
	}

	start := time.Now()
	result, err := s.runner.Run(r.Context(), req)
	if err != nil {
		runsTotal.WithLabelValues(req.PageType, "failure").Inc()
		s.writeRunError(w, err)
		return
	}
	runsTotal.WithLabelValues(req.PageType, "success").Inc()
	runDuration.WithLabelValues(req.PageType).Observe(time.Since(start).Seconds())

	writeJSON(w, http.StatusOK, result)
}

// writeRunError maps a fatal run error onto the API error shape.
func (s *Server) writeRunError(w http.ResponseWriter, err error) {
	var fetchErr *core.FetchError
	var modelErr *core.ModelError

	switch {
	case errors.Is(err, pipeline.ErrUnknownPageType):
		writeError(w, http.StatusBadRequest, "unknown_page_type", err.Error())
	case errors.As(err, &fetchErr):
		// The root source could not be accessed.
		writeError(w, http.StatusBadGateway, "source_unreachable", err.Error())
	case errors.As(err, &modelErr):
		writeError(w, http.StatusServiceUnavailable, "model_unavailable", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}

func (s *Server) handleCreateBriefing(w http.ResponseWriter, r *http.Request) {
	var b store.Briefing
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if b.Name == "" || b.SeedURL == "" || b.PageType == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "name, seed_url, and page_type are required")
		return
	}

	if err := s.store.CreateBriefing(r.Context(), &b); err != nil {
		s.log.Error().Err(err).Msg("creating briefing")
		writeError(w, http.StatusInternalServerError, "internal", "could not create briefing")
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) handleListBriefings(w http.ResponseWriter, r *http.Request) {
	briefings, err := s.store.ListBriefings(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("listing briefings")
		writeError(w, http.StatusInternalServerError, "internal", "could not list briefings")
		return
	}
	if briefings == nil {
		briefings = []store.Briefing{}
	}
	writeJSON(w, http.StatusOK, briefings)
}

func (s *Server) handleGetBriefing(w http.ResponseWriter, r *http.Request) {
	b, err := s.store.GetBriefing(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "briefing not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "could not load briefing")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleDeleteBriefing(w http.ResponseWriter, r *http.Request) {
	err := s.store.DeleteBriefing(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "briefing not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "could not delete briefing")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRunBriefing executes a stored briefing and persists the run.
func (s *Server) handleRunBriefing(w http.ResponseWriter, r *http.Request) {
	b, err := s.store.GetBriefing(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "briefing not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "could not load briefing")
		return
	}

	run := store.Run{BriefingID: b.ID, StartedAt: time.Now().UTC()}
	result, runErr := s.runner.Run(r.Context(), b.RunRequest())
	run.FinishedAt = time.Now().UTC()

	if runErr != nil {
		runsTotal.WithLabelValues(b.PageType, "failure").Inc()
		run.Status = "failed"
		run.Error = runErr.Error()
	} else {
		runsTotal.WithLabelValues(b.PageType, "success").Inc()
		run.Status = "succeeded"
		run.Result = result
	}

	// The save must outlive the request: a client disconnecting right
	// after a long run would otherwise cancel it and lose the record.
	if err := s.store.SaveRun(context.WithoutCancel(r.Context()), &run); err != nil {
		s.log.Error().Err(err).Str("briefing_id", b.ID).Msg("persisting run")
	}

	if runErr != nil {
		s.writeRunError(w, runErr)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.ListRuns(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "could not list runs")
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var c store.Campaign
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if c.Name == "" || c.Schedule == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "name and schedule are required")
		return
	}

	if err := s.store.CreateCampaign(r.Context(), &c); err != nil {
		s.log.Error().Err(err).Msg("creating campaign")
		writeError(w, http.StatusInternalServerError, "internal", "could not create campaign")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := s.store.ListCampaigns(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "could not list campaigns")
		return
	}
	if campaigns == nil {
		campaigns = []store.Campaign{}
	}
	writeJSON(w, http.StatusOK, campaigns)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}
