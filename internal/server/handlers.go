package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tablewarden/tablewarden/pkg/errors"
	"github.com/tablewarden/tablewarden/pkg/logging"
)

// SheetStatus is one snapshot sheet's row count.
type SheetStatus struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
}

// SourceStatus is the dashboard view of one source.
type SourceStatus struct {
	Name        string        `json:"name"`
	URL         string        `json:"url,omitempty"`
	Schedule    string        `json:"schedule,omitempty"`
	LastUpdated *time.Time    `json:"last_updated,omitempty"`
	Checksum    string        `json:"checksum,omitempty"`
	HasArtifact bool          `json:"has_artifact"`
	Sheets      []SheetStatus `json:"sheets,omitempty"`
}

// Status is the full dashboard payload.
type Status struct {
	Running bool           `json:"running"`
	Sources []SourceStatus `json:"sources"`
}

func (s *Server) status() Status {
	cfg := s.client.Config()
	entries := s.client.Registry().Load()

	st := Status{Running: s.client.Running(), Sources: make([]SourceStatus, 0, len(cfg.Sources))}
	for _, src := range cfg.Sources {
		status := SourceStatus{
			Name:        src.Name,
			URL:         src.URL,
			Schedule:    src.Schedule,
			HasArtifact: s.client.Artifacts().Exists(src.Name),
		}
		if entry, ok := entries[src.Name]; ok {
			t := entry.LastUpdated
			status.LastUpdated = &t
			status.Checksum = entry.Checksum
		}
		sheets, err := s.client.Snapshots().List(src.Name)
		if err == nil {
			for _, sheet := range sheets {
				rows := 0
				if table, err := s.client.Snapshots().Read(src.Name, sheet); err == nil && table != nil {
					rows = table.Len()
				}
				status.Sheets = append(status.Sheets, SheetStatus{Name: sheet, Rows: rows})
			}
		}
		st.Sources = append(st.Sources, status)
	}
	return st
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.status())
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.client.Config().Sources)
}

// handleRun kicks off a batch run in the background. The run outlives
// the request; progress is visible through /api/status.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.client.Running() {
		writeError(w, http.StatusConflict, "a run is already in progress")
		return
	}

	go func() {
		result, err := s.client.Run(context.Background())
		if err != nil {
			logging.Err(err).Msg("dashboard-triggered run failed")
			return
		}
		logging.Info().
			Str("run_id", result.RunID).
			Int("new_rows", result.NewRows()).
			Msg("dashboard-triggered run finished")
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	source := chi.URLParam(r, "source")

	err := s.client.Restore(r.Context(), source)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "restored", "source": source})
	case errors.IsNotFound(err):
		writeError(w, http.StatusNotFound, "no snapshots for source "+source)
	case errors.IsInProgress(err):
		writeError(w, http.StatusConflict, "source "+source+" is being reconciled")
	default:
		logging.Err(err).Str("source", source).Msg("restore failed")
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Err(err).Msg("cannot encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
