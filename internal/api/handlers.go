package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/user/audio-harvester/internal/crawler"
	"github.com/user/audio-harvester/internal/domain"
)

// HarvestRequest is the body of POST /api/harvest. Count defaults to the
// configured LINK_COUNT when omitted.
type HarvestRequest struct {
	URL    string `json:"url"`
	Count  *int   `json:"count,omitempty"`
	Render bool   `json:"render"`
}

// HarvestResponse is the report of one run.
type HarvestResponse struct {
	RunID        string                   `json:"run_id"`
	PageURL      string                   `json:"page_url"`
	Links        []domain.MediaLink       `json:"links"`
	Outcomes     []domain.DownloadOutcome `json:"outcomes"`
	ExtractError string                   `json:"extract_error,omitempty"`
	Succeeded    int                      `json:"succeeded"`
	Failed       int                      `json:"failed"`
	Skipped      int                      `json:"skipped"`
	BytesWritten int64                    `json:"bytes_written"`
	StartedAt    time.Time                `json:"started_at"`
	FinishedAt   time.Time                `json:"finished_at"`
}

func newHarvestResponse(r *domain.HarvestReport) HarvestResponse {
	resp := HarvestResponse{
		RunID:        r.RunID,
		PageURL:      r.PageURL,
		Links:        r.Links,
		Outcomes:     r.Outcomes,
		Succeeded:    r.Succeeded(),
		Failed:       r.Failed(),
		Skipped:      r.Skipped(),
		BytesWritten: r.BytesWritten(),
		StartedAt:    r.StartedAt,
		FinishedAt:   r.FinishedAt,
	}
	if resp.Links == nil {
		resp.Links = []domain.MediaLink{}
	}
	if resp.Outcomes == nil {
		resp.Outcomes = []domain.DownloadOutcome{}
	}
	if r.ExtractErr != nil {
		resp.ExtractError = r.ExtractErr.Error()
	}
	return resp
}

func (s *Server) handleHarvestRequest(w http.ResponseWriter, r *http.Request) {
	var req HarvestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		s.respondWithError(w, http.StatusBadRequest, "url is required")
		return
	}

	runner := s.plain
	if req.Render {
		if s.rendered == nil {
			s.respondWithError(w, http.StatusBadRequest, "page rendering is not enabled")
			return
		}
		runner = s.rendered
	}

	count := s.config.LinkCount
	if req.Count != nil {
		count = *req.Count
	}

	report, err := runner.Run(r.Context(), req.URL, count)
	switch {
	case errors.Is(err, crawler.ErrInvalidPageURL), errors.Is(err, crawler.ErrInvalidCount):
		s.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.logger.Error("harvest failed", zap.String("url", req.URL), zap.Error(err))
		s.respondWithError(w, http.StatusInternalServerError, "harvest failed")
		return
	}

	s.respondWithJSON(w, http.StatusOK, newHarvestResponse(report))
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]string{"error": message})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
		code = http.StatusInternalServerError
		response = []byte(`{"error":"internal error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
