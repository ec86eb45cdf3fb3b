package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	crowdgate "github.com/e7canasta/crowd-gate"
	"github.com/e7canasta/crowd-gate/estimator"
)

// ErrOutOfRange is returned for counts above the configured maximum
var ErrOutOfRange = errors.New("crowd count out of range")

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Strategy  string `json:"strategy"`
	VideoPath string `json:"video_path,omitempty"`
	Publisher any    `json:"publisher"`
}

type estimateResponse struct {
	estimator.Result
	Error string `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Strategy:  s.estimates.Strategy(),
		VideoPath: s.estimates.Key(),
		Publisher: s.publisher.Stats(),
	})
}

// handleEvaluation evaluates ?count=N, or the current estimate when count
// is absent, and returns the full report. The report is pushed to the
// publisher only when ?publish=true.
func (s *Server) handleEvaluation(w http.ResponseWriter, r *http.Request) {
	var (
		count   int
		notice  string
		publish bool
	)

	if raw := r.URL.Query().Get("publish"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("publish must be a boolean, got %q", raw))
			return
		}
		publish = parsed
	}

	if raw := r.URL.Query().Get("count"); raw != "" {
		parsed, err := s.parseCount(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		count = parsed
	} else {
		result := s.estimates.Get(r.Context())
		s.metrics.SetEstimate(result.Count)
		count = result.Count
		notice = result.Notice
	}

	eval, err := s.engine.Evaluate(count)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.metrics.ObserveEvaluation(eval)

	report := crowdgate.NewReport(eval, s.now(), s.limits, notice)

	if publish {
		if err := s.publisher.Publish(r.Context(), report); err != nil {
			// the report is still served; publishing is best-effort
			slog.Warn("api: failed to publish report", "error", err, "report_id", report.ID)
		}
	}

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("hour"); raw != "" {
		hour, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %q", crowdgate.ErrInvalidHour, raw))
			return
		}
		mode, err := crowdgate.SelectMode(hour)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, mode)
		return
	}
	writeJSON(w, http.StatusOK, crowdgate.ModeAt(s.now()))
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	result := s.estimates.Get(r.Context())
	s.metrics.SetEstimate(result.Count)

	resp := estimateResponse{Result: result}
	if result.Err != nil {
		resp.Error = result.Err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	s.estimates.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}

// parseCount parses a user-supplied count and enforces [0, maxCrowd]
func (s *Server) parseCount(raw string) (int, error) {
	count, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", crowdgate.ErrInvalidCrowdCount, raw)
	}
	if count < 0 {
		return 0, fmt.Errorf("%w: %d", crowdgate.ErrInvalidCrowdCount, count)
	}
	if count > s.maxCrowd {
		return 0, fmt.Errorf("%w: %d exceeds maximum %d", ErrOutOfRange, count, s.maxCrowd)
	}
	return count, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("api: failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
