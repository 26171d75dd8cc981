package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/couchcryptid/collection-climate-etl/internal/domain"
	"github.com/couchcryptid/collection-climate-etl/internal/materials"
	"github.com/couchcryptid/collection-climate-etl/internal/psychro"
	"github.com/couchcryptid/collection-climate-etl/internal/risk"
)

// solveRequest carries the same quantities and ranges as a sensor reading.
type solveRequest struct {
	Temperature      *float64 `json:"temperature" validate:"omitempty,gte=-40,lte=120"`
	RelativeHumidity *float64 `json:"relative_humidity" validate:"omitempty,gte=0,lte=100"`
	DewPoint         *float64 `json:"dew_point" validate:"omitempty,gte=-40,lte=100"`
	AbsoluteHumidity *float64 `json:"absolute_humidity" validate:"omitempty,gte=0,lte=100"`
}

func (r solveRequest) input() psychro.Input {
	return psychro.Input{
		Temperature:      r.Temperature,
		RelativeHumidity: r.RelativeHumidity,
		DewPoint:         r.DewPoint,
		AbsoluteHumidity: r.AbsoluteHumidity,
	}
}

type solveResponse struct {
	State      psychro.State  `json:"state"`
	Pair       psychro.Pair   `json:"pair"`
	Method     psychro.Method `json:"method"`
	Iterations int            `json:"iterations"`
	Converged  bool           `json:"converged"`
	Error      string         `json:"error,omitempty"`
}

type errorResponse struct {
	Error  string              `json:"error"`
	Fields []domain.FieldError `json:"fields,omitempty"`
}

type profileResponse struct {
	*materials.Profile
	// Fallback is set when the requested key is unknown and the general
	// profile was returned in its place.
	Fallback bool              `json:"fallback,omitempty"`
	Palette  map[string]string `json:"palette,omitempty"`
}

func (s *Server) handleListProfiles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"profiles": s.api.Profiles.Profiles()})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	p := s.api.Profiles.Lookup(key)

	palette := make(map[string]string, len(risk.ColorClasses()))
	for _, c := range risk.ColorClasses() {
		palette[string(c)] = c.Hex()
	}
	writeJSON(w, http.StatusOK, profileResponse{Profile: p, Fallback: p.Key != key, Palette: palette})
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req solveRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := domain.Validate(req); err != nil {
		s.writeError(w, err)
		return
	}

	sol, err := s.api.Solver.Solve(req.input())
	resp := solveResponse{
		State:      sol.State.Rounded(),
		Pair:       sol.Pair,
		Method:     sol.Method,
		Iterations: sol.Iterations,
		Converged:  sol.Converged,
	}

	var cerr *psychro.ConvergenceError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, resp)
	case errors.As(err, &cerr):
		resp.Error = err.Error()
		writeJSON(w, http.StatusUnprocessableEntity, resp)
	default:
		s.writeError(w, err)
	}
}

func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	reading, err := domain.ParseRawEvent(domain.RawEvent{Value: body, Timestamp: domain.Now()})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	assessment, err := s.api.Assessor.Assess(reading)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, assessment)
	case errors.Is(err, psychro.ErrConvergenceFailure):
		writeJSON(w, http.StatusUnprocessableEntity, assessment)
	default:
		s.writeError(w, err)
	}
}

// writeError maps domain and solver errors to a status code.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Fields: verr.Fields})
	case errors.Is(err, psychro.ErrInsufficientInputs):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, psychro.ErrDomain):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	default:
		s.logger.Error("api request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body, ok := s.readBody(w, r)
	if !ok {
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed JSON body: " + err.Error()})
		return false
	}
	return true
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	var raw json.RawMessage
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&raw); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed JSON body: " + err.Error()})
		return nil, false
	}
	return raw, true
}
