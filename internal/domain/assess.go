package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/couchcryptid/collection-climate-etl/internal/materials"
	"github.com/couchcryptid/collection-climate-etl/internal/psychro"
	"github.com/couchcryptid/collection-climate-etl/internal/risk"
)

// Assessor turns sensor readings into climate assessments: validate, solve
// the missing quantities, score against the material profile.
type Assessor struct {
	solver          psychro.StateSolver
	analyzer        *risk.Analyzer
	defaultMaterial string
}

// NewAssessor builds an Assessor. A nil solver uses the default solver
// options, a nil analyzer uses the embedded profile table, and an empty
// defaultMaterial selects the general profile.
func NewAssessor(solver psychro.StateSolver, analyzer *risk.Analyzer, defaultMaterial string) *Assessor {
	if solver == nil {
		solver = psychro.NewSolver(psychro.DefaultOptions())
	}
	if analyzer == nil {
		analyzer = risk.NewAnalyzer(nil)
	}
	if defaultMaterial == "" {
		defaultMaterial = materials.GeneralKey
	}
	return &Assessor{
		solver:          solver,
		analyzer:        analyzer,
		defaultMaterial: normalizeMaterialType(defaultMaterial),
	}
}

// Assess validates r, solves its psychrometric state and scores it.
//
// When the solver does not converge the assessment is still built from the
// best-effort state with Converged false, and the returned error wraps
// *psychro.ConvergenceError. Any other error returns a zero assessment.
func (a *Assessor) Assess(r SensorReading) (ClimateAssessment, error) {
	if err := ValidateReading(r); err != nil {
		return ClimateAssessment{}, err
	}

	sol, solveErr := a.solver.Solve(r.Input())
	if solveErr != nil && !errors.Is(solveErr, psychro.ErrConvergenceFailure) {
		return ClimateAssessment{}, fmt.Errorf("solve reading %s: %w", r.SensorID, solveErr)
	}

	key := r.MaterialType
	if key == "" {
		key = a.defaultMaterial
	}
	profile := a.analyzer.Table().Lookup(key)

	// Ratings use the unrounded state; only the published copy is rounded.
	decay := risk.Analyze(sol.State.Temperature, sol.State.RelativeHumidity, sol.State.DewPoint, profile)
	axis, worst := decay.Overall()

	out := ClimateAssessment{
		ID:         generateID(r.SensorID, r.ObservedAt, profile.Key),
		SensorID:   r.SensorID,
		Site:       r.Site,
		Material:   Material{Key: profile.Key, Name: profile.Name},
		ObservedAt: r.ObservedAt,
		State:      sol.State.Rounded(),
		Method:     sol.Method,
		Iterations: sol.Iterations,
		Converged:  sol.Converged,
		Risk:       decay,
		Overall: Overall{
			Axis:       axis,
			Score:      worst.Score,
			Rating:     worst.Label,
			ColorClass: worst.ColorClass,
		},
		ProcessedAt: Now(),
	}
	if r.TempSwing != nil || r.RHSwing != nil {
		report := risk.AnalyzeFluctuation(r.TempSwing, r.RHSwing, profile)
		out.Fluctuation = &report
	}

	if solveErr != nil {
		return out, fmt.Errorf("solve reading %s: %w", r.SensorID, solveErr)
	}
	return out, nil
}

// Sink message header names.
const (
	HeaderMaterialType  = "material_type"
	HeaderOverallRating = "overall_rating"
	HeaderProcessedAt   = "processed_at"
)

// SerializeAssessment marshals an assessment for the sink topic. The key is
// the assessment ID; headers carry the material key, the overall colour
// class and the processing time so consumers can route without decoding.
func SerializeAssessment(a ClimateAssessment) (OutputEvent, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize climate assessment: %w", err)
	}
	return OutputEvent{
		Key:   []byte(a.ID),
		Value: data,
		Headers: map[string]string{
			HeaderMaterialType:  a.Material.Key,
			HeaderOverallRating: string(a.Overall.ColorClass),
			HeaderProcessedAt:   a.ProcessedAt.Format(time.RFC3339),
		},
	}, nil
}
