package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/couchcryptid/collection-climate-etl/internal/domain"
	"github.com/couchcryptid/collection-climate-etl/internal/observability"
	"github.com/couchcryptid/collection-climate-etl/internal/psychro"
)

// AssessmentTransformer implements Transformer: parse the reading, assess
// it and serialize the assessment.
type AssessmentTransformer struct {
	assessor *domain.Assessor
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewTransformer creates an AssessmentTransformer.
func NewTransformer(assessor *domain.Assessor, logger *slog.Logger, metrics *observability.Metrics) *AssessmentTransformer {
	return &AssessmentTransformer{
		assessor: assessor,
		logger:   logger,
		metrics:  metrics,
	}
}

// Transform returns an error for readings that cannot be assessed. A solve
// that misses tolerance is not an error here: the best-effort assessment is
// published with converged=false.
func (t *AssessmentTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	reading, err := domain.ParseRawEvent(raw)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	assessment, err := t.assessor.Assess(reading)
	if err != nil {
		var cerr *psychro.ConvergenceError
		if !errors.As(err, &cerr) {
			return domain.OutputEvent{}, err
		}
		t.metrics.ConvergenceFailures.WithLabelValues(string(cerr.Pair)).Inc()
		t.logger.Warn("solver did not converge, publishing best estimate",
			"sensor_id", reading.SensorID,
			"pair", cerr.Pair,
			"iterations", cerr.Iterations,
			"residual", cerr.Residual,
		)
	}

	t.metrics.Solves.WithLabelValues(string(assessment.Method)).Inc()
	t.metrics.Assessments.WithLabelValues(assessment.Material.Key, string(assessment.Overall.ColorClass)).Inc()

	return domain.SerializeAssessment(assessment)
}
