package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/collection-climate-etl/internal/domain"
	"github.com/couchcryptid/collection-climate-etl/internal/observability"
	"github.com/couchcryptid/collection-climate-etl/internal/pipeline"
	"github.com/couchcryptid/collection-climate-etl/internal/psychro"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockExtractor struct {
	batches [][]domain.RawEvent
	errs    []error // consumed before batches
}

func (m *mockExtractor) ExtractBatch(ctx context.Context, _ int) ([]domain.RawEvent, error) {
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		return nil, err
	}
	if len(m.batches) == 0 {
		// block until context cancelled to simulate waiting for messages
		<-ctx.Done()
		return nil, ctx.Err()
	}
	b := m.batches[0]
	m.batches = m.batches[1:]
	return b, nil
}

type mockTransformer struct {
	failKeys map[string]bool
}

func (m *mockTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	if m.failKeys[string(raw.Key)] {
		return domain.OutputEvent{}, errors.New("bad reading")
	}
	return domain.OutputEvent{Key: raw.Key, Value: raw.Value}, nil
}

type mockLoader struct {
	err    error
	calls  int
	loaded []domain.OutputEvent
}

func (m *mockLoader) LoadBatch(_ context.Context, events []domain.OutputEvent) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	m.loaded = append(m.loaded, events...)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// commitTracker records which keys were committed.
type commitTracker struct {
	keys []string
}

func (c *commitTracker) rawEvent(key string) domain.RawEvent {
	return domain.RawEvent{
		Key:   []byte(key),
		Value: []byte(`{"sensor_id":"` + key + `"}`),
		Topic: "environment-readings",
		Commit: func(_ context.Context) error {
			c.keys = append(c.keys, key)
			return nil
		},
	}
}

func runFor(t *testing.T, p *pipeline.Pipeline, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	require.NoError(t, p.Run(ctx))
}

// --- pipeline ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	commits := &commitTracker{}
	ext := &mockExtractor{batches: [][]domain.RawEvent{{commits.rawEvent("a"), commits.rawEvent("b")}}}
	ldr := &mockLoader{}
	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(ext, &mockTransformer{}, ldr, discardLogger(), metrics, 10)

	require.Error(t, p.CheckReadiness(context.Background()))
	runFor(t, p, 200*time.Millisecond)

	assert.Len(t, ldr.loaded, 2)
	assert.Equal(t, []string{"a", "b"}, commits.keys)
	assert.NoError(t, p.CheckReadiness(context.Background()))
	assert.InDelta(t, 2.0, testutil.ToFloat64(metrics.MessagesConsumed), 1e-9)
	assert.InDelta(t, 2.0, testutil.ToFloat64(metrics.MessagesProduced), 1e-9)
	assert.InDelta(t, 0.0, testutil.ToFloat64(metrics.PipelineRunning), 1e-9)
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	ldr := &mockLoader{}
	p := pipeline.New(&mockExtractor{}, &mockTransformer{}, ldr, discardLogger(), observability.NewMetricsForTesting(), 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, p.Run(ctx))
	assert.Zero(t, ldr.calls)
}

func TestPipeline_Run_PoisonMessageSkipped(t *testing.T) {
	commits := &commitTracker{}
	ext := &mockExtractor{batches: [][]domain.RawEvent{{commits.rawEvent("bad"), commits.rawEvent("good")}}}
	tfm := &mockTransformer{failKeys: map[string]bool{"bad": true}}
	ldr := &mockLoader{}
	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(ext, tfm, ldr, discardLogger(), metrics, 10)

	runFor(t, p, 200*time.Millisecond)

	require.Len(t, ldr.loaded, 1)
	assert.Equal(t, []byte("good"), ldr.loaded[0].Key)
	assert.ElementsMatch(t, []string{"bad", "good"}, commits.keys)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.TransformErrors), 1e-9)
}

func TestPipeline_Run_AllTransformsFail(t *testing.T) {
	commits := &commitTracker{}
	ext := &mockExtractor{batches: [][]domain.RawEvent{{commits.rawEvent("x")}}}
	tfm := &mockTransformer{failKeys: map[string]bool{"x": true}}
	ldr := &mockLoader{}
	p := pipeline.New(ext, tfm, ldr, discardLogger(), observability.NewMetricsForTesting(), 10)

	runFor(t, p, 200*time.Millisecond)

	assert.Zero(t, ldr.calls)
	assert.Equal(t, []string{"x"}, commits.keys)
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_LoadFailureLeavesOffsetsUncommitted(t *testing.T) {
	commits := &commitTracker{}
	ext := &mockExtractor{batches: [][]domain.RawEvent{{commits.rawEvent("a")}}}
	ldr := &mockLoader{err: errors.New("sink unavailable")}
	p := pipeline.New(ext, &mockTransformer{}, ldr, discardLogger(), observability.NewMetricsForTesting(), 10)

	runFor(t, p, 100*time.Millisecond)

	assert.Equal(t, 1, ldr.calls)
	assert.Empty(t, commits.keys)
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_RecoversAfterExtractError(t *testing.T) {
	commits := &commitTracker{}
	ext := &mockExtractor{
		errs:    []error{errors.New("broker down")},
		batches: [][]domain.RawEvent{{commits.rawEvent("a")}},
	}
	ldr := &mockLoader{}
	p := pipeline.New(ext, &mockTransformer{}, ldr, discardLogger(), observability.NewMetricsForTesting(), 10)

	runFor(t, p, time.Second)

	assert.Len(t, ldr.loaded, 1)
	assert.NoError(t, p.CheckReadiness(context.Background()))
}

// --- transformer ---

func newTransformer(metrics *observability.Metrics) *pipeline.AssessmentTransformer {
	return pipeline.NewTransformer(domain.NewAssessor(nil, nil, ""), discardLogger(), metrics)
}

func TestAssessmentTransformer_Transform(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	tfm := newTransformer(metrics)
	raw := domain.RawEvent{
		Key:       []byte("vault-2-east"),
		Value:     []byte(`{"material_type":"paper","temperature":65,"relative_humidity":40}`),
		Timestamp: time.Date(2024, 11, 4, 14, 0, 0, 0, time.UTC),
	}

	out, err := tfm.Transform(context.Background(), raw)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(out.Key), "paper-"))
	assert.Equal(t, "paper", out.Headers[domain.HeaderMaterialType])
	assert.Equal(t, "good", out.Headers[domain.HeaderOverallRating])

	var got domain.ClimateAssessment
	require.NoError(t, json.Unmarshal(out.Value, &got))

	type summary struct {
		SensorID string
		Material string
		DewPoint float64
		Method   psychro.Method
		Overall  int
	}
	want := summary{SensorID: "vault-2-east", Material: "paper", DewPoint: 40.1, Method: psychro.MethodClosedForm, Overall: 85}
	actual := summary{got.SensorID, got.Material.Key, got.State.DewPoint, got.Method, got.Overall.Score}
	if diff := cmp.Diff(want, actual); diff != "" {
		t.Fatalf("assessment mismatch (-want +got):\n%s", diff)
	}

	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.Solves.WithLabelValues("closed-form")), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.Assessments.WithLabelValues("paper", "good")), 1e-9)
}

func TestAssessmentTransformer_InvalidReading(t *testing.T) {
	tfm := newTransformer(observability.NewMetricsForTesting())

	_, err := tfm.Transform(context.Background(), domain.RawEvent{Value: []byte("not json")})
	assert.Error(t, err)

	_, err = tfm.Transform(context.Background(), domain.RawEvent{
		Key:   []byte("s1"),
		Value: []byte(`{"temperature":70,"relative_humidity":140}`),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidReading)

	_, err = tfm.Transform(context.Background(), domain.RawEvent{
		Key:   []byte("s1"),
		Value: []byte(`{"temperature":70}`),
	})
	assert.ErrorIs(t, err, psychro.ErrInsufficientInputs)
}

func TestAssessmentTransformer_PublishesUnconverged(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	tfm := newTransformer(metrics)

	out, err := tfm.Transform(context.Background(), domain.RawEvent{
		Key:   []byte("s1"),
		Value: []byte(`{"temperature":70,"absolute_humidity":30}`),
	})
	require.NoError(t, err)

	var got domain.ClimateAssessment
	require.NoError(t, json.Unmarshal(out.Value, &got))
	assert.False(t, got.Converged)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.ConvergenceFailures.WithLabelValues(string(psychro.PairTempAH))), 1e-9)
}
