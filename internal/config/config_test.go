package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "environment-readings", cfg.KafkaSourceTopic)
	assert.Equal(t, "climate-assessments", cfg.KafkaSinkTopic)
	assert.Equal(t, "collection-climate-etl", cfg.KafkaGroupID)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.BatchFlushInterval)
	assert.Equal(t, "general", cfg.DefaultMaterial)
	assert.Empty(t, cfg.MaterialProfilesPath)
	assert.InDelta(t, 0.01, cfg.SolverTolerance, 1e-12)
	assert.Equal(t, 100, cfg.SolverMaxIterations)
	assert.Equal(t, 1024, cfg.SolverCacheSize)
	assert.Equal(t, 30*time.Second, cfg.SinkBreakerTimeout)
	assert.Equal(t, 5, cfg.SinkBreakerFailures)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092,")
	t.Setenv("KAFKA_SOURCE_TOPIC", "custom-source")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-sink")
	t.Setenv("KAFKA_GROUP_ID", "custom-group")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("BATCH_SIZE", "100")
	t.Setenv("BATCH_FLUSH_INTERVAL", "1s")
	t.Setenv("DEFAULT_MATERIAL", " Paper ")
	t.Setenv("MATERIAL_PROFILES_PATH", "/etc/climate/profiles.yaml")
	t.Setenv("SOLVER_TOLERANCE", "0.001")
	t.Setenv("SOLVER_MAX_ITERATIONS", "250")
	t.Setenv("SOLVER_CACHE_SIZE", "0")
	t.Setenv("SINK_BREAKER_TIMEOUT", "1m")
	t.Setenv("SINK_BREAKER_FAILURES", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-source", cfg.KafkaSourceTopic)
	assert.Equal(t, "custom-sink", cfg.KafkaSinkTopic)
	assert.Equal(t, "custom-group", cfg.KafkaGroupID)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 1*time.Second, cfg.BatchFlushInterval)
	assert.Equal(t, "paper", cfg.DefaultMaterial)
	assert.Equal(t, "/etc/climate/profiles.yaml", cfg.MaterialProfilesPath)
	assert.InDelta(t, 0.001, cfg.SolverTolerance, 1e-12)
	assert.Equal(t, 250, cfg.SolverMaxIterations)
	assert.Equal(t, 0, cfg.SolverCacheSize)
	assert.Equal(t, time.Minute, cfg.SinkBreakerTimeout)
	assert.Equal(t, 3, cfg.SinkBreakerFailures)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"SHUTDOWN_TIMEOUT", "not-a-duration"},
		{"SHUTDOWN_TIMEOUT", "-1s"},
		{"BATCH_SIZE", "0"},
		{"BATCH_SIZE", "9999"},
		{"BATCH_SIZE", "many"},
		{"BATCH_FLUSH_INTERVAL", "not-a-duration"},
		{"SOLVER_TOLERANCE", "0"},
		{"SOLVER_TOLERANCE", "NaN"},
		{"SOLVER_TOLERANCE", "tight"},
		{"SOLVER_MAX_ITERATIONS", "0"},
		{"SOLVER_CACHE_SIZE", "-1"},
		{"SINK_BREAKER_TIMEOUT", "0s"},
		{"SINK_BREAKER_FAILURES", "0"},
		{"LOG_FORMAT", "xml"},
	}
	for _, tc := range tests {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.key)
		})
	}
}

func TestLoad_EmptyBrokerList(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " , ")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

func TestLoad_SameSourceAndSinkTopic(t *testing.T) {
	t.Setenv("KAFKA_SOURCE_TOPIC", "readings")
	t.Setenv("KAFKA_SINK_TOPIC", "readings")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_SINK_TOPIC")
}
