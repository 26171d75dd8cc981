package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Assessment settings.
	DefaultMaterial      string
	MaterialProfilesPath string // empty uses the embedded table

	// Solver settings.
	SolverTolerance     float64
	SolverMaxIterations int
	SolverCacheSize     int // 0 disables the solve cache

	// Circuit breaker around sink writes.
	SinkBreakerTimeout  time.Duration
	SinkBreakerFailures int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := positiveDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	batchSize, err := intInRange("BATCH_SIZE", 50, 1, 1000)
	if err != nil {
		return nil, err
	}

	flushInterval, err := positiveDuration("BATCH_FLUSH_INTERVAL", "500ms")
	if err != nil {
		return nil, err
	}

	tolerance, err := positiveFloat("SOLVER_TOLERANCE", 0.01)
	if err != nil {
		return nil, err
	}

	maxIterations, err := intInRange("SOLVER_MAX_ITERATIONS", 100, 1, 10000)
	if err != nil {
		return nil, err
	}

	cacheSize, err := intInRange("SOLVER_CACHE_SIZE", 1024, 0, math.MaxInt32)
	if err != nil {
		return nil, err
	}

	breakerTimeout, err := positiveDuration("SINK_BREAKER_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	breakerFailures, err := intInRange("SINK_BREAKER_FAILURES", 5, 1, 1000)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:       parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   envOrDefault("KAFKA_SOURCE_TOPIC", "environment-readings"),
		KafkaSinkTopic:     envOrDefault("KAFKA_SINK_TOPIC", "climate-assessments"),
		KafkaGroupID:       envOrDefault("KAFKA_GROUP_ID", "collection-climate-etl"),
		HTTPAddr:           envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           envOrDefault("LOG_LEVEL", "info"),
		LogFormat:          envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		DefaultMaterial:      strings.ToLower(strings.TrimSpace(envOrDefault("DEFAULT_MATERIAL", "general"))),
		MaterialProfilesPath: envOrDefault("MATERIAL_PROFILES_PATH", ""),

		SolverTolerance:     tolerance,
		SolverMaxIterations: maxIterations,
		SolverCacheSize:     cacheSize,

		SinkBreakerTimeout:  breakerTimeout,
		SinkBreakerFailures: breakerFailures,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == cfg.KafkaSinkTopic {
		return nil, fmt.Errorf("KAFKA_SINK_TOPIC must differ from KAFKA_SOURCE_TOPIC (%q)", cfg.KafkaSourceTopic)
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q: must be json or text", cfg.LogFormat)
	}

	return cfg, nil
}
