package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/couchcryptid/collection-climate-etl/internal/config"
	"github.com/couchcryptid/collection-climate-etl/internal/domain"
	"github.com/couchcryptid/collection-climate-etl/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker"
)

// messageWriter is the subset of *kafkago.Writer used by Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer produces assessments to a Kafka topic behind a circuit breaker.
// It implements pipeline.BatchLoader. While the breaker is open LoadBatch
// fails fast with gobreaker.ErrOpenState and the pipeline backs off.
type Writer struct {
	writer  messageWriter
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return newWriter(w, breakerSettings(cfg, logger, metrics), logger)
}

func newWriter(w messageWriter, settings gobreaker.Settings, logger *slog.Logger) *Writer {
	return &Writer{
		writer:  w,
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
	}
}

// breakerSettings trips after SINK_BREAKER_FAILURES consecutive write
// failures and probes again with a single request after SINK_BREAKER_TIMEOUT.
func breakerSettings(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) gobreaker.Settings {
	threshold := uint32(cfg.SinkBreakerFailures)
	return gobreaker.Settings{
		Name:        "kafka-sink",
		MaxRequests: 1,
		Timeout:     cfg.SinkBreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
			if metrics != nil {
				metrics.SinkBreakerState.Set(float64(to))
			}
		},
	}
}

// LoadBatch publishes output events to the sink topic in a single
// WriteMessages call.
func (w *Writer) LoadBatch(ctx context.Context, events []domain.OutputEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(events))
	for i := range events {
		msgs[i] = toMessage(events[i])
	}

	var writeErr error
	_, err := w.breaker.Execute(func() (interface{}, error) {
		writeErr = w.writer.WriteMessages(ctx, msgs...)
		if writeErr != nil && ctx.Err() != nil {
			// Shutdown, not a broker failure.
			return nil, nil
		}
		return nil, writeErr
	})
	if err != nil {
		return fmt.Errorf("write %d messages: %w", len(msgs), err)
	}
	return writeErr
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// toMessage converts an OutputEvent into a Kafka message with headers in
// key order.
func toMessage(event domain.OutputEvent) kafkago.Message {
	keys := make([]string, 0, len(event.Headers))
	for k := range event.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	headers := make([]kafkago.Header, len(keys))
	for i, k := range keys {
		headers[i] = kafkago.Header{Key: k, Value: []byte(event.Headers[k])}
	}
	return kafkago.Message{
		Key:     event.Key,
		Value:   event.Value,
		Headers: headers,
	}
}
