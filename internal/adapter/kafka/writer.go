package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/tephra-map-etl/internal/domain"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafkago.Writer used by SummaryPublisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// SummaryPublisher produces one message per site summary row to a Kafka topic.
// It implements pipeline.SummarySink.
type SummaryPublisher struct {
	writer messageWriter
	clock  clockwork.Clock
	logger *slog.Logger
}

// NewSummaryPublisher creates a Kafka producer for the given brokers and topic.
func NewSummaryPublisher(brokers []string, topic string, clock clockwork.Clock, logger *slog.Logger) *SummaryPublisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &SummaryPublisher{writer: w, clock: clock, logger: logger}
}

func (p *SummaryPublisher) Name() string { return "kafka" }

// WriteSummary serializes and publishes every row in a single WriteMessages call.
func (p *SummaryPublisher) WriteSummary(ctx context.Context, rows []domain.SummaryRow) error {
	if len(rows) == 0 {
		return nil
	}
	generatedAt := p.clock.Now()
	msgs := make([]kafkago.Message, len(rows))
	for i := range rows {
		msg, err := serializeToMessage(rows[i], generatedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish summary: %w", err)
	}
	p.logger.Info("published summary rows", "rows", len(rows))
	return nil
}

func (p *SummaryPublisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a SummaryRow into a Kafka message keyed by its
// (tephra, site, composition) group so reruns land on the same partition.
func serializeToMessage(row domain.SummaryRow, generatedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(row)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize summary row: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(row.Key()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "composition", Value: []byte(row.Composition)},
			{Key: "generated_at", Value: []byte(generatedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
