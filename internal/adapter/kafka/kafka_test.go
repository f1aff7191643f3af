package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/tephra-map-etl/internal/domain"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func newTestPublisher(w messageWriter, now time.Time) *SummaryPublisher {
	return &SummaryPublisher{
		writer: w,
		clock:  clockwork.NewFakeClockAt(now),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)
	row := domain.SummaryRow{
		TephraName:  "Hekla 4 Tephra",
		Site:        "Altnabreac",
		Composition: domain.Rhyolite,
		Longitude:   -3.7,
		Latitude:    58.39,
	}

	msg, err := serializeToMessage(row, now)
	require.NoError(t, err)

	assert.Equal(t, []byte("Hekla 4 Tephra|Altnabreac|Rhyolite"), msg.Key)
	assert.JSONEq(t, `{"tephra_name":"Hekla 4 Tephra","site":"Altnabreac","composition":"Rhyolite","longitude":-3.7,"latitude":58.39}`, string(msg.Value))
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "composition", msg.Headers[0].Key)
	assert.Equal(t, []byte("Rhyolite"), msg.Headers[0].Value)
	assert.Equal(t, "generated_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
}

func TestWriteSummary_PublishesEveryRow(t *testing.T) {
	w := &fakeWriter{}
	p := newTestPublisher(w, time.Date(2024, 4, 27, 6, 0, 0, 0, time.UTC))
	rows := []domain.SummaryRow{
		{TephraName: "Hekla 4 Tephra", Site: "a", Composition: domain.Rhyolite},
		{TephraName: "Hekla 3 Tephra", Site: "b", Composition: domain.NoGeochemistryData},
	}

	require.NoError(t, p.WriteSummary(context.Background(), rows))

	require.Len(t, w.msgs, 2)
	assert.Equal(t, []byte("Hekla 3 Tephra|b|No geochemistry data"), w.msgs[1].Key)
	assert.Equal(t, []byte("2024-04-27T06:00:00Z"), w.msgs[1].Headers[1].Value)
}

func TestWriteSummary_EmptyIsNoop(t *testing.T) {
	w := &fakeWriter{err: errors.New("should not be called")}
	p := newTestPublisher(w, time.Now())

	require.NoError(t, p.WriteSummary(context.Background(), nil))
	assert.Empty(t, w.msgs)
}

func TestWriteSummary_WrapsWriterError(t *testing.T) {
	broker := errors.New("leader not available")
	p := newTestPublisher(&fakeWriter{err: broker}, time.Now())

	err := p.WriteSummary(context.Background(), []domain.SummaryRow{{TephraName: "Hekla 4 Tephra"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, broker)
	assert.Contains(t, err.Error(), "publish summary")
}

func TestClose(t *testing.T) {
	w := &fakeWriter{}
	p := newTestPublisher(w, time.Now())

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
	assert.Equal(t, "kafka", p.Name())
}
