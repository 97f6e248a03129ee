package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/epinet/pkg/domain"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
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

func stepEvent() *domain.StepEvent {
	return &domain.StepEvent{
		EventBase: domain.EventBase{
			Timestamp:    time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
			Type:         domain.EventStep,
			SimulationID: "s_1",
		},
		Snapshot: domain.Snapshot{Day: 4, Counts: domain.Counts{S: 190, E: 4, I: 5, Q: 1}},
		Lockdown: true,
		Message:  "locked",
	}
}

func TestEncode(t *testing.T) {
	msg, err := Encode(stepEvent())
	require.NoError(t, err)

	assert.Equal(t, "s_1", string(msg.Key))
	assert.Equal(t, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC), msg.Time)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.Equal(t, "step", payload["type"])
	assert.Equal(t, "s_1", payload["sim_id"])
	assert.EqualValues(t, 4, payload["day"])
	assert.EqualValues(t, 190, payload["S"])
	assert.Equal(t, true, payload["policy_quarantine_on"])
}

func TestPublisher(t *testing.T) {
	ctx := context.Background()

	t.Run("Writes", func(t *testing.T) {
		w := &fakeWriter{}
		p := newPublisher(w)
		require.NoError(t, p.Publish(ctx, stepEvent()))
		require.Len(t, w.msgs, 1)
		assert.Equal(t, "s_1", string(w.msgs[0].Key))

		require.NoError(t, p.Close())
		assert.True(t, w.closed)
	})

	t.Run("Propagates Write Errors", func(t *testing.T) {
		p := newPublisher(&fakeWriter{err: errors.New("broker down")})
		assert.ErrorContains(t, p.Publish(ctx, stepEvent()), "broker down")
	})
}

func TestNewWriter(t *testing.T) {
	w := NewWriter([]string{"localhost:9092"}, "epinet.snapshots")
	assert.Equal(t, "epinet.snapshots", w.Topic)
	assert.IsType(t, &kafka.Hash{}, w.Balancer)
	assert.Equal(t, DefaultBatchTimeout, w.BatchTimeout)
}
