package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/virginus01/afobata-core/internal/events"
)

type stubStore struct {
	topic       string
	aggregateID string
	payload     []byte
	err         error
}

func (s *stubStore) Insert(_ context.Context, topic, aggregateID string, payload []byte) error {
	s.topic = topic
	s.aggregateID = aggregateID
	s.payload = payload
	return s.err
}

type captureNotifier struct {
	topics []string
	err    error
}

func (c *captureNotifier) Notify(_ context.Context, topic, _ string, _ []byte) error {
	c.topics = append(c.topics, topic)
	return c.err
}

func TestEmitPersistsEvent(t *testing.T) {
	store := &stubStore{}
	notifier := &captureNotifier{}
	bus := events.Bus{Store: store, Notifiers: []events.Notifier{notifier}}

	payload := map[string]any{"orderId": "ord_1", "amount": 640.0}
	err := bus.Emit(context.Background(), events.TopicSettlementRecorded, "ord_1", payload)
	require.NoError(t, err)
	require.Equal(t, events.TopicSettlementRecorded, store.topic)
	require.Equal(t, "ord_1", store.aggregateID)
	require.JSONEq(t, `{"orderId":"ord_1","amount":640}`, string(store.payload))
	require.Equal(t, []string{events.TopicSettlementRecorded}, notifier.topics)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(store.payload, &decoded))
	require.Equal(t, "ord_1", decoded["orderId"])
}

func TestEmitValidation(t *testing.T) {
	bus := events.Bus{Store: &stubStore{}}

	require.Error(t, bus.Emit(context.Background(), " ", "agg", nil))
	require.Error(t, bus.Emit(context.Background(), events.TopicRevenueWithdrawn, "", nil))
	require.Error(t, bus.Emit(context.Background(), events.TopicRevenueWithdrawn, "agg", []byte("not json")))
}

func TestEmitNotifierFailureKeepsEvent(t *testing.T) {
	store := &stubStore{}
	notifier := &captureNotifier{err: errors.New("boom")}
	bus := events.Bus{Store: store, Notifiers: []events.Notifier{notifier}}

	err := bus.Emit(context.Background(), events.TopicRevenueWithdrawn, "user_1", nil)
	require.Error(t, err)
	require.Equal(t, events.TopicRevenueWithdrawn, store.topic)
	require.JSONEq(t, `{}`, string(store.payload))
}
