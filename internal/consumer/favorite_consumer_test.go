package consumer

import (
	"context"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
)

// --- Fake Acknowledger ---

type fakeAck struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (f *fakeAck) Ack(tag uint64, multiple bool) error {
	f.acked = true
	return nil
}

func (f *fakeAck) Nack(tag uint64, multiple, requeue bool) error {
	f.nacked = true
	f.requeue = requeue
	return nil
}

func (f *fakeAck) Reject(tag uint64, requeue bool) error {
	return f.Nack(tag, false, requeue)
}

// --- Mock FavoriteCounter ---

type mockCounter struct {
	recountFn func(ctx context.Context, eventID string) (int64, error)
	calls     []string
}

func (m *mockCounter) Recount(ctx context.Context, eventID string) (int64, error) {
	m.calls = append(m.calls, eventID)
	return m.recountFn(ctx, eventID)
}

func delivery(ack *fakeAck, body string) amqp.Delivery {
	return amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: []byte(body)}
}

// --- Tests ---

func TestHandleMessage_Recounts(t *testing.T) {
	counter := &mockCounter{recountFn: func(ctx context.Context, eventID string) (int64, error) {
		return 3, nil
	}}
	ack := &fakeAck{}

	NewFavoriteConsumer(counter).handleMessage(delivery(ack, `{"user_id":"u1","event_id":"e1","favorited":true}`))

	assert.Equal(t, []string{"e1"}, counter.calls)
	assert.True(t, ack.acked)
	assert.False(t, ack.nacked)
}

func TestHandleMessage_Malformed(t *testing.T) {
	counter := &mockCounter{}
	ack := &fakeAck{}

	NewFavoriteConsumer(counter).handleMessage(delivery(ack, `not json`))

	assert.Empty(t, counter.calls)
	assert.True(t, ack.nacked)
	assert.False(t, ack.requeue)
}

func TestHandleMessage_MissingEvent(t *testing.T) {
	counter := &mockCounter{}
	ack := &fakeAck{}

	NewFavoriteConsumer(counter).handleMessage(delivery(ack, `{"user_id":"u1"}`))

	assert.Empty(t, counter.calls)
	assert.True(t, ack.nacked)
	assert.False(t, ack.requeue)
}

func TestHandleMessage_RecountFailureRequeues(t *testing.T) {
	counter := &mockCounter{recountFn: func(ctx context.Context, eventID string) (int64, error) {
		return 0, errors.New("db down")
	}}
	ack := &fakeAck{}

	NewFavoriteConsumer(counter).handleMessage(delivery(ack, `{"event_id":"e1"}`))

	assert.True(t, ack.nacked)
	assert.True(t, ack.requeue)
	assert.False(t, ack.acked)
}

func TestStart_DrainsChannel(t *testing.T) {
	done := make(chan struct{})
	counter := &mockCounter{recountFn: func(ctx context.Context, eventID string) (int64, error) {
		if eventID == "last" {
			close(done)
		}
		return 1, nil
	}}

	msgs := make(chan amqp.Delivery, 2)
	msgs <- delivery(&fakeAck{}, `{"event_id":"first"}`)
	msgs <- delivery(&fakeAck{}, `{"event_id":"last"}`)
	close(msgs)

	NewFavoriteConsumer(counter).Start(msgs)
	<-done
}
