package rabbitmq

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingAck struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (r *recordingAck) Ack(multiple bool) error {
	r.acked = true
	return nil
}

func (r *recordingAck) Nack(multiple, requeue bool) error {
	r.nacked = true
	r.requeue = requeue
	return nil
}

func TestSettle(t *testing.T) {
	t.Run("acks on success", func(t *testing.T) {
		ack := &recordingAck{}
		settle(ack, false, 1, func() error { return nil })
		assert.True(t, ack.acked)
		assert.False(t, ack.nacked)
	})

	t.Run("requeues first failure", func(t *testing.T) {
		ack := &recordingAck{}
		settle(ack, false, 2, func() error { return errors.New("smtp down") })
		assert.True(t, ack.nacked)
		assert.True(t, ack.requeue)
	})

	t.Run("drops redelivered failure", func(t *testing.T) {
		ack := &recordingAck{}
		settle(ack, true, 3, func() error { return errors.New("smtp down") })
		assert.True(t, ack.nacked)
		assert.False(t, ack.requeue)
	})
}

func TestPublishWithoutChannel(t *testing.T) {
	c := &Client{}
	assert.Error(t, c.Publish(OrderExchange, "order.created", []byte(`{}`)))
	assert.Error(t, c.ConsumeOrderEvents(nil))
}
