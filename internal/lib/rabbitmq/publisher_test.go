package rabbitmq

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
}

func (c *recordingChannel) Publish(exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.exchange, c.key, c.msg = exchange, key, msg
	return c.err
}

func TestPublishMessage(t *testing.T) {
	type payload struct {
		UserID int64 `json:"user_id"`
	}

	t.Run("persistent json message", func(t *testing.T) {
		ch := &recordingChannel{}
		require.NoError(t, PublishMessage(ch, "aviary.events", "member.deleted", payload{UserID: 7}))

		assert.Equal(t, "aviary.events", ch.exchange)
		assert.Equal(t, "member.deleted", ch.key)
		assert.Equal(t, "application/json", ch.msg.ContentType)
		assert.Equal(t, "member.deleted", ch.msg.Type)
		assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)

		var got payload
		require.NoError(t, json.Unmarshal(ch.msg.Body, &got))
		assert.Equal(t, int64(7), got.UserID)
	})

	t.Run("marshal error", func(t *testing.T) {
		err := PublishMessage(&recordingChannel{}, "", "q", struct {
			Ch chan int `json:"ch"`
		}{Ch: make(chan int)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rabbitmq.PublishMessage")
	})

	t.Run("broker error", func(t *testing.T) {
		err := PublishMessage(&recordingChannel{err: errors.New("channel closed")}, "x", "k", 1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "channel closed")
	})
}

func TestPublishMessage_ToExchangeWithRoutingKey(t *testing.T) {
	amqpURI := setupRabbitMQ(t)

	conn, err := Connect(amqpURI, 3, time.Second)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	ch, err := SetupChannel(conn, "route.events", []QueueConfig{{QueueName: "route-test", RoutingKey: "rk"}})
	require.NoError(t, err)
	defer func() { _ = ch.Close() }()

	msg := map[string]any{"ok": true}
	require.NoError(t, PublishMessage(ch, "route.events", "rk", msg))

	deliveries, err := ch.Consume("route-test", "test-consumer", true, false, false, false, nil)
	require.NoError(t, err)

	select {
	case d := <-deliveries:
		var got map[string]any
		require.NoError(t, json.Unmarshal(d.Body, &got))
		assert.Equal(t, true, got["ok"])
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for message via exchange")
	}
}
