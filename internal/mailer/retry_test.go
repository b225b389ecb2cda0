package mailer

import (
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
)

func TestAttempts(t *testing.T) {
	assert.Equal(t, 0, Attempts(nil))
	assert.Equal(t, 0, Attempts(amqp.Table{RetryHeader: "dos"}))
	assert.Equal(t, 2, Attempts(amqp.Table{RetryHeader: int32(2)}))
	assert.Equal(t, 3, Attempts(amqp.Table{RetryHeader: int64(3)}))
}

func TestRetryDelay(t *testing.T) {
	base, limit := 5*time.Second, time.Minute
	assert.Equal(t, 5*time.Second, RetryDelay(base, limit, 0))
	assert.Equal(t, 10*time.Second, RetryDelay(base, limit, 1))
	assert.Equal(t, 40*time.Second, RetryDelay(base, limit, 3))
	assert.Equal(t, time.Minute, RetryDelay(base, limit, 4))
	assert.Equal(t, time.Minute, RetryDelay(base, limit, 60))
}

func TestRetryPublishing(t *testing.T) {
	d := amqp.Delivery{
		Headers:     amqp.Table{"origen": "api", RetryHeader: int32(1)},
		ContentType: "application/json",
		Type:        "reset_password",
		Body:        []byte(`{"type":"reset_password"}`),
	}

	p := RetryPublishing(d)
	assert.Equal(t, 2, Attempts(p.Headers))
	assert.Equal(t, "api", p.Headers["origen"])
	assert.Equal(t, int32(1), d.Headers[RetryHeader])
	assert.Equal(t, amqp.Persistent, p.DeliveryMode)
	assert.Equal(t, d.Type, p.Type)
	assert.Equal(t, d.Body, p.Body)

	assert.Equal(t, 1, Attempts(RetryPublishing(amqp.Delivery{}).Headers))
}
