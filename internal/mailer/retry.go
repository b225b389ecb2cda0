package mailer

import (
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RetryHeader counts the delivery attempts already made for a mail job.
const RetryHeader = "x-retry"

// Attempts returns how many times the delivery was tried before.
func Attempts(headers amqp.Table) int {
	switch v := headers[RetryHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

// RetryDelay doubles base for every attempt already made, up to limit.
func RetryDelay(base, limit time.Duration, attempts int) time.Duration {
	d := base
	for i := 0; i < attempts && d < limit; i++ {
		d *= 2
	}
	return min(d, limit)
}

// RetryPublishing copies the delivery with the attempt counter increased.
func RetryPublishing(d amqp.Delivery) amqp.Publishing {
	headers := amqp.Table{}
	for k, v := range d.Headers {
		headers[k] = v
	}
	headers[RetryHeader] = int32(Attempts(d.Headers) + 1)

	return amqp.Publishing{
		Headers:      headers,
		ContentType:  d.ContentType,
		DeliveryMode: amqp.Persistent,
		Type:         d.Type,
		Body:         d.Body,
	}
}
