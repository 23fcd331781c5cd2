package utils

import (
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

// QueueChannel is the part of *amqp.Channel used to set up the job queues
type QueueChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	Qos(prefetchCount, prefetchSize int, global bool) error
}

// DeclareQueues declares durable queues, so persistent jobs and results
// survive a broker restart, and limits unacknowledged deliveries to prefetch.
func DeclareQueues(ch QueueChannel, prefetch int, names ...string) ([]amqp.Queue, error) {
	if prefetch < 1 {
		return nil, errors.Errorf("prefetch must be positive, got %d", prefetch)
	}
	queues := make([]amqp.Queue, 0, len(names))
	for _, name := range names {
		queue, err := ch.QueueDeclare(name, true, false, false, false, nil)
		if err != nil {
			return nil, errors.Wrapf(err, "declare %s queue", name)
		}
		queues = append(queues, queue)
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return nil, errors.Wrap(err, "set prefetch")
	}
	return queues, nil
}

// FailOnNack logs err and puts the message back in the queue
func FailOnNack(d amqp.Delivery, err error) {
	WarnLog("worker", "Could not handle message: %v", err)
	if err = d.Nack(false, true); err != nil {
		logger.WithError(err).Fatal("Could not NACK to message queue")
	}
}
