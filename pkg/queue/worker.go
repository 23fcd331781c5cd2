package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lioia/pagerank/pkg/graph"
	"github.com/lioia/pagerank/pkg/pagerank"
	"github.com/lioia/pagerank/pkg/services"
	"github.com/lioia/pagerank/pkg/utils"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Worker consumes rank jobs from the work queue and publishes the results to
// the result queue
type Worker struct {
	Channel  *amqp.Channel
	Work     amqp.Queue
	Result   amqp.Queue
	Defaults pagerank.Config
}

// NewWorker declares the work and result queues on ch. At most prefetch jobs
// are delivered before being acknowledged.
func NewWorker(ch *amqp.Channel, workQueue, resultQueue string, prefetch int, defaults pagerank.Config) (*Worker, error) {
	queues, err := utils.DeclareQueues(ch, prefetch, workQueue, resultQueue)
	if err != nil {
		return nil, err
	}
	return &Worker{Channel: ch, Work: queues[0], Result: queues[1], Defaults: defaults}, nil
}

// Run handles jobs until ctx is done or the channel is closed
func (w *Worker) Run(ctx context.Context) error {
	// Register consumer
	msgs, err := w.Channel.Consume(
		w.Work.Name, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return errors.Wrap(err, "register a consumer")
	}
	utils.NodeLog("worker", "Waiting for jobs on %s", w.Work.Name)

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("work queue closed")
			}
			w.deliver(ctx, d)
		}
	}
}

func (w *Worker) deliver(ctx context.Context, d amqp.Delivery) {
	data, err := w.Handle(ctx, d.Body)
	if err != nil {
		utils.FailOnNack(d, err)
		return
	}
	// Publish result to Result queue
	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err = w.Channel.PublishWithContext(publishCtx,
		"",            // exchange
		w.Result.Name, // routing key
		false,         // mandatory
		false,         // immediate
		amqp.Publishing{
			DeliveryMode:  amqp.Persistent,
			ContentType:   "application/json",
			CorrelationId: d.CorrelationId,
			Body:          data,
		})
	if err != nil {
		utils.FailOnNack(d, err)
		return
	}
	// Ack
	if err := d.Ack(false); err != nil {
		utils.WarnLog("worker", "Could not ACK message: %v", err)
	}
}

// Handle decodes a job and computes its result. Invalid jobs produce a result
// carrying the error, so they are acknowledged instead of requeued; only
// graph.ErrUnavailable (network errors, 5xx responses) is returned as an error.
func (w *Worker) Handle(ctx context.Context, body []byte) ([]byte, error) {
	var job services.Job
	if err := json.Unmarshal(body, &job); err != nil {
		return json.Marshal(services.Result{Error: errors.Wrap(err, "decode job").Error()})
	}
	if len(job.Graph) == 0 && job.Resource != "" {
		g, err := graph.LoadGraphResource(job.Resource)
		if errors.Is(err, graph.ErrUnavailable) {
			return nil, err
		}
		if err != nil {
			utils.WarnLog("worker", "Job %s: could not load %s: %v", job.Id, job.Resource, err)
			return json.Marshal(services.Result{Id: job.Id, Error: err.Error()})
		}
		job.Graph = g
	}
	utils.NodeLog("worker", "Received job %s (%d pages)", job.Id, len(job.Graph))

	defaults := w.Defaults
	defaults.Logger = utils.ComputeLogger("worker")
	result, err := services.Run(ctx, job, defaults)
	if err != nil {
		utils.WarnLog("worker", "Job %s failed: %v", job.Id, err)
		return json.Marshal(services.Result{Id: job.Id, Error: err.Error()})
	}
	return json.Marshal(result)
}
