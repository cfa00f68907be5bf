package webhooks

import (
	"context"
	"log"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/slack-go/slack"

	"biketowork/metrics"
)

const defaultTimeout = 10 * time.Second

type postFunc func(ctx context.Context, url string, msg *slack.WebhookMessage) error

// Dispatcher delivers Slack incoming-webhook messages on a bounded worker pool
// so that callers never wait on Slack.
type Dispatcher struct {
	pool    *workerpool.WorkerPool
	timeout time.Duration
	post    postFunc
}

func NewDispatcher(workers int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{
		pool:    workerpool.New(workers),
		timeout: defaultTimeout,
		post:    slack.PostWebhookContext,
	}
}

// Send queues msg for delivery to url. An empty url disables delivery.
func (d *Dispatcher) Send(kind, url string, msg *slack.WebhookMessage) {
	if url == "" {
		return
	}

	d.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		err := d.post(ctx, url, msg)
		metrics.RecordWebhook(kind, err)
		if err != nil {
			log.Printf("❌ Failed to send %s webhook: %v", kind, err)
			return
		}
		log.Printf("📨 %s webhook delivered", kind)
	})
}

// Stop waits for queued deliveries and stops the workers.
func (d *Dispatcher) Stop() {
	d.pool.StopWait()
}
