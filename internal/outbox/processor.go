package outbox

import (
	"context"
	"encoding/json"
	"time"

	"naebak-messaging/internal/repository"
	"naebak-messaging/pkg/events"
)

type Processor struct {
	repo       repository.OutboxRepository
	publisher  events.Publisher
	clock      func() time.Time
	batchSize  int
	interval   time.Duration
	maxRetries int
}

func NewProcessor(repo repository.OutboxRepository, publisher events.Publisher, batchSize int, interval time.Duration, maxRetries int) *Processor {
	return &Processor{
		repo:       repo,
		publisher:  publisher,
		clock:      time.Now,
		batchSize:  batchSize,
		interval:   interval,
		maxRetries: maxRetries,
	}
}

func (p *Processor) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.ProcessBatch(ctx)
		}
	}
}

// ProcessBatch drains one batch of pending events. Publish failures only
// advance the retry bookkeeping; the event stays pending until delivered or
// retried out.
func (p *Processor) ProcessBatch(ctx context.Context) {
	batch, err := p.repo.GetPendingEvents(ctx, p.batchSize)
	if err != nil || len(batch) == 0 {
		return
	}

	for _, e := range batch {
		if e.RetryCount >= p.maxRetries {
			_ = p.repo.MarkEventFailed(ctx, e.ID, p.clock().Add(time.Hour), "max retries exceeded")
			continue
		}

		env := events.Envelope{
			EventType:     e.EventType,
			AggregateType: e.AggregateType,
			AggregateID:   e.AggregateID.String(),
			OccurredAt:    e.CreatedAt.UTC(),
			Payload:       json.RawMessage(e.Payload),
		}
		payload, err := json.Marshal(env)
		if err != nil {
			_ = p.repo.MarkEventFailed(ctx, e.ID, p.clock().Add(time.Minute), err.Error())
			continue
		}

		if err := p.publisher.Publish(ctx, routeChannel(env), payload); err != nil {
			_ = p.repo.MarkEventFailed(ctx, e.ID, p.clock().Add(time.Minute), err.Error())
			continue
		}
		_ = p.repo.MarkEventProcessed(ctx, e.ID)
	}
}

func routeChannel(env events.Envelope) string {
	switch env.AggregateType {
	case "conversation":
		return "channel:conversation:" + env.AggregateID
	case "user":
		return "channel:user:" + env.AggregateID
	default:
		return "channel:system:outbox"
	}
}
