package outbox

import (
	"context"
	"time"

	"naebak-messaging/internal/repository"
	"naebak-messaging/pkg/events"
)

type Runner struct {
	processor *Processor
}

func NewRunner(processor *Processor) *Runner {
	return &Runner{processor: processor}
}

func (r *Runner) Start(ctx context.Context) {
	go r.processor.Run(ctx)
}

func DefaultProcessor(repo repository.OutboxRepository, publisher events.Publisher) *Processor {
	return NewProcessor(repo, publisher, 100, time.Second*2, 5)
}
