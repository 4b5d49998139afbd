package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/MrJamesThe3rd/bursar/internal/fee"
)

const (
	TypePaymentCollected = "fee:payment_collected"
	Queue                = "ledger"
)

func NewPaymentCollectedTask(e fee.PaymentCollected) (*asynq.Task, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encoding payment collected event: %w", err)
	}

	return asynq.NewTask(TypePaymentCollected, b), nil
}

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsynqPublisher hands events to the worker through Redis.
type AsynqPublisher struct {
	client   enqueuer
	maxRetry int
}

func NewAsynqPublisher(client *asynq.Client, maxRetry int) *AsynqPublisher {
	return &AsynqPublisher{client: client, maxRetry: maxRetry}
}

func (p *AsynqPublisher) PublishPaymentCollected(ctx context.Context, e fee.PaymentCollected) error {
	task, err := NewPaymentCollectedTask(e)
	if err != nil {
		return err
	}

	if _, err := p.client.EnqueueContext(ctx, task, asynq.Queue(Queue), asynq.MaxRetry(p.maxRetry)); err != nil {
		return fmt.Errorf("enqueueing payment collected event: %w", err)
	}

	return nil
}

// InlinePublisher runs the handler in the caller's goroutine. It is used when
// no queue is configured.
type InlinePublisher struct {
	handler *Handler
}

func NewInlinePublisher(h *Handler) *InlinePublisher {
	return &InlinePublisher{handler: h}
}

func (p *InlinePublisher) PublishPaymentCollected(ctx context.Context, e fee.PaymentCollected) error {
	return p.handler.Handle(ctx, e)
}
