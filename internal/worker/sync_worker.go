// Package worker runs the spreadsheet mirror: a periodic full sync plus,
// when a broker is configured, a sync on every ledger change event.
package worker

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"hamanets/internal/amqp"
	"hamanets/internal/log"
	"hamanets/internal/services"
)

// Consumer delivers ledger change events. *amqp.Client satisfies it.
type Consumer interface {
	ConsumeLedgerChanges(ctx context.Context, handler func(context.Context, *amqp.LedgerChangedMessage) error) error
}

// SyncWorker ties a SyncProcessor to an optional event consumer.
type SyncWorker struct {
	processor       *services.SyncProcessor
	consumer        Consumer
	logger          *log.Logger
	shutdownTimeout time.Duration
}

// NewSyncWorker creates a worker. consumer may be nil, in which case only
// the periodic sync runs.
func NewSyncWorker(processor *services.SyncProcessor, consumer Consumer, logger *log.Logger) *SyncWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &SyncWorker{
		processor:       processor,
		consumer:        consumer,
		logger:          logger.WithComponent(log.ComponentWorker),
		shutdownTimeout: 30 * time.Second,
	}
}

// ConsumerFrom adapts an optional AMQP client without producing a non-nil
// interface around a nil pointer.
func ConsumerFrom(c *amqp.Client) Consumer {
	if c == nil {
		return nil
	}
	return c
}

// Run blocks until ctx is cancelled or the consumer fails.
func (w *SyncWorker) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	if err := w.processor.Start(gctx); err != nil {
		return err
	}
	g.Go(func() error {
		<-gctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()
		return w.processor.Stop(stopCtx)
	})

	if w.consumer != nil {
		g.Go(func() error {
			err := w.consumer.ConsumeLedgerChanges(gctx, w.processor.HandleLedgerChange)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	} else {
		w.logger.InfoContext(ctx, "No AMQP consumer configured, relying on periodic sync")
	}

	err := g.Wait()
	w.logger.InfoContext(ctx, "Sync worker stopped", log.FieldOperation, log.OpShutdown)
	return err
}
