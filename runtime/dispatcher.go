package runtime

import (
	"context"
	"fmt"
	"log/slog"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/observability"

	"go.uber.org/multierr"
)

// Dispatcher hands a message to every sink observing a destination, plus the
// permanent sinks that see all traffic (search indexing for instance).
//
// Delivery is best effort: sinks never block, a refusing sink does not stop the
// others, and nothing is retried.
type Dispatcher struct {
	registry  contract.IRegistry
	permanent []contract.MessageSink
	metrics   observability.MetricsCollector
	log       *slog.Logger
}

func NewDispatcher(registry contract.IRegistry, metrics observability.MetricsCollector, log *slog.Logger) *Dispatcher {
	return &Dispatcher{registry: registry, metrics: metrics, log: log}
}

func (d *Dispatcher) RegisterSinks(sinks ...contract.MessageSink) {
	d.permanent = append(d.permanent, sinks...)
}

// Dispatch returns the combined errors of the sinks that refused the delivery,
// each wrapped with errors.ErrDeliveryFailed.
func (d *Dispatcher) Dispatch(ctx context.Context, destination domain.Destination, msg domain.Message) error {
	delivery := domain.Delivery{Destination: destination, Message: msg}
	sinks := append(d.registry.SinksFor(destination), d.permanent...)

	var err error
	for _, sink := range sinks {
		if consumeErr := sink.Consume(ctx, delivery); consumeErr != nil {
			d.metrics.RecordDeliveryFailure(destination)
			err = multierr.Append(err, fmt.Errorf("%w: %v", errors.ErrDeliveryFailed, consumeErr))
		}
	}
	if err != nil {
		d.log.Warn("Delivery failed",
			"destination", destination,
			"message_id", msg.ID,
			"failures", len(multierr.Errors(err)),
			"error", err)
	}
	return err
}
