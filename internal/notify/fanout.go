// Package notify delivers lifecycle events to the outside world: a Kafka
// topic for downstream consumers and Redis pub/sub channels for connected
// clients.
package notify

import (
	"context"

	"github.com/elfabitto/sistema-de-atendimento/internal/domain"
)

type Nop struct{}

func (Nop) Notify(context.Context, domain.Event) {}

// Fanout hands every event to each sink in order.
type Fanout []domain.Notifier

func (f Fanout) Notify(ctx context.Context, ev domain.Event) {
	for _, n := range f {
		n.Notify(ctx, ev)
	}
}
