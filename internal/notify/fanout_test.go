package notify

import (
	"context"
	"testing"
	"time"

	"github.com/elfabitto/sistema-de-atendimento/internal/domain"
	"github.com/elfabitto/sistema-de-atendimento/internal/notify/notifytest"

	"github.com/stretchr/testify/assert"
)

func TestFanoutDeliversToEverySink(t *testing.T) {
	a, b := &notifytest.Recorder{}, &notifytest.Recorder{}
	f := Fanout{a, Nop{}, b}

	f.Notify(context.Background(), domain.NewEvent(domain.EventSessionConcluded, time.Now()))

	assert.Len(t, a.Events(), 1)
	assert.Len(t, b.Events(), 1)
}
