package notifier

import (
	"context"
	"fmt"

	"github.com/petfans/petfans-api/internal/model"
)

// StubChannel stands in for transports without a backing integration
// (SMS, push). Every send fails deterministically with
// ErrUnsupportedMethod so callers can count and retry later.
type StubChannel struct {
	method model.NotificationMethod
}

func NewStubChannel(method model.NotificationMethod) *StubChannel {
	return &StubChannel{method: method}
}

func (c *StubChannel) Send(_ context.Context, _ Message) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedMethod, c.method)
}
