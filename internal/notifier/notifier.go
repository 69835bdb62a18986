package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/petfans/petfans-api/internal/model"
)

// ErrUnsupportedMethod is returned when no channel backs the requested
// notification method. Callers treat it as a deterministic failure.
var ErrUnsupportedMethod = errors.New("notification method not supported")

// Message is one notification to deliver.
type Message struct {
	Method    model.NotificationMethod
	Recipient string
	Subject   string
	Body      string
	HTMLBody  string
}

// Channel delivers messages over a single transport.
type Channel interface {
	Send(ctx context.Context, msg Message) error
}

// Notifier routes messages to the channel registered for their method.
type Notifier struct {
	channels map[model.NotificationMethod]Channel
}

func New() *Notifier {
	return &Notifier{channels: make(map[model.NotificationMethod]Channel)}
}

// Register binds a channel to a method, replacing any previous binding.
func (n *Notifier) Register(method model.NotificationMethod, ch Channel) {
	n.channels[method] = ch
}

func (n *Notifier) Send(ctx context.Context, msg Message) error {
	ch, ok := n.channels[msg.Method]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedMethod, msg.Method)
	}
	return ch.Send(ctx, msg)
}
