package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/petfans/petfans-api/internal/model"
	reminderService "github.com/petfans/petfans-api/internal/service/reminder"
	"github.com/petfans/petfans-api/pkg/logger"
	"github.com/petfans/petfans-api/pkg/messaging"
)

// EventConsumer reacts to vaccination events from the broker. A
// due-date change re-derives the record's reminder set and shifts the
// unsent triggers. Reconciliation is idempotent, so replays and the
// synchronous write-path derivation can overlap safely.
type EventConsumer struct {
	broker    messaging.Broker
	reminders *reminderService.Service
	logger    *logger.Logger
}

func NewEventConsumer(broker messaging.Broker, reminders *reminderService.Service, logger *logger.Logger) *EventConsumer {
	return &EventConsumer{broker: broker, reminders: reminders, logger: logger}
}

func (c *EventConsumer) Start(ctx context.Context) error {
	events, err := c.broker.Subscribe(ctx, model.EventVaccinationDueDateSet)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", model.EventVaccinationDueDateSet, err)
	}

	c.logger.Info("starting vaccination event consumer")
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("shutting down vaccination event consumer")
			return nil
		case payload, ok := <-events:
			if !ok {
				return nil
			}
			if err := c.handleDueDateSet(ctx, payload); err != nil {
				c.logger.Error(err, "failed to handle due date event")
			}
		}
	}
}

func (c *EventConsumer) handleDueDateSet(ctx context.Context, payload []byte) error {
	var record model.VaccinationRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return fmt.Errorf("failed to decode vaccination payload: %w", err)
	}
	if record.NextDueDate == nil {
		return nil
	}

	if err := c.reminders.RecomputeTriggers(ctx, record.ID, *record.NextDueDate); err != nil {
		return err
	}
	created, err := c.reminders.Reconcile(ctx, &record)
	if err != nil {
		return err
	}
	if created > 0 {
		c.logger.Info("derived reminders from due date event",
			"vaccination_id", record.ID.String(), "created", created)
	}
	return nil
}
