package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/petfans/petfans-api/internal/model"
	"github.com/petfans/petfans-api/internal/notifier"
	"github.com/petfans/petfans-api/internal/repository"
	"github.com/petfans/petfans-api/pkg/logger"
	"github.com/petfans/petfans-api/pkg/metrics"
)

// DispatcherConfig controls the polling dispatch loop.
type DispatcherConfig struct {
	PollInterval time.Duration
}

// Options narrows a single dispatch run.
type Options struct {
	// DryRun resolves and counts due reminders without delivering
	// anything or marking anything sent.
	DryRun bool
	// Method restricts the run to reminders of one delivery method.
	Method *model.NotificationMethod
}

// Report summarizes one dispatch run.
type Report struct {
	Total  int
	Sent   int
	Failed int
}

// Dispatcher delivers due reminders. A reminder is delivered at most
// once; the sent flag is flipped under a guard so concurrent runs
// cannot double-send.
type Dispatcher struct {
	reminders    repository.ReminderRepository
	vaccinations repository.VaccinationRepository
	pets         repository.PetRepository
	users        repository.UserRepository
	notifier     *notifier.Notifier
	config       DispatcherConfig
	logger       *logger.Logger
	metrics      *metrics.Metrics
}

func NewDispatcher(
	reminders repository.ReminderRepository,
	vaccinations repository.VaccinationRepository,
	pets repository.PetRepository,
	users repository.UserRepository,
	n *notifier.Notifier,
	config DispatcherConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *Dispatcher {
	if config.PollInterval <= 0 {
		config.PollInterval = time.Minute
	}
	return &Dispatcher{
		reminders:    reminders,
		vaccinations: vaccinations,
		pets:         pets,
		users:        users,
		notifier:     n,
		config:       config,
		logger:       logger,
		metrics:      metrics,
	}
}

// Start polls for due reminders until the context is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.config.PollInterval)
	defer ticker.Stop()

	d.logger.Info("starting reminder dispatcher")

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("shutting down reminder dispatcher")
			return
		case <-ticker.C:
			report, err := d.Run(ctx, time.Now(), Options{})
			if err != nil {
				d.logger.Error(err, "dispatch run failed")
				continue
			}
			if report.Total > 0 {
				d.logger.Info("dispatch run finished",
					"total", report.Total, "sent", report.Sent, "failed", report.Failed)
			}
		}
	}
}

// Run executes one dispatch pass over everything due at the given
// instant. Individual delivery failures are counted and logged but do
// not abort the pass.
func (d *Dispatcher) Run(ctx context.Context, now time.Time, opts Options) (Report, error) {
	timer := prometheus.NewTimer(d.metrics.DispatchDuration)
	defer timer.ObserveDuration()

	filter := &model.ReminderFilter{Method: opts.Method}
	due, err := d.reminders.FindDue(ctx, now, filter)
	if err != nil {
		return Report{}, fmt.Errorf("failed to find due reminders: %w", err)
	}

	var report Report
	for _, r := range due {
		report.Total++
		d.metrics.RemindersConsidered.Inc()

		msg, err := d.resolveMessage(ctx, r)
		if err != nil {
			report.Failed++
			d.metrics.RemindersFailed.Inc()
			d.logger.Error(err, "failed to resolve reminder", "reminder_id", r.ID.String())
			continue
		}

		if opts.DryRun {
			report.Sent++
			d.logger.Info("dry run, would send reminder",
				"reminder_id", r.ID.String(), "recipient", msg.Recipient, "method", string(r.Method))
			continue
		}

		sendTimer := prometheus.NewTimer(d.metrics.SendLatency.WithLabelValues(string(r.Method)))
		err = d.notifier.Send(ctx, msg)
		sendTimer.ObserveDuration()
		if err != nil {
			report.Failed++
			d.metrics.RemindersFailed.Inc()
			d.logger.Error(err, "failed to send reminder",
				"reminder_id", r.ID.String(), "method", string(r.Method))
			continue
		}

		if err := d.reminders.MarkSent(ctx, r.ID, time.Now()); err != nil {
			if errors.Is(err, repository.ErrAlreadySent) {
				// Another run won the race; the owner got one copy.
				d.logger.Warn("reminder already marked sent", "reminder_id", r.ID.String())
				continue
			}
			report.Failed++
			d.metrics.RemindersFailed.Inc()
			d.logger.Error(err, "failed to mark reminder sent", "reminder_id", r.ID.String())
			continue
		}

		report.Sent++
		d.metrics.RemindersSent.Inc()
	}
	return report, nil
}

// resolveMessage loads the reminder's context and builds the outgoing
// notification. A custom message set on the reminder wins over the
// generated one.
func (d *Dispatcher) resolveMessage(ctx context.Context, r *model.Reminder) (notifier.Message, error) {
	user, err := d.users.Get(ctx, r.UserID)
	if err != nil {
		return notifier.Message{}, fmt.Errorf("failed to load recipient: %w", err)
	}
	record, err := d.vaccinations.Get(ctx, r.VaccinationID)
	if err != nil {
		return notifier.Message{}, fmt.Errorf("failed to load vaccination: %w", err)
	}
	pet, err := d.pets.Get(ctx, record.PetID)
	if err != nil {
		return notifier.Message{}, fmt.Errorf("failed to load pet: %w", err)
	}

	vet := "unspecified"
	if record.Veterinarian != nil && *record.Veterinarian != "" {
		vet = *record.Veterinarian
	}
	dueOn := ""
	if record.NextDueDate != nil {
		dueOn = record.NextDueDate.Format("Jan 2, 2006")
	}

	body := fmt.Sprintf("%s's %s vaccine is due on %s. Veterinarian: %s.",
		pet.Name, record.VaccineName, dueOn, vet)
	if r.Message != nil && *r.Message != "" {
		body = *r.Message
	}

	return notifier.Message{
		Method:    r.Method,
		Recipient: user.Email,
		Subject:   fmt.Sprintf("Vaccine reminder: %s for %s", record.VaccineName, pet.Name),
		Body:      body,
		HTMLBody: fmt.Sprintf("<p>%s</p><p>Due date: %s<br>Veterinarian: %s</p>",
			body, dueOn, vet),
	}, nil
}
