package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petfans/petfans-api/internal/model"
	"github.com/petfans/petfans-api/internal/notifier"
	"github.com/petfans/petfans-api/internal/repository"
	"github.com/petfans/petfans-api/pkg/logger"
	"github.com/petfans/petfans-api/pkg/metrics"
)

// Shared across tests; prometheus collectors register globally.
var testMetrics = metrics.NewMetrics("petfans", "dispatcher_test")

type fakeReminderRepo struct {
	repository.ReminderRepository
	due        []*model.Reminder
	lastFilter *model.ReminderFilter
	sentIDs    []uuid.UUID
}

func (f *fakeReminderRepo) FindDue(ctx context.Context, asOf time.Time, filter *model.ReminderFilter) ([]*model.Reminder, error) {
	f.lastFilter = filter
	var out []*model.Reminder
	for _, r := range f.due {
		if filter != nil && filter.Method != nil && r.Method != *filter.Method {
			continue
		}
		if r.IsDue(asOf) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReminderRepo) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	for _, r := range f.due {
		if r.ID == id {
			if r.Sent {
				return repository.ErrAlreadySent
			}
			r.Sent = true
			r.SentAt = &at
			f.sentIDs = append(f.sentIDs, id)
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeVaccinationRepo struct {
	repository.VaccinationRepository
	records map[uuid.UUID]*model.VaccinationRecord
}

func (f *fakeVaccinationRepo) Get(ctx context.Context, id uuid.UUID) (*model.VaccinationRecord, error) {
	r, ok := f.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r, nil
}

type fakePetRepo struct {
	repository.PetRepository
	pets map[uuid.UUID]*model.Pet
}

func (f *fakePetRepo) Get(ctx context.Context, id uuid.UUID) (*model.Pet, error) {
	p, ok := f.pets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

type fakeUserRepo struct {
	repository.UserRepository
	users map[uuid.UUID]*model.User
}

func (f *fakeUserRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

type flakyChannel struct {
	sent    []notifier.Message
	failFor map[string]error
}

func (c *flakyChannel) Send(ctx context.Context, msg notifier.Message) error {
	if err, ok := c.failFor[msg.Recipient]; ok {
		return err
	}
	c.sent = append(c.sent, msg)
	return nil
}

type fixture struct {
	dispatcher *Dispatcher
	reminders  *fakeReminderRepo
	channel    *flakyChannel
	now        time.Time
}

func newFixture() *fixture {
	now := time.Date(2026, 9, 8, 10, 0, 0, 0, time.UTC)

	owner := &model.User{Email: "owner@example.com"}
	owner.ID = uuid.New()

	pet := &model.Pet{Name: "Luna"}
	pet.ID = uuid.New()

	vet := "Dr. Serrano"
	nextDue := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	record := &model.VaccinationRecord{
		PetID:        pet.ID,
		VaccineName:  "Rabies",
		Status:       model.VaccinationStatusPending,
		NextDueDate:  &nextDue,
		Veterinarian: &vet,
	}
	record.ID = uuid.New()

	due := &model.Reminder{
		VaccinationID: record.ID,
		UserID:        owner.ID,
		Kind:          model.ReminderKindUpcoming,
		Method:        model.MethodEmail,
		LeadDays:      7,
		TriggerAt:     now.Add(-time.Hour),
		Active:        true,
	}
	due.ID = uuid.New()

	notYet := &model.Reminder{
		VaccinationID: record.ID,
		UserID:        owner.ID,
		Kind:          model.ReminderKindUpcoming,
		Method:        model.MethodEmail,
		LeadDays:      1,
		TriggerAt:     now.AddDate(0, 0, 6),
		Active:        true,
	}
	notYet.ID = uuid.New()

	reminders := &fakeReminderRepo{due: []*model.Reminder{due, notYet}}
	channel := &flakyChannel{failFor: map[string]error{}}

	n := notifier.New()
	n.Register(model.MethodEmail, channel)

	d := NewDispatcher(
		reminders,
		&fakeVaccinationRepo{records: map[uuid.UUID]*model.VaccinationRecord{record.ID: record}},
		&fakePetRepo{pets: map[uuid.UUID]*model.Pet{pet.ID: pet}},
		&fakeUserRepo{users: map[uuid.UUID]*model.User{owner.ID: owner}},
		n,
		DispatcherConfig{PollInterval: time.Minute},
		logger.NewLogger(nil),
		testMetrics,
	)
	return &fixture{dispatcher: d, reminders: reminders, channel: channel, now: now}
}

func TestRunSendsDueRemindersAndMarksThemSent(t *testing.T) {
	f := newFixture()

	report, err := f.dispatcher.Run(context.Background(), f.now, Options{})
	require.NoError(t, err)
	assert.Equal(t, Report{Total: 1, Sent: 1, Failed: 0}, report)

	require.Len(t, f.channel.sent, 1)
	msg := f.channel.sent[0]
	assert.Equal(t, "owner@example.com", msg.Recipient)
	assert.Contains(t, msg.Subject, "Rabies")
	assert.Contains(t, msg.Subject, "Luna")
	assert.Contains(t, msg.Body, "Sep 15, 2026")
	assert.Contains(t, msg.Body, "Dr. Serrano")

	require.Len(t, f.reminders.sentIDs, 1)

	// A second run finds nothing; the reminder is sent.
	report, err = f.dispatcher.Run(context.Background(), f.now, Options{})
	require.NoError(t, err)
	assert.Zero(t, report.Total)
}

func TestRunCustomMessageWinsOverTemplate(t *testing.T) {
	f := newFixture()
	custom := "Luna needs her shot, ask for Dr. Serrano."
	f.reminders.due[0].Message = &custom

	_, err := f.dispatcher.Run(context.Background(), f.now, Options{})
	require.NoError(t, err)
	require.Len(t, f.channel.sent, 1)
	assert.Equal(t, custom, f.channel.sent[0].Body)
}

func TestRunDeliveryFailureLeavesReminderUnsent(t *testing.T) {
	f := newFixture()
	f.channel.failFor["owner@example.com"] = errors.New("connection refused")

	report, err := f.dispatcher.Run(context.Background(), f.now, Options{})
	require.NoError(t, err)
	assert.Equal(t, Report{Total: 1, Sent: 0, Failed: 1}, report)
	assert.Empty(t, f.reminders.sentIDs)
	assert.False(t, f.reminders.due[0].Sent)
}

func TestRunDryRunDeliversNothingAndMutatesNothing(t *testing.T) {
	f := newFixture()

	report, err := f.dispatcher.Run(context.Background(), f.now, Options{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, Report{Total: 1, Sent: 1, Failed: 0}, report)
	assert.Empty(t, f.channel.sent)
	assert.Empty(t, f.reminders.sentIDs)

	// The same reminder is still due on the next real run.
	report, err = f.dispatcher.Run(context.Background(), f.now, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent)
}

func TestRunMethodFilter(t *testing.T) {
	f := newFixture()
	method := model.MethodSMS

	report, err := f.dispatcher.Run(context.Background(), f.now, Options{Method: &method})
	require.NoError(t, err)
	assert.Zero(t, report.Total)
	require.NotNil(t, f.reminders.lastFilter)
	assert.Equal(t, &method, f.reminders.lastFilter.Method)
}

func TestRunMethodFilterLeavesOtherMethodsDue(t *testing.T) {
	f := newFixture()

	smsDue := &model.Reminder{
		VaccinationID: f.reminders.due[0].VaccinationID,
		UserID:        f.reminders.due[0].UserID,
		Kind:          model.ReminderKindUpcoming,
		Method:        model.MethodSMS,
		LeadDays:      7,
		TriggerAt:     f.now.Add(-time.Hour),
		Active:        true,
	}
	smsDue.ID = uuid.New()
	f.reminders.due = append(f.reminders.due, smsDue)

	method := model.MethodEmail
	report, err := f.dispatcher.Run(context.Background(), f.now, Options{Method: &method})
	require.NoError(t, err)
	assert.Equal(t, Report{Total: 1, Sent: 1, Failed: 0}, report)

	assert.False(t, smsDue.Sent)
	assert.True(t, smsDue.IsDue(f.now))
}

func TestRunInactiveReminderIsIgnored(t *testing.T) {
	f := newFixture()
	f.reminders.due[0].Active = false

	report, err := f.dispatcher.Run(context.Background(), f.now, Options{})
	require.NoError(t, err)
	assert.Zero(t, report.Total)
}
