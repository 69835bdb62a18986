package reminder

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petfans/petfans-api/internal/model"
	"github.com/petfans/petfans-api/internal/repository"
)

type fakeReminderRepo struct {
	repository.ReminderRepository
	created      []*model.Reminder
	existing     map[string]bool
	recomputedID uuid.UUID
	recomputedTo time.Time
}

func dupKey(r *model.Reminder) string {
	return fmt.Sprintf("%s|%s|%s|%d", r.VaccinationID, r.UserID, r.Kind, r.LeadDays)
}

func (f *fakeReminderRepo) Create(ctx context.Context, r *model.Reminder) error {
	if f.existing[dupKey(r)] {
		return repository.ErrDuplicateReminder
	}
	if f.existing == nil {
		f.existing = map[string]bool{}
	}
	f.existing[dupKey(r)] = true
	f.created = append(f.created, r)
	return nil
}

func (f *fakeReminderRepo) UpdateTriggers(ctx context.Context, vaccinationID uuid.UUID, nextDue time.Time) error {
	f.recomputedID = vaccinationID
	f.recomputedTo = nextDue
	return nil
}

type fakePetRepo struct {
	repository.PetRepository
	pet    *model.Pet
	owners []*model.User
}

func (f *fakePetRepo) Get(ctx context.Context, id uuid.UUID) (*model.Pet, error) {
	return f.pet, nil
}

func (f *fakePetRepo) ListOwners(ctx context.Context, petID uuid.UUID) ([]*model.User, error) {
	return f.owners, nil
}

type fakeVaccinationRepo struct {
	repository.VaccinationRepository
	record *model.VaccinationRecord
}

func (f *fakeVaccinationRepo) Get(ctx context.Context, id uuid.UUID) (*model.VaccinationRecord, error) {
	if f.record == nil {
		return nil, repository.ErrNotFound
	}
	return f.record, nil
}

func newOwner(email string) *model.User {
	u := &model.User{Email: email}
	u.ID = uuid.New()
	return u
}

func eligibleRecord(nextDue time.Time) *model.VaccinationRecord {
	rec := &model.VaccinationRecord{
		PetID:       uuid.New(),
		VaccineName: "Rabies",
		Status:      model.VaccinationStatusPending,
		NextDueDate: &nextDue,
	}
	rec.ID = uuid.New()
	return rec
}

func TestReconcileCreatesRemindersPerOwnerPerLeadTime(t *testing.T) {
	nextDue := time.Date(2026, 9, 15, 14, 30, 0, 0, time.UTC)
	rec := eligibleRecord(nextDue)

	reminders := &fakeReminderRepo{}
	pets := &fakePetRepo{
		pet:    &model.Pet{Name: "Luna"},
		owners: []*model.User{newOwner("a@example.com"), newOwner("b@example.com")},
	}

	svc := NewService(reminders, &fakeVaccinationRepo{}, pets)
	created, err := svc.Reconcile(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, 4, created)
	require.Len(t, reminders.created, 4)

	for _, r := range reminders.created {
		assert.Equal(t, rec.ID, r.VaccinationID)
		assert.Equal(t, model.ReminderKindUpcoming, r.Kind)
		assert.Equal(t, model.MethodEmail, r.Method)
		assert.True(t, r.Active)
		assert.False(t, r.Sent)
		require.NotNil(t, r.Message)
		assert.Contains(t, *r.Message, "Luna")
		assert.Contains(t, *r.Message, "Rabies")
	}

	// Triggers land at UTC midnight, 7 and 1 days ahead of the due date.
	assert.Equal(t, time.Date(2026, 9, 8, 0, 0, 0, 0, time.UTC), reminders.created[0].TriggerAt)
	assert.Equal(t, time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC), reminders.created[1].TriggerAt)
	assert.Contains(t, *reminders.created[1].Message, "tomorrow")
}

func TestReconcileIsIdempotent(t *testing.T) {
	nextDue := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	rec := eligibleRecord(nextDue)

	reminders := &fakeReminderRepo{}
	pets := &fakePetRepo{pet: &model.Pet{Name: "Luna"}, owners: []*model.User{newOwner("a@example.com")}}
	svc := NewService(reminders, &fakeVaccinationRepo{}, pets)

	created, err := svc.Reconcile(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	created, err = svc.Reconcile(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Len(t, reminders.created, 2)
}

func TestReconcileSkipsIneligibleRecords(t *testing.T) {
	reminders := &fakeReminderRepo{}
	svc := NewService(reminders, &fakeVaccinationRepo{}, &fakePetRepo{})

	applied := time.Now()
	rec := eligibleRecord(time.Now().AddDate(0, 1, 0))
	rec.MarkApplied(applied)

	created, err := svc.Reconcile(context.Background(), rec)
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Empty(t, reminders.created)

	noDue := &model.VaccinationRecord{Status: model.VaccinationStatusPending}
	created, err = svc.Reconcile(context.Background(), noDue)
	require.NoError(t, err)
	assert.Zero(t, created)
}

func TestRecomputeTriggers(t *testing.T) {
	reminders := &fakeReminderRepo{}
	svc := NewService(reminders, &fakeVaccinationRepo{}, &fakePetRepo{})

	id := uuid.New()
	due := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, svc.RecomputeTriggers(context.Background(), id, due))
	assert.Equal(t, id, reminders.recomputedID)
	assert.Equal(t, due, reminders.recomputedTo)
}

func TestCreateReminderDerivesTriggerFromDueDate(t *testing.T) {
	nextDue := time.Date(2026, 11, 20, 9, 0, 0, 0, time.UTC)
	rec := eligibleRecord(nextDue)

	reminders := &fakeReminderRepo{}
	svc := NewService(reminders, &fakeVaccinationRepo{record: rec}, &fakePetRepo{})

	userID := uuid.New()
	r, err := svc.CreateReminder(context.Background(), userID, &model.CreateReminderRequest{
		VaccinationID: rec.ID.String(),
		Kind:          "scheduled",
		Method:        "email",
		LeadDays:      3,
	})
	require.NoError(t, err)
	assert.Equal(t, userID, r.UserID)
	assert.Equal(t, time.Date(2026, 11, 17, 0, 0, 0, 0, time.UTC), r.TriggerAt)
	assert.Nil(t, r.Message)
}

func TestCreateReminderWithoutDueDateRequiresExplicitTrigger(t *testing.T) {
	rec := &model.VaccinationRecord{Status: model.VaccinationStatusPending}
	rec.ID = uuid.New()

	svc := NewService(&fakeReminderRepo{}, &fakeVaccinationRepo{record: rec}, &fakePetRepo{})
	_, err := svc.CreateReminder(context.Background(), uuid.New(), &model.CreateReminderRequest{
		VaccinationID: rec.ID.String(),
		Kind:          "scheduled",
		Method:        "email",
	})
	assert.Error(t, err)

	at := time.Date(2026, 12, 1, 8, 0, 0, 0, time.UTC)
	r, err := svc.CreateReminder(context.Background(), uuid.New(), &model.CreateReminderRequest{
		VaccinationID: rec.ID.String(),
		Kind:          "scheduled",
		Method:        "email",
		TriggerAt:     &at,
	})
	require.NoError(t, err)
	assert.Equal(t, at, r.TriggerAt)
}
