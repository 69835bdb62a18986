package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/petfans/petfans-api/internal/model"
	"github.com/petfans/petfans-api/internal/repository"
)

type Service struct {
	reminders    repository.ReminderRepository
	vaccinations repository.VaccinationRepository
	pets         repository.PetRepository
}

func NewService(reminders repository.ReminderRepository, vaccinations repository.VaccinationRepository, pets repository.PetRepository) *Service {
	return &Service{
		reminders:    reminders,
		vaccinations: vaccinations,
		pets:         pets,
	}
}

// Reconcile derives the standard reminder set for a vaccination record:
// one reminder per owner per lead time, kind "upcoming", delivered by
// email. Reminders that already exist for a (vaccination, user, kind,
// lead days) tuple are left exactly as they are, so a record can be
// saved any number of times without resetting sent flags or custom
// messages. Returns the number of reminders actually created.
func (s *Service) Reconcile(ctx context.Context, record *model.VaccinationRecord) (int, error) {
	if !record.ReminderEligible() {
		return 0, nil
	}

	pet, err := s.pets.Get(ctx, record.PetID)
	if err != nil {
		return 0, fmt.Errorf("failed to load pet for reminders: %w", err)
	}

	owners, err := s.pets.ListOwners(ctx, record.PetID)
	if err != nil {
		return 0, fmt.Errorf("failed to list pet owners: %w", err)
	}

	created := 0
	for _, owner := range owners {
		for _, leadDays := range model.DefaultLeadDays {
			msg := defaultMessage(pet.Name, record.VaccineName, leadDays)
			r := &model.Reminder{
				VaccinationID: record.ID,
				UserID:        owner.ID,
				Kind:          model.ReminderKindUpcoming,
				Method:        model.MethodEmail,
				LeadDays:      leadDays,
				TriggerAt:     model.TriggerTime(*record.NextDueDate, leadDays),
				Message:       &msg,
				Active:        true,
			}
			r.ID = uuid.New()
			r.CreatedAt = time.Now()
			r.UpdatedAt = r.CreatedAt

			err := s.reminders.Create(ctx, r)
			if errors.Is(err, repository.ErrDuplicateReminder) {
				continue
			}
			if err != nil {
				return created, fmt.Errorf("failed to create reminder: %w", err)
			}
			created++
		}
	}
	return created, nil
}

// RecomputeTriggers shifts the trigger timestamps of a vaccination's
// unsent reminders after its due date changed. Sent reminders keep
// their historical trigger time.
func (s *Service) RecomputeTriggers(ctx context.Context, vaccinationID uuid.UUID, nextDue time.Time) error {
	if err := s.reminders.UpdateTriggers(ctx, vaccinationID, nextDue); err != nil {
		return fmt.Errorf("failed to recompute reminder triggers: %w", err)
	}
	return nil
}

// CreateReminder creates a one-off reminder for the calling user, on
// top of the auto-derived set. The trigger defaults to the lead-days
// offset from the vaccination's due date when not given explicitly.
func (s *Service) CreateReminder(ctx context.Context, userID uuid.UUID, req *model.CreateReminderRequest) (*model.Reminder, error) {
	vaccinationID, err := uuid.Parse(req.VaccinationID)
	if err != nil {
		return nil, fmt.Errorf("invalid vaccination id: %w", err)
	}

	record, err := s.vaccinations.Get(ctx, vaccinationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load vaccination: %w", err)
	}

	var triggerAt time.Time
	switch {
	case req.TriggerAt != nil:
		triggerAt = req.TriggerAt.UTC()
	case record.NextDueDate != nil:
		triggerAt = model.TriggerTime(*record.NextDueDate, req.LeadDays)
	default:
		return nil, fmt.Errorf("vaccination has no due date; trigger_at is required")
	}

	r := &model.Reminder{
		VaccinationID: vaccinationID,
		UserID:        userID,
		Kind:          model.ReminderKind(req.Kind),
		Method:        model.NotificationMethod(req.Method),
		LeadDays:      req.LeadDays,
		TriggerAt:     triggerAt,
		Message:       req.Message,
		Active:        true,
	}
	r.ID = uuid.New()
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt

	if err := s.reminders.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) GetReminder(ctx context.Context, id uuid.UUID) (*model.Reminder, error) {
	return s.reminders.Get(ctx, id)
}

// UpdateReminder applies partial edits. Only the active flag and the
// message can change after creation.
func (s *Service) UpdateReminder(ctx context.Context, id uuid.UUID, req *model.UpdateReminderRequest) (*model.Reminder, error) {
	r, err := s.reminders.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Active != nil {
		r.Active = *req.Active
	}
	if req.Message != nil {
		r.Message = req.Message
	}
	r.UpdatedAt = time.Now()

	if err := s.reminders.Update(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to update reminder: %w", err)
	}
	return r, nil
}

func (s *Service) ListReminders(ctx context.Context, filter *model.ReminderFilter) ([]*model.Reminder, error) {
	return s.reminders.List(ctx, filter)
}

func defaultMessage(petName, vaccineName string, leadDays int) string {
	if leadDays <= 1 {
		return fmt.Sprintf("%s's %s vaccine is due tomorrow. Book an appointment if you haven't yet.", petName, vaccineName)
	}
	return fmt.Sprintf("%s's %s vaccine is due in %d days.", petName, vaccineName, leadDays)
}
