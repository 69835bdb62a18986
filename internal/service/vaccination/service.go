package vaccination

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/petfans/petfans-api/internal/model"
	"github.com/petfans/petfans-api/internal/repository"
	"github.com/petfans/petfans-api/internal/service/reminder"
)

type Service struct {
	repo      repository.VaccinationRepository
	pets      repository.PetRepository
	reminders *reminder.Service
	outbox    repository.OutboxRepository
}

func NewService(repo repository.VaccinationRepository, pets repository.PetRepository, reminders *reminder.Service, outbox repository.OutboxRepository) *Service {
	return &Service{
		repo:      repo,
		pets:      pets,
		reminders: reminders,
		outbox:    outbox,
	}
}

// CreateVaccination records a vaccine for a pet. When the record lands
// in a reminder-eligible state the standard reminder set is derived
// immediately.
func (s *Service) CreateVaccination(ctx context.Context, req *model.CreateVaccinationRequest) (*model.VaccinationRecord, error) {
	petID, err := uuid.Parse(req.PetID)
	if err != nil {
		return nil, fmt.Errorf("invalid pet id: %w", err)
	}
	if _, err := s.pets.Get(ctx, petID); err != nil {
		return nil, fmt.Errorf("failed to load pet: %w", err)
	}

	status := model.VaccinationStatusPending
	if req.Status != "" {
		status = model.VaccinationStatus(req.Status)
	}

	record := &model.VaccinationRecord{
		PetID:        petID,
		VaccineName:  req.VaccineName,
		Status:       status,
		AppliedDate:  req.AppliedDate,
		NextDueDate:  req.NextDueDate,
		Veterinarian: req.Veterinarian,
		Notes:        req.Notes,
	}
	record.ID = uuid.New()
	record.CreatedAt = time.Now()
	record.UpdatedAt = record.CreatedAt

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create vaccination: %w", err)
	}

	if err := s.emitEvent(ctx, model.EventVaccinationCreated, record); err != nil {
		return nil, err
	}

	if record.ReminderEligible() {
		if _, err := s.reminders.Reconcile(ctx, record); err != nil {
			return nil, fmt.Errorf("failed to derive reminders: %w", err)
		}
	}
	return record, nil
}

func (s *Service) GetVaccination(ctx context.Context, id uuid.UUID) (*model.VaccinationRecord, error) {
	return s.repo.Get(ctx, id)
}

// UpdateVaccination applies partial edits. A due-date change shifts the
// trigger times of the record's unsent reminders and fills in any
// reminders that do not exist yet.
func (s *Service) UpdateVaccination(ctx context.Context, id uuid.UUID, req *model.UpdateVaccinationRequest) (*model.VaccinationRecord, error) {
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	dueChanged := false
	if req.VaccineName != nil {
		record.VaccineName = *req.VaccineName
	}
	if req.Status != nil {
		record.Status = model.VaccinationStatus(*req.Status)
	}
	if req.AppliedDate != nil {
		record.AppliedDate = req.AppliedDate
	}
	if req.NextDueDate != nil {
		if record.NextDueDate == nil || !record.NextDueDate.Equal(*req.NextDueDate) {
			dueChanged = true
		}
		record.NextDueDate = req.NextDueDate
	}
	if req.Veterinarian != nil {
		record.Veterinarian = req.Veterinarian
	}
	if req.Notes != nil {
		record.Notes = req.Notes
	}
	record.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to update vaccination: %w", err)
	}

	if err := s.emitEvent(ctx, model.EventVaccinationUpdated, record); err != nil {
		return nil, err
	}
	if dueChanged {
		if err := s.emitEvent(ctx, model.EventVaccinationDueDateSet, record); err != nil {
			return nil, err
		}
	}

	if record.ReminderEligible() {
		if dueChanged {
			if err := s.reminders.RecomputeTriggers(ctx, record.ID, *record.NextDueDate); err != nil {
				return nil, err
			}
		}
		if _, err := s.reminders.Reconcile(ctx, record); err != nil {
			return nil, fmt.Errorf("failed to derive reminders: %w", err)
		}
	}
	return record, nil
}

// MarkApplied transitions a record to applied as of the given date.
// Pending reminders stay in place for history but will no longer match
// newly derived sets.
func (s *Service) MarkApplied(ctx context.Context, id uuid.UUID, date time.Time) (*model.VaccinationRecord, error) {
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	record.MarkApplied(date)
	record.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to mark vaccination applied: %w", err)
	}

	if err := s.emitEvent(ctx, model.EventVaccinationUpdated, record); err != nil {
		return nil, err
	}
	return record, nil
}

// DeleteVaccination removes the record; its reminders go with it via
// the foreign key cascade.
func (s *Service) DeleteVaccination(ctx context.Context, id uuid.UUID) error {
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete vaccination: %w", err)
	}
	return s.emitEvent(ctx, model.EventVaccinationDeleted, record)
}

func (s *Service) ListVaccinations(ctx context.Context, filter *model.VaccinationFilter) ([]*model.VaccinationRecord, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) emitEvent(ctx context.Context, eventType string, record *model.VaccinationRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	event := &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   payload,
		Status:    string(model.OutboxStatusPending),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.outbox.Create(ctx, event); err != nil {
		return fmt.Errorf("failed to enqueue %s event: %w", eventType, err)
	}
	return nil
}
