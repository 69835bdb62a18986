package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/petfans/petfans-api/internal/model"
)

// Sentinel errors surfaced by repository implementations.
var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateReminder is returned by ReminderRepository.Create when a
	// reminder with the same (vaccination, user, kind, lead days) tuple
	// already exists. The existing row is left untouched.
	ErrDuplicateReminder = errors.New("reminder already exists")
	// ErrAlreadySent is returned by MarkSent when the reminder was sent by
	// an earlier run; the sent state is never rewritten.
	ErrAlreadySent = errors.New("reminder already sent")
)

// All repository interfaces in one file
type (
	SpeciesRepository interface {
		Create(ctx context.Context, species *model.Species) error
		Get(ctx context.Context, id uuid.UUID) (*model.Species, error)
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Species, error)
		CreateBreed(ctx context.Context, breed *model.Breed) error
		GetBreed(ctx context.Context, id uuid.UUID) (*model.Breed, error)
		UpdateBreed(ctx context.Context, breed *model.Breed) error
		DeleteBreed(ctx context.Context, id uuid.UUID) error
		ListBreeds(ctx context.Context, speciesID *uuid.UUID) ([]*model.Breed, error)
	}

	PetRepository interface {
		Create(ctx context.Context, pet *model.Pet, ownerIDs []uuid.UUID) error
		Get(ctx context.Context, id uuid.UUID) (*model.Pet, error)
		Update(ctx context.Context, pet *model.Pet) error
		Delete(ctx context.Context, id uuid.UUID) error
		ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*model.Pet, error)
		AddOwner(ctx context.Context, petID, userID uuid.UUID) error
		RemoveOwner(ctx context.Context, petID, userID uuid.UUID) error
		ListOwners(ctx context.Context, petID uuid.UUID) ([]*model.User, error)
		IsOwner(ctx context.Context, petID, userID uuid.UUID) (bool, error)
	}

	UserRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		GetOrCreateByEmail(ctx context.Context, email string) (*model.User, error)
		GetProfile(ctx context.Context, userID uuid.UUID) (*model.UserProfile, error)
		UpsertProfile(ctx context.Context, profile *model.UserProfile) error
	}

	LoginCodeRepository interface {
		Create(ctx context.Context, code *model.LoginCode) error
		// ListRedeemable returns unused codes for the email created after
		// the cutoff, newest first.
		ListRedeemable(ctx context.Context, email string, since time.Time) ([]*model.LoginCode, error)
		MarkUsed(ctx context.Context, id uuid.UUID) error
	}

	VaccinationRepository interface {
		Create(ctx context.Context, record *model.VaccinationRecord) error
		Get(ctx context.Context, id uuid.UUID) (*model.VaccinationRecord, error)
		Update(ctx context.Context, record *model.VaccinationRecord) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filter *model.VaccinationFilter) ([]*model.VaccinationRecord, error)
	}

	ReminderRepository interface {
		Create(ctx context.Context, reminder *model.Reminder) error
		Get(ctx context.Context, id uuid.UUID) (*model.Reminder, error)
		Update(ctx context.Context, reminder *model.Reminder) error
		List(ctx context.Context, filter *model.ReminderFilter) ([]*model.Reminder, error)
		// FindDue returns unsent active reminders triggered at or before
		// asOf, ordered by trigger time ascending then creation descending.
		FindDue(ctx context.Context, asOf time.Time, filter *model.ReminderFilter) ([]*model.Reminder, error)
		// MarkSent flips sent exactly once; a second call returns ErrAlreadySent.
		MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error
		// UpdateTriggers recomputes trigger timestamps of the vaccination's
		// unsent reminders after a due-date change.
		UpdateTriggers(ctx context.Context, vaccinationID uuid.UUID, nextDue time.Time) error
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status string, errMsg *string, retryAt *time.Time) error
	}
)
