package model

import (
	"time"

	"github.com/google/uuid"
)

type VaccinationStatus string

const (
	VaccinationStatusPending   VaccinationStatus = "pending"
	VaccinationStatusApplied   VaccinationStatus = "applied"
	VaccinationStatusOverdue   VaccinationStatus = "overdue"
	VaccinationStatusScheduled VaccinationStatus = "scheduled"
)

// VaccinationRecord tracks one vaccine for one pet. Reminders are
// derived from NextDueDate while the record is in a reminder-eligible
// state (pending or scheduled with a due date set).
type VaccinationRecord struct {
	Base
	PetID        uuid.UUID         `db:"pet_id" json:"pet_id"`
	VaccineName  string            `db:"vaccine_name" json:"vaccine_name"`
	Status       VaccinationStatus `db:"status" json:"status"`
	AppliedDate  *time.Time        `db:"applied_date" json:"applied_date,omitempty"`
	NextDueDate  *time.Time        `db:"next_due_date" json:"next_due_date,omitempty"`
	Veterinarian *string           `db:"veterinarian" json:"veterinarian,omitempty"`
	Notes        *string           `db:"notes" json:"notes,omitempty"`
}

// IsOverdue reports whether the next dose date has passed. Records
// already marked applied or overdue are not re-checked against the date.
func (v *VaccinationRecord) IsOverdue(now time.Time) bool {
	if v.NextDueDate == nil {
		return false
	}
	if v.Status != VaccinationStatusPending && v.Status != VaccinationStatusScheduled {
		return false
	}
	return now.Truncate(24 * time.Hour).After(v.NextDueDate.Truncate(24 * time.Hour))
}

// ReminderEligible reports whether the record should have reminders
// derived from it.
func (v *VaccinationRecord) ReminderEligible() bool {
	if v.NextDueDate == nil {
		return false
	}
	return v.Status == VaccinationStatusPending || v.Status == VaccinationStatusScheduled
}

// MarkApplied transitions the record to applied as of the given date.
func (v *VaccinationRecord) MarkApplied(date time.Time) {
	v.Status = VaccinationStatusApplied
	v.AppliedDate = &date
}

type CreateVaccinationRequest struct {
	PetID        string     `json:"pet_id" binding:"required,uuid"`
	VaccineName  string     `json:"vaccine_name" binding:"required"`
	Status       string     `json:"status" binding:"omitempty,oneof=pending applied overdue scheduled"`
	AppliedDate  *time.Time `json:"applied_date"`
	NextDueDate  *time.Time `json:"next_due_date"`
	Veterinarian *string    `json:"veterinarian"`
	Notes        *string    `json:"notes"`
}

type UpdateVaccinationRequest struct {
	VaccineName  *string    `json:"vaccine_name"`
	Status       *string    `json:"status" binding:"omitempty,oneof=pending applied overdue scheduled"`
	AppliedDate  *time.Time `json:"applied_date"`
	NextDueDate  *time.Time `json:"next_due_date"`
	Veterinarian *string    `json:"veterinarian"`
	Notes        *string    `json:"notes"`
}

// VaccinationFilter narrows vaccination listings.
type VaccinationFilter struct {
	PetID   *uuid.UUID
	OwnerID *uuid.UUID
	Status  *VaccinationStatus
}
