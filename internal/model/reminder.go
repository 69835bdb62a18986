package model

import (
	"time"

	"github.com/google/uuid"
)

type ReminderKind string

const (
	ReminderKindUpcoming  ReminderKind = "upcoming"
	ReminderKindOverdue   ReminderKind = "overdue"
	ReminderKindScheduled ReminderKind = "scheduled"
)

type NotificationMethod string

const (
	MethodEmail NotificationMethod = "email"
	MethodSMS   NotificationMethod = "sms"
	MethodPush  NotificationMethod = "push"
)

// Lead times for the reminders derived from a vaccination's due date.
var DefaultLeadDays = []int{7, 1}

// Reminder is one scheduled notification about a vaccination, addressed
// to a single owner. The tuple (vaccination, user, kind, lead days) is
// unique; Sent only ever transitions false to true.
type Reminder struct {
	Base
	VaccinationID uuid.UUID          `db:"vaccination_id" json:"vaccination_id"`
	UserID        uuid.UUID          `db:"user_id" json:"user_id"`
	Kind          ReminderKind       `db:"kind" json:"kind"`
	Method        NotificationMethod `db:"method" json:"method"`
	LeadDays      int                `db:"lead_days" json:"lead_days"`
	TriggerAt     time.Time          `db:"trigger_at" json:"trigger_at"`
	Message       *string            `db:"message" json:"message,omitempty"`
	Sent          bool               `db:"sent" json:"sent"`
	Active        bool               `db:"active" json:"active"`
	SentAt        *time.Time         `db:"sent_at" json:"sent_at,omitempty"`
}

// IsDue reports whether the reminder should be dispatched at the given
// instant: trigger passed, not yet sent, and not soft-disabled.
func (r *Reminder) IsDue(now time.Time) bool {
	return !r.TriggerAt.After(now) && !r.Sent && r.Active
}

// TriggerTime computes when a reminder fires: the start of the calendar
// day that falls leadDays before the due date, in UTC.
func TriggerTime(nextDue time.Time, leadDays int) time.Time {
	d := nextDue.UTC().AddDate(0, 0, -leadDays)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

type CreateReminderRequest struct {
	VaccinationID string     `json:"vaccination_id" binding:"required,uuid"`
	Kind          string     `json:"kind" binding:"required,oneof=upcoming overdue scheduled"`
	Method        string     `json:"method" binding:"required,oneof=email sms push"`
	LeadDays      int        `json:"lead_days" binding:"min=0"`
	TriggerAt     *time.Time `json:"trigger_at"`
	Message       *string    `json:"message"`
}

type UpdateReminderRequest struct {
	Active  *bool   `json:"active"`
	Message *string `json:"message"`
}

// ReminderFilter narrows reminder listings and due queries.
type ReminderFilter struct {
	UserID *uuid.UUID
	PetID  *uuid.UUID
	Method *NotificationMethod
	Active *bool
	DueAt  *time.Time
}
