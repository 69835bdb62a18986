package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestVaccinationIsOverdue(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		record VaccinationRecord
		want   bool
	}{
		{
			name:   "pending with past due date",
			record: VaccinationRecord{Status: VaccinationStatusPending, NextDueDate: datePtr(2024, 5, 20)},
			want:   true,
		},
		{
			name:   "scheduled with past due date",
			record: VaccinationRecord{Status: VaccinationStatusScheduled, NextDueDate: datePtr(2024, 5, 20)},
			want:   true,
		},
		{
			name:   "pending with future due date",
			record: VaccinationRecord{Status: VaccinationStatusPending, NextDueDate: datePtr(2024, 7, 1)},
			want:   false,
		},
		{
			name:   "pending due today is not overdue",
			record: VaccinationRecord{Status: VaccinationStatusPending, NextDueDate: datePtr(2024, 6, 1)},
			want:   false,
		},
		{
			name:   "applied ignores the date",
			record: VaccinationRecord{Status: VaccinationStatusApplied, NextDueDate: datePtr(2024, 5, 20)},
			want:   false,
		},
		{
			name:   "overdue flag ignores the date",
			record: VaccinationRecord{Status: VaccinationStatusOverdue, NextDueDate: datePtr(2024, 5, 20)},
			want:   false,
		},
		{
			name:   "no due date",
			record: VaccinationRecord{Status: VaccinationStatusPending},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.record.IsOverdue(now))
		})
	}
}

func TestVaccinationReminderEligible(t *testing.T) {
	due := datePtr(2024, 7, 1)

	assert.True(t, (&VaccinationRecord{Status: VaccinationStatusPending, NextDueDate: due}).ReminderEligible())
	assert.True(t, (&VaccinationRecord{Status: VaccinationStatusScheduled, NextDueDate: due}).ReminderEligible())
	assert.False(t, (&VaccinationRecord{Status: VaccinationStatusApplied, NextDueDate: due}).ReminderEligible())
	assert.False(t, (&VaccinationRecord{Status: VaccinationStatusOverdue, NextDueDate: due}).ReminderEligible())
	assert.False(t, (&VaccinationRecord{Status: VaccinationStatusPending}).ReminderEligible())
}

func TestMarkApplied(t *testing.T) {
	record := VaccinationRecord{Status: VaccinationStatusPending}
	applied := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)

	record.MarkApplied(applied)

	assert.Equal(t, VaccinationStatusApplied, record.Status)
	assert.Equal(t, applied, *record.AppliedDate)
}
