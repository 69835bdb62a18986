package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReminderIsDue(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		reminder Reminder
		want     bool
	}{
		{
			name:     "trigger passed, unsent, active",
			reminder: Reminder{TriggerAt: now.AddDate(0, 0, -1), Sent: false, Active: true},
			want:     true,
		},
		{
			name:     "trigger exactly now",
			reminder: Reminder{TriggerAt: now, Sent: false, Active: true},
			want:     true,
		},
		{
			name:     "trigger in the future",
			reminder: Reminder{TriggerAt: now.AddDate(0, 0, 1), Sent: false, Active: true},
			want:     false,
		},
		{
			name:     "already sent",
			reminder: Reminder{TriggerAt: now.AddDate(0, 0, -1), Sent: true, Active: true},
			want:     false,
		},
		{
			name:     "inactive",
			reminder: Reminder{TriggerAt: now.AddDate(0, 0, -1), Sent: false, Active: false},
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.reminder.IsDue(now))
		})
	}
}

func TestTriggerTime(t *testing.T) {
	due := time.Date(2024, 1, 15, 17, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), TriggerTime(due, 7))
	assert.Equal(t, time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC), TriggerTime(due, 1))
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), TriggerTime(due, 0))
}

func TestTriggerTimeCrossesMonthBoundary(t *testing.T) {
	due := time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 2, 25, 0, 0, 0, 0, time.UTC), TriggerTime(due, 7))
}
