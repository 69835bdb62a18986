package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/petfans/petfans-api/internal/model"
	"github.com/petfans/petfans-api/internal/repository"
)

type reminderRepository struct {
	BaseRepository
}

func NewReminderRepository(db *sqlx.DB) repository.ReminderRepository {
	return &reminderRepository{BaseRepository: NewBaseRepository(db)}
}

const reminderColumns = `
	id, vaccination_id, user_id, kind, method, lead_days, trigger_at,
	message, sent, active, sent_at, created_at, updated_at
`

// Create inserts a reminder unless one with the same
// (vaccination, user, kind, lead_days) tuple already exists. The existing
// row keeps its sent/active state; the caller gets ErrDuplicateReminder.
func (r *reminderRepository) Create(ctx context.Context, reminder *model.Reminder) error {
	query := `
		INSERT INTO reminders (` + reminderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (vaccination_id, user_id, kind, lead_days) DO NOTHING
	`
	reminder.ID = uuid.New()
	reminder.CreatedAt = time.Now()
	reminder.UpdatedAt = reminder.CreatedAt

	result, err := r.GetDB().ExecContext(ctx, query,
		reminder.ID,
		reminder.VaccinationID,
		reminder.UserID,
		reminder.Kind,
		reminder.Method,
		reminder.LeadDays,
		reminder.TriggerAt,
		reminder.Message,
		reminder.Sent,
		reminder.Active,
		reminder.SentAt,
		reminder.CreatedAt,
		reminder.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create reminder: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrDuplicateReminder
	}
	return nil
}

func (r *reminderRepository) Get(ctx context.Context, id uuid.UUID) (*model.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE id = $1`

	var reminder model.Reminder
	err := r.GetDB().GetContext(ctx, &reminder, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}
	return &reminder, nil
}

// Update changes the mutable fields only; sent/sent_at are owned by MarkSent.
func (r *reminderRepository) Update(ctx context.Context, reminder *model.Reminder) error {
	query := `
		UPDATE reminders
		SET active = $1, message = $2, trigger_at = $3, updated_at = $4
		WHERE id = $5
	`
	reminder.UpdatedAt = time.Now()

	result, err := r.GetDB().ExecContext(ctx, query,
		reminder.Active,
		reminder.Message,
		reminder.TriggerAt,
		reminder.UpdatedAt,
		reminder.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update reminder: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *reminderRepository) List(ctx context.Context, filter *model.ReminderFilter) ([]*model.Reminder, error) {
	query := `
		SELECT r.id, r.vaccination_id, r.user_id, r.kind, r.method, r.lead_days, r.trigger_at,
			   r.message, r.sent, r.active, r.sent_at, r.created_at, r.updated_at
		FROM reminders r
	`
	where, args, joined := buildReminderFilter(filter, 1)
	if joined {
		query += ` JOIN vaccinations v ON v.id = r.vaccination_id`
	}
	if where != "" {
		query += " WHERE " + where
	}
	query += ` ORDER BY r.trigger_at ASC, r.created_at DESC`

	var reminders []*model.Reminder
	if err := r.GetDB().SelectContext(ctx, &reminders, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return reminders, nil
}

// FindDue returns the dispatchable set: triggered, unsent, active.
func (r *reminderRepository) FindDue(ctx context.Context, asOf time.Time, filter *model.ReminderFilter) ([]*model.Reminder, error) {
	query := `
		SELECT r.id, r.vaccination_id, r.user_id, r.kind, r.method, r.lead_days, r.trigger_at,
			   r.message, r.sent, r.active, r.sent_at, r.created_at, r.updated_at
		FROM reminders r
	`
	where, args, joined := buildReminderFilter(filter, 2)
	if joined {
		query += ` JOIN vaccinations v ON v.id = r.vaccination_id`
	}

	query += ` WHERE r.trigger_at <= $1 AND r.sent = FALSE AND r.active = TRUE`
	if where != "" {
		query += " AND " + where
	}
	query += ` ORDER BY r.trigger_at ASC, r.created_at DESC`

	allArgs := append([]interface{}{asOf}, args...)

	var reminders []*model.Reminder
	if err := r.GetDB().SelectContext(ctx, &reminders, query, allArgs...); err != nil {
		return nil, fmt.Errorf("failed to find due reminders: %w", err)
	}
	return reminders, nil
}

// MarkSent is the only path that flips sent. The sent = FALSE guard makes
// the transition happen at most once even if two dispatch runs overlap.
func (r *reminderRepository) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE reminders
		SET sent = TRUE, sent_at = $1, updated_at = $1
		WHERE id = $2 AND sent = FALSE
	`
	result, err := r.GetDB().ExecContext(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrAlreadySent
	}
	return nil
}

// UpdateTriggers recomputes trigger timestamps of unsent reminders after
// the vaccination's next due date changed.
func (r *reminderRepository) UpdateTriggers(ctx context.Context, vaccinationID uuid.UUID, nextDue time.Time) error {
	query := `
		UPDATE reminders
		SET trigger_at = date_trunc('day', $1::timestamptz - lead_days * interval '1 day'),
			updated_at = NOW()
		WHERE vaccination_id = $2 AND sent = FALSE
	`
	if _, err := r.GetDB().ExecContext(ctx, query, nextDue.UTC(), vaccinationID); err != nil {
		return fmt.Errorf("failed to update reminder triggers: %w", err)
	}
	return nil
}

// buildReminderFilter renders the optional filter clauses, starting
// placeholder numbering at firstArg. joined reports whether the caller
// must join vaccinations for the pet filter.
func buildReminderFilter(filter *model.ReminderFilter, firstArg int) (string, []interface{}, bool) {
	if filter == nil {
		return "", nil, false
	}

	where := ""
	args := []interface{}{}
	argCount := firstArg
	joined := false

	and := func(clause string, value interface{}) {
		if where != "" {
			where += " AND "
		}
		where += fmt.Sprintf(clause, argCount)
		args = append(args, value)
		argCount++
	}

	if filter.UserID != nil {
		and("r.user_id = $%d", *filter.UserID)
	}
	if filter.PetID != nil {
		joined = true
		and("v.pet_id = $%d", *filter.PetID)
	}
	if filter.Method != nil {
		and("r.method = $%d", *filter.Method)
	}
	if filter.Active != nil {
		and("r.active = $%d", *filter.Active)
	}
	if filter.DueAt != nil {
		and("r.trigger_at <= $%d", *filter.DueAt)
		where += " AND r.sent = FALSE AND r.active = TRUE"
	}

	return where, args, joined
}
