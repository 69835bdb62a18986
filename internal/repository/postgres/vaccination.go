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

type vaccinationRepository struct {
	BaseRepository
}

func NewVaccinationRepository(db *sqlx.DB) repository.VaccinationRepository {
	return &vaccinationRepository{BaseRepository: NewBaseRepository(db)}
}

const vaccinationColumns = `
	id, pet_id, vaccine_name, status, applied_date, next_due_date,
	veterinarian, notes, created_at, updated_at
`

func (r *vaccinationRepository) Create(ctx context.Context, record *model.VaccinationRecord) error {
	query := `
		INSERT INTO vaccinations (` + vaccinationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	record.ID = uuid.New()
	record.CreatedAt = time.Now()
	record.UpdatedAt = record.CreatedAt
	if record.Status == "" {
		record.Status = model.VaccinationStatusPending
	}

	_, err := r.GetDB().ExecContext(ctx, query,
		record.ID,
		record.PetID,
		record.VaccineName,
		record.Status,
		record.AppliedDate,
		record.NextDueDate,
		record.Veterinarian,
		record.Notes,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create vaccination record: %w", err)
	}
	return nil
}

func (r *vaccinationRepository) Get(ctx context.Context, id uuid.UUID) (*model.VaccinationRecord, error) {
	query := `SELECT ` + vaccinationColumns + ` FROM vaccinations WHERE id = $1`

	var record model.VaccinationRecord
	err := r.GetDB().GetContext(ctx, &record, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vaccination record: %w", err)
	}
	return &record, nil
}

func (r *vaccinationRepository) Update(ctx context.Context, record *model.VaccinationRecord) error {
	query := `
		UPDATE vaccinations
		SET vaccine_name = $1, status = $2, applied_date = $3, next_due_date = $4,
			veterinarian = $5, notes = $6, updated_at = $7
		WHERE id = $8
	`
	record.UpdatedAt = time.Now()

	result, err := r.GetDB().ExecContext(ctx, query,
		record.VaccineName,
		record.Status,
		record.AppliedDate,
		record.NextDueDate,
		record.Veterinarian,
		record.Notes,
		record.UpdatedAt,
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update vaccination record: %w", err)
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

func (r *vaccinationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Reminders cascade with the record.
	result, err := r.GetDB().ExecContext(ctx, `DELETE FROM vaccinations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete vaccination record: %w", err)
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

func (r *vaccinationRepository) List(ctx context.Context, filter *model.VaccinationFilter) ([]*model.VaccinationRecord, error) {
	query := `
		SELECT v.id, v.pet_id, v.vaccine_name, v.status, v.applied_date, v.next_due_date,
			   v.veterinarian, v.notes, v.created_at, v.updated_at
		FROM vaccinations v`
	args := []interface{}{}
	where := ""
	argCount := 1

	if filter != nil && filter.OwnerID != nil {
		query += ` JOIN pet_owners po ON po.pet_id = v.pet_id`
		where += fmt.Sprintf(" AND po.user_id = $%d", argCount)
		args = append(args, *filter.OwnerID)
		argCount++
	}
	if filter != nil && filter.PetID != nil {
		where += fmt.Sprintf(" AND v.pet_id = $%d", argCount)
		args = append(args, *filter.PetID)
		argCount++
	}
	if filter != nil && filter.Status != nil {
		where += fmt.Sprintf(" AND v.status = $%d", argCount)
		args = append(args, *filter.Status)
		argCount++
	}

	if where != "" {
		query += " WHERE" + where[4:]
	}
	query += ` ORDER BY v.applied_date DESC NULLS LAST, v.created_at DESC`

	var records []*model.VaccinationRecord
	if err := r.GetDB().SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list vaccination records: %w", err)
	}
	return records, nil
}
