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

type speciesRepository struct {
	db *sqlx.DB
}

func NewSpeciesRepository(db *sqlx.DB) repository.SpeciesRepository {
	return &speciesRepository{db: db}
}

func (r *speciesRepository) Create(ctx context.Context, species *model.Species) error {
	query := `
		INSERT INTO species (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`
	species.ID = uuid.New()
	species.CreatedAt = time.Now()
	species.UpdatedAt = species.CreatedAt

	_, err := r.db.ExecContext(ctx, query, species.ID, species.Name, species.CreatedAt, species.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create species: %w", err)
	}
	return nil
}

func (r *speciesRepository) Get(ctx context.Context, id uuid.UUID) (*model.Species, error) {
	query := `SELECT id, name, created_at, updated_at FROM species WHERE id = $1`

	var species model.Species
	err := r.db.GetContext(ctx, &species, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get species: %w", err)
	}
	return &species, nil
}

func (r *speciesRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Species with pets are protected by the FK RESTRICT constraint.
	result, err := r.db.ExecContext(ctx, `DELETE FROM species WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete species: %w", err)
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

func (r *speciesRepository) List(ctx context.Context) ([]*model.Species, error) {
	query := `SELECT id, name, created_at, updated_at FROM species ORDER BY name ASC`

	var species []*model.Species
	if err := r.db.SelectContext(ctx, &species, query); err != nil {
		return nil, fmt.Errorf("failed to list species: %w", err)
	}
	return species, nil
}

func (r *speciesRepository) CreateBreed(ctx context.Context, breed *model.Breed) error {
	query := `
		INSERT INTO breeds (id, name, species_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	breed.ID = uuid.New()
	breed.CreatedAt = time.Now()
	breed.UpdatedAt = breed.CreatedAt

	_, err := r.db.ExecContext(ctx, query, breed.ID, breed.Name, breed.SpeciesID, breed.CreatedAt, breed.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create breed: %w", err)
	}
	return nil
}

func (r *speciesRepository) GetBreed(ctx context.Context, id uuid.UUID) (*model.Breed, error) {
	query := `SELECT id, name, species_id, created_at, updated_at FROM breeds WHERE id = $1`

	var breed model.Breed
	err := r.db.GetContext(ctx, &breed, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get breed: %w", err)
	}
	return &breed, nil
}

func (r *speciesRepository) UpdateBreed(ctx context.Context, breed *model.Breed) error {
	query := `UPDATE breeds SET name = $1, updated_at = $2 WHERE id = $3`
	breed.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query, breed.Name, breed.UpdatedAt, breed.ID)
	if err != nil {
		return fmt.Errorf("failed to update breed: %w", err)
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

func (r *speciesRepository) DeleteBreed(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM breeds WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete breed: %w", err)
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

func (r *speciesRepository) ListBreeds(ctx context.Context, speciesID *uuid.UUID) ([]*model.Breed, error) {
	query := `SELECT id, name, species_id, created_at, updated_at FROM breeds`
	args := []interface{}{}

	if speciesID != nil {
		query += ` WHERE species_id = $1`
		args = append(args, *speciesID)
	}
	query += ` ORDER BY name ASC`

	var breeds []*model.Breed
	if err := r.db.SelectContext(ctx, &breeds, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list breeds: %w", err)
	}
	return breeds, nil
}
