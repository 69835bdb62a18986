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

type petRepository struct {
	BaseRepository
}

func NewPetRepository(db *sqlx.DB) repository.PetRepository {
	return &petRepository{BaseRepository: NewBaseRepository(db)}
}

const petColumns = `
	id, name, species_id, breed_id, sex, birth_date, description,
	photo_url, chip_number, sterilized, created_at, updated_at
`

func (r *petRepository) Create(ctx context.Context, pet *model.Pet, ownerIDs []uuid.UUID) error {
	pet.ID = uuid.New()
	pet.CreatedAt = time.Now()
	pet.UpdatedAt = pet.CreatedAt

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO pets (` + petColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`
		_, err := tx.ExecContext(ctx, query,
			pet.ID,
			pet.Name,
			pet.SpeciesID,
			pet.BreedID,
			pet.Sex,
			pet.BirthDate,
			pet.Description,
			pet.PhotoURL,
			pet.ChipNumber,
			pet.Sterilized,
			pet.CreatedAt,
			pet.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create pet: %w", err)
		}

		for _, ownerID := range ownerIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO pet_owners (pet_id, user_id, created_at) VALUES ($1, $2, $3)`,
				pet.ID, ownerID, pet.CreatedAt,
			); err != nil {
				return fmt.Errorf("failed to link owner: %w", err)
			}
		}
		return nil
	})
}

func (r *petRepository) Get(ctx context.Context, id uuid.UUID) (*model.Pet, error) {
	query := `SELECT ` + petColumns + ` FROM pets WHERE id = $1`

	var pet model.Pet
	err := r.GetDB().GetContext(ctx, &pet, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pet: %w", err)
	}
	return &pet, nil
}

func (r *petRepository) Update(ctx context.Context, pet *model.Pet) error {
	query := `
		UPDATE pets
		SET name = $1, breed_id = $2, sex = $3, birth_date = $4, description = $5,
			photo_url = $6, chip_number = $7, sterilized = $8, updated_at = $9
		WHERE id = $10
	`
	pet.UpdatedAt = time.Now()

	result, err := r.GetDB().ExecContext(ctx, query,
		pet.Name,
		pet.BreedID,
		pet.Sex,
		pet.BirthDate,
		pet.Description,
		pet.PhotoURL,
		pet.ChipNumber,
		pet.Sterilized,
		pet.UpdatedAt,
		pet.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update pet: %w", err)
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

func (r *petRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Vaccinations, reminders and owner links cascade with the pet.
	result, err := r.GetDB().ExecContext(ctx, `DELETE FROM pets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete pet: %w", err)
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

func (r *petRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*model.Pet, error) {
	query := `
		SELECT p.id, p.name, p.species_id, p.breed_id, p.sex, p.birth_date, p.description,
			   p.photo_url, p.chip_number, p.sterilized, p.created_at, p.updated_at
		FROM pets p
		JOIN pet_owners po ON po.pet_id = p.id
		WHERE po.user_id = $1
		ORDER BY p.created_at DESC
	`
	var pets []*model.Pet
	if err := r.GetDB().SelectContext(ctx, &pets, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to list pets: %w", err)
	}
	return pets, nil
}

func (r *petRepository) AddOwner(ctx context.Context, petID, userID uuid.UUID) error {
	query := `
		INSERT INTO pet_owners (pet_id, user_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (pet_id, user_id) DO NOTHING
	`
	if _, err := r.GetDB().ExecContext(ctx, query, petID, userID, time.Now()); err != nil {
		return fmt.Errorf("failed to add owner: %w", err)
	}
	return nil
}

func (r *petRepository) RemoveOwner(ctx context.Context, petID, userID uuid.UUID) error {
	result, err := r.GetDB().ExecContext(ctx,
		`DELETE FROM pet_owners WHERE pet_id = $1 AND user_id = $2`, petID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove owner: %w", err)
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

func (r *petRepository) ListOwners(ctx context.Context, petID uuid.UUID) ([]*model.User, error) {
	query := `
		SELECT u.id, u.email, u.created_at, u.updated_at
		FROM users u
		JOIN pet_owners po ON po.user_id = u.id
		WHERE po.pet_id = $1
		ORDER BY po.created_at ASC
	`
	var owners []*model.User
	if err := r.GetDB().SelectContext(ctx, &owners, query, petID); err != nil {
		return nil, fmt.Errorf("failed to list owners: %w", err)
	}
	return owners, nil
}

func (r *petRepository) IsOwner(ctx context.Context, petID, userID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM pet_owners WHERE pet_id = $1 AND user_id = $2)`

	var isOwner bool
	if err := r.GetDB().GetContext(ctx, &isOwner, query, petID, userID); err != nil {
		return false, fmt.Errorf("failed to check ownership: %w", err)
	}
	return isOwner, nil
}
