package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/petfans/petfans-api/internal/model"
	"github.com/petfans/petfans-api/internal/repository"
)

type loginCodeRepository struct {
	BaseRepository
}

func NewLoginCodeRepository(db *sqlx.DB) repository.LoginCodeRepository {
	return &loginCodeRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *loginCodeRepository) Create(ctx context.Context, code *model.LoginCode) error {
	query := `
		INSERT INTO login_codes (id, email, code_hash, used, created_at, updated_at)
		VALUES ($1, $2, $3, FALSE, $4, $4)
	`
	code.ID = uuid.New()
	code.CreatedAt = time.Now()
	code.UpdatedAt = code.CreatedAt

	_, err := r.GetDB().ExecContext(ctx, query, code.ID, code.Email, code.CodeHash, code.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create login code: %w", err)
	}
	return nil
}

func (r *loginCodeRepository) ListRedeemable(ctx context.Context, email string, since time.Time) ([]*model.LoginCode, error) {
	query := `
		SELECT id, email, code_hash, used, created_at, updated_at
		FROM login_codes
		WHERE email = $1 AND used = FALSE AND created_at >= $2
		ORDER BY created_at DESC
	`
	var codes []*model.LoginCode
	if err := r.GetDB().SelectContext(ctx, &codes, query, email, since); err != nil {
		return nil, fmt.Errorf("failed to list login codes: %w", err)
	}
	return codes, nil
}

func (r *loginCodeRepository) MarkUsed(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE login_codes SET used = TRUE, updated_at = $1 WHERE id = $2 AND used = FALSE`

	result, err := r.GetDB().ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to mark login code used: %w", err)
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
