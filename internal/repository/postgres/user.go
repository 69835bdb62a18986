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

type userRepository struct {
	BaseRepository
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `SELECT id, email, created_at, updated_at FROM users WHERE id = $1`

	var user model.User
	err := r.GetDB().GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT id, email, created_at, updated_at FROM users WHERE email = $1`

	var user model.User
	err := r.GetDB().GetContext(ctx, &user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetOrCreateByEmail(ctx context.Context, email string) (*model.User, error) {
	now := time.Now()
	query := `
		INSERT INTO users (id, email, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (email) DO UPDATE SET updated_at = users.updated_at
		RETURNING id, email, created_at, updated_at
	`
	var user model.User
	if err := r.GetDB().GetContext(ctx, &user, query, uuid.New(), email, now); err != nil {
		return nil, fmt.Errorf("failed to get or create user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*model.UserProfile, error) {
	query := `SELECT user_id, full_name, phone_number, avatar_url FROM user_profiles WHERE user_id = $1`

	var profile model.UserProfile
	err := r.GetDB().GetContext(ctx, &profile, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return &model.UserProfile{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

func (r *userRepository) UpsertProfile(ctx context.Context, profile *model.UserProfile) error {
	query := `
		INSERT INTO user_profiles (user_id, full_name, phone_number, avatar_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET full_name = $2, phone_number = $3, avatar_url = $4
	`
	_, err := r.GetDB().ExecContext(ctx, query,
		profile.UserID,
		profile.FullName,
		profile.PhoneNumber,
		profile.AvatarURL,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}
