package species

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/petfans/petfans-api/internal/model"
	"github.com/petfans/petfans-api/internal/repository"
)

// Service manages the species/breed catalog. The catalog is shared by
// all accounts and changes rarely.
type Service struct {
	repo repository.SpeciesRepository
}

func NewService(repo repository.SpeciesRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateSpecies(ctx context.Context, req *model.CreateSpeciesRequest) (*model.Species, error) {
	sp := &model.Species{Name: req.Name}
	sp.ID = uuid.New()
	sp.CreatedAt = time.Now()
	sp.UpdatedAt = sp.CreatedAt

	if err := s.repo.Create(ctx, sp); err != nil {
		return nil, fmt.Errorf("failed to create species: %w", err)
	}
	return sp, nil
}

func (s *Service) GetSpecies(ctx context.Context, id uuid.UUID) (*model.Species, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) DeleteSpecies(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListSpecies(ctx context.Context) ([]*model.Species, error) {
	return s.repo.List(ctx)
}

func (s *Service) CreateBreed(ctx context.Context, req *model.CreateBreedRequest) (*model.Breed, error) {
	speciesID, err := uuid.Parse(req.SpeciesID)
	if err != nil {
		return nil, fmt.Errorf("invalid species id: %w", err)
	}
	if _, err := s.repo.Get(ctx, speciesID); err != nil {
		return nil, err
	}

	b := &model.Breed{Name: req.Name, SpeciesID: speciesID}
	b.ID = uuid.New()
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt

	if err := s.repo.CreateBreed(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to create breed: %w", err)
	}
	return b, nil
}

func (s *Service) GetBreed(ctx context.Context, id uuid.UUID) (*model.Breed, error) {
	return s.repo.GetBreed(ctx, id)
}

func (s *Service) UpdateBreed(ctx context.Context, id uuid.UUID, req *model.UpdateBreedRequest) (*model.Breed, error) {
	b, err := s.repo.GetBreed(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		b.Name = *req.Name
	}
	b.UpdatedAt = time.Now()

	if err := s.repo.UpdateBreed(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to update breed: %w", err)
	}
	return b, nil
}

func (s *Service) DeleteBreed(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteBreed(ctx, id)
}

func (s *Service) ListBreeds(ctx context.Context, speciesID *uuid.UUID) ([]*model.Breed, error) {
	return s.repo.ListBreeds(ctx, speciesID)
}
