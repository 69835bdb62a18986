package pet

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/petfans/petfans-api/internal/model"
	"github.com/petfans/petfans-api/internal/repository"
	apperrors "github.com/petfans/petfans-api/pkg/errors"
)

type Service struct {
	repo         repository.PetRepository
	vaccinations repository.VaccinationRepository
	users        repository.UserRepository
}

func NewService(repo repository.PetRepository, vaccinations repository.VaccinationRepository, users repository.UserRepository) *Service {
	return &Service{
		repo:         repo,
		vaccinations: vaccinations,
		users:        users,
	}
}

// CreatePet registers a pet with the calling user as its first owner.
func (s *Service) CreatePet(ctx context.Context, ownerID uuid.UUID, req *model.CreatePetRequest) (*model.Pet, error) {
	speciesID, err := uuid.Parse(req.SpeciesID)
	if err != nil {
		return nil, fmt.Errorf("invalid species id: %w", err)
	}

	pet := &model.Pet{
		Name:        req.Name,
		SpeciesID:   speciesID,
		Sex:         req.Sex,
		BirthDate:   req.BirthDate,
		Description: req.Description,
		PhotoURL:    req.PhotoURL,
		ChipNumber:  req.ChipNumber,
		Sterilized:  req.Sterilized,
	}
	if req.BreedID != nil {
		breedID, err := uuid.Parse(*req.BreedID)
		if err != nil {
			return nil, fmt.Errorf("invalid breed id: %w", err)
		}
		pet.BreedID = &breedID
	}
	pet.ID = uuid.New()
	pet.CreatedAt = time.Now()
	pet.UpdatedAt = pet.CreatedAt

	if err := s.repo.Create(ctx, pet, []uuid.UUID{ownerID}); err != nil {
		return nil, fmt.Errorf("failed to create pet: %w", err)
	}
	return pet, nil
}

// GetPet returns the pet with owners, vaccination history and derived
// fields resolved.
func (s *Service) GetPet(ctx context.Context, id uuid.UUID) (*model.PetResponse, error) {
	pet, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	owners, err := s.repo.ListOwners(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list pet owners: %w", err)
	}

	vaccinations, err := s.vaccinations.List(ctx, &model.VaccinationFilter{PetID: &id})
	if err != nil {
		return nil, fmt.Errorf("failed to list pet vaccinations: %w", err)
	}

	return &model.PetResponse{
		Pet:          *pet,
		CurrentAge:   pet.CurrentAge(time.Now()),
		Owners:       owners,
		Vaccinations: vaccinations,
	}, nil
}

func (s *Service) UpdatePet(ctx context.Context, id uuid.UUID, req *model.UpdatePetRequest) (*model.Pet, error) {
	pet, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		pet.Name = *req.Name
	}
	if req.BreedID != nil {
		breedID, err := uuid.Parse(*req.BreedID)
		if err != nil {
			return nil, fmt.Errorf("invalid breed id: %w", err)
		}
		pet.BreedID = &breedID
	}
	if req.Sex != nil {
		pet.Sex = req.Sex
	}
	if req.BirthDate != nil {
		pet.BirthDate = req.BirthDate
	}
	if req.Description != nil {
		pet.Description = req.Description
	}
	if req.PhotoURL != nil {
		pet.PhotoURL = req.PhotoURL
	}
	if req.ChipNumber != nil {
		pet.ChipNumber = req.ChipNumber
	}
	if req.Sterilized != nil {
		pet.Sterilized = req.Sterilized
	}
	pet.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, pet); err != nil {
		return nil, fmt.Errorf("failed to update pet: %w", err)
	}
	return pet, nil
}

func (s *Service) DeletePet(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListPets(ctx context.Context, ownerID uuid.UUID) ([]*model.Pet, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// SharePet grants another registered user co-ownership by email.
func (s *Service) SharePet(ctx context.Context, petID uuid.UUID, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return apperrors.NotFound("user", err)
	}
	if err := s.repo.AddOwner(ctx, petID, user.ID); err != nil {
		return fmt.Errorf("failed to add pet owner: %w", err)
	}
	return nil
}

// UnsharePet revokes co-ownership. The last remaining owner cannot be
// removed.
func (s *Service) UnsharePet(ctx context.Context, petID, userID uuid.UUID) error {
	owners, err := s.repo.ListOwners(ctx, petID)
	if err != nil {
		return fmt.Errorf("failed to list pet owners: %w", err)
	}
	if len(owners) <= 1 {
		return apperrors.Conflict("a pet must keep at least one owner", nil)
	}
	if err := s.repo.RemoveOwner(ctx, petID, userID); err != nil {
		return fmt.Errorf("failed to remove pet owner: %w", err)
	}
	return nil
}

// AuthorizeOwner returns a forbidden error unless the user owns the pet.
func (s *Service) AuthorizeOwner(ctx context.Context, petID, userID uuid.UUID) error {
	ok, err := s.repo.IsOwner(ctx, petID, userID)
	if err != nil {
		return fmt.Errorf("failed to check pet ownership: %w", err)
	}
	if !ok {
		return apperrors.Forbidden("you do not own this pet", nil)
	}
	return nil
}
