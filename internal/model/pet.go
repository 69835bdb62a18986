package model

import (
	"time"

	"github.com/google/uuid"
)

// Pet is a registered animal. A pet can have any number of owners and
// owners can share pets, so ownership is a plain many-to-many link.
type Pet struct {
	Base
	Name        string     `db:"name" json:"name"`
	SpeciesID   uuid.UUID  `db:"species_id" json:"species_id"`
	BreedID     *uuid.UUID `db:"breed_id" json:"breed_id,omitempty"`
	Sex         *string    `db:"sex" json:"sex,omitempty"`
	BirthDate   *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Description *string    `db:"description" json:"description,omitempty"`
	PhotoURL    *string    `db:"photo_url" json:"photo_url,omitempty"`
	ChipNumber  *string    `db:"chip_number" json:"chip_number,omitempty"`
	Sterilized  *bool      `db:"sterilized" json:"sterilized,omitempty"`
}

// CurrentAge returns the pet's age in whole years, or nil when the
// birth date is unknown.
func (p *Pet) CurrentAge(now time.Time) *int {
	if p.BirthDate == nil {
		return nil
	}
	age := int(now.Sub(*p.BirthDate).Hours() / 24 / 365)
	return &age
}

type CreatePetRequest struct {
	Name        string     `json:"name" binding:"required"`
	SpeciesID   string     `json:"species_id" binding:"required,uuid"`
	BreedID     *string    `json:"breed_id" binding:"omitempty,uuid"`
	Sex         *string    `json:"sex"`
	BirthDate   *time.Time `json:"birth_date"`
	Description *string    `json:"description"`
	PhotoURL    *string    `json:"photo_url"`
	ChipNumber  *string    `json:"chip_number"`
	Sterilized  *bool      `json:"sterilized"`
}

type UpdatePetRequest struct {
	Name        *string    `json:"name"`
	BreedID     *string    `json:"breed_id" binding:"omitempty,uuid"`
	Sex         *string    `json:"sex"`
	BirthDate   *time.Time `json:"birth_date"`
	Description *string    `json:"description"`
	PhotoURL    *string    `json:"photo_url"`
	ChipNumber  *string    `json:"chip_number"`
	Sterilized  *bool      `json:"sterilized"`
}

// PetResponse is the API shape of a pet, with derived fields resolved.
type PetResponse struct {
	Pet
	CurrentAge   *int                 `json:"current_age,omitempty"`
	Owners       []*User              `json:"owners,omitempty"`
	Vaccinations []*VaccinationRecord `json:"vaccinations,omitempty"`
}
