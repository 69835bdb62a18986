package model

import (
	"github.com/google/uuid"
)

// Species is the top level of the pet taxonomy. Names are unique.
type Species struct {
	Base
	Name string `db:"name" json:"name"`
}

// Breed belongs to exactly one species; (name, species) is unique.
type Breed struct {
	Base
	Name      string    `db:"name" json:"name"`
	SpeciesID uuid.UUID `db:"species_id" json:"species_id"`
}

type CreateSpeciesRequest struct {
	Name string `json:"name" binding:"required"`
}

type CreateBreedRequest struct {
	Name      string `json:"name" binding:"required"`
	SpeciesID string `json:"species_id" binding:"required,uuid"`
}

type UpdateBreedRequest struct {
	Name *string `json:"name"`
}
