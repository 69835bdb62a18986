package api_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpeciesCatalog(t *testing.T) {
	if speciesID == "" {
		t.Fatal("Species setup failed")
	}

	getResp := makeRequest("GET", fmt.Sprintf("/species/%s", speciesID), nil, authToken)
	assert.True(t, getResp.IsSuccess())
	assert.NotEmpty(t, getResp.Data["name"])

	listResp := makeRequest("GET", fmt.Sprintf("/breeds?species_id=%s", speciesID), nil, authToken)
	assert.True(t, listResp.IsSuccess())
	found := false
	for _, b := range listResp.GetList() {
		if b["id"] == breedID {
			found = true
		}
	}
	assert.True(t, found, "created breed missing from species breed list")

	// A breed needs an existing species
	orphanResp := makeRequest("POST", "/breeds", map[string]interface{}{
		"name":       uniqueName("Orphan Breed"),
		"species_id": "00000000-0000-0000-0000-000000000000",
	}, authToken)
	assert.False(t, orphanResp.IsSuccess(), "breed with unknown species must be rejected")
}
