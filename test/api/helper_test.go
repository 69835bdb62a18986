package api_test

import (
	"fmt"
	"testing"
	"time"
)

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

func uniqueSuffix() int64 {
	return time.Now().UnixNano()
}

func createTestPet(t *testing.T) string {
	if speciesID == "" {
		t.Fatal("Species ID is required")
	}

	resp := makeRequest("POST", "/pets", map[string]interface{}{
		"name":       uniqueName("Test Pet"),
		"species_id": speciesID,
		"breed_id":   breedID,
	}, authToken)

	if !resp.IsSuccess() {
		t.Fatalf("Failed to create test pet: %s", resp.Message)
	}
	return resp.GetString("id")
}

func createTestVaccination(t *testing.T, petID string, nextDue time.Time) string {
	resp := makeRequest("POST", "/vaccinations", map[string]interface{}{
		"pet_id":        petID,
		"vaccine_name":  uniqueName("Rabies"),
		"status":        "pending",
		"next_due_date": nextDue.Format(time.RFC3339),
	}, authToken)

	if !resp.IsSuccess() {
		t.Fatalf("Failed to create test vaccination: %s", resp.Message)
	}
	return resp.GetString("id")
}
