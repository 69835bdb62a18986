package api_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVaccinationFlow(t *testing.T) {
	pet := createTestPet(t)
	defer makeRequest("DELETE", fmt.Sprintf("/pets/%s", pet), nil, authToken)

	nextDue := time.Now().UTC().AddDate(0, 1, 0)
	vaccinationID = createTestVaccination(t, pet, nextDue)
	assert.NotEmpty(t, vaccinationID)

	// Get vaccination
	getResp := makeRequest("GET", fmt.Sprintf("/vaccinations/%s", vaccinationID), nil, authToken)
	assert.True(t, getResp.IsSuccess())
	assert.Equal(t, "pending", getResp.Data["status"])

	// A pending vaccination with a due date gets reminders derived for
	// the owner, one per lead interval.
	listResp := makeRequest("GET", fmt.Sprintf("/reminders?pet_id=%s", pet), nil, authToken)
	assert.True(t, listResp.IsSuccess())
	reminders := listResp.GetList()
	assert.Len(t, reminders, 2, "expected one reminder per lead interval")

	// Moving the due date shifts unsent triggers without duplicating rows
	newDue := nextDue.AddDate(0, 0, 14)
	updateResp := makeRequest("PUT", fmt.Sprintf("/vaccinations/%s", vaccinationID), map[string]interface{}{
		"next_due_date": newDue.Format(time.RFC3339),
	}, authToken)
	assert.True(t, updateResp.IsSuccess(), "Failed to update vaccination: %s", updateResp.Message)

	listResp = makeRequest("GET", fmt.Sprintf("/reminders?pet_id=%s", pet), nil, authToken)
	assert.True(t, listResp.IsSuccess())
	assert.Len(t, listResp.GetList(), 2, "due date change must not duplicate reminders")

	// Marking applied retires the record from reminder derivation
	applyResp := makeRequest("POST", fmt.Sprintf("/vaccinations/%s/apply", vaccinationID), map[string]interface{}{
		"applied_date": time.Now().UTC().Format(time.RFC3339),
	}, authToken)
	assert.True(t, applyResp.IsSuccess(), "Failed to mark applied: %s", applyResp.Message)

	verifyResp := makeRequest("GET", fmt.Sprintf("/vaccinations/%s", vaccinationID), nil, authToken)
	assert.True(t, verifyResp.IsSuccess())
	assert.Equal(t, "applied", verifyResp.Data["status"])
}

func TestVaccinationWithoutDueDateDerivesNothing(t *testing.T) {
	pet := createTestPet(t)
	defer makeRequest("DELETE", fmt.Sprintf("/pets/%s", pet), nil, authToken)

	resp := makeRequest("POST", "/vaccinations", map[string]interface{}{
		"pet_id":       pet,
		"vaccine_name": uniqueName("Distemper"),
		"status":       "pending",
	}, authToken)
	assert.True(t, resp.IsSuccess(), "Failed to create vaccination: %s", resp.Message)

	listResp := makeRequest("GET", fmt.Sprintf("/reminders?pet_id=%s", pet), nil, authToken)
	assert.True(t, listResp.IsSuccess())
	assert.Empty(t, listResp.GetList())
}
