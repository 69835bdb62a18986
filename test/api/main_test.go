package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

// Black-box tests against a running server. They need a live deployment
// and a valid access token, so the whole suite is a no-op unless
// PETFANS_API_TOKEN is set (mint one via /auth/request-code +
// /auth/verify, or from the refresh endpoint).
var (
	baseURL       = "http://localhost:8080"
	authToken     = os.Getenv("PETFANS_API_TOKEN")
	speciesID     string
	breedID       string
	petID         string
	vaccinationID string
)

// APIResponse mirrors the server's response envelope.
type APIResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// TestResponse wraps the API response for assertions.
type TestResponse struct {
	Success bool
	Message string
	Data    map[string]interface{}
	RawData string
}

func (r TestResponse) IsSuccess() bool {
	return r.Success
}

func (r TestResponse) GetString(key string) string {
	if r.Data == nil {
		return ""
	}
	if v, ok := r.Data[key].(string); ok {
		return v
	}
	return ""
}

// GetList decodes the data payload as a JSON array.
func (r TestResponse) GetList() []map[string]interface{} {
	var items []map[string]interface{}
	if err := json.Unmarshal([]byte(r.RawData), &items); err != nil {
		return nil
	}
	return items
}

func checkAPIServer() error {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return fmt.Errorf("API server not reachable: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned HTTP %d", resp.StatusCode)
	}
	return nil
}

func TestMain(m *testing.M) {
	if v := os.Getenv("PETFANS_API_URL"); v != "" {
		baseURL = v
	}
	if authToken == "" {
		fmt.Println("PETFANS_API_TOKEN not set, skipping API tests")
		os.Exit(0)
	}
	if err := checkAPIServer(); err != nil {
		fmt.Printf("%v\nMake sure the API server is running at %s\n", err, baseURL)
		os.Exit(0)
	}

	setupTestData()

	code := m.Run()

	cleanup()

	os.Exit(code)
}

func setupTestData() {
	speciesResp := makeRequest("POST", "/species", map[string]interface{}{
		"name": uniqueName("Test Species"),
	}, authToken)
	if !speciesResp.IsSuccess() {
		fmt.Printf("Failed to create species: %s\n", speciesResp.Message)
		os.Exit(1)
	}
	speciesID = speciesResp.GetString("id")

	breedResp := makeRequest("POST", "/breeds", map[string]interface{}{
		"name":       uniqueName("Test Breed"),
		"species_id": speciesID,
	}, authToken)
	if !breedResp.IsSuccess() {
		fmt.Printf("Failed to create breed: %s\n", breedResp.Message)
		os.Exit(1)
	}
	breedID = breedResp.GetString("id")
}

func cleanup() {
	// Delete test resources in reverse order of dependencies. The pet
	// delete cascades to its vaccinations and reminders server-side.
	if vaccinationID != "" {
		makeRequest("DELETE", fmt.Sprintf("/vaccinations/%s", vaccinationID), nil, authToken)
		vaccinationID = ""
	}
	if petID != "" {
		makeRequest("DELETE", fmt.Sprintf("/pets/%s", petID), nil, authToken)
		petID = ""
	}
	if breedID != "" {
		makeRequest("DELETE", fmt.Sprintf("/breeds/%s", breedID), nil, authToken)
		breedID = ""
	}
	if speciesID != "" {
		makeRequest("DELETE", fmt.Sprintf("/species/%s", speciesID), nil, authToken)
		speciesID = ""
	}
}

func makeRequest(method, path string, body interface{}, token string) TestResponse {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return TestResponse{Message: err.Error()}
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+"/api/v1"+path, reqBody)
	if err != nil {
		return TestResponse{Message: err.Error()}
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	response, err := client.Do(req)
	if err != nil {
		return TestResponse{Message: err.Error()}
	}
	defer response.Body.Close()

	respBody, err := io.ReadAll(response.Body)
	if err != nil {
		return TestResponse{Message: err.Error()}
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return TestResponse{
			Message: fmt.Sprintf("failed to parse response: %s\nraw response: %s", err.Error(), string(respBody)),
		}
	}

	testResp := TestResponse{
		Success: apiResp.Success,
		RawData: string(apiResp.Data),
	}
	if apiResp.Error != nil {
		testResp.Message = fmt.Sprintf("HTTP %d: %s", apiResp.Error.Code, apiResp.Error.Message)
	}

	if len(apiResp.Data) > 0 {
		var data map[string]interface{}
		if err := json.Unmarshal(apiResp.Data, &data); err == nil {
			testResp.Data = data
		}
	}

	return testResp
}
