package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"ams/internal/app/server"
	"ams/internal/platform/config"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestAttendanceAndLeaveJourney(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := config.Config{
		DatabaseURL:       dbURL,
		JWTSecret:         "test-secret",
		TokenTTL:          time.Hour,
		Environment:       "test",
		SeedAdminEmail:    "admin@test.local",
		SeedAdminPassword: "ChangeMe123!",
		SeedHolidays:      false,
		RunMigrations:     true,
		RunSeed:           true,
		MigrationsDir:     "../../../../migrations",
		MaxBodyBytes:      1048576,
		CORSAllowedOrigin: "*",
	}

	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	suffix := time.Now().UnixNano()
	managerID := createUser(t, client, ts.URL, adminToken, map[string]any{
		"email":      fmt.Sprintf("mgr-%d@example.com", suffix),
		"password":   "Secret123!",
		"firstName":  "Meera",
		"lastName":   "Iyer",
		"employeeNo": fmt.Sprintf("MG%d", suffix),
		"role":       "Manager",
	})
	employeeID := createUser(t, client, ts.URL, adminToken, map[string]any{
		"email":      fmt.Sprintf("emp-%d@example.com", suffix),
		"password":   "Secret123!",
		"firstName":  "Arun",
		"lastName":   "Nair",
		"employeeNo": fmt.Sprintf("EM%d", suffix),
		"role":       "Employee",
		"managerId":  managerID,
	})

	managerToken := login(t, client, ts.URL, fmt.Sprintf("mgr-%d@example.com", suffix), "Secret123!")
	employeeToken := login(t, client, ts.URL, fmt.Sprintf("emp-%d@example.com", suffix), "Secret123!")

	start := time.Now().UTC().AddDate(0, 0, 30)
	end := start.AddDate(0, 0, 2)
	year := start.Year()

	// Allocate and verify the overwrite shows up verbatim.
	status, _ := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/admin/entitlements", adminToken, map[string]any{
		"userId":             employeeID,
		"year":               year,
		"casualLeaveBalance": 12,
		"earnedLeaveBalance": 15,
	})
	if status != http.StatusOK {
		t.Fatalf("allocate returned %d", status)
	}

	// Employee requests three days of casual leave.
	status, data := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/leave/requests", employeeToken, map[string]any{
		"leaveType": "CasualLeave",
		"startDate": start.Format(time.DateOnly),
		"endDate":   end.Format(time.DateOnly),
		"reason":    "trip",
	})
	if status != http.StatusCreated {
		t.Fatalf("leave request returned %d", status)
	}
	var request struct {
		ID        string `json:"id"`
		TotalDays string `json:"totalDays"`
	}
	mustUnmarshal(t, data, &request)
	if request.TotalDays != "3" {
		t.Fatalf("expected 3 total days, got %s", request.TotalDays)
	}

	// Manager sees it pending and approves it.
	status, data = doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/approvals/leave/pending", managerToken, nil)
	if status != http.StatusOK {
		t.Fatalf("pending leave returned %d", status)
	}
	var pending []json.RawMessage
	mustUnmarshal(t, data, &pending)
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending request, got %d", len(pending))
	}

	status, _ = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/approvals/leave/"+request.ID+"/decide", managerToken, map[string]any{
		"approved": true,
	})
	if status != http.StatusOK {
		t.Fatalf("decide returned %d", status)
	}

	// Approval deducted from the start-year ledger.
	status, data = doJSON(t, client, http.MethodGet, fmt.Sprintf("%s/api/v1/admin/entitlements/%s?year=%d", ts.URL, employeeID, year), adminToken, nil)
	if status != http.StatusOK {
		t.Fatalf("balance read returned %d", status)
	}
	var balance struct {
		CasualBalance string `json:"casualLeaveBalance"`
	}
	mustUnmarshal(t, data, &balance)
	if balance.CasualBalance != "9" {
		t.Fatalf("expected casual balance 9, got %s", balance.CasualBalance)
	}

	// Approving twice must fail.
	status, _ = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/approvals/leave/"+request.ID+"/decide", managerToken, map[string]any{
		"approved": true,
	})
	if status != http.StatusBadRequest {
		t.Fatalf("second decide returned %d", status)
	}

	// Attendance round trip with the same-day conflict guard.
	status, _ = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/attendance/login", employeeToken, nil)
	if status != http.StatusCreated {
		t.Fatalf("attendance login returned %d", status)
	}
	status, _ = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/attendance/login", employeeToken, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("second attendance login returned %d", status)
	}
	status, _ = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/attendance/logout", employeeToken, nil)
	if status != http.StatusOK {
		t.Fatalf("attendance logout returned %d", status)
	}

	// Employees cannot reach the manager surface.
	status, _ = doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/approvals/leave/pending", employeeToken, nil)
	if status != http.StatusForbidden {
		t.Fatalf("employee on approvals returned %d", status)
	}
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	status, data := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	})
	if status != http.StatusOK {
		t.Fatalf("login for %s returned %d", email, status)
	}
	var out struct {
		Token string `json:"token"`
	}
	mustUnmarshal(t, data, &out)
	if out.Token == "" {
		t.Fatal("login returned empty token")
	}
	return out.Token
}

func createUser(t *testing.T, client *http.Client, baseURL, token string, payload map[string]any) string {
	t.Helper()
	status, data := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/admin/users", token, payload)
	if status != http.StatusCreated {
		t.Fatalf("create user returned %d", status)
	}
	var out struct {
		ID string `json:"id"`
	}
	mustUnmarshal(t, data, &out)
	return out.ID
}

func doJSON(t *testing.T, client *http.Client, method, url, token string, payload any) (int, json.RawMessage) {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode response from %s %s: %v", method, url, err)
	}
	return resp.StatusCode, env.Data
}

func mustUnmarshal(t *testing.T, data json.RawMessage, out any) {
	t.Helper()
	if err := json.Unmarshal(data, out); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
}
