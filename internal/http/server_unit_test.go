package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gleber2006-sketch/machlog/internal/auth"
	"github.com/gleber2006-sketch/machlog/internal/config"
	"github.com/gleber2006-sketch/machlog/internal/model"
)

func TestDeriveChecklistStatus(t *testing.T) {
	cases := []struct {
		name     string
		statuses []model.ItemStatus
		want     model.ChecklistStatus
	}{
		{"all ok", []model.ItemStatus{model.ItemStatusOK, model.ItemStatusOK}, model.ChecklistStatusOK},
		{"one warning", []model.ItemStatus{model.ItemStatusOK, model.ItemStatusWarning}, model.ChecklistStatusIssueReported},
		{"one fail", []model.ItemStatus{model.ItemStatusFail, model.ItemStatusOK}, model.ChecklistStatusIssueReported},
		{"empty", nil, model.ChecklistStatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items := make([]model.ChecklistItem, 0, len(tc.statuses))
			for _, status := range tc.statuses {
				items = append(items, model.ChecklistItem{Status: status})
			}
			if got := deriveChecklistStatus(items); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestValidateItemSet(t *testing.T) {
	questions := []model.ChecklistQuestion{
		{ID: "q1", Category: "Safety", Question: "a"},
		{ID: "q2", Category: "Fluids", Question: "b"},
	}

	cases := []struct {
		name  string
		items []checklistItemRequest
		want  string
	}{
		{
			"complete",
			[]checklistItemRequest{{QuestionID: "q1", Status: "ok"}, {QuestionID: "q2", Status: "fail"}},
			"",
		},
		{
			"missing answer",
			[]checklistItemRequest{{QuestionID: "q1", Status: "ok"}},
			"incomplete_items",
		},
		{
			"unknown question",
			[]checklistItemRequest{{QuestionID: "q1", Status: "ok"}, {QuestionID: "q9", Status: "ok"}},
			"unknown_question",
		},
		{
			"duplicate question",
			[]checklistItemRequest{{QuestionID: "q1", Status: "ok"}, {QuestionID: "q1", Status: "ok"}},
			"duplicate_question",
		},
		{
			"bad status",
			[]checklistItemRequest{{QuestionID: "q1", Status: "broken"}, {QuestionID: "q2", Status: "ok"}},
			"invalid_item_status",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := validateItemSet(tc.items, questions); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := bearerToken(tc.header); got != tc.want {
			t.Errorf("bearerToken(%q)=%q, want %q", tc.header, got, tc.want)
		}
	}
}

func testConfig() config.Config {
	return config.Config{
		JWTSecret:      "test-secret",
		JWTIssuer:      "test-issuer",
		AccessTokenTTL: 15 * time.Minute,
		SubmitLockTTL:  30 * time.Second,
	}
}

func mustToken(t *testing.T, cfg config.Config, userID string, role model.Role) string {
	t.Helper()
	token, err := auth.NewAccessToken(cfg.JWTSecret, cfg.JWTIssuer, 10*time.Minute, auth.Claims{
		UserID: userID,
		Role:   role,
	})
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	return token
}

// Role gating is enforced in middleware, before any handler or store
// call, so it can be exercised without a database.
func TestRoutePolicy(t *testing.T) {
	cfg := testConfig()
	server := NewServer(cfg, nil, nil, nil)
	app := httptest.NewServer(server.Router())
	defer app.Close()

	operatorToken := mustToken(t, cfg, "00000000-0000-0000-0000-000000000001", model.RoleOperator)
	technicianToken := mustToken(t, cfg, "00000000-0000-0000-0000-000000000002", model.RoleTechnician)

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"no token", http.MethodGet, "/auth/me", "", http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/auth/me", "not-a-jwt", http.StatusUnauthorized},
		{"operator cannot list machines", http.MethodGet, "/api/machines", operatorToken, http.StatusForbidden},
		{"operator cannot create machine", http.MethodPost, "/api/machines", operatorToken, http.StatusForbidden},
		{"operator cannot delete machine", http.MethodDelete, "/api/machines/x", operatorToken, http.StatusForbidden},
		{"operator cannot print label", http.MethodGet, "/api/machines/x/qr", operatorToken, http.StatusForbidden},
		{"operator cannot list profiles", http.MethodGet, "/api/profiles", operatorToken, http.StatusForbidden},
		{"technician cannot list profiles", http.MethodGet, "/api/profiles", technicianToken, http.StatusForbidden},
		{"technician cannot register", http.MethodPost, "/auth/register", technicianToken, http.StatusForbidden},
		{"scan requires token", http.MethodGet, "/api/scan/abc", "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(tc.method, app.URL+tc.path, strings.NewReader("{}"))
			if err != nil {
				t.Fatal(err)
			}
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != tc.want {
				t.Errorf("%s %s: got %d, want %d", tc.method, tc.path, resp.StatusCode, tc.want)
			}
		})
	}
}

func TestScanRejectsMalformedToken(t *testing.T) {
	cfg := testConfig()
	server := NewServer(cfg, nil, nil, nil)
	app := httptest.NewServer(server.Router())
	defer app.Close()

	token := mustToken(t, cfg, "00000000-0000-0000-0000-000000000001", model.RoleOperator)

	// All rejected before the store is touched.
	for _, scanned := range []string{"not-a-uuid", "1234", "%20", "0a2b7c36-9f4e-4df1-8c3a-5b2f8d1e4a5"} {
		req, _ := http.NewRequest(http.MethodGet, app.URL+"/api/scan/"+scanned, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("scan %q: got %d, want 400", scanned, resp.StatusCode)
		}
	}
}

func TestHealth(t *testing.T) {
	server := NewServer(testConfig(), nil, nil, nil)
	app := httptest.NewServer(server.Router())
	defer app.Close()

	resp, err := http.Get(app.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health: got %d, want 200", resp.StatusCode)
	}
}
