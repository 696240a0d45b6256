package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akozyrev/leadwell/internal/audit"
	"github.com/akozyrev/leadwell/internal/auth"
	"github.com/akozyrev/leadwell/internal/conversion"
	"github.com/akozyrev/leadwell/internal/deal"
	dealStore "github.com/akozyrev/leadwell/internal/deal/store"
	leadwellHttp "github.com/akozyrev/leadwell/internal/http"
	authHandler "github.com/akozyrev/leadwell/internal/http/auth"
	dealHandler "github.com/akozyrev/leadwell/internal/http/deal"
	leadHandler "github.com/akozyrev/leadwell/internal/http/lead"
	userHandler "github.com/akozyrev/leadwell/internal/http/user"
	"github.com/akozyrev/leadwell/internal/importer"
	"github.com/akozyrev/leadwell/internal/lead"
	leadStore "github.com/akozyrev/leadwell/internal/lead/store"
	"github.com/akozyrev/leadwell/internal/permission"
	"github.com/akozyrev/leadwell/internal/seed"
	userStore "github.com/akozyrev/leadwell/internal/user/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *seed.Data) {
	t.Helper()

	leads := leadStore.New()
	deals := dealStore.New()
	users := userStore.New()

	seeded, err := seed.Load(context.Background(), users, leads)
	require.NoError(t, err)

	var (
		leadService       = lead.NewService(leads)
		dealService       = deal.NewService(deals)
		conversionService = conversion.NewService(leads, deals)
		authService       = auth.NewService(users, "test-secret", "leadwell", time.Hour)
		perms             = permission.NewManager()
		auditLog          = audit.New(&bytes.Buffer{})
	)

	router := leadwellHttp.New(
		authService,
		[]string{"*"},
		authHandler.NewHandler(authService),
		leadHandler.NewHandler(leadService, conversionService, importer.NewParser(), perms, auditLog),
		dealHandler.NewHandler(dealService, perms, auditLog),
		userHandler.NewHandler(users, perms),
	)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return srv, seeded
}

func login(t *testing.T, srv *httptest.Server, email, password string) string {
	t.Helper()

	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)

	resp, err := http.Post(srv.URL+"/api/v1/auth/login", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.Token)

	return out.Token
}

func doJSON(t *testing.T, srv *httptest.Server, token, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)

	return resp, decoded
}

func TestLogin_WrongPassword(t *testing.T) {
	srv, _ := newTestServer(t)

	body := `{"email":"admin@crm.local","password":"wrong"}`
	resp, err := http.Post(srv.URL+"/api/v1/auth/login", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLeads_RequireAuth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := doJSON(t, srv, "", http.MethodGet, "/api/v1/leads", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLeadLifecycleOverHTTP(t *testing.T) {
	srv, seeded := newTestServer(t)
	token := login(t, srv, "manager@crm.local", "manager123")

	// Create.
	resp, created := doJSON(t, srv, token, http.MethodPost, "/api/v1/leads/",
		`{"title":"Pilot request","contact_email":"pilot@client.ru","source":"google","medium":"cpc"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := created["id"].(string)
	assert.Equal(t, "new", created["status"])

	// Illegal transition is a conflict.
	resp, _ = doJSON(t, srv, token, http.MethodPatch, "/api/v1/leads/"+id+"/status", `{"status":"converted"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Unknown status is a bad request.
	resp, _ = doJSON(t, srv, token, http.MethodPatch, "/api/v1/leads/"+id+"/status", `{"status":"bogus"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Walk to qualified.
	for _, status := range []string{"in_progress", "qualified"} {
		resp, body := doJSON(t, srv, token, http.MethodPatch, "/api/v1/leads/"+id+"/status",
			fmt.Sprintf(`{"status":%q}`, status))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, status, body["status"])
	}

	// Conversion without an assignee is rejected.
	resp, _ = doJSON(t, srv, token, http.MethodPost, "/api/v1/leads/"+id+"/convert", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Assign, then convert.
	resp, _ = doJSON(t, srv, token, http.MethodPatch, "/api/v1/leads/"+id+"/assign",
		fmt.Sprintf(`{"user_id":%q,"display_name":"Ivan Managerov"}`, seeded.Manager.ID))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, converted := doJSON(t, srv, token, http.MethodPost, "/api/v1/leads/"+id+"/convert", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "prospecting", converted["stage"])

	// The lead is now terminal.
	resp, got := doJSON(t, srv, token, http.MethodGet, "/api/v1/leads/"+id, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "converted", got["status"])

	// And the deal shows up linked to the lead.
	resp, _ = doJSON(t, srv, token, http.MethodGet, "/api/v1/deals?lead_id="+id, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Not found maps to 404.
	resp, _ = doJSON(t, srv, token, http.MethodGet, "/api/v1/leads/00000000-0000-0000-0000-000000000000", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLeadImportOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)
	token := login(t, srv, "manager@crm.local", "manager123")

	csv := "title,contact_email,estimated_value\nImported lead,import@client.ru,150000\n"

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/leads/import", strings.NewReader(csv))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "text/csv")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out struct {
		Created []map[string]any `json:"created"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Created, 1)
	assert.Equal(t, "Imported lead", out.Created[0]["title"])
}

func TestPermissions_UserRole(t *testing.T) {
	srv, _ := newTestServer(t)

	// Create a plain user via the admin account.
	adminToken := login(t, srv, "admin@crm.local", "admin123")
	resp, _ := doJSON(t, srv, adminToken, http.MethodPost, "/api/v1/users/",
		`{"email":"plain@crm.local","first_name":"Plain","last_name":"User","password":"secret","roles":["user"]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	userToken := login(t, srv, "plain@crm.local", "secret")

	// A plain user can read leads but not create them.
	resp, _ = doJSON(t, srv, userToken, http.MethodGet, "/api/v1/leads", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, srv, userToken, http.MethodPost, "/api/v1/leads/",
		`{"title":"Nope","contact_email":"nope@client.ru"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// User administration is admin-only.
	resp, _ = doJSON(t, srv, userToken, http.MethodGet, "/api/v1/users", "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestDealCloseOverHTTP(t *testing.T) {
	srv, seeded := newTestServer(t)
	token := login(t, srv, "manager@crm.local", "manager123")

	resp, created := doJSON(t, srv, token, http.MethodPost, "/api/v1/deals/",
		fmt.Sprintf(`{"title":"Direct deal","amount":5000000,"owner_id":%q}`, seeded.Manager.ID))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := created["id"].(string)
	assert.Equal(t, float64(10), created["probability"])

	resp, body := doJSON(t, srv, token, http.MethodPatch, "/api/v1/deals/"+id+"/stage", `{"stage":"negotiation"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(75), body["probability"])

	resp, body = doJSON(t, srv, token, http.MethodPost, "/api/v1/deals/"+id+"/close",
		`{"won":true,"reason":"signed"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["closed"])
	assert.Equal(t, true, body["won"])
	assert.Equal(t, float64(100), body["probability"])
}
