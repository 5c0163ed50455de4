package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomadhire/marketplace/internal/api/handler"
	"github.com/nomadhire/marketplace/internal/core/domain"
	"github.com/nomadhire/marketplace/internal/core/service"
	kvredis "github.com/nomadhire/marketplace/internal/infrastructure/db/redis"
	"github.com/nomadhire/marketplace/internal/infrastructure/identity"
	"github.com/nomadhire/marketplace/internal/infrastructure/repository"
)

const bootstrapToken = "bootstrap-secret"

type testAPI struct {
	e  *echo.Echo
	mr *miniredis.Miniredis
}

// newTestAPI wires the real services against miniredis and the local
// identity provider.
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := kvredis.NewStore(client)

	log := zerolog.Nop()
	users := repository.NewUserRepository(store)
	developers := repository.NewDeveloperRepository(store)
	projects := repository.NewProjectRepository(store)
	local := identity.NewLocal(store, "test-secret", time.Hour)

	_, err := service.NewDirectorySeeder(developers, log).Seed(context.Background())
	require.NoError(t, err)

	e := NewRouter(Deps{
		Logger:            log,
		Users:             service.NewUserService(users, local, log),
		Projects:          service.NewProjectService(projects, developers, users, log),
		Developers:        service.NewDeveloperService(developers),
		Reconciler:        service.NewApprovalReconciler(projects, developers, log),
		Verifier:          local,
		Passwords:         local,
		Readiness:         map[string]handler.Pinger{"redis": store},
		BootstrapToken:    bootstrapToken,
		MetricsRegisterer: prometheus.NewRegistry(),
	})
	return &testAPI{e: e, mr: mr}
}

func (a *testAPI) do(t *testing.T, method, path, token, body string, headers ...string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func (a *testAPI) signupAndLogin(t *testing.T, email, username string) string {
	t.Helper()
	code, _ := a.do(t, http.MethodPost, "/signup", "", `{"email":"`+email+`","username":"`+username+`","password":"secret123"}`)
	require.Equal(t, http.StatusCreated, code)

	code, body := a.do(t, http.MethodPost, "/login", "", `{"email":"`+email+`","password":"secret123"}`)
	require.Equal(t, http.StatusOK, code)
	return body["token"].(string)
}

func (a *testAPI) admin(t *testing.T) string {
	t.Helper()
	token := a.signupAndLogin(t, "root@example.com", "root")
	code, body := a.do(t, http.MethodPost, "/admin/make-admin", "", `{"email":"root@example.com"}`, "X-Bootstrap-Token", bootstrapToken)
	require.Equal(t, http.StatusOK, code, body)
	return token
}

func developerID(t *testing.T, a *testAPI, token, name string) string {
	t.Helper()
	code, body := a.do(t, http.MethodGet, "/developers", token, "")
	require.Equal(t, http.StatusOK, code)
	for _, raw := range body["developers"].([]any) {
		d := raw.(map[string]any)
		if d["name"] == name {
			return d["id"].(string)
		}
	}
	t.Fatalf("developer %s not found", name)
	return ""
}

func TestRouter_ProjectLifecycle(t *testing.T) {
	a := newTestAPI(t)
	alice := a.signupAndLogin(t, "alice@example.com", "alice")
	root := a.admin(t)

	// Submit.
	code, body := a.do(t, http.MethodPost, "/projects", alice,
		`{"projectName":"Lobby Game","description":"A social lobby","developerType":"Roblox Developer"}`)
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, "Project submitted successfully", body["message"])
	lobby := body["project"].(map[string]any)
	assert.Equal(t, "pending", lobby["status"])
	assert.Nil(t, lobby["assignedDeveloper"])
	lobbyID := lobby["id"].(string)

	code, body = a.do(t, http.MethodPost, "/projects", alice,
		`{"projectName":"Shop","description":"Storefront","developerType":"Web Developer"}`)
	require.Equal(t, http.StatusCreated, code)
	shopID := body["project"].(map[string]any)["id"].(string)

	// Approve with Alex Johnson.
	alex := developerID(t, a, root, "Alex Johnson")
	code, body = a.do(t, http.MethodPost, "/admin/projects/"+lobbyID+"/approve", root, `{"developerId":"`+alex+`"}`)
	require.Equal(t, http.StatusOK, code, body)
	approved := body["project"].(map[string]any)
	assert.Equal(t, "approved", approved["status"])
	assert.EqualValues(t, 20, approved["nomadCommission"])
	assert.Equal(t, "Alex Johnson", approved["assignedDeveloper"].(map[string]any)["name"])

	// Reject the other one.
	code, body = a.do(t, http.MethodPost, "/admin/projects/"+shopID+"/reject", root, `{"reason":"Scope unclear"}`)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "Scope unclear", body["project"].(map[string]any)["rejectionReason"])

	// Owner sees both decisions.
	code, body = a.do(t, http.MethodGet, "/projects", alice, "")
	require.Equal(t, http.StatusOK, code)
	own := body["projects"].([]any)
	require.Len(t, own, 2)
	statuses := map[string]any{}
	for _, raw := range own {
		p := raw.(map[string]any)
		statuses[p["projectName"].(string)] = p["status"]
	}
	assert.Equal(t, map[string]any{"Lobby Game": "approved", "Shop": "rejected"}, statuses)

	// Alex is no longer available.
	code, body = a.do(t, http.MethodGet, "/developers?available=false", root, "")
	require.Equal(t, http.StatusOK, code)
	busy := body["developers"].([]any)
	require.Len(t, busy, 1)
	assert.Equal(t, alex, busy[0].(map[string]any)["id"])

	// Admin listing joins usernames and filters by status.
	code, body = a.do(t, http.MethodGet, "/admin/projects?status=rejected", root, "")
	require.Equal(t, http.StatusOK, code)
	rejected := body["projects"].([]any)
	require.Len(t, rejected, 1)
	assert.Equal(t, "alice", rejected[0].(map[string]any)["username"])

	// Decisions are final.
	code, body = a.do(t, http.MethodPost, "/admin/projects/"+shopID+"/reject", root, `{"reason":"again"}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.NotEmpty(t, body["error"])

	code, _ = a.do(t, http.MethodPost, "/admin/projects/"+lobbyID+"/approve", root, `{"developerId":"`+alex+`"}`)
	assert.Equal(t, http.StatusConflict, code)
}

func TestRouter_ApproveErrors(t *testing.T) {
	a := newTestAPI(t)
	alice := a.signupAndLogin(t, "alice@example.com", "alice")
	root := a.admin(t)

	_, body := a.do(t, http.MethodPost, "/projects", alice,
		`{"projectName":"Site","description":"d","developerType":"Web Developer"}`)
	projectID := body["project"].(map[string]any)["id"].(string)

	code, _ := a.do(t, http.MethodPost, "/admin/projects/missing/approve", root, `{"developerId":"x"}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = a.do(t, http.MethodPost, "/admin/projects/"+projectID+"/approve", root, `{"developerId":"missing"}`)
	assert.Equal(t, http.StatusNotFound, code)

	roblox := developerID(t, a, root, "Sarah Chen")
	code, _ = a.do(t, http.MethodPost, "/admin/projects/"+projectID+"/approve", root, `{"developerId":"`+roblox+`"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = a.do(t, http.MethodPost, "/admin/projects/"+projectID+"/approve", root, `{}`)
	assert.Equal(t, http.StatusBadRequest, code)

	// Still pending after every failed attempt.
	_, body = a.do(t, http.MethodGet, "/projects", alice, "")
	assert.Equal(t, "pending", body["projects"].([]any)[0].(map[string]any)["status"])
}

func TestRouter_AuthAndAdminGuard(t *testing.T) {
	a := newTestAPI(t)
	alice := a.signupAndLogin(t, "alice@example.com", "alice")

	code, body := a.do(t, http.MethodPost, "/projects", "", `{"projectName":"x","description":"y","developerType":"z"}`)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.NotEmpty(t, body["error"])

	code, _ = a.do(t, http.MethodGet, "/user", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body = a.do(t, http.MethodGet, "/user", alice, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, domain.RoleUser, body["user"].(map[string]any)["role"])

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/admin/projects"},
		{http.MethodGet, "/developers"},
		{http.MethodPost, "/admin/projects/p1/approve"},
		{http.MethodPost, "/admin/projects/p1/reject"},
		{http.MethodPost, "/admin/reconcile"},
	} {
		code, body := a.do(t, route.method, route.path, alice, `{"developerId":"d"}`)
		assert.Equal(t, http.StatusForbidden, code, route.path)
		assert.Equal(t, "admin access required", body["error"], route.path)
	}

	code, _ = a.do(t, http.MethodPost, "/admin/make-admin", "", `{"email":"alice@example.com"}`, "X-Bootstrap-Token", "wrong")
	assert.Equal(t, http.StatusForbidden, code)
}

func TestRouter_SignupAndSubmitValidation(t *testing.T) {
	a := newTestAPI(t)

	code, body := a.do(t, http.MethodPost, "/signup", "", `{"email":"bad","username":"x","password":"secret123"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["error"], "email")

	token := a.signupAndLogin(t, "alice@example.com", "alice")
	code, _ = a.do(t, http.MethodPost, "/signup", "", `{"email":"alice@example.com","username":"again","password":"secret123"}`)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = a.do(t, http.MethodPost, "/login", "", `{"email":"alice@example.com","password":"wrong-password"}`)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body = a.do(t, http.MethodPost, "/projects", token, `{"projectName":"Only a name"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["error"], "description")

	_, body = a.do(t, http.MethodGet, "/projects", token, "")
	assert.Empty(t, body["projects"])
}

func TestRouter_IdempotentSubmit(t *testing.T) {
	a := newTestAPI(t)
	token := a.signupAndLogin(t, "alice@example.com", "alice")
	payload := `{"projectName":"Site","description":"d","developerType":"Web Developer"}`

	code, first := a.do(t, http.MethodPost, "/projects", token, payload, "Idempotency-Key", "k1")
	require.Equal(t, http.StatusCreated, code)
	code, second := a.do(t, http.MethodPost, "/projects", token, payload, "Idempotency-Key", "k1")
	require.Equal(t, http.StatusOK, code)

	assert.Equal(t, first["project"].(map[string]any)["id"], second["project"].(map[string]any)["id"])

	_, body := a.do(t, http.MethodGet, "/projects", token, "")
	assert.Len(t, body["projects"], 1)
}

func TestRouter_ReconcileRepairsDeveloper(t *testing.T) {
	a := newTestAPI(t)
	alice := a.signupAndLogin(t, "alice@example.com", "alice")
	root := a.admin(t)

	_, body := a.do(t, http.MethodPost, "/projects", alice,
		`{"projectName":"Lobby Game","description":"d","developerType":"Roblox Developer"}`)
	projectID := body["project"].(map[string]any)["id"].(string)
	alex := developerID(t, a, root, "Alex Johnson")

	code, _ := a.do(t, http.MethodPost, "/admin/projects/"+projectID+"/approve", root, `{"developerId":"`+alex+`"}`)
	require.Equal(t, http.StatusOK, code)

	// Simulate the developer write being lost.
	require.NoError(t, a.mr.Set("developer:"+alex,
		`{"id":"`+alex+`","name":"Alex Johnson","type":"Roblox Developer","available":true}`))

	code, body = a.do(t, http.MethodPost, "/admin/reconcile", root, "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["repaired"])

	_, body = a.do(t, http.MethodGet, "/developers?available=false", root, "")
	assert.Len(t, body["developers"], 1)
}

func TestRouter_Probes(t *testing.T) {
	a := newTestAPI(t)

	code, body := a.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])

	code, _ = a.do(t, http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusOK, code)

	a.mr.SetError("server down")
	code, body = a.do(t, http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "degraded", body["status"])
	a.mr.SetError("")

	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "marketplace_")
}
