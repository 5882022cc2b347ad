package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"muttonhub-backend/internal/config"
	"muttonhub-backend/internal/database/dbtest"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const securityCode = "7904116719"

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:          "0123456789abcdef0123456789abcdef",
		SignupSecurityCode: securityCode,
		CORSOrigins:        "http://localhost:5173",
		RoleFailOpen:       true,
	}
}

type client struct {
	t     *testing.T
	app   *fiber.App
	token string
}

func (c *client) send(method, path, body string) (*http.Response, []byte) {
	c.t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)

	raw, _ := io.ReadAll(resp.Body)
	return resp, raw
}

func (c *client) do(method, path, body string) (*http.Response, map[string]any) {
	c.t.Helper()
	resp, raw := c.send(method, path, body)
	var out map[string]any
	_ = json.Unmarshal(raw, &out)
	return resp, out
}

func signUpAndLogin(t *testing.T, app *fiber.App, email, role string) *client {
	t.Helper()
	c := &client{t: t, app: app}
	resp, _ := c.do("POST", "/api/auth/signup",
		`{"email":"`+email+`","password":"secret123","security_code":"`+securityCode+`","role":"`+role+`"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, out := c.do("POST", "/api/auth/login", `{"email":"`+email+`","password":"secret123"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	c.token = out["token"].(string)
	return c
}

func TestEndToEndSettlementIsAudited(t *testing.T) {
	app := New(testConfig(), zap.NewNop(), dbtest.Open(t))
	owner := signUpAndLogin(t, app, "owner@example.com", "owner")

	resp, buyer := owner.do("POST", "/api/buyers", `{"name":"Ravi Traders","phone":"9876500001"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.EqualValues(t, 1, buyer["id"])

	resp, tx := owner.do("POST", "/api/buyer-transactions",
		`{"buyer_id":1,"entry_date":"2025-03-01","number_of_goats":5,"total_amount":"10000","paid_amount":"4000"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "6000", tx["remaining_balance"])

	resp, settled := owner.do("POST", "/api/buyer-transactions/1/settle", `{"amount":"6000"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "0", settled["remaining_balance"])
	assert.Equal(t, "Paid", settled["status"])

	resp, raw := owner.send("GET", "/api/audit-logs?action=UPDATE", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var logs []struct {
		Action    string            `json:"action"`
		TableName string            `json:"table_name"`
		EntityID  uint              `json:"entity_id"`
		UserEmail string            `json:"user_email"`
		OldValues map[string]string `json:"old_values"`
		NewValues map[string]string `json:"new_values"`
	}
	require.NoError(t, json.Unmarshal(raw, &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, "UPDATE", logs[0].Action)
	assert.Equal(t, "buyer_transactions", logs[0].TableName)
	assert.EqualValues(t, 1, logs[0].EntityID)
	assert.Equal(t, "owner@example.com", logs[0].UserEmail)
	assert.Equal(t, "4000", logs[0].OldValues["paid_amount"])
	assert.Equal(t, "10000", logs[0].NewValues["paid_amount"])
	assert.Equal(t, "6000", logs[0].OldValues["remaining_balance"])
	assert.Equal(t, "0", logs[0].NewValues["remaining_balance"])
}

func TestDemotedOwnerLosesAccessImmediately(t *testing.T) {
	app := New(testConfig(), zap.NewNop(), dbtest.Open(t))
	first := signUpAndLogin(t, app, "a@example.com", "owner")
	second := signUpAndLogin(t, app, "b@example.com", "owner")

	resp, _ := second.do("GET", "/api/admin/users", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = first.do("PUT", "/api/admin/users/2/role", `{"role":"accountant"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// second still holds a token issued while it was owner
	resp, _ = second.do("GET", "/api/admin/users", "")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = second.do("PUT", "/api/admin/users/2/role", `{"role":"owner"}`)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, session := second.do("GET", "/api/auth/session", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "accountant", session["role"])

	resp, raw := second.send("GET", "/api/navigation", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotContains(t, string(raw), `"users"`)
}

func TestOwnerOnlyRoutes(t *testing.T) {
	app := New(testConfig(), zap.NewNop(), dbtest.Open(t))
	signUpAndLogin(t, app, "owner@example.com", "owner")
	accountant := signUpAndLogin(t, app, "acc@example.com", "accountant")

	for _, path := range []string{"/api/audit-logs", "/api/audit-logs/export", "/api/admin/users"} {
		resp, out := accountant.do("GET", path, "")
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode, path)
		assert.NotEmpty(t, out["error"])
	}

	resp, _ := accountant.do("GET", "/api/dashboard/summary", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	anonymous := &client{t: t, app: app}
	resp, _ = anonymous.do("GET", "/api/buyers", "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSignUpWrongCodeAndHealth(t *testing.T) {
	app := New(testConfig(), zap.NewNop(), dbtest.Open(t))
	c := &client{t: t, app: app}

	resp, out := c.do("POST", "/api/auth/signup", `{"email":"x@example.com","password":"secret123","security_code":"nope"}`)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Invalid security code", out["error"])

	resp, out = c.do("GET", "/api/health", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "UP", out["status"])
}

func TestAccessLogCarriesRequestID(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	app := New(testConfig(), zap.New(core), dbtest.Open(t))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/buyers", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	entries := recorded.FilterMessage("HTTP Request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.EqualValues(t, fiber.StatusUnauthorized, fields["status"])
	assert.NotEmpty(t, fields["request_id"])
	assert.Equal(t, resp.Header.Get(fiber.HeaderXRequestID), fields["request_id"])
}

func TestErrorHandlerHidesUnexpectedErrors(t *testing.T) {
	core, recorded := observer.New(zapcore.ErrorLevel)
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.New(core))})
	app.Get("/boom", func(c *fiber.Ctx) error { return io.ErrUnexpectedEOF })

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"error":"Unexpected server error"}`, string(body))
	assert.Equal(t, 1, recorded.FilterMessage("Unexpected error").Len())
}
