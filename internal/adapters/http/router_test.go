package httpapi_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	httpapi "github.com/ogurasousui/codex-crm/internal/adapters/http"
	"github.com/ogurasousui/codex-crm/internal/adapters/repository/memory"
	"github.com/ogurasousui/codex-crm/internal/app"
	"github.com/ogurasousui/codex-crm/internal/core/validation"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Status     string                  `json:"status"`
	StatusCode int                     `json:"statusCode"`
	Message    string                  `json:"message"`
	Errors     []validation.FieldError `json:"errors"`
	Data       json.RawMessage         `json:"data"`
}

type apiClient struct {
	t       *testing.T
	handler http.Handler
}

func newClient(t *testing.T, opts httpapi.Options) *apiClient {
	t.Helper()

	c := app.New(app.MemoryRepositories(memory.NewStore()), app.Options{})
	opts.Logger = zerolog.Nop()
	handler, err := httpapi.NewHandler(httpapi.Services{
		Employees: c.Employees,
		Customers: c.Customers,
		Notes:     c.Notes,
		Inactive:  c.Inactive,
		Workflows: c.Workflows,
	}, opts)
	require.NoError(t, err)
	return &apiClient{t: t, handler: handler}
}

func (c *apiClient) do(method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)

	var env envelope
	require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func (c *apiClient) createEmployee(first, email, department string) string {
	c.t.Helper()

	rec, env := c.do(http.MethodPost, "/api/v2/employees", map[string]string{
		"firstName":  first,
		"lastName":   "Tanaka",
		"email":      email,
		"department": department,
	})
	require.Equal(c.t, http.StatusCreated, rec.Code, rec.Body.String())
	var data struct {
		ID string `json:"id"`
	}
	require.NoError(c.t, json.Unmarshal(env.Data, &data))
	return data.ID
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestEmployeeLifecycle(t *testing.T) {
	t.Parallel()

	c := newClient(t, httpapi.Options{})
	id := c.createEmployee("Ichiro", "ichiro@example.com", "Sales")

	rec, env := c.do(http.MethodGet, "/api/v2/employees/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", env.Status)
	assert.Equal(t, "Success", env.Message)

	rec, env = c.do(http.MethodPatch, "/api/v2/employees/"+id, map[string]string{"department": "Support"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	patched := decodeData[map[string]string](t, env)
	assert.Equal(t, "Support", patched["department"])
	assert.Equal(t, "Ichiro", patched["firstName"])

	rec, env = c.do(http.MethodGet, "/api/v2/employees/email/ichiro@example.com", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, decodeData[map[string]string](t, env)["id"])

	rec, env = c.do(http.MethodGet, "/api/v2/employees/departments", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Support"}, decodeData[[]string](t, env))

	rec, _ = c.do(http.MethodDelete, "/api/v2/employees/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = c.do(http.MethodGet, "/api/v2/employees/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "Resource", env.Errors[0].Field)
}

func TestCreateEmployee_ValidationErrors(t *testing.T) {
	t.Parallel()

	c := newClient(t, httpapi.Options{})
	rec, env := c.do(http.MethodPost, "/api/v2/employees", map[string]string{
		"firstName": "A",
		"lastName":  "Tanaka",
		"email":     "not-an-email",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "error", env.Status)

	fields := make([]string, 0, len(env.Errors))
	for _, f := range env.Errors {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"firstName", "email", "department"}, fields)
}

func TestCreateEmployee_MalformedBody(t *testing.T) {
	t.Parallel()

	c := newClient(t, httpapi.Options{})
	req := httptest.NewRequest(http.MethodPost, "/api/v2/employees", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteEmployee_ReferencedThenDeactivated(t *testing.T) {
	t.Parallel()

	c := newClient(t, httpapi.Options{})
	leaving := c.createEmployee("Jiro", "jiro@example.com", "Sales")
	replacement := c.createEmployee("Saburo", "saburo@example.com", "Sales")

	rec, env := c.do(http.MethodPost, "/api/v2/employees/"+leaving+"/customers", map[string]any{
		"firstName": "Hanako",
		"lastName":  "Suzuki",
		"email":     "hanako@example.com",
		"phone":     "0312345678",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	customerID := decodeData[map[string]any](t, env)["id"].(string)

	rec, env = c.do(http.MethodPost, "/api/v2/customers/"+customerID+"/notes", map[string]any{
		"content":         "Initial call",
		"date":            "2024-06-01",
		"interactionType": "PHONE_CALL",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, leaving, decodeData[map[string]any](t, env)["employeeId"])

	rec, env = c.do(http.MethodDelete, "/api/v2/employees/"+leaving, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Conflict", env.Errors[0].Field)

	rec, env = c.do(http.MethodDelete, "/api/v2/employees/"+leaving+"?replacementEmployeeId="+replacement, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decodeData[httpapi.DeactivationResponse](t, env)
	assert.Equal(t, 1, result.ReassignedCustomers)
	assert.Equal(t, 1, result.ReassignedNotes)
	require.NotNil(t, result.InactiveEmployee)
	assert.Equal(t, leaving, result.InactiveEmployee.OriginalEmployeeID)
	assert.Equal(t, replacement, result.InactiveEmployee.ReplacementEmployeeID)

	rec, env = c.do(http.MethodGet, "/api/v2/customers/"+customerID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, replacement, decodeData[map[string]any](t, env)["employeeId"])

	rec, _ = c.do(http.MethodGet, "/api/v2/inactive-employees/original/"+leaving, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = c.do(http.MethodGet, "/api/v2/inactive-employees?department=Sales", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decodeData[struct {
		Items []map[string]any `json:"items"`
	}](t, env)
	assert.Len(t, page.Items, 1)
}

func TestDeactivateEmployee_ReplacementMissing(t *testing.T) {
	t.Parallel()

	c := newClient(t, httpapi.Options{})
	id := c.createEmployee("Shiro", "shiro@example.com", "HR")

	rec, _ := c.do(http.MethodPost, "/api/v2/employees/"+id+"/deactivate", map[string]string{
		"replacementEmployeeId": "00000000-0000-0000-0000-000000000000",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = c.do(http.MethodPost, "/api/v2/employees/"+id+"/deactivate", map[string]string{
		"replacementEmployeeId": id,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCustomerReassignAndList(t *testing.T) {
	t.Parallel()

	c := newClient(t, httpapi.Options{})
	from := c.createEmployee("Goro", "goro@example.com", "Sales")
	to := c.createEmployee("Rokuro", "rokuro@example.com", "Sales")

	for _, email := range []string{"a@example.com", "b@example.com"} {
		rec, _ := c.do(http.MethodPost, "/api/v2/customers", map[string]any{
			"firstName":  "Customer",
			"lastName":   "Sample",
			"email":      email,
			"phone":      "09012345678",
			"employeeId": from,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec, env := c.do(http.MethodGet, "/api/v2/customers?employeeId="+from+"&pageSize=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decodeData[struct {
		Items         []map[string]any `json:"items"`
		NextPageToken string           `json:"nextPageToken"`
	}](t, env)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, "1", page.NextPageToken)

	rec, env = c.do(http.MethodPost, "/api/v2/employees/"+from+"/reassign-customers", map[string]string{"toEmployeeId": to})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2, decodeData[httpapi.ReassignedResponse](t, env).Count)

	rec, env = c.do(http.MethodGet, "/api/v2/employees/"+to+"/customers", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeData[struct {
		Items []map[string]any `json:"items"`
	}](t, env).Items, 2)

	rec, _ = c.do(http.MethodGet, "/api/v2/customers?pageSize=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReassignCustomers_MissingEmployee(t *testing.T) {
	t.Parallel()

	c := newClient(t, httpapi.Options{})
	to := c.createEmployee("Shichiro", "shichiro@example.com", "Sales")

	rec, env := c.do(http.MethodPost, "/api/v2/employees/00000000-0000-0000-0000-000000000000/reassign-customers", map[string]string{"toEmployeeId": to})
	require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "Resource", env.Errors[0].Field)

	rec, _ = c.do(http.MethodPost, "/api/v2/employees/"+to+"/reassign-customers", map[string]string{"toEmployeeId": "00000000-0000-0000-0000-000000000000"})
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
}

func TestCreateCustomer_ExceedsColumnWidth(t *testing.T) {
	t.Parallel()

	c := newClient(t, httpapi.Options{})
	owner := c.createEmployee("Hachiro", "hachiro@example.com", "Sales")

	rec, env := c.do(http.MethodPost, "/api/v2/customers", map[string]any{
		"firstName":  strings.Repeat("a", 101),
		"lastName":   "Sample",
		"email":      "wide@example.com",
		"phone":      "09012345678",
		"employeeId": owner,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "firstName", env.Errors[0].Field)
	assert.Equal(t, "First name must not exceed 100 characters", env.Errors[0].Message)
}

func TestUnknownRoute(t *testing.T) {
	t.Parallel()

	c := newClient(t, httpapi.Options{})
	rec, env := c.do(http.MethodGet, "/api/v2/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "error", env.Status)
}

func TestRequestIDIsEchoed(t *testing.T) {
	t.Parallel()

	c := newClient(t, httpapi.Options{})
	req := httptest.NewRequest(http.MethodGet, "/api/v2/employees", nil)
	req.Header.Set(httpapi.RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get(httpapi.RequestIDHeader))
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	c := newClient(t, httpapi.Options{RateLimitRPS: 0.001, RateLimitBurst: 1})
	rec, _ := c.do(http.MethodGet, "/api/v2/employees", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env := c.do(http.MethodGet, "/api/v2/employees", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "error", env.Status)
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	c := newClient(t, httpapi.Options{AllowedOrigins: []string{"https://crm.example.com"}})
	req := httptest.NewRequest(http.MethodOptions, "/api/v2/employees", nil)
	req.Header.Set("Origin", "https://crm.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)

	assert.Equal(t, "https://crm.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
