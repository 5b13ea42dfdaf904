package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adscenter/reports/internal/repository/memory"
	"github.com/adscenter/reports/internal/server/handlers"
	"github.com/adscenter/reports/internal/server/router"
	authsvc "github.com/adscenter/reports/internal/service/auth"
	exportsvc "github.com/adscenter/reports/internal/service/export"
	reportsvc "github.com/adscenter/reports/internal/service/reports"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	repo := memory.NewReportRepository()
	reportService := reportsvc.NewService(repo, nil, nil)
	exportService := exportsvc.NewService(repo, nil)

	tokens := authsvc.NewTokenIssuer(authsvc.DefaultTokenConfig("test-secret"))
	authService := authsvc.NewService(
		memory.NewUserRepository(),
		memory.NewLockoutStore(authsvc.DefaultLockoutPolicy()),
		tokens,
		nil,
	)
	require.NoError(t, authService.EnsureAdminUser(context.Background(), "admin", "admin123"))

	return router.New(
		handlers.NewReportHandler(reportService, exportService, nil),
		handlers.NewAuthHandler(authService, nil),
		nil,
	)
}

func doJSON(t *testing.T, handler http.Handler, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	var decoded map[string]any
	if recorder.Body.Len() > 0 && recorder.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &decoded))
	}
	return recorder, decoded
}

func createPayload() map[string]any {
	return map[string]any{
		"date": "2024-01-15",
		"services": []map[string]any{
			{"id": "s1", "name": "Aadhaar Card", "amount": 50},
		},
		"expenses": []map[string]any{
			{"id": "e1", "name": "Paper", "amount": 5},
		},
	}
}

func login(t *testing.T, handler http.Handler) string {
	t.Helper()
	resp, body := doJSON(t, handler, http.MethodPost, "/api/login", "", map[string]any{
		"username": "admin",
		"password": "admin123",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestCreateAndFetchReport(t *testing.T) {
	handler := newTestServer(t)

	resp, body := doJSON(t, handler, http.MethodPost, "/api/reports", "", createPayload())
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "50.00", body["totalServices"])
	assert.Equal(t, "5.00", body["totalExpenses"])
	assert.Equal(t, "45.00", body["netProfit"])
	id, _ := body["id"].(string)
	require.NotEmpty(t, id)

	resp, body = doJSON(t, handler, http.MethodGet, "/api/reports/"+id, "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "2024-01-15", body["date"])

	resp, body = doJSON(t, handler, http.MethodGet, "/api/reports/date/2024-01-15", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, id, body["id"])
}

func TestCreateDuplicateDateConflicts(t *testing.T) {
	handler := newTestServer(t)

	resp, _ := doJSON(t, handler, http.MethodPost, "/api/reports", "", createPayload())
	require.Equal(t, http.StatusOK, resp.Code)

	resp, body := doJSON(t, handler, http.MethodPost, "/api/reports", "", createPayload())
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, "DUPLICATE_DATE", body["code"])
}

func TestCreateInvalidPayload(t *testing.T) {
	handler := newTestServer(t)

	payload := createPayload()
	payload["date"] = "not-a-date"
	resp, body := doJSON(t, handler, http.MethodPost, "/api/reports", "", payload)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
}

func TestGetMissingReport(t *testing.T) {
	handler := newTestServer(t)

	resp, _ := doJSON(t, handler, http.MethodGet, "/api/reports/656f1e4b9d3f2a0012345678", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp, _ = doJSON(t, handler, http.MethodGet, "/api/reports/date/2031-12-12", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestMutatingRoutesRequireAuth(t *testing.T) {
	handler := newTestServer(t)

	resp, _ := doJSON(t, handler, http.MethodPost, "/api/reports", "", createPayload())
	require.Equal(t, http.StatusOK, resp.Code)
	_, body := doJSON(t, handler, http.MethodGet, "/api/reports/date/2024-01-15", "", nil)
	id := body["id"].(string)

	resp, _ = doJSON(t, handler, http.MethodDelete, "/api/reports/"+id, "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp, _ = doJSON(t, handler, http.MethodPut, "/api/reports/"+id, "", map[string]any{"totalExpenses": "50.00"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	token := login(t, handler)

	resp, _ = doJSON(t, handler, http.MethodPut, "/api/reports/"+id, token, map[string]any{"totalExpenses": "50.00"})
	assert.Equal(t, http.StatusOK, resp.Code)

	_, body = doJSON(t, handler, http.MethodGet, "/api/reports/"+id, "", nil)
	assert.Equal(t, "50.00", body["totalExpenses"])
	assert.Equal(t, "45.00", body["netProfit"], "sparse patch must not recompute")

	resp, _ = doJSON(t, handler, http.MethodDelete, "/api/reports/"+id, token, nil)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp, _ = doJSON(t, handler, http.MethodGet, "/api/reports/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestLoginFailure(t *testing.T) {
	handler := newTestServer(t)

	resp, body := doJSON(t, handler, http.MethodPost, "/api/login", "", map[string]any{
		"username": "admin",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "Invalid username or password", body["error"])
}

func TestUserEndpoint(t *testing.T) {
	handler := newTestServer(t)

	resp, _ := doJSON(t, handler, http.MethodGet, "/api/user", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	token := login(t, handler)
	resp, body := doJSON(t, handler, http.MethodGet, "/api/user", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "admin", body["username"])
}

func TestExportEndpoint(t *testing.T) {
	handler := newTestServer(t)

	resp, _ := doJSON(t, handler, http.MethodPost, "/api/reports", "", createPayload())
	require.Equal(t, http.StatusOK, resp.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/export?format=csv", nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, recorder.Body.String(), "2024-01-15")

	resp, _ = doJSON(t, handler, http.MethodGet, "/api/reports/export?format=xml", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
