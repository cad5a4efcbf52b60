package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"inkhub/internal/core/security"
	"inkhub/internal/data"
	"inkhub/internal/domain/auth"
	"inkhub/internal/domain/entity"
	"inkhub/internal/store/local"
	"inkhub/pkg/logger"
)

type testAPI struct {
	router *gin.Engine
	layer  *data.Layer
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	blob, err := local.Open(filepath.Join(t.TempDir(), "data.json"))
	require.NoError(t, err)
	policy, err := security.DefaultPolicy()
	require.NoError(t, err)

	layer := data.NewLocal(blob, policy)
	require.NoError(t, layer.Load(context.Background()))

	jwtService := auth.NewJWTService(auth.DefaultJWTConfig("test-secret"))
	authService := auth.NewService(layer, auth.NewSessionManager(), jwtService, auth.DefaultServiceConfig())

	router := NewRouter(RouterConfig{
		Layer:        layer,
		AuthService:  authService,
		JWTValidator: jwtService,
		Logger:       logger.Default(),
	})

	return &testAPI{router: router, layer: layer}
}

func (a *testAPI) seedUser(t *testing.T, username, role, branch string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = a.layer.CreateUser(context.Background(), entity.User{
		Username: username,
		Password: string(hash),
		Role:     role,
		Branch:   branch,
	})
	require.NoError(t, err)
}

func (a *testAPI) login(t *testing.T, username string) string {
	t.Helper()
	res := a.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"username": username,
		"password": "hunter22",
	})
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())

	var body struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.NotEmpty(t, body.AccessToken)
	return body.AccessToken
}

func (a *testAPI) do(t *testing.T, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res := httptest.NewRecorder()
	a.router.ServeHTTP(res, req)
	return res
}

func TestHealthEndpoints(t *testing.T) {
	api := newTestAPI(t)

	res := api.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, res.Code)

	res = api.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `"mode":"local"`)
}

func TestResourcesRequireAuth(t *testing.T) {
	api := newTestAPI(t)

	res := api.do(t, http.MethodGet, "/api/v1/sales", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	res = api.do(t, http.MethodGet, "/api/v1/sales", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestSaleLifecycle(t *testing.T) {
	api := newTestAPI(t)
	api.seedUser(t, "jane", entity.RoleAdmin, "Main")
	token := api.login(t, "jane")

	res := api.do(t, http.MethodPost, "/api/v1/sales", token, map[string]any{
		"client": "Acme Corp",
		"dept":   "Printing",
		"amount": 2500,
	})
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())

	var created entity.Sale
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &created))
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Pending", created.PaymentStatus)
	assert.Equal(t, entity.SourceDirectSale, created.Source)

	// Patch body may use JSON field names.
	res = api.do(t, http.MethodPatch, "/api/v1/sales/"+itoa(created.ID), token, map[string]any{
		"paymentStatus": "Paid",
	})
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())

	var updated entity.Sale
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &updated))
	assert.Equal(t, "Paid", updated.PaymentStatus)
	assert.Equal(t, "Acme Corp", updated.Client)

	res = api.do(t, http.MethodGet, "/api/v1/sales/"+itoa(created.ID), token, nil)
	assert.Equal(t, http.StatusOK, res.Code)

	res = api.do(t, http.MethodDelete, "/api/v1/sales/"+itoa(created.ID), token, nil)
	assert.Equal(t, http.StatusNoContent, res.Code)

	res = api.do(t, http.MethodGet, "/api/v1/sales/"+itoa(created.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestValidationErrorShape(t *testing.T) {
	api := newTestAPI(t)
	api.seedUser(t, "jane", entity.RoleAdmin, "Main")
	token := api.login(t, "jane")

	// Missing client fails validation in the data layer.
	res := api.do(t, http.MethodPost, "/api/v1/sales", token, map[string]any{
		"amount": 100,
	})
	require.Equal(t, http.StatusBadRequest, res.Code)

	var body struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
	assert.Equal(t, "client", body.Details["field"])
}

func TestStockAndMaterialRoutes(t *testing.T) {
	api := newTestAPI(t)
	api.seedUser(t, "jane", entity.RoleAdmin, "Main")
	token := api.login(t, "jane")

	res := api.do(t, http.MethodPost, "/api/v1/inventory", token, map[string]any{
		"name":         "Vinyl Roll",
		"quantity":     10,
		"reorderLevel": 3,
	})
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	var item entity.InventoryItem
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &item))

	res = api.do(t, http.MethodPost, "/api/v1/inventory/"+itoa(item.ID)+"/transactions", token, map[string]any{
		"quantity_change":  -4,
		"transaction_type": entity.StockProjectUsage,
		"reason":           "Job cutting",
	})
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())

	res = api.do(t, http.MethodGet, "/api/v1/inventory/transactions", token, nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `"totalCount":1`)

	res = api.do(t, http.MethodGet, "/api/v1/inventory/"+itoa(item.ID), token, nil)
	require.Equal(t, http.StatusOK, res.Code)
	var after entity.InventoryItem
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &after))
	assert.EqualValues(t, 6, after.Quantity)
}

func TestAdminOnlyRoutes(t *testing.T) {
	api := newTestAPI(t)
	api.seedUser(t, "jane", entity.RoleAdmin, "Main")
	api.seedUser(t, "bob", entity.RoleUser, "Main")

	adminToken := api.login(t, "jane")
	// A second login supersedes jane's session token but both JWTs stay
	// valid for their TTL.
	userToken := api.login(t, "bob")

	res := api.do(t, http.MethodGet, "/api/v1/audit", userToken, nil)
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = api.do(t, http.MethodGet, "/api/v1/users", userToken, nil)
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = api.do(t, http.MethodGet, "/api/v1/users", adminToken, nil)
	require.Equal(t, http.StatusOK, res.Code)
	// Password hashes never appear in responses.
	assert.NotContains(t, res.Body.String(), "$2")

	res = api.do(t, http.MethodGet, "/api/v1/audit", adminToken, nil)
	assert.Equal(t, http.StatusOK, res.Code)
}

func TestBranchScopedListing(t *testing.T) {
	api := newTestAPI(t)
	api.seedUser(t, "jane", entity.RoleAdmin, "Main")
	api.seedUser(t, "bob", entity.RoleUser, "Westlands")

	janeToken := api.login(t, "jane")
	res := api.do(t, http.MethodPost, "/api/v1/sales", janeToken, map[string]any{
		"client": "Acme Corp",
		"amount": 900,
		"branch": "Main",
	})
	require.Equal(t, http.StatusCreated, res.Code)

	bobToken := api.login(t, "bob")
	res = api.do(t, http.MethodGet, "/api/v1/sales", bobToken, nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `"totalCount":0`)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
