package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	auditDomain "github.com/allisson/registry/internal/audit/domain"
	auditHTTP "github.com/allisson/registry/internal/audit/http"
	authDomain "github.com/allisson/registry/internal/auth/domain"
	authHTTP "github.com/allisson/registry/internal/auth/http"
	authUseCase "github.com/allisson/registry/internal/auth/usecase"
	"github.com/allisson/registry/internal/metrics"
	registryDomain "github.com/allisson/registry/internal/registry/domain"
	registryHTTP "github.com/allisson/registry/internal/registry/http"
)

// TestMain sets Gin to test mode and checks for leaked goroutines.
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// createTestServer creates a test server with a discarding logger and no database.
func createTestServer() *Server {
	return NewServer(nil, "localhost", 0, testLogger())
}

type mockTokenUseCase struct {
	mock.Mock
}

func (m *mockTokenUseCase) Issue(
	ctx context.Context,
	input *authDomain.IssueTokenInput,
) (*authDomain.IssueTokenOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.IssueTokenOutput), args.Error(1)
}

func (m *mockTokenUseCase) Revoke(
	ctx context.Context,
	principal *authDomain.Principal,
	input *authDomain.RevokeTokenInput,
) (*authDomain.RevokeTokenOutput, error) {
	args := m.Called(ctx, principal, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.RevokeTokenOutput), args.Error(1)
}

func (m *mockTokenUseCase) Authenticate(
	ctx context.Context,
	plainToken string,
) (*authDomain.Principal, error) {
	args := m.Called(ctx, plainToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Principal), args.Error(1)
}

type mockRoleBindingUseCase struct {
	mock.Mock
}

func (m *mockRoleBindingUseCase) Upsert(
	ctx context.Context,
	principal *authDomain.Principal,
	input *authDomain.UpsertRoleBindingInput,
) (*authDomain.RoleBinding, error) {
	args := m.Called(ctx, principal, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.RoleBinding), args.Error(1)
}

func (m *mockRoleBindingUseCase) ListByRepository(
	ctx context.Context,
	tenantID uuid.UUID,
	repositoryKey string,
) ([]*authDomain.RoleBinding, error) {
	args := m.Called(ctx, tenantID, repositoryKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authDomain.RoleBinding), args.Error(1)
}

type mockAuditUseCase struct {
	mock.Mock
}

func (m *mockAuditUseCase) Append(ctx context.Context, input *auditDomain.AppendInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func (m *mockAuditUseCase) Read(
	ctx context.Context,
	tenantID uuid.UUID,
	limit int,
) ([]*auditDomain.Record, error) {
	args := m.Called(ctx, tenantID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.Record), args.Error(1)
}

type mockRegistryUseCase struct {
	mock.Mock
}

func (m *mockRegistryUseCase) Create(
	ctx context.Context,
	tenantID uuid.UUID,
	actor string,
	input *registryDomain.CreateRepositoryInput,
) (*registryDomain.Repository, error) {
	args := m.Called(ctx, tenantID, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registryDomain.Repository), args.Error(1)
}

func (m *mockRegistryUseCase) Get(
	ctx context.Context,
	tenantID uuid.UUID,
	key string,
) (*registryDomain.Repository, error) {
	args := m.Called(ctx, tenantID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registryDomain.Repository), args.Error(1)
}

func (m *mockRegistryUseCase) List(
	ctx context.Context,
	tenantID uuid.UUID,
) ([]*registryDomain.Repository, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*registryDomain.Repository), args.Error(1)
}

func (m *mockRegistryUseCase) Delete(
	ctx context.Context,
	tenantID uuid.UUID,
	actor string,
	key string,
) error {
	args := m.Called(ctx, tenantID, actor, key)
	return args.Error(0)
}

// serverMocks bundles the mocked use cases behind a fully wired router.
type serverMocks struct {
	token    *mockTokenUseCase
	binding  *mockRoleBindingUseCase
	audit    *mockAuditUseCase
	registry *mockRegistryUseCase
}

// createFullRouter wires the complete route table against mocked use cases
// and a real authorizer, without rate limiting or metrics.
func createFullRouter(m *serverMocks) http.Handler {
	logger := testLogger()
	server := createTestServer()
	server.SetupRouter(RouterConfig{
		TokenHandler:           authHTTP.NewTokenHandler(m.token, logger),
		RoleBindingHandler:     authHTTP.NewRoleBindingHandler(m.binding, logger),
		AuditHandler:           auditHTTP.NewAuditHandler(m.audit, logger),
		RepositoryHandler:      registryHTTP.NewRepositoryHandler(m.registry, logger),
		Authentication:         authHTTP.AuthenticationMiddleware(m.token, logger),
		OptionalAuthentication: authHTTP.OptionalAuthenticationMiddleware(m.token, logger),
		Authorizer:             authUseCase.NewAuthorizer(),
	})
	return server.GetHandler()
}

func newServerMocks() *serverMocks {
	return &serverMocks{
		token:    &mockTokenUseCase{},
		binding:  &mockRoleBindingUseCase{},
		audit:    &mockAuditUseCase{},
		registry: &mockRegistryUseCase{},
	}
}

func principalWithScopes(t *testing.T, scopes ...string) *authDomain.Principal {
	t.Helper()
	parsed, err := authDomain.ParseScopes(scopes)
	require.NoError(t, err)
	return &authDomain.Principal{
		TenantID: uuid.Must(uuid.NewV7()),
		TokenID:  uuid.Must(uuid.NewV7()),
		Subject:  "ci-bot",
		Scopes:   parsed,
	}
}

// TestHealthHandler tests the health check endpoint handler.
func TestHealthHandler(t *testing.T) {
	server := createTestServer()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	server.healthHandler(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "healthy", response["status"])
}

// TestReadinessHandler_NotReady_NilDB tests the readiness endpoint when DB is nil.
func TestReadinessHandler_NotReady_NilDB(t *testing.T) {
	server := createTestServer()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)

	server.readinessHandler(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "not_ready", response["status"])

	components, ok := response["components"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "error", components["database"])
}

// TestCustomLoggerMiddleware tests the custom logging middleware.
func TestCustomLoggerMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(testLogger()))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "test"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "test", response["message"])
}

// TestRequestIDMiddleware_HeaderPresent verifies X-Request-Id is a UUID on responses.
func TestRequestIDMiddleware_HeaderPresent(t *testing.T) {
	mocks := newServerMocks()
	router := createFullRouter(mocks)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	requestID := w.Header().Get("X-Request-Id")
	require.NotEmpty(t, requestID)

	parsedUUID, err := uuid.Parse(requestID)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, parsedUUID)
}

func TestRouter_IssueToken_AnonymousBootstrap(t *testing.T) {
	mocks := newServerMocks()
	router := createFullRouter(mocks)

	tokenID := uuid.Must(uuid.NewV7())
	scopes, err := authDomain.ParseScopes([]string{"*:admin"})
	require.NoError(t, err)

	mocks.token.On("Issue", mock.Anything, mock.MatchedBy(func(input *authDomain.IssueTokenInput) bool {
		return input.TenantSlug == "acme" &&
			input.Subject == "root" &&
			input.BootstrapSecret == "swordfish" &&
			input.Principal == nil
	})).Return(&authDomain.IssueTokenOutput{
		Token: &authDomain.PersonalAccessToken{
			ID:        tokenID,
			Subject:   "root",
			Scopes:    scopes,
			ExpiresAt: time.Now().Add(time.Hour),
		},
		PlainToken: "plaintext-credential",
	}, nil)

	body, err := json.Marshal(map[string]any{
		"subject":     "root",
		"scopes":      []string{"*:admin"},
		"ttl_minutes": 60,
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/tenants/acme/tokens", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Bootstrap-Secret", "swordfish")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "plaintext-credential", response["token"])

	mocks.token.AssertExpectations(t)
	mocks.token.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
}

func TestRouter_IssueToken_PresentedInvalidTokenIsRejected(t *testing.T) {
	mocks := newServerMocks()
	router := createFullRouter(mocks)

	mocks.token.On("Authenticate", mock.Anything, "bad-token").
		Return(nil, authDomain.ErrInvalidCredentials)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/tenants/acme/tokens", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Authorization", "Bearer bad-token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mocks.token.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
}

func TestRouter_Audit_RequiresAuthentication(t *testing.T) {
	mocks := newServerMocks()
	router := createFullRouter(mocks)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/audit", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mocks.audit.AssertNotCalled(t, "Read", mock.Anything, mock.Anything, mock.Anything)
}

func TestRouter_Audit_WildcardReadSucceeds(t *testing.T) {
	mocks := newServerMocks()
	router := createFullRouter(mocks)

	principal := principalWithScopes(t, "*:read")
	mocks.token.On("Authenticate", mock.Anything, "good-token").Return(principal, nil)
	mocks.audit.On("Read", mock.Anything, principal.TenantID, 0).
		Return([]*auditDomain.Record{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/audit", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mocks.audit.AssertExpectations(t)
}

func TestRouter_Audit_NonNumericLimitFallsBackToDefault(t *testing.T) {
	mocks := newServerMocks()
	router := createFullRouter(mocks)

	principal := principalWithScopes(t, "*:admin")
	mocks.token.On("Authenticate", mock.Anything, "good-token").Return(principal, nil)
	mocks.audit.On("Read", mock.Anything, principal.TenantID, 0).
		Return([]*auditDomain.Record{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/audit?limit=abc", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mocks.audit.AssertExpectations(t)
}

func TestRouter_RevokeToken_RequiresWildcardAdmin(t *testing.T) {
	mocks := newServerMocks()
	router := createFullRouter(mocks)

	principal := principalWithScopes(t, "npm-local:admin")
	mocks.token.On("Authenticate", mock.Anything, "good-token").Return(principal, nil)

	body := []byte(`{"token_id": "` + uuid.Must(uuid.NewV7()).String() + `"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/tokens/revoke", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer good-token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	mocks.token.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything, mock.Anything)
}

func TestRouter_GetRepository_ReadScopeOnKeySucceeds(t *testing.T) {
	mocks := newServerMocks()
	router := createFullRouter(mocks)

	principal := principalWithScopes(t, "npm-local:read")
	mocks.token.On("Authenticate", mock.Anything, "good-token").Return(principal, nil)
	mocks.registry.On("Get", mock.Anything, principal.TenantID, "npm-local").
		Return(&registryDomain.Repository{
			ID:       uuid.Must(uuid.NewV7()),
			TenantID: principal.TenantID,
			Key:      "npm-local",
			Type:     registryDomain.TypeLocal,
		}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/repositories/npm-local", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mocks.registry.AssertExpectations(t)
}

func TestRouter_UpsertPermissions_WriteScopeIsInsufficient(t *testing.T) {
	mocks := newServerMocks()
	router := createFullRouter(mocks)

	principal := principalWithScopes(t, "npm-local:write")
	mocks.token.On("Authenticate", mock.Anything, "good-token").Return(principal, nil)

	body := []byte(`{"subject": "ci-bot", "roles": ["read"]}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(
		http.MethodPut, "/v1/repositories/npm-local/permissions", bytes.NewReader(body),
	)
	req.Header.Set("Authorization", "Bearer good-token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	mocks.binding.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
}

func TestRouter_ListRepositories_AnyAuthenticatedPrincipal(t *testing.T) {
	mocks := newServerMocks()
	router := createFullRouter(mocks)

	principal := principalWithScopes(t, "npm-local:read")
	mocks.token.On("Authenticate", mock.Anything, "good-token").Return(principal, nil)
	mocks.registry.On("List", mock.Anything, principal.TenantID).
		Return([]*registryDomain.Repository{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/repositories", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mocks.registry.AssertExpectations(t)
}

// TestRouter_NotFoundEndpoint tests 404 handling.
func TestRouter_NotFoundEndpoint(t *testing.T) {
	mocks := newServerMocks()
	router := createFullRouter(mocks)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestServer_NoMetricsEndpoint tests that the API server does NOT expose /metrics.
func TestServer_NoMetricsEndpoint(t *testing.T) {
	mocks := newServerMocks()
	router := createFullRouter(mocks)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestServer_StartWithoutRouterFails tests that Start requires SetupRouter.
func TestServer_StartWithoutRouterFails(t *testing.T) {
	server := createTestServer()

	err := server.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "router not configured")
}

// TestServer_ShutdownGracefully tests graceful server shutdown.
func TestServer_ShutdownGracefully(t *testing.T) {
	mocks := newServerMocks()
	server := createTestServer()
	server.SetupRouter(RouterConfig{
		TokenHandler:           authHTTP.NewTokenHandler(mocks.token, testLogger()),
		RoleBindingHandler:     authHTTP.NewRoleBindingHandler(mocks.binding, testLogger()),
		AuditHandler:           auditHTTP.NewAuditHandler(mocks.audit, testLogger()),
		RepositoryHandler:      registryHTTP.NewRepositoryHandler(mocks.registry, testLogger()),
		Authentication:         authHTTP.AuthenticationMiddleware(mocks.token, testLogger()),
		OptionalAuthentication: authHTTP.OptionalAuthenticationMiddleware(mocks.token, testLogger()),
		Authorizer:             authUseCase.NewAuthorizer(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(ctx)
	}()

	// Give the listener time to start.
	time.Sleep(100 * time.Millisecond)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	require.NoError(t, server.Shutdown(shutdownCtx))

	select {
	case err := <-errChan:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after shutdown")
	}
}

// TestMetricsServer_Endpoints tests the metrics server endpoints.
func TestMetricsServer_Endpoints(t *testing.T) {
	logger := testLogger()

	provider, err := metrics.NewProvider("test_app")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	metricsServer := NewMetricsServer("localhost", 0, logger, provider)
	require.NotNil(t, metricsServer)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	metricsServer.GetHandler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
}
