package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pos/backend/internal/infrastructure/auth"
	"github.com/pos/backend/internal/infrastructure/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:          "test-secret-key-at-least-32-chars!!",
		Issuer:          "pos-test",
		TokenExpiration: 15 * time.Minute,
	})
}

func newAuthedRouter(jwtService *auth.JWTService, skipPaths ...string) *gin.Engine {
	router := gin.New()
	router.Use(JWTAuthMiddleware(jwtService, skipPaths...))
	router.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"operator": GetOperator(c)})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	return router
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	jwtService := newTestJWTService()
	token, _, err := jwtService.GenerateToken(uuid.New(), "alice", "register-1")
	require.NoError(t, err)

	router := newAuthedRouter(jwtService)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")
}

func TestJWTAuthMiddleware_MissingHeader(t *testing.T) {
	router := newAuthedRouter(newTestJWTService())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
}

func TestJWTAuthMiddleware_MalformedHeader(t *testing.T) {
	router := newAuthedRouter(newTestJWTService())
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(AuthHeaderKey, "Token abcdef")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMiddleware_InvalidToken(t *testing.T) {
	router := newAuthedRouter(newTestJWTService())
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+"not.a.token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMiddleware_SkipPaths(t *testing.T) {
	router := newAuthedRouter(newTestJWTService(), "/health")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetOperator_FallsBackToAnonymous(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, "anonymous", GetOperator(c))

	c.Set(JWTOperatorIDKey, "op-id-1")
	assert.Equal(t, "op-id-1", GetOperator(c))

	c.Set(JWTOperatorKey, "alice")
	assert.Equal(t, "alice", GetOperator(c))
}
