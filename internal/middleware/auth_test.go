package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/ShannonCanTech/aroundhere/internal/auth"
	"github.com/ShannonCanTech/aroundhere/internal/middleware"
)

const testSecret = "test-secret"

func newAuthedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.AuthMiddleware(testSecret))
	router.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userId":   middleware.GetUserID(c),
			"username": middleware.GetUsername(c),
		})
	})
	return router
}

func request(t *testing.T, router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	router := newAuthedRouter()

	token, err := auth.GenerateToken("u1", "alice", testSecret, time.Hour)
	require.NoError(t, err)

	w := request(t, router, "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"userId":"u1"`)
	require.Contains(t, w.Body.String(), `"username":"alice"`)
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	w := request(t, newAuthedRouter(), "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareMalformedHeader(t *testing.T) {
	token, err := auth.GenerateToken("u1", "alice", testSecret, time.Hour)
	require.NoError(t, err)

	for _, header := range []string{token, "Basic " + token} {
		w := request(t, newAuthedRouter(), header)
		require.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}

func TestAuthMiddlewareBadToken(t *testing.T) {
	wrong, err := auth.GenerateToken("u1", "alice", "other-secret", time.Hour)
	require.NoError(t, err)

	w := request(t, newAuthedRouter(), "Bearer "+wrong)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
