package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cropconnect/database/repository/memstore"
	"cropconnect/models"
	"cropconnect/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(t *testing.T) (*gin.Engine, *utils.JWTManager) {
	t.Helper()
	store := memstore.New()
	require.NoError(t, store.Users().Create(context.Background(), &models.User{
		ID: "farmer-1", Name: "Ravi", Email: "ravi@example.com", Role: models.RoleFarmer,
	}))
	tokens := utils.NewJWTManager("test-secret", time.Hour)
	roles := &RoleResolver{Users: store.Users(), Logger: zap.NewNop()}

	r := gin.New()
	whoami := func(c *gin.Context) {
		actor, ok := Actor(c)
		c.JSON(http.StatusOK, gin.H{"id": actor.ID, "role": actor.Role, "authenticated": ok})
	}
	r.GET("/open", OptionalAuth(tokens, roles), whoami)
	r.GET("/me", Auth(tokens, roles), whoami)
	r.GET("/farmers", Auth(tokens, roles), RequireRoles(models.RoleFarmer), whoami)
	r.GET("/owners", Auth(tokens, roles), RequireRoles(models.RoleTractorOwner), whoami)
	return r, tokens
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthUsesStoredRole(t *testing.T) {
	r, tokens := newAuthRouter(t)

	// The token claims a different role; the stored one wins.
	token, err := tokens.GenerateToken("farmer-1", string(models.RoleTractorOwner))
	require.NoError(t, err)

	w := get(r, "/me", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"farmer-1","role":"farmer","authenticated":true}`, w.Body.String())

	assert.Equal(t, http.StatusOK, get(r, "/farmers", token).Code)
	assert.Equal(t, http.StatusForbidden, get(r, "/owners", token).Code)
}

func TestAuthRejectsBadTokens(t *testing.T) {
	r, tokens := newAuthRouter(t)

	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "not-a-jwt").Code)

	other := utils.NewJWTManager("another-secret", time.Hour)
	forged, err := other.GenerateToken("farmer-1", "farmer")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", forged).Code)

	ghost, err := tokens.GenerateToken("deleted-user", "farmer")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", ghost).Code)
}

func TestOptionalAuthAllowsAnonymous(t *testing.T) {
	r, tokens := newAuthRouter(t)

	w := get(r, "/open", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)

	token, err := tokens.GenerateToken("farmer-1", "farmer")
	require.NoError(t, err)
	assert.Contains(t, get(r, "/open", token).Body.String(), `"authenticated":true`)
}

func TestRateLimitIsPerClient(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(2, zap.NewNop()))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call("203.0.113.5"))
	assert.Equal(t, http.StatusOK, call("203.0.113.5"))
	assert.Equal(t, http.StatusTooManyRequests, call("203.0.113.5"))
	assert.Equal(t, http.StatusOK, call("198.51.100.7"))
}
