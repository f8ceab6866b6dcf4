package middleware

import (
	"context"
	"net/http"
	"strings"

	userRepo "cropconnect/database/repository/user"
	"cropconnect/models"
	"cropconnect/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	ctxUserID = "userID"
	ctxRole   = "role"
)

// RoleResolver finds the current role of a token's user, caching it in the auth Redis database.
// A nil Cache disables caching.
type RoleResolver struct {
	Cache  *redis.Client
	Users  userRepo.UserRepository
	Logger *zap.Logger
}

// Resolve returns the user's stored role. A deleted user yields an error.
func (r *RoleResolver) Resolve(ctx context.Context, userID string) (models.Role, error) {
	key := utils.AuthCachePrefix + userID
	if r.Cache != nil {
		role, err := r.Cache.Get(ctx, key).Result()
		if err == nil {
			return models.Role(role), nil
		}
		if err != redis.Nil {
			r.Logger.Warn("auth cache read failed, falling back to database", zap.Error(err))
		}
	}

	usr, err := r.Users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if r.Cache != nil {
		if err := r.Cache.Set(ctx, key, string(usr.Role), utils.AuthCacheTTL).Err(); err != nil {
			r.Logger.Warn("auth cache write failed", zap.Error(err))
		}
	}
	return usr.Role, nil
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

func authenticate(c *gin.Context, tokens *utils.JWTManager, roles *RoleResolver, token string) bool {
	claims, err := tokens.ValidateToken(token)
	if err != nil {
		return false
	}
	role, err := roles.Resolve(c.Request.Context(), claims.UserID)
	if err != nil {
		return false
	}
	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxRole, role)
	return true
}

// Auth requires a valid bearer token and stores the caller in the context.
func Auth(tokens *utils.JWTManager, roles *RoleResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abortUnauthorized(c, "Missing or invalid Authorization header")
			return
		}
		if !authenticate(c, tokens, roles, token) {
			abortUnauthorized(c, "Invalid token")
			return
		}
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present and lets anonymous requests through.
func OptionalAuth(tokens *utils.JWTManager, roles *RoleResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			authenticate(c, tokens, roles, token)
		}
		c.Next()
	}
}

// Actor returns the authenticated caller, if any.
func Actor(c *gin.Context) (models.Actor, bool) {
	id := c.GetString(ctxUserID)
	if id == "" {
		return models.Actor{}, false
	}
	role, _ := c.Get(ctxRole)
	r, _ := role.(models.Role)
	return models.Actor{ID: id, Role: r}, true
}

// RequireRoles rejects callers whose role is not listed.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := Actor(c)
		if !ok {
			abortUnauthorized(c, "Authentication required")
			return
		}
		for _, r := range roles {
			if actor.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, utils.ErrorResponse{
			Message: "This action is not available for your role",
		})
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Message: message})
}
