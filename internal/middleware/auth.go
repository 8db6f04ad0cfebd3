package middleware

import (
	"solveit_backend/internal/config"
	"solveit_backend/internal/util"
	"solveit_backend/pkg/logger"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthMiddleware requires a valid bearer token, or the guest header when guest mode
// is enabled. A missing identity is 401, a token that fails verification is 403.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := identify(c, cfg)
		if err != nil {
			util.Forbidden(c)
			c.Abort()
			return
		}
		if claims == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set(util.ContextUserKey, claims)
		c.Next()
	}
}

// TryAuthMiddleware identifies the caller when it can and lets anonymous requests
// through.
func TryAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := identify(c, cfg); err == nil && claims != nil {
			c.Set(util.ContextUserKey, claims)
		}
		c.Next()
	}
}

// identify returns nil, nil for an anonymous request and an error for a bearer
// token that does not verify.
func identify(c *gin.Context, cfg *config.Config) (*util.Claims, error) {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
		if err != nil {
			logger.Log.Debug("JWT rejected", zap.String("path", c.FullPath()), zap.Error(err))
			return nil, err
		}
		return claims, nil
	}

	guestID := cfg.Auth.GuestUserID
	if guestID != "" && c.GetHeader(util.GuestHeader) == guestID {
		return &util.Claims{UserID: guestID}, nil
	}
	return nil, nil
}
