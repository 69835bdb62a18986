package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"

	"github.com/petfans/petfans-api/internal/handler"
	"github.com/petfans/petfans-api/internal/model"
	"github.com/petfans/petfans-api/pkg/auth"
	apperrors "github.com/petfans/petfans-api/pkg/errors"
	"github.com/petfans/petfans-api/pkg/httputil"
)

type AuthMiddleware struct {
	jwt auth.JWTService
	// claims keyed by raw token, so hot clients skip signature checks
	cache *gocache.Cache
}

func NewAuthMiddleware(jwtSvc auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{
		jwt:   jwtSvc,
		cache: gocache.New(time.Minute, 5*time.Minute),
	}
}

// Authenticate verifies the bearer token and stores the caller identity
// in the request context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httputil.RespondWithError(c, apperrors.Unauthorized(nil))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			httputil.RespondWithError(c, apperrors.Unauthorized(nil))
			c.Abort()
			return
		}
		token := parts[1]

		var claims *model.TokenClaims
		if cached, ok := m.cache.Get(token); ok {
			claims = cached.(*model.TokenClaims)
		} else {
			validated, err := m.jwt.ValidateToken(token)
			if err != nil {
				httputil.RespondWithError(c, apperrors.Unauthorized(err))
				c.Abort()
				return
			}
			claims = validated
			m.cache.SetDefault(token, claims)
		}

		c.Set(handler.ContextUserIDKey, claims.UserID)
		c.Set("email", claims.Email)
		c.Next()
	}
}
