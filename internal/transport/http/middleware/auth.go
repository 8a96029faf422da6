package middleware

import (
	"context"
	"net/http"

	"github.com/aidarbek/todochat/internal/authctx"
	"github.com/aidarbek/todochat/internal/domain"
	"github.com/gin-gonic/gin"
)

// AuthHeader is the custom header clients present their token in.
const AuthHeader = "x-auth"

// TokenResolver is the subset of UserUsecase the middleware needs.
type TokenResolver interface {
	ResolveToken(ctx context.Context, rawToken string) (*domain.User, error)
}

// Auth resolves the x-auth token to a user and attaches the session to
// the request context. Failures end the request with 401 and an empty
// body; the downstream handler never runs.
func Auth(resolver TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawToken := c.GetHeader(AuthHeader)
		if rawToken == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		user, err := resolver.ResolveToken(c.Request.Context(), rawToken)
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Request = c.Request.WithContext(authctx.WithSession(c.Request.Context(), user, rawToken))
		c.Next()
	}
}
