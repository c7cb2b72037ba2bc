package middleware

import (
	"errors"
	"net/http"
	"strings"

	userRepo "anoa.com/yamdb/internal/modules/user/repository"
	"anoa.com/yamdb/internal/policy"
	"anoa.com/yamdb/pkg/token"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const actorKey = "actor"

type AuthMiddleware struct {
	userRepo userRepo.UserRepository
	tokens   token.Manager
}

func NewAuthMiddleware(userRepo userRepo.UserRepository, tokens token.Manager) *AuthMiddleware {
	return &AuthMiddleware{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// Authenticate resolves the bearer token, if any, to an actor. Requests
// without a token pass through anonymously; a token that does not verify
// or names a user that no longer exists is rejected.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header must be: Bearer <token>"})
			return
		}

		userID, err := m.tokens.Verify(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": token.ErrInvalidToken.Error()})
			return
		}

		user, err := m.userRepo.FindByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		c.Set(actorKey, policy.ActorFromUser(user))
		c.Next()
	}
}

// RequireAuth rejects anonymous requests. It must run after Authenticate.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentActor(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}
		c.Next()
	}
}

// CurrentActor returns the authenticated actor, or nil for anonymous requests.
func CurrentActor(c *gin.Context) *policy.Actor {
	v, ok := c.Get(actorKey)
	if !ok {
		return nil
	}
	actor, _ := v.(*policy.Actor)
	return actor
}
