package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/yamdb/internal/entity"
	userRepo "anoa.com/yamdb/internal/modules/user/repository"
	"anoa.com/yamdb/internal/testutil"
	"anoa.com/yamdb/pkg/token"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) (*gin.Engine, token.Manager, *entity.User) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "alice", entity.RoleModerator)
	tokens := token.NewJWTManager("test-secret", time.Hour)
	m := NewAuthMiddleware(userRepo.NewUserRepository(db), tokens)

	r := gin.New()
	r.Use(m.Authenticate())
	r.GET("/whoami", func(c *gin.Context) {
		actor := CurrentActor(c)
		if actor == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, actor.Username)
	})
	r.GET("/private", m.RequireAuth(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r, tokens, user
}

func do(r http.Handler, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	r, tokens, user := newRouter(t)

	valid, _, err := tokens.Issue(user.ID)
	require.NoError(t, err)
	ghost, _, err := tokens.Issue(uuid.New())
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"anonymous", "", http.StatusOK, "anonymous"},
		{"valid bearer", "Bearer " + valid, http.StatusOK, "alice"},
		{"lowercase scheme", "bearer " + valid, http.StatusOK, "alice"},
		{"wrong scheme", "Token " + valid, http.StatusUnauthorized, ""},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized, ""},
		{"deleted user", "Bearer " + ghost, http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, "/whoami", tt.header)
			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestRequireAuth(t *testing.T) {
	r, tokens, user := newRouter(t)

	assert.Equal(t, http.StatusUnauthorized, do(r, "/private", "").Code)

	valid, _, err := tokens.Issue(user.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, do(r, "/private", "Bearer "+valid).Code)
}
