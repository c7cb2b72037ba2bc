package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"anoa.com/yamdb/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, err error) (int, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	Error(c, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestError_Validation(t *testing.T) {
	code, body := run(t, apperror.Validation("score", "must be between 1 and 10"))

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, map[string]any{"score": "must be between 1 and 10"}, body["fields"])
}

func TestError_NotFound(t *testing.T) {
	code, body := run(t, apperror.NotFound("title"))

	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "title not found", body["error"])
}

func TestError_InternalIsMasked(t *testing.T) {
	code, body := run(t, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "internal server error", body["error"])
}
