package response

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"anoa.com/yamdb/pkg/apperror"
	"anoa.com/yamdb/pkg/validator"
	"github.com/gin-gonic/gin"
)

// Error writes err with the status apperror maps it to. Validation errors
// carry the offending field; internal errors are logged and masked.
func Error(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	if code == http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "internal error",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		c.JSON(code, gin.H{"error": apperror.ErrInternal.Error()})
		return
	}

	var ve *apperror.ValidationError
	if errors.As(err, &ve) && ve.Field != "" {
		c.JSON(code, gin.H{
			"error":  ve.Error(),
			"fields": gin.H{ve.Field: ve.Message},
		})
		return
	}

	c.JSON(code, gin.H{"error": err.Error()})
}

// BindError reports a request that failed gin binding.
func BindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":  validator.FormatValidationError(err),
		"fields": validator.FieldErrors(err),
	})
}

// PathID parses the numeric path parameter name. A malformed id is reported
// as not found, like a path that matches no route.
func PathID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.NotFound(strings.TrimSuffix(name, "_id"))
	}
	return uint(id), nil
}
