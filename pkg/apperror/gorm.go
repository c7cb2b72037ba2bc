package apperror

import (
	"errors"

	"gorm.io/gorm"
)

// FromDB converts persistence errors into application errors. resource names
// the entity in not-found and duplicate messages; other errors pass through.
func FromDB(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound(resource)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return Validation("non_field_errors", "%s already exists", resource)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return Validation("non_field_errors", "%s references a missing object", resource)
	}
	return err
}
