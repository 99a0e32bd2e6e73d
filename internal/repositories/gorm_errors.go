package repositories

import (
	"errors"

	"scango/internal/apperrors"

	"gorm.io/gorm"
)

// lookupError maps a failed single-row query to NotFound or Remote.
func lookupError(err error, kind, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(kind, id)
	}
	return apperrors.Remote("get "+kind+" "+id, err)
}
