package services

import (
	"database/sql"
	"errors"

	"coldchain/internal/apperrors"

	"gorm.io/gorm"
)

// TxRunner is the slice of *gorm.DB the services need to open a
// transaction; tests substitute a fake.
type TxRunner interface {
	Transaction(fn func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

// notFoundOr maps a gorm missing-record error to a domain NotFound.
// Cross-tenant reads surface the same way so existence never leaks.
func notFoundOr(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(format, args...)
	}
	return err
}
