package postgres

import (
	"errors"

	"gorm.io/gorm"
)

// translate maps gorm sentinel errors onto domain errors. The database must
// be opened with TranslateError so that unique violations surface as
// gorm.ErrDuplicatedKey.
func translate(err error, notFound, duplicate error) error {
	switch {
	case err == nil:
		return nil
	case notFound != nil && errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case duplicate != nil && errors.Is(err, gorm.ErrDuplicatedKey):
		return duplicate
	}
	return err
}
