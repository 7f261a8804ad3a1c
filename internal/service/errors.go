package service

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrEmailExists        = errors.New("email already exists")
	ErrNotFound           = errors.New("record not found")
	ErrForbidden          = errors.New("not allowed for this account")
	ErrValidation         = errors.New("validation failed")
)

// notFound maps gorm's not-found to ErrNotFound and passes anything else on.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
