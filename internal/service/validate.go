package service

import (
	"fmt"

	"toko-kelontong-pos/pkg/validator"
)

func validate(v interface{}) error {
	if err := validator.Check(v); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}
