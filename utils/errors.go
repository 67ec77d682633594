package utils

import (
	"fmt"

	"github.com/pkg/errors"
)

// NewUnexpectedTypeError is used when there is a type mismatch.
func NewUnexpectedTypeError[ExpectedT any](actual interface{}) error {
	return errors.Errorf("expected %s but got %T", typeName[ExpectedT](), actual)
}

func typeName[T any]() string {
	return fmt.Sprintf("%T", (*T)(nil))[1:]
}
