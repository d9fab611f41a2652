package helper

import (
	"fmt"

	"github.com/containerd/errdefs"
)

// ErrTypeMismatch reports a runtime value that does not conform to the type a
// caller declared for it.
var ErrTypeMismatch = fmt.Errorf("value type mismatch: %w", errdefs.ErrInvalidArgument)

// As asserts v to the expected type T.
// Returns an ErrTypeMismatch error naming the actual type if the assertion fails.
func As[T any](v any) (T, error) {
	typed, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: expected %T, got %T", ErrTypeMismatch, zero, v)
	}
	return typed, nil
}

// MustAs is the panic-on-failure variant of As.
// Use when the value is guaranteed to conform (e.g., over a homogeneous tree).
func MustAs[T any](v any) T {
	typed, err := As[T](v)
	if err != nil {
		panic(err)
	}
	return typed
}
