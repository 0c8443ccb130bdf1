package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a unique constraint rejected the write.
	ErrAlreadyExists = errors.New("already exists")

	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidUser     = errors.New("user id required")
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrProductNotFound is matched by every ProductNotFoundError.
	ErrProductNotFound = errors.New("product not found")

	// ErrConstraintViolation wraps storage integrity failures (SQLSTATE class 23).
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrStorageUnavailable wraps connection, timeout and serialization failures.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ProductNotFoundError reports a cart line whose product is absent from the catalog.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product with ID %d from cart not found", e.ProductID)
}

func (e *ProductNotFoundError) Is(target error) bool {
	return target == ErrProductNotFound
}
