// Package errors provides custom error types for product-related operations.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidID       = errors.New("invalid product id")
	ErrEmptyUpdate     = errors.New("At least one field must be provided to update the product")
	ErrEmptySearch     = errors.New("search name must not be empty")
)

// MissingFieldsError reports required create fields that were absent from the payload.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("Product's missing required fields: %s", strings.Join(e.Fields, ", "))
}

// ValidationError maps payload fields to the rule they failed.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid product: " + strings.Join(parts, "; ")
}

// IsClientError reports whether err was caused by the caller's input.
func IsClientError(err error) bool {
	var missing *MissingFieldsError
	var invalid *ValidationError
	return errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrEmptyUpdate) ||
		errors.Is(err, ErrEmptySearch) ||
		errors.As(err, &missing) ||
		errors.As(err, &invalid)
}
