// internal/util/errors.go
package util

import "errors"

// Common application-specific errors.
var (
	ErrNotFound             = errors.New("resource not found")
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrInvalidInput         = errors.New("invalid input provided")
	ErrTokenizationFailed   = errors.New("card tokenization failed")
	ErrStoreWrite           = errors.New("card store write failed")
	ErrCardNotFound         = errors.New("card not found")
	ErrCannotDeletePrimary  = errors.New("cannot delete primary card")
	ErrCannotDeleteOnlyCard = errors.New("cannot delete the only saved card")
	ErrGatewayUnavailable   = errors.New("payment gateway unavailable")
)

// IsError reports whether err matches target in its wrap chain.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
