package domain

import (
	"errors"
	"fmt"
)

type ValidationCode int

const (
	NameTooShort ValidationCode = iota + 1
	PhoneTooShort
	AddressTooShort
	CartEmpty
)

func (c ValidationCode) String() string {
	switch c {
	case NameTooShort:
		return "NAME_TOO_SHORT"
	case PhoneTooShort:
		return "PHONE_TOO_SHORT"
	case AddressTooShort:
		return "ADDRESS_TOO_SHORT"
	case CartEmpty:
		return "CART_EMPTY"
	default:
		return "UNKNOWN"
	}
}

func (c ValidationCode) message() string {
	switch c {
	case NameTooShort:
		return fmt.Sprintf("name must be at least %d characters", MinNameLength)
	case PhoneTooShort:
		return fmt.Sprintf("phone must be at least %d characters", MinPhoneLength)
	case AddressTooShort:
		return fmt.Sprintf("address must be at least %d characters", MinAddressLength)
	case CartEmpty:
		return "cart is empty"
	default:
		return "invalid checkout"
	}
}

// ValidationError rejects a checkout locally, before anything is sent.
type ValidationError struct {
	Code ValidationCode
}

func (e *ValidationError) Error() string {
	return e.Code.message()
}

// Is matches any ValidationError with the same code.
func (e *ValidationError) Is(target error) bool {
	var other *ValidationError
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

var (
	ErrNameTooShort    = &ValidationError{Code: NameTooShort}
	ErrPhoneTooShort   = &ValidationError{Code: PhoneTooShort}
	ErrAddressTooShort = &ValidationError{Code: AddressTooShort}
	ErrCartEmpty       = &ValidationError{Code: CartEmpty}
)

type SubmitKind int

const (
	SubmitTimeout SubmitKind = iota + 1
	SubmitNetworkError
	SubmitServerRejected
)

func (k SubmitKind) String() string {
	switch k {
	case SubmitTimeout:
		return "TIMEOUT"
	case SubmitNetworkError:
		return "NETWORK_ERROR"
	case SubmitServerRejected:
		return "SERVER_REJECTED"
	default:
		return "UNKNOWN"
	}
}

const GenericSubmitMessage = "could not reach the store, please try again"

// SubmitError is a failed order placement. Message is the server-provided reason when there is one.
type SubmitError struct {
	Kind    SubmitKind
	Message string
	Err     error
}

func (e *SubmitError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Kind == SubmitTimeout {
		return "order request timed out"
	}
	return GenericSubmitMessage
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// CatalogLoadError is returned when the catalog could not be fetched and no fresh cache was available.
type CatalogLoadError struct {
	Err error
}

func (e *CatalogLoadError) Error() string {
	return fmt.Sprintf("load catalog: %v", e.Err)
}

func (e *CatalogLoadError) Unwrap() error {
	return e.Err
}
