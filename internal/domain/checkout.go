package domain

import (
	"strings"
	"unicode/utf8"
)

const (
	MinNameLength    = 2
	MinPhoneLength   = 6
	MinAddressLength = 5
)

// CheckoutFields are the customer-supplied values of the checkout form.
type CheckoutFields struct {
	Name    string
	Phone   string
	Address string
	Comment string
}

// Trimmed returns the fields with surrounding whitespace removed.
func (f CheckoutFields) Trimmed() CheckoutFields {
	return CheckoutFields{
		Name:    strings.TrimSpace(f.Name),
		Phone:   strings.TrimSpace(f.Phone),
		Address: strings.TrimSpace(f.Address),
		Comment: strings.TrimSpace(f.Comment),
	}
}

// ValidateCheckout checks the rules in order and reports the first one that fails.
// The phone number is only length-checked so that any international format passes.
func ValidateCheckout(fields CheckoutFields, cart *Cart) error {
	f := fields.Trimmed()

	switch {
	case utf8.RuneCountInString(f.Name) < MinNameLength:
		return &ValidationError{Code: NameTooShort}
	case utf8.RuneCountInString(f.Phone) < MinPhoneLength:
		return &ValidationError{Code: PhoneTooShort}
	case utf8.RuneCountInString(f.Address) < MinAddressLength:
		return &ValidationError{Code: AddressTooShort}
	case cart == nil || cart.IsEmpty():
		return &ValidationError{Code: CartEmpty}
	}

	return nil
}
