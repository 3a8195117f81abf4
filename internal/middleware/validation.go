package middleware

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/balcaohq/platform/internal/model"
)

// ValidateBody validates free-text content (message bodies, note bodies).
func ValidateBody(body string) error {
	if len(body) == 0 {
		return errors.New("body cannot be empty")
	}
	if len(body) > 100000 { // ~100KB limit
		return errors.New("body exceeds maximum length")
	}
	if !utf8.ValidString(body) {
		return errors.New("body must be valid UTF-8")
	}
	return nil
}

// ValidateID validates a resource id.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New("invalid id format")
	}
	return nil
}

// ValidateSubject validates a conversation subject.
func ValidateSubject(subject string) error {
	if len(subject) == 0 {
		return errors.New("subject cannot be empty")
	}
	if len(subject) > 256 {
		return errors.New("subject exceeds maximum length")
	}
	if !utf8.ValidString(subject) {
		return errors.New("subject must be valid UTF-8")
	}
	return nil
}

// ValidateEmailDomain checks the address belongs to the organization domain.
func ValidateEmailDomain(email, domain string) error {
	if !strings.HasSuffix(strings.ToLower(email), "@"+strings.ToLower(domain)) {
		return fmt.Errorf("email must belong to the %s domain", domain)
	}
	return nil
}

// ValidateAccessLevel checks the access level is one of the known tiers.
func ValidateAccessLevel(level model.AccessLevel) error {
	switch level {
	case model.AccessSupport, model.AccessSupervisor, model.AccessAdmin:
		return nil
	}
	return errors.New("invalid access level")
}

// ValidateNonNegative rejects negative quantities and amounts.
func ValidateNonNegative(field string, value float64) error {
	if value < 0 {
		return fmt.Errorf("%s cannot be negative", field)
	}
	return nil
}

// ValidatePositive rejects non-positive quantities and amounts.
func ValidatePositive(field string, value float64) error {
	if value <= 0 {
		return fmt.Errorf("%s must be positive", field)
	}
	return nil
}
