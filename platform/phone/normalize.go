// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used when callers pass an empty region.
const DefaultRegion = "US"

// NormalizeE164 formats a phone number to E.164 using region for numbers
// written without a country code. If parsing fails, it returns the trimmed input.
func NormalizeE164(input, region string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}
	if region == "" {
		region = DefaultRegion
	}

	number, err := phonenumbers.Parse(trimmed, strings.ToUpper(region))
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

// IsValid reports whether input parses to a valid number in region.
func IsValid(input, region string) bool {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return false
	}
	if region == "" {
		region = DefaultRegion
	}
	number, err := phonenumbers.Parse(trimmed, strings.ToUpper(region))
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(number)
}
