package utils

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Fallback regions for numbers entered without a country code
// (staff-typed numbers). WhatsApp sender ids always carry one.
var fallbackRegions = []string{
	"US",
	"BR",
}

// NormalizePhone canonicalizes a phone number to E.164. WhatsApp
// delivers sender ids as bare digits with the country code but no "+",
// so a leading "+" is assumed for all-digit input. Returns "" when the
// number cannot be parsed.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}

	candidate := phone
	if !strings.HasPrefix(candidate, "+") && isDigits(candidate) {
		candidate = "+" + candidate
	}

	if parsed, err := phonenumbers.Parse(candidate, ""); err == nil && phonenumbers.IsValidNumber(parsed) {
		return phonenumbers.Format(parsed, phonenumbers.E164)
	}

	for _, region := range fallbackRegions {
		parsed, err := phonenumbers.Parse(phone, region)
		if err == nil && phonenumbers.IsValidNumber(parsed) {
			return phonenumbers.Format(parsed, phonenumbers.E164)
		}
	}
	return ""
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
