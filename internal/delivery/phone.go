package delivery

import (
	"fmt"
	"strings"

	"github.com/SamuelOshin/XlideLand-RealEstate/internal/domain"
)

// NormalizePhone reduces a raw phone number to digits-only E.164-like form
// with the given country code prefix. Local numbers written with a leading
// zero ("08012345678") have the zero replaced by the country code. Numbers
// already carrying the country code pass through unchanged. Malformed input
// yields ErrInvalidRecipient before any network call is made.
func NormalizePhone(raw, countryCode string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) < 7 {
		return "", fmt.Errorf("%w: phone %q", domain.ErrInvalidRecipient, raw)
	}
	switch {
	case strings.HasPrefix(digits, countryCode):
		return digits, nil
	case strings.HasPrefix(digits, "0"):
		return countryCode + digits[1:], nil
	default:
		return countryCode + digits, nil
	}
}
