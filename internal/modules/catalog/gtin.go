package catalog

import (
	"fmt"
	"strings"

	"github.com/georgemunganga/centimos-backend/internal/apperr"
)

// BarcodeLength is the width of the canonical GTIN-13 key.
const BarcodeLength = 13

const (
	minGTINLength = 8
	maxGTINLength = 14
)

// Validate checks that code is an 8 to 14 digit GTIN whose last digit is
// the correct check digit.
func Validate(code string) error {
	if len(code) < minGTINLength || len(code) > maxGTINLength || !isDigits(code) {
		return fmt.Errorf("%w: barcode must be %d to %d digits, got %q",
			apperr.ErrInvalidFormat, minGTINLength, maxGTINLength, code)
	}
	last := len(code) - 1
	if want := CheckDigit(code[:last]); int(code[last]-'0') != want {
		return fmt.Errorf("%w: barcode %s should end in %d", apperr.ErrInvalidCheckDigit, code, want)
	}
	return nil
}

// CheckDigit computes the GTIN check digit for payload, the code without
// its final digit. Digits are weighted 3,1,3,... starting from the
// rightmost one.
func CheckDigit(payload string) int {
	sum := 0
	for i := 0; i < len(payload); i++ {
		d := int(payload[len(payload)-1-i] - '0')
		if i%2 == 0 {
			sum += 3 * d
		} else {
			sum += d
		}
	}
	return (10 - sum%10) % 10
}

// Normalize maps any GTIN-family code to the 13-digit key used for storage
// and lookups: non-digits are dropped, short codes are left-padded with
// zeros and long ones keep their rightmost 13 digits.
func Normalize(code string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, code)
	if len(digits) > BarcodeLength {
		return digits[len(digits)-BarcodeLength:]
	}
	return strings.Repeat("0", BarcodeLength-len(digits)) + digits
}

// ValidateAndNormalize is the entry point for every lookup path.
func ValidateAndNormalize(code string) (string, error) {
	if err := Validate(code); err != nil {
		return "", err
	}
	return Normalize(code), nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
