package catalog

import (
	"testing"

	"github.com/georgemunganga/centimos-backend/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validCodes = map[string]string{
	"96385074":       "0000096385074", // EAN-8
	"036000291452":   "0036000291452", // UPC-A
	"4006381333931":  "4006381333931", // EAN-13
	"10012345678902": "0012345678902", // GTIN-14
}

func TestValidateAcceptsGTINFamily(t *testing.T) {
	for code := range validCodes {
		assert.NoError(t, Validate(code), code)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		code string
		want error
	}{
		{"", apperr.ErrInvalidFormat},
		{"1234567", apperr.ErrInvalidFormat},
		{"123456789012345", apperr.ErrInvalidFormat},
		{"40063813339A1", apperr.ErrInvalidFormat},
		{"4006-381333931", apperr.ErrInvalidFormat},
		{"4006381333932", apperr.ErrInvalidCheckDigit},
		{"036000291453", apperr.ErrInvalidCheckDigit},
		{"96385075", apperr.ErrInvalidCheckDigit},
	}
	for _, tc := range cases {
		assert.ErrorIs(t, Validate(tc.code), tc.want, tc.code)
	}
}

func TestCheckDigit(t *testing.T) {
	assert.Equal(t, 1, CheckDigit("400638133393"))
	assert.Equal(t, 2, CheckDigit("03600029145"))
	assert.Equal(t, 0, CheckDigit(""))
}

func TestNormalize(t *testing.T) {
	for code, want := range validCodes {
		got := Normalize(code)
		assert.Equal(t, want, got)
		assert.Len(t, got, BarcodeLength)
		assert.Equal(t, got, Normalize(got), "normalize must be idempotent")
	}

	assert.Equal(t, "4006381333931", Normalize(" 4006-3813-33931 "))
	assert.Equal(t, "0000000000000", Normalize(""))
}

func TestValidateAndNormalize(t *testing.T) {
	got, err := ValidateAndNormalize("036000291452")
	require.NoError(t, err)
	assert.Equal(t, "0036000291452", got)

	_, err = ValidateAndNormalize("036000291453")
	assert.ErrorIs(t, err, apperr.ErrInvalidCheckDigit)
}
