package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	dErrors "hsaonboard/pkg/domain-errors"
)

// SSN is a validated Social Security Number. The raw digits are kept private
// to the domain layer; responses and audit records only ever see Masked() or
// Hash() output.
type SSN struct {
	digits string
}

// ParseSSN validates an SSN in either "123-45-6789" or "123456789" form.
// Separator characters are stripped before validation.
func ParseSSN(s string) (SSN, error) {
	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) != 9 {
		return SSN{}, dErrors.New(dErrors.CodeValidation, "social security number must contain exactly 9 digits")
	}
	// SSA-invalid patterns: all-zero, zero area, zero group, zero serial.
	if d == "000000000" || strings.HasPrefix(d, "000") || d[3:5] == "00" || d[5:] == "0000" {
		return SSN{}, dErrors.New(dErrors.CodeValidation, "invalid social security number")
	}
	return SSN{digits: d}, nil
}

// Digits returns the unformatted 9-digit form, for comparison only.
func (s SSN) Digits() string { return s.digits }

// Masked returns the display form with only the last four digits visible.
func (s SSN) Masked() string {
	if len(s.digits) != 9 {
		return "***-**-****"
	}
	return "***-**-" + s.digits[5:]
}

// Hash returns a SHA-256 hex digest of the digits. Audit records carry the
// hash for traceability without storing raw PII.
func (s SSN) Hash() string {
	sum := sha256.Sum256([]byte(s.digits))
	return hex.EncodeToString(sum[:])
}

// IsZero reports whether the SSN was never populated.
func (s SSN) IsZero() bool { return s.digits == "" }
