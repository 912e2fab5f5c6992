// Package phone normalizes Romanian mobile numbers to E.164.
package phone

import (
	"errors"
	"strings"
)

var ErrInvalid = errors.New("invalid romanian mobile number")

// Normalize accepts "07XXXXXXXX", "+407XXXXXXXX" or "00407XXXXXXXX" (spaces,
// dots and dashes tolerated) and returns the canonical "+407XXXXXXXX" form.
// Anything that is not a Romanian mobile shape fails with ErrInvalid.
func Normalize(raw string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '.', '-', '(', ')':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))

	var national string
	switch {
	case strings.HasPrefix(cleaned, "+40"):
		national = cleaned[3:]
	case strings.HasPrefix(cleaned, "0040"):
		national = cleaned[4:]
	case strings.HasPrefix(cleaned, "0"):
		national = cleaned[1:]
	default:
		return "", ErrInvalid
	}

	// Nine digits, mobile range (7xx).
	if len(national) != 9 || national[0] != '7' {
		return "", ErrInvalid
	}
	for _, r := range national {
		if r < '0' || r > '9' {
			return "", ErrInvalid
		}
	}

	return "+40" + national, nil
}

// Mask hides the middle of an E.164 number for API responses and logs,
// e.g. "+40712345678" -> "+4071***5678".
func Mask(e164 string) string {
	if len(e164) < 8 {
		return e164
	}
	return e164[:5] + "***" + e164[len(e164)-4:]
}
