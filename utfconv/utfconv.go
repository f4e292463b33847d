// Package utfconv converts text between the host's UTF-16 encoding and the
// columnar library's UTF-8 encoding. Conversion is strict: ill-formed input
// is reported as an error, never silently substituted, because the boundary
// contract requires failures to surface as tagged error records.
package utfconv

import (
	"errors"
	"fmt"
	"unicode/utf16"
	"unicode/utf8"
)

// Conversion errors
var (
	ErrInvalidUTF16 = errors.New("utfconv: ill-formed UTF-16 input")
	ErrInvalidUTF8  = errors.New("utfconv: ill-formed UTF-8 input")
)

// UTF-16 surrogate ranges.
const (
	surrHighStart = 0xD800
	surrHighEnd   = 0xDBFF
	surrLowStart  = 0xDC00
	surrLowEnd    = 0xDFFF
)

// UTF16ToUTF8 converts a UTF-16 code-unit sequence to a UTF-8 string.
// Unpaired surrogates are an error.
func UTF16ToUTF8(units []uint16) (string, error) {
	runes := make([]rune, 0, len(units))
	for i := 0; i < len(units); i++ {
		u := units[i]
		switch {
		case u < surrHighStart || u > surrLowEnd:
			runes = append(runes, rune(u))
		case u <= surrHighEnd:
			// High surrogate: must be followed by a low surrogate.
			if i+1 >= len(units) {
				return "", fmt.Errorf("%w: unpaired high surrogate 0x%04X at end of input", ErrInvalidUTF16, u)
			}
			next := units[i+1]
			if next < surrLowStart || next > surrLowEnd {
				return "", fmt.Errorf("%w: high surrogate 0x%04X at offset %d not followed by a low surrogate", ErrInvalidUTF16, u, i)
			}
			runes = append(runes, utf16.DecodeRune(rune(u), rune(next)))
			i++
		default:
			return "", fmt.Errorf("%w: unpaired low surrogate 0x%04X at offset %d", ErrInvalidUTF16, u, i)
		}
	}
	return string(runes), nil
}

// UTF8ToUTF16 converts a UTF-8 string to a UTF-16 code-unit sequence.
func UTF8ToUTF16(s string) ([]uint16, error) {
	if !utf8.ValidString(s) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidUTF8, s)
	}
	return utf16.Encode([]rune(s)), nil
}
