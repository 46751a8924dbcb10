package utils

import (
	"crypto/rand"
	"fmt"
)

// codeAlphabet is the character set for booking codes. Ambiguous glyphs
// (I, L, O, 0, 1) are excluded so codes survive being read aloud or
// scribbled on paper.
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// maxUnbiasedByte is the rejection threshold: bytes at or above it are
// discarded so every alphabet character is equally likely. 256 is not a
// multiple of 31, so a plain modulo would skew toward the low letters.
const maxUnbiasedByte = 256 - 256%len(codeAlphabet)

// GenerateBookingCode generates a secure random booking code of the
// specified length from the unambiguous alphabet.
func GenerateBookingCode(length int) (string, error) {
	code := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(code) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to generate random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= maxUnbiasedByte {
				continue
			}
			code = append(code, codeAlphabet[int(b)%len(codeAlphabet)])
			if len(code) == length {
				break
			}
		}
	}
	return string(code), nil
}
