package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateBookingCodeLengthAndAlphabet(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenerateBookingCode(6)
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(codeAlphabet, r),
				"code %q contains %q outside the alphabet", code, r)
		}
	}
}

func TestGenerateBookingCodeRejectionThreshold(t *testing.T) {
	// 256 % 31 = 8, so the top 8 byte values must be rejected rather
	// than folded onto the first 8 letters.
	assert.Equal(t, 248, maxUnbiasedByte)
	assert.Equal(t, 0, maxUnbiasedByte%len(codeAlphabet))
}
