package booking

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

func TestAssignReturnsSixCharRestrictedCode(t *testing.T) {
	assigner := &CodeAssigner{Bookings: &fakeBookingRepo{}}

	for i := 0; i < 50; i++ {
		code, err := assigner.Assign(context.Background())
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(codeAlphabet, r),
				"code %q contains %q outside the restricted alphabet", code, r)
		}
	}
}

func TestAssignRetriesOnCollision(t *testing.T) {
	calls := 0
	repo := &fakeBookingRepo{
		codeInUseFn: func(ctx context.Context, code string) (bool, error) {
			calls++
			return calls <= 2, nil // first two candidates collide
		},
	}
	assigner := &CodeAssigner{Bookings: repo}

	code, err := assigner.Assign(context.Background())
	require.NoError(t, err)
	assert.Len(t, code, 6)
	assert.Equal(t, 3, calls)
}

func TestAssignSurfacesExhaustion(t *testing.T) {
	calls := 0
	repo := &fakeBookingRepo{
		codeInUseFn: func(ctx context.Context, code string) (bool, error) {
			calls++
			return true, nil
		},
	}
	assigner := &CodeAssigner{Bookings: repo}

	_, err := assigner.Assign(context.Background())
	require.ErrorIs(t, err, ErrCodeAllocationExhausted)
	assert.Equal(t, 5, calls, "gives up after the attempt bound, never accepts a duplicate")
}
