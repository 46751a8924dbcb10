package booking

import (
	"context"
	"fmt"

	bookingRepo "barberflow/database/repository/booking"
	"barberflow/utils"

	"go.uber.org/zap"
)

const (
	codeLength      = 6
	maxCodeAttempts = 5
)

// CodeAssigner hands out booking codes that are unused at assignment
// time. The unique index on code backstops the race between the check
// and the insert.
type CodeAssigner struct {
	Bookings bookingRepo.BookingRepository
}

// Assign returns a fresh booking code. Every candidate colliding is
// effectively impossible with a healthy store, so exhaustion is
// reported as an explicit error rather than reusing a candidate.
func (a *CodeAssigner) Assign(ctx context.Context) (string, error) {
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code, err := utils.GenerateBookingCode(codeLength)
		if err != nil {
			return "", fmt.Errorf("failed to generate booking code: %w", err)
		}

		inUse, err := a.Bookings.CodeInUse(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check booking code: %w", err)
		}
		if !inUse {
			return code, nil
		}

		utils.GetLogger().Warn("booking code collision",
			zap.String("code", code),
			zap.Int("attempt", attempt))
	}
	return "", ErrCodeAllocationExhausted
}
