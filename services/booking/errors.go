package booking

import "errors"

var (
	// ErrSlotTaken means another booking claimed the slot between
	// presentation and creation. The conversation re-presents fresh
	// availability instead of failing.
	ErrSlotTaken = errors.New("slot already taken")

	// ErrCodeAllocationExhausted means every generated candidate code
	// collided with an existing booking. Surfaced explicitly, never a
	// silent duplicate.
	ErrCodeAllocationExhausted = errors.New("booking code allocation exhausted")

	// ErrUnknownService means the selected key is not in the shop's
	// active catalog.
	ErrUnknownService = errors.New("unknown service")

	// ErrUnknownBarber means the selected barber does not exist, is
	// inactive, or belongs to another shop.
	ErrUnknownBarber = errors.New("unknown barber")

	// ErrInvalidTransition means the requested status change is not
	// allowed from the booking's current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNotCancellable means the booking is not in a state the
	// customer can cancel (already completed, cancelled, or unknown).
	ErrNotCancellable = errors.New("booking cannot be cancelled")
)
