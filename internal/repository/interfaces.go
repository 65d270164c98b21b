package repository

import (
	"context"
	"errors"

	"github.com/walterreed/referral-api/internal/model"
)

var (
	// ErrSlotUnavailable means the slot is already held or booked. The
	// scheduler advances to the next candidate; it never blocks.
	ErrSlotUnavailable = errors.New("slot is held or booked")

	// ErrNotHeld means a book or release was attempted without the hold
	// token that claimed the slot.
	ErrNotHeld = errors.New("slot is not held by this token")
)

// SlotRepository persists calendar slot occupancy. Implementations must make
// the free-to-held transition atomic and linearizable across concurrent
// reservations; that single guarantee carries the no-double-booking
// invariant. Backing store is an implementation choice (memory, Postgres,
// Redis).
type SlotRepository interface {
	// Hold atomically transitions the slot free-to-held and returns an
	// opaque token owning the hold. Returns ErrSlotUnavailable if the slot
	// is held or booked.
	Hold(ctx context.Context, slot model.CalendarSlot) (token string, err error)

	// Book transitions a held slot to booked and records the appointment.
	// Requires the token returned by Hold; a booked slot is never reassigned.
	Book(ctx context.Context, slot model.CalendarSlot, token string, appt *model.Appointment) error

	// Release frees a held slot when booking cannot complete. Requires the
	// hold token; releasing a booked slot is not possible.
	Release(ctx context.Context, slot model.CalendarSlot, token string) error

	// Status reports the slot's occupancy state.
	Status(ctx context.Context, slot model.CalendarSlot) (model.SlotStatus, error)
}
