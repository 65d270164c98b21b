package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SlotStatus is the occupancy state of one calendar slot.
type SlotStatus string

const (
	SlotFree   SlotStatus = "free"
	SlotHeld   SlotStatus = "held"
	SlotBooked SlotStatus = "booked"
)

// CalendarSlot is a bookable (date, hour) unit on the clinic calendar. The
// calendar is the set of slots satisfying the weekday/hour constraints,
// generated forward from now; at most one appointment ever occupies a booked
// slot.
type CalendarSlot struct {
	Date time.Time `json:"date" db:"slot_date"`
	Hour int       `json:"hour" db:"slot_hour"`
}

// Key is the canonical identity of the slot, e.g. "2026-08-27T11".
func (s CalendarSlot) Key() string {
	return fmt.Sprintf("%sT%02d", s.Date.Format("2006-01-02"), s.Hour)
}

// Start returns the slot's starting instant in the slot date's location.
func (s CalendarSlot) Start() time.Time {
	y, m, d := s.Date.Date()
	return time.Date(y, m, d, s.Hour, 0, 0, 0, s.Date.Location())
}

// Appointment is a booked one-hour visit. Created only by a successful
// reservation; never mutated afterwards (cancellation is future work).
type Appointment struct {
	ID         uuid.UUID    `json:"id" db:"id"`
	PatientMRN string       `json:"patient_mrn" db:"patient_mrn"`
	Slot       CalendarSlot `json:"slot"`
	Location   string       `json:"location" db:"location"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
}
