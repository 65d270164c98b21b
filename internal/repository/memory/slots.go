// Package memory is the in-process calendar store. A single mutex serializes
// every transition, which makes the no-double-booking invariant trivial to
// see.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/walterreed/referral-api/internal/model"
	"github.com/walterreed/referral-api/internal/repository"
)

type slotEntry struct {
	status      model.SlotStatus
	token       string
	appointment *model.Appointment
}

type SlotRepository struct {
	mu    sync.Mutex
	slots map[string]*slotEntry
}

func NewSlotRepository() *SlotRepository {
	return &SlotRepository{
		slots: make(map[string]*slotEntry),
	}
}

func (r *SlotRepository) Hold(ctx context.Context, slot model.CalendarSlot) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := slot.Key()
	if e, ok := r.slots[key]; ok && e.status != model.SlotFree {
		return "", repository.ErrSlotUnavailable
	}

	token := uuid.NewString()
	r.slots[key] = &slotEntry{status: model.SlotHeld, token: token}
	return token, nil
}

func (r *SlotRepository) Book(ctx context.Context, slot model.CalendarSlot, token string, appt *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.slots[slot.Key()]
	if !ok || e.status != model.SlotHeld || e.token != token {
		return repository.ErrNotHeld
	}

	e.status = model.SlotBooked
	e.appointment = appt
	return nil
}

func (r *SlotRepository) Release(ctx context.Context, slot model.CalendarSlot, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.slots[slot.Key()]
	if !ok || e.status != model.SlotHeld || e.token != token {
		return repository.ErrNotHeld
	}

	delete(r.slots, slot.Key())
	return nil
}

func (r *SlotRepository) Status(ctx context.Context, slot model.CalendarSlot) (model.SlotStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.slots[slot.Key()]; ok {
		return e.status, nil
	}
	return model.SlotFree, nil
}

// BookedAppointments returns all booked appointments, ordered arbitrarily.
// Used by tests and operator tooling.
func (r *SlotRepository) BookedAppointments() []*model.Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()

	var appts []*model.Appointment
	for _, e := range r.slots {
		if e.status == model.SlotBooked && e.appointment != nil {
			appts = append(appts, e.appointment)
		}
	}
	return appts
}
