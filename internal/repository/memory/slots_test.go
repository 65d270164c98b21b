package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walterreed/referral-api/internal/model"
	"github.com/walterreed/referral-api/internal/repository"
)

func testSlot() model.CalendarSlot {
	return model.CalendarSlot{
		Date: time.Date(2026, time.August, 27, 0, 0, 0, 0, time.UTC),
		Hour: 11,
	}
}

func TestHoldBookLifecycle(t *testing.T) {
	repo := NewSlotRepository()
	ctx := context.Background()
	slot := testSlot()

	status, err := repo.Status(ctx, slot)
	require.NoError(t, err)
	assert.Equal(t, model.SlotFree, status)

	token, err := repo.Hold(ctx, slot)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	status, _ = repo.Status(ctx, slot)
	assert.Equal(t, model.SlotHeld, status)

	appt := &model.Appointment{ID: uuid.New(), Slot: slot}
	require.NoError(t, repo.Book(ctx, slot, token, appt))

	status, _ = repo.Status(ctx, slot)
	assert.Equal(t, model.SlotBooked, status)
	assert.Len(t, repo.BookedAppointments(), 1)
}

func TestHoldRejectsOccupiedSlot(t *testing.T) {
	repo := NewSlotRepository()
	ctx := context.Background()
	slot := testSlot()

	token, err := repo.Hold(ctx, slot)
	require.NoError(t, err)

	_, err = repo.Hold(ctx, slot)
	assert.ErrorIs(t, err, repository.ErrSlotUnavailable)

	require.NoError(t, repo.Book(ctx, slot, token, &model.Appointment{ID: uuid.New(), Slot: slot}))

	_, err = repo.Hold(ctx, slot)
	assert.ErrorIs(t, err, repository.ErrSlotUnavailable, "booked slot is never reassigned")
}

func TestBookRequiresHoldToken(t *testing.T) {
	repo := NewSlotRepository()
	ctx := context.Background()
	slot := testSlot()

	_, err := repo.Hold(ctx, slot)
	require.NoError(t, err)

	err = repo.Book(ctx, slot, "wrong-token", &model.Appointment{ID: uuid.New(), Slot: slot})
	assert.ErrorIs(t, err, repository.ErrNotHeld)
}

func TestReleaseFreesSlot(t *testing.T) {
	repo := NewSlotRepository()
	ctx := context.Background()
	slot := testSlot()

	token, err := repo.Hold(ctx, slot)
	require.NoError(t, err)
	require.NoError(t, repo.Release(ctx, slot, token))

	_, err = repo.Hold(ctx, slot)
	assert.NoError(t, err, "released slot can be held again")
}

func TestConcurrentHoldsSingleWinner(t *testing.T) {
	repo := NewSlotRepository()
	ctx := context.Background()
	slot := testSlot()

	const goroutines = 32
	var wins sync.Map
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(n int) {
			defer wg.Done()
			if token, err := repo.Hold(ctx, slot); err == nil {
				wins.Store(n, token)
			}
		}(i)
	}
	wg.Wait()

	count := 0
	wins.Range(func(_, _ any) bool { count++; return true })
	assert.Equal(t, 1, count, "exactly one concurrent hold wins")
}
